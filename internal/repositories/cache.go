package repositories

import (
	"fmt"
	"strings"

	"github.com/podbridge/podbridge/internal/models"
)

// CacheAdapter writes backend listings into the local cache with
// dedup-on-write semantics.
//
// Rows that already exist are updated in place; UNIQUE constraint
// violations from concurrent writes are silently ignored so a re-sync
// never fails on data it already has.
type CacheAdapter struct {
	agents   *AgentRepository
	episodes *EpisodeRepository
}

// NewCacheAdapter creates a CacheAdapter over the given repositories
func NewCacheAdapter(agents *AgentRepository, episodes *EpisodeRepository) *CacheAdapter {
	return &CacheAdapter{agents: agents, episodes: episodes}
}

// CacheAgent upserts one agent listing into the cache.
func (a *CacheAdapter) CacheAgent(dto models.Agent) error {
	existing, err := a.agents.Get(dto.ID)
	if err == nil && existing != nil {
		existing.SetAgent(dto)
		return a.agents.Update(existing)
	}

	agent := models.NewPersistedAgent(0, dto)
	if err := a.agents.Create(agent); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to cache agent: %w", err)
	}

	return nil
}

// CacheEpisode upserts one episode listing into the cache.
func (a *CacheAdapter) CacheEpisode(dto models.Episode) error {
	existing, err := a.episodes.GetByVideoID(dto.AgentID, dto.YouTubeVideoID)
	if err == nil && existing != nil {
		existing.SetEpisode(dto)
		return a.episodes.Update(existing)
	}

	episode := models.NewPersistedEpisode(0, dto)
	if err := a.episodes.Create(episode); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to cache episode: %w", err)
	}

	return nil
}

// CacheEpisodes upserts a full listing, returning how many rows were written.
func (a *CacheAdapter) CacheEpisodes(episodes []models.Episode) (int, error) {
	cached := 0
	for _, e := range episodes {
		if err := a.CacheEpisode(e); err != nil {
			return cached, err
		}
		cached++
	}
	return cached, nil
}

package models

import (
	"fmt"
	"time"
)

// PersistedAgent is a locally cached Agent implementing [Model].
//
// The backend's agent ID is used as the primary key; Sequence provides
// stable local ordering.
type PersistedAgent struct {
	id        string
	sequence  int
	dto       Agent
	createdAt time.Time
	updatedAt time.Time
}

// NewPersistedAgent creates a PersistedAgent wrapping the given DTO.
func NewPersistedAgent(sequence int, dto Agent) *PersistedAgent {
	now := time.Now().UTC()
	return &PersistedAgent{
		id:        dto.ID,
		sequence:  sequence,
		dto:       dto,
		createdAt: now,
		updatedAt: now,
	}
}

func (a *PersistedAgent) ID() string           { return a.id }
func (a *PersistedAgent) Sequence() int        { return a.sequence }
func (a *PersistedAgent) Agent() Agent         { return a.dto }
func (a *PersistedAgent) CreatedAt() time.Time { return a.createdAt }
func (a *PersistedAgent) UpdatedAt() time.Time { return a.updatedAt }

// SetID overrides the primary key. Used by repositories when restoring rows.
func (a *PersistedAgent) SetID(id string) { a.id = id }

// SetSequence sets the local ordering number.
func (a *PersistedAgent) SetSequence(seq int) { a.sequence = seq }

// SetTimestamps restores persisted timestamps when scanning rows.
func (a *PersistedAgent) SetTimestamps(created, updated time.Time) {
	a.createdAt = created
	a.updatedAt = updated
}

// Touch marks the entity as updated now.
func (a *PersistedAgent) Touch() { a.updatedAt = time.Now().UTC() }

// SetAgent replaces the wrapped DTO.
func (a *PersistedAgent) SetAgent(dto Agent) { a.dto = dto }

// Validate checks required agent fields.
func (a *PersistedAgent) Validate() error {
	if a.id == "" {
		return fmt.Errorf("agent ID is required")
	}
	if a.dto.Name == "" {
		return fmt.Errorf("agent name is required")
	}
	if a.dto.YouTubeChannelURL == "" {
		return fmt.Errorf("agent channel URL is required")
	}
	return nil
}

// PersistedEpisode is a locally cached Episode implementing [Model].
type PersistedEpisode struct {
	id        string
	sequence  int
	dto       Episode
	createdAt time.Time
	updatedAt time.Time
}

// NewPersistedEpisode creates a PersistedEpisode wrapping the given DTO.
func NewPersistedEpisode(sequence int, dto Episode) *PersistedEpisode {
	now := time.Now().UTC()
	return &PersistedEpisode{
		id:        dto.ID,
		sequence:  sequence,
		dto:       dto,
		createdAt: now,
		updatedAt: now,
	}
}

func (e *PersistedEpisode) ID() string           { return e.id }
func (e *PersistedEpisode) Sequence() int        { return e.sequence }
func (e *PersistedEpisode) Episode() Episode     { return e.dto }
func (e *PersistedEpisode) CreatedAt() time.Time { return e.createdAt }
func (e *PersistedEpisode) UpdatedAt() time.Time { return e.updatedAt }

// SetID overrides the primary key. Used by repositories when restoring rows.
func (e *PersistedEpisode) SetID(id string) { e.id = id }

// SetSequence sets the local ordering number.
func (e *PersistedEpisode) SetSequence(seq int) { e.sequence = seq }

// SetTimestamps restores persisted timestamps when scanning rows.
func (e *PersistedEpisode) SetTimestamps(created, updated time.Time) {
	e.createdAt = created
	e.updatedAt = updated
}

// Touch marks the entity as updated now.
func (e *PersistedEpisode) Touch() { e.updatedAt = time.Now().UTC() }

// SetEpisode replaces the wrapped DTO.
func (e *PersistedEpisode) SetEpisode(dto Episode) { e.dto = dto }

// Validate checks required episode fields.
func (e *PersistedEpisode) Validate() error {
	if e.id == "" {
		return fmt.Errorf("episode ID is required")
	}
	if e.dto.AgentID == "" {
		return fmt.Errorf("episode agent ID is required")
	}
	if e.dto.YouTubeVideoID == "" {
		return fmt.Errorf("episode video ID is required")
	}
	if e.dto.Title == "" {
		return fmt.Errorf("episode title is required")
	}
	return nil
}

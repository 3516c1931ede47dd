package main

import (
	"context"
	"fmt"

	"github.com/podbridge/podbridge/internal/repositories"
	"github.com/podbridge/podbridge/internal/shared"
	"github.com/urfave/cli/v3"
)

// CacheSync fetches an agent and its episodes from the backend and
// stores them in the local database for offline listing.
func (r *Runner) CacheSync(ctx context.Context, cmd *cli.Command) error {
	agentID := cmd.StringArg("id")
	if agentID == "" {
		return fmt.Errorf("%w: agent ID is required", shared.ErrMissingArgument)
	}

	r.logger.Infof("syncing agent %v to local cache", agentID)

	agent, err := r.api.GetAgent(ctx, agentID)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	episodes, err := r.api.ListEpisodes(ctx, agentID)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	cache := repositories.NewCacheAdapter(
		repositories.NewAgentRepository(db),
		repositories.NewEpisodeRepository(db),
	)

	if err := cache.CacheAgent(*agent); err != nil {
		return fmt.Errorf("failed to cache agent: %w", err)
	}

	cached, err := cache.CacheEpisodes(episodes)
	if err != nil {
		return fmt.Errorf("failed to cache episodes: %w", err)
	}

	r.logger.Infof("cached %v of %v episodes", cached, len(episodes))

	r.writePlain("✓ Agent cached: %s\n", agent.Name)
	r.writePlain("  Episodes cached: %d\n", cached)

	return nil
}

// CacheList lists locally cached episodes without contacting the
// backend.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	agentID := cmd.StringArg("id")
	if agentID == "" {
		return fmt.Errorf("%w: agent ID is required", shared.ErrMissingArgument)
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	episodes, err := repositories.NewEpisodeRepository(db).List(map[string]any{"agent_id": agentID})
	if err != nil {
		return fmt.Errorf("failed to list cached episodes: %w", err)
	}

	r.writePlain("Found %d cached episodes:\n\n", len(episodes))
	for i, persisted := range episodes {
		e := persisted.Episode()
		r.writePlain("%d. %s (%s)\n", i+1, e.Title, e.YouTubeVideoID)
	}

	return nil
}

// cacheCommand handles the local episode cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Sync and inspect the local episode cache",
		Commands: []*cli.Command{
			{
				Name:  "sync",
				Usage: "Fetch an agent and its episodes into the local cache",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.CacheSync,
			},
			{
				Name:  "list",
				Usage: "List cached episodes without network access",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.CacheList,
			},
		},
	}
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/podbridge/podbridge/internal/formatter"
	"github.com/podbridge/podbridge/internal/models"
	"github.com/podbridge/podbridge/internal/shared"
	"github.com/podbridge/podbridge/internal/tasks"
	"github.com/urfave/cli/v3"
)

// EpisodesList lists an agent's published episodes.
func (r *Runner) EpisodesList(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if id == "" {
		return fmt.Errorf("%w: agent ID is required", shared.ErrMissingArgument)
	}

	r.logger.Infof("listing episodes for agent %v", id)

	episodes, err := r.api.ListEpisodes(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		return r.writeJSON(episodes, pretty)
	}

	r.writePlain("Found %d episodes:\n\n", len(episodes))
	for i, e := range episodes {
		r.writePlain("%d. %s\n", i+1, e.Title)
		r.writePlain("   Video: %s\n", e.YouTubeVideoID)
		if e.DurationSeconds > 0 {
			r.writePlain("   Duration: %s\n", shared.FormatDuration(e.DurationSeconds))
		}
		r.writePlain("   Status: %s\n", shared.PublishedString(e.IsPublished))
		r.writePlain("\n")
	}

	return nil
}

// EpisodesCount prints how many episodes an agent has.
func (r *Runner) EpisodesCount(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: agent ID is required", shared.ErrMissingArgument)
	}

	episodes, err := r.api.ListEpisodes(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return r.writePlain("%d\n", len(episodes))
}

// EpisodesExport writes an agent's episode listing to disk in the
// requested format.
func (r *Runner) EpisodesExport(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	format := cmd.String("format")
	output := cmd.String("output")

	if id == "" {
		return fmt.Errorf("%w: agent ID is required", shared.ErrMissingArgument)
	}

	agent, err := r.api.GetAgent(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	episodes, err := r.api.ListEpisodes(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	export := &models.EpisodeExport{Agent: *agent, Episodes: episodes}

	r.logger.Infof("exporting %v episodes as %v", len(episodes), format)

	switch format {
	case "csv":
		result, err := formatter.WriteCSVExport(export, output)
		if err != nil {
			return fmt.Errorf("failed to write CSV export: %w", err)
		}
		r.writePlain("✓ Episodes exported to %s\n", result.EpisodesFile)
		r.writePlain("✓ Metadata exported to %s\n", result.MetadataFile)

	case "markdown", "md":
		if output == "" {
			output = agent.ID
		}
		result, err := formatter.WriteMarkdownExport(export, output, agent.PodcastArtworkURL)
		if err != nil {
			return fmt.Errorf("failed to write Markdown export: %w", err)
		}
		r.writePlain("✓ Episodes exported to %s\n", result.Directory)
		if result.CoverImage != "" {
			r.writePlain("✓ Cover image saved to %s\n", result.CoverImage)
		}

	case "text", "txt":
		path, err := formatter.WriteTextExport(export, output)
		if err != nil {
			return fmt.Errorf("failed to write text export: %w", err)
		}
		r.writePlain("✓ Episodes exported to %s\n", path)

	case "json":
		data, err := formatter.ExportToJSON(export)
		if err != nil {
			return fmt.Errorf("failed to marshal export: %w", err)
		}
		if output == "" {
			r.output.Write(data)
			r.output.Write([]byte("\n"))
			return nil
		}
		if err := os.WriteFile(output, data, 0644); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
		r.writePlain("✓ Episodes exported to %s\n", output)

	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}

	return nil
}

// EpisodesExportAll exports every agent's episode listing concurrently.
func (r *Runner) EpisodesExportAll(ctx context.Context, cmd *cli.Command) error {
	agents, err := r.api.ListAgents(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if len(agents) == 0 {
		return r.writePlain("No agents to export.\n")
	}

	ids := make([]string, len(agents))
	for i, a := range agents {
		ids[i] = a.ID
	}

	engine := tasks.NewExportEngine(r.api)

	prog := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range prog {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := engine.BulkExport(ctx, prog, ids, tasks.BulkExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
	})
	close(prog)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n✓ Exported %d of %d agents to %s\n",
		result.SuccessfulExports, result.TotalAgents, result.OutputDirectory)
	if result.FailedExports > 0 {
		r.writePlain("✗ %d exports failed (see %s)\n", result.FailedExports, result.ManifestPath)
	}

	return nil
}

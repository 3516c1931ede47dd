// submodule cmd contains command definitions
package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// agentsCommand handles agent management operations
func agentsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "agents",
		Aliases: []string{"agent"},
		Usage:   "Manage channel-to-podcast agents",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List all agents",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.AgentsList,
			},
			{
				Name:  "show",
				Usage: "Show one agent",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AgentsShow,
			},
			{
				Name:  "create",
				Usage: "Connect a new YouTube channel",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Agent name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "channel-url",
						Usage:    "YouTube channel URL",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "slug",
						Usage:    "RSS feed slug",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Podcast title (defaults to channel name)",
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Podcast description",
					},
					&cli.StringFlag{
						Name:  "author",
						Usage: "Podcast author",
					},
				},
				Action: r.AgentsCreate,
			},
			{
				Name:  "update",
				Usage: "Update agent podcast metadata",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "Agent name",
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Podcast title",
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Podcast description",
					},
					&cli.StringFlag{
						Name:  "author",
						Usage: "Podcast author",
					},
				},
				Action: r.AgentsUpdate,
			},
			{
				Name:  "delete",
				Usage: "Delete an agent and its episodes",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Skip confirmation",
					},
				},
				Action: r.AgentsDelete,
			},
			{
				Name:   "activate",
				Usage:  "Subscribe the agent's channel to push notifications",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.AgentsActivate,
			},
		},
	}
}

// episodesCommand handles episode listing and export
func episodesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "episodes",
		Aliases: []string{"ep"},
		Usage:   "List and export episodes",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List an agent's episodes",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.EpisodesList,
			},
			{
				Name:  "count",
				Usage: "Count an agent's episodes",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.EpisodesCount,
			},
			{
				Name:  "export",
				Usage: "Export episodes to CSV, Markdown, plain text or JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, markdown, text, json",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file or directory",
					},
				},
				Action: r.EpisodesExport,
			},
			{
				Name:  "export-all",
				Usage: "Export every agent's episodes concurrently",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, markdown, txt, json",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent export workers",
						Value: 5,
					},
				},
				Action: r.EpisodesExportAll,
			},
		},
	}
}

// mediaCommand handles podcast asset uploads
func mediaCommand(r *Runner) *cli.Command {
	assets := []string{"artwork", "intro", "outro"}

	upload := &cli.Command{
		Name:  "upload",
		Usage: "Upload a podcast asset (artwork, intro, outro)",
	}
	remove := &cli.Command{
		Name:  "remove",
		Usage: "Remove a podcast asset (artwork, intro, outro)",
	}

	for _, asset := range assets {
		asset := asset
		upload.Commands = append(upload.Commands, &cli.Command{
			Name:  asset,
			Usage: "Upload " + asset,
			Arguments: []cli.Argument{
				&cli.StringArg{Name: "id"},
				&cli.StringArg{Name: "file"},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return r.MediaUpload(ctx, cmd, asset)
			},
		})
		remove.Commands = append(remove.Commands, &cli.Command{
			Name:  asset,
			Usage: "Remove " + asset,
			Arguments: []cli.Argument{
				&cli.StringArg{Name: "id"},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return r.MediaRemove(ctx, cmd, asset)
			},
		})
	}

	return &cli.Command{
		Name:     "media",
		Usage:    "Manage podcast assets",
		Commands: []*cli.Command{upload, remove},
	}
}

// backfillCommand handles historical import operations
func backfillCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "backfill",
		Aliases: []string{"import"},
		Usage:   "Import a channel's existing videos",
		Commands: []*cli.Command{
			{
				Name:  "start",
				Usage: "Start a backfill import",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "since",
						Usage: "Only import videos published after this date (YYYY-MM-DD)",
					},
					&cli.BoolFlag{
						Name:  "watch",
						Usage: "Watch live progress after starting",
					},
				},
				Action: r.BackfillStart,
			},
			{
				Name:  "status",
				Usage: "Show a one-shot snapshot of a job",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "job"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.BackfillStatus,
			},
			{
				Name:  "cancel",
				Usage: "Cancel a running job",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "job"},
				},
				Action: r.BackfillCancel,
			},
			{
				Name:  "jobs",
				Usage: "List all jobs for an agent",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.BackfillJobs,
			},
			{
				Name:  "watch",
				Usage: "Stream live job progress to the terminal",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.BackfillWatch,
			},
		},
	}
}

// feedCommand prints the RSS feed URL and subscribe instructions
func feedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "feed",
		Usage: "Show the RSS feed for an agent",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Action: r.Feed,
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authenticate with the identity provider using OAuth2",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Check current authentication state",
				Action: r.AuthStatus,
			},
		},
	}
}

// setupCommand handles setup operations for database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for the interactive dashboard.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive import dashboard",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "since",
				Usage: "Published-after date for imports started from the dashboard",
			},
		},
		Action: r.TUI,
	}
}

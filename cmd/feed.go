package main

import (
	"context"
	"fmt"

	"github.com/podbridge/podbridge/internal/shared"
	"github.com/urfave/cli/v3"
)

// Feed prints the agent's public RSS feed URL with subscribe
// instructions for common podcast apps.
func (r *Runner) Feed(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: agent ID is required", shared.ErrMissingArgument)
	}

	feedURL, err := r.api.FeedURL(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.writePlainHeader("Podcast Feed")
	r.writePlain("\n%s\n\n", feedURL)
	r.writePlain("Subscribe in your podcast app:\n")
	r.writePlain("  Apple Podcasts: Library > ... > Follow a Show by URL\n")
	r.writePlain("  Pocket Casts:   Search bar > paste the URL\n")
	r.writePlain("  Overcast:       + > Add URL\n")

	return nil
}

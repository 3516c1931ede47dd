package main

import (
	"context"
	"fmt"

	"github.com/podbridge/podbridge/internal/models"
	"github.com/podbridge/podbridge/internal/shared"
	"github.com/urfave/cli/v3"
)

// AgentsList lists all agents for the account.
func (r *Runner) AgentsList(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	r.logger.Info("listing agents")

	agents, err := r.api.ListAgents(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		return r.writeJSON(agents, pretty)
	}

	r.writePlain("Found %d agents:\n\n", len(agents))
	for i, a := range agents {
		r.writePlain("%d. %s\n", i+1, a.Name)
		r.writePlain("   ID: %s\n", a.ID)
		r.writePlain("   Channel: %s\n", a.YouTubeChannelURL)
		if a.PodcastTitle != "" {
			r.writePlain("   Podcast: %s\n", a.PodcastTitle)
		}
		if a.WebSubStatus != "" {
			r.writePlain("   WebSub: %s\n", a.WebSubStatus)
		}
		r.writePlain("\n")
	}

	return nil
}

// AgentsShow displays a single agent.
func (r *Runner) AgentsShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: agent ID is required", shared.ErrMissingArgument)
	}

	agent, err := r.api.GetAgent(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(agent, true)
	}

	r.writePlainHeader(agent.Name)
	r.writePlain("ID: %s\n", agent.ID)
	r.writePlain("Channel: %s\n", agent.YouTubeChannelURL)
	if agent.PodcastTitle != "" {
		r.writePlain("Podcast: %s\n", agent.PodcastTitle)
	}
	if agent.PodcastAuthor != "" {
		r.writePlain("Author: %s\n", agent.PodcastAuthor)
	}
	if agent.PodcastDescription != "" {
		r.writePlain("Description: %s\n", agent.PodcastDescription)
	}
	if agent.WebSubStatus != "" {
		r.writePlain("WebSub: %s (expires %s)\n", agent.WebSubStatus, agent.WebSubExpiresAt)
	}
	r.writePlain("Created: %s\n", agent.CreatedAt)

	return nil
}

// AgentsCreate connects a new YouTube channel.
func (r *Runner) AgentsCreate(ctx context.Context, cmd *cli.Command) error {
	input := models.CreateAgentInput{
		Name:               cmd.String("name"),
		YouTubeChannelURL:  cmd.String("channel-url"),
		RSSSlug:            cmd.String("slug"),
		PodcastTitle:       cmd.String("title"),
		PodcastDescription: cmd.String("description"),
		PodcastAuthor:      cmd.String("author"),
	}

	r.logger.Infof("creating agent %v for %v", input.Name, input.YouTubeChannelURL)

	agent, err := r.api.CreateAgent(ctx, input)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.writePlain("✓ Agent created: %s\n", agent.Name)
	r.writePlain("  ID: %s\n", agent.ID)
	r.writePlain("  Channel: %s\n", agent.YouTubeChannelID)
	r.writePlainln("Run 'podbridge backfill start %s' to import existing videos.", agent.ID)

	return nil
}

// AgentsUpdate modifies agent podcast metadata. Only flags the user
// set are sent.
func (r *Runner) AgentsUpdate(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: agent ID is required", shared.ErrMissingArgument)
	}

	var input models.UpdateAgentInput
	changed := false

	for flag, field := range map[string]**string{
		"name":        &input.Name,
		"title":       &input.PodcastTitle,
		"description": &input.PodcastDescription,
		"author":      &input.PodcastAuthor,
	} {
		if cmd.IsSet(flag) {
			v := cmd.String(flag)
			*field = &v
			changed = true
		}
	}

	if !changed {
		return fmt.Errorf("%w: nothing to update", shared.ErrMissingArgument)
	}

	agent, err := r.api.UpdateAgent(ctx, id, input)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.writePlain("✓ Agent updated: %s\n", agent.Name)
	return nil
}

// AgentsDelete permanently removes an agent and all its episodes.
func (r *Runner) AgentsDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: agent ID is required", shared.ErrMissingArgument)
	}

	if !cmd.Bool("yes") {
		r.writePlain("This deletes the agent and all its episodes. Re-run with --yes to confirm.\n")
		return nil
	}

	if err := r.api.DeleteAgent(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.logger.Infof("agent deleted %v", id)
	r.writePlain("✓ Agent deleted\n")
	return nil
}

// AgentsActivate subscribes the agent's channel to WebSub push
// notifications so new uploads convert automatically.
func (r *Runner) AgentsActivate(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: agent ID is required", shared.ErrMissingArgument)
	}

	if err := r.api.ActivateAgent(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.writePlain("✓ Push notifications activated\n")
	r.writePlain("New uploads on the channel will be converted automatically.\n")
	return nil
}

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/podbridge/podbridge/internal/backfill"
	"github.com/podbridge/podbridge/internal/shared"
	"github.com/urfave/cli/v3"
)

// BackfillStart begins a historical import of the agent's videos.
func (r *Runner) BackfillStart(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	since := cmd.String("since")

	if id == "" {
		return fmt.Errorf("%w: agent ID is required", shared.ErrMissingArgument)
	}

	r.logger.Infof("starting backfill for agent %v since %v", id, since)

	accepted, err := r.api.StartImport(ctx, id, since)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.writePlain("✓ Import accepted\n")
	r.writePlain("  Job: %s\n", accepted.JobID)
	r.writePlain("  Status: %s\n", accepted.Status)

	if cmd.Bool("watch") {
		return r.watchAgent(ctx, id)
	}

	r.writePlain("Run 'podbridge backfill watch %s' to follow progress.\n", id)
	return nil
}

// BackfillStatus fetches a one-shot snapshot of a job.
func (r *Runner) BackfillStatus(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	jobID := cmd.StringArg("job")

	if id == "" || jobID == "" {
		return fmt.Errorf("%w: agent ID and job ID are required", shared.ErrMissingArgument)
	}

	job, err := r.api.ImportStatus(ctx, id, jobID)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(job, true)
	}

	r.writePlain("Job %s: %s\n", job.JobID, backfill.BadgeLabel(*job))
	r.writePlain("  Processed: %d/%d (%d%%)\n", job.ProcessedVideos, job.TotalVideos, backfill.Percent(*job))
	r.writePlain("  Queued: %d  Completed: %d  Failed: %d\n",
		len(job.QueuedVideos), len(job.CompletedVideos), len(job.FailedVideos))
	if job.Error != "" {
		r.writePlain("  Error: %s\n", job.Error)
	}

	return nil
}

// BackfillCancel cancels a running job.
func (r *Runner) BackfillCancel(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	jobID := cmd.StringArg("job")

	if id == "" || jobID == "" {
		return fmt.Errorf("%w: agent ID and job ID are required", shared.ErrMissingArgument)
	}

	if err := r.api.CancelImport(ctx, id, jobID); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.writePlain("✓ Cancellation requested for job %s\n", jobID)
	return nil
}

// BackfillJobs lists all jobs for an agent.
func (r *Runner) BackfillJobs(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: agent ID is required", shared.ErrMissingArgument)
	}

	jobs, err := r.api.ListImports(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(jobs, true)
	}

	r.writePlain("Found %d jobs:\n\n", len(jobs))
	for i, job := range jobs {
		r.writePlain("%d. %s  %s  %d/%d videos\n",
			i+1, job.JobID, backfill.BadgeLabel(job), job.ProcessedVideos, job.TotalVideos)
	}

	return nil
}

// BackfillWatch streams live job progress to the terminal until all
// jobs settle or the user interrupts.
func (r *Runner) BackfillWatch(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: agent ID is required", shared.ErrMissingArgument)
	}

	return r.watchAgent(ctx, id)
}

func (r *Runner) watchAgent(ctx context.Context, agentID string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	coord := r.newCoordinator(agentID)
	coord.Start(ctx)
	defer coord.Stop()

	r.writePlain("Watching imports for %s (ctrl+c to stop)...\n\n", agentID)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-coord.Updates():
		}

		snap := coord.Snapshot()
		r.renderSnapshot(snap)

		if len(snap.Views) > 0 && allSettled(snap.Views) {
			r.writePlain("\nAll imports settled.\n")
			return nil
		}
	}
}

func (r *Runner) renderSnapshot(snap backfill.Snapshot) {
	for _, view := range snap.Views {
		r.writePlain("%s  %s  %d%%  (%d remaining)\n",
			view.Job.JobID, view.Badge, view.Percent, view.Remaining)
		for _, row := range view.Rows {
			switch row.State {
			case backfill.RowActive:
				r.writePlain("  › %s  %d%% %s\n", row.Title, row.Progress, row.Status)
			case backfill.RowFailed:
				r.writePlain("  ✗ %s  %s\n", row.Title, row.Reason)
			}
		}
	}
}

func allSettled(views []backfill.JobView) bool {
	for _, view := range views {
		if view.Job.Active() {
			return false
		}
	}
	return true
}

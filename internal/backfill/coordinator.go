package backfill

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/podbridge/podbridge/internal/models"
	"github.com/podbridge/podbridge/internal/services"
	"github.com/podbridge/podbridge/internal/shared"
)

// episodeRefetchInterval caps how often a growing completed-video
// count may trigger an episode list refetch.
const episodeRefetchInterval = 2 * time.Second

// Snapshot is the read-only state handed to the UI layer: already
// reconciled, render-ready, with no transport detail leaking through.
type Snapshot struct {
	Views     []JobView
	Connected bool
	Episodes  []models.Episode
}

// Coordinator owns the live import state for one agent.
//
// It wires a JobStreamSync to a VideoProgressSync: every job change
// recomputes the active-video union and reconciles the per-video
// subscriptions against it. It also tracks per-job dismissal (manual
// only, in memory for the session) and refetches the episode list when
// a job's completed-video count grows. Refetches are throttled so a
// burst of frames costs at most one request per window; growth inside
// a closed window defers the request until the window reopens rather
// than dropping it.
type Coordinator struct {
	agentID string
	api     services.AgentAPI
	jobs    *JobStreamSync
	videos  *VideoProgressSync
	logger  *log.Logger
	refetch *rate.Limiter

	mu             sync.Mutex
	ctx            context.Context // set by Start, scopes opened streams
	dismissed      map[string]bool
	completedCount map[string]int
	episodes       []models.Episode
	refetchPending bool
	refetchTimer   *time.Timer

	updates chan struct{}
}

// NewCoordinator creates a coordinator for the given agent. The opener
// supplies push-channel connections; api serves the imperative actions
// and episode refetches.
func NewCoordinator(agentID string, api services.AgentAPI, opener StreamOpener, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}

	c := &Coordinator{
		agentID:        agentID,
		api:            api,
		logger:         logger.With("agent", agentID),
		refetch:        rate.NewLimiter(rate.Every(episodeRefetchInterval), 1),
		dismissed:      make(map[string]bool),
		completedCount: make(map[string]int),
		updates:        make(chan struct{}, 1),
	}
	c.jobs = NewJobStreamSync(agentID, opener, logger, c.handleJobChange)
	c.videos = NewVideoProgressSync(agentID, opener, logger, c.notify)
	return c
}

// Start opens the job stream. Per-video subscriptions follow from the
// jobs it delivers.
func (c *Coordinator) Start(ctx context.Context) {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()

	c.jobs.Connect(ctx)
}

// Stop tears down the job stream, every per-video subscription, and
// any deferred episode refetch. Job state and dismissals survive for a
// later Start. Safe to call repeatedly.
func (c *Coordinator) Stop() {
	c.jobs.Disconnect()
	c.videos.CloseAll()

	c.mu.Lock()
	if c.refetchTimer != nil {
		c.refetchTimer.Stop()
		c.refetchTimer = nil
		c.refetchPending = false
	}
	c.mu.Unlock()
}

// Updates returns a channel that receives a token after state changes.
// Signals coalesce; consumers should re-read Snapshot on each receive.
func (c *Coordinator) Updates() <-chan struct{} {
	return c.updates
}

// Snapshot projects the current state into a render-ready view.
func (c *Coordinator) Snapshot() Snapshot {
	jobs := c.jobs.Jobs()
	progress := c.videos.Progress()

	c.mu.Lock()
	dismissed := make(map[string]bool, len(c.dismissed))
	for id, v := range c.dismissed {
		dismissed[id] = v
	}
	episodes := append([]models.Episode(nil), c.episodes...)
	c.mu.Unlock()

	return Snapshot{
		Views:     Project(jobs, progress, dismissed),
		Connected: c.jobs.Connected(),
		Episodes:  episodes,
	}
}

// StartImport asks the backend to begin a backfill of videos published
// since the given date. The resulting job arrives via the job stream;
// the response only confirms acceptance.
func (c *Coordinator) StartImport(ctx context.Context, since string) (*models.ImportAccepted, error) {
	accepted, err := c.api.StartImport(ctx, c.agentID, since)
	if err != nil {
		return nil, err
	}

	c.logger.Info("import started", "job", accepted.JobID, "since", since)
	return accepted, nil
}

// CancelImport asks the backend to cancel a running job. The status
// change arrives via the job stream.
func (c *Coordinator) CancelImport(ctx context.Context, jobID string) error {
	if err := c.api.CancelImport(ctx, c.agentID, jobID); err != nil {
		return err
	}

	c.logger.Info("import cancelled", "job", jobID)
	return nil
}

// DismissJob hides a terminal job from the projected views for the
// rest of the session. Dismissal is sticky: re-delivery of the same
// job does not bring it back. Only terminal jobs can be dismissed.
func (c *Coordinator) DismissJob(jobID string) error {
	job, ok := c.jobs.Job(jobID)
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrJobNotFound, jobID)
	}
	if !job.Status.Terminal() {
		return fmt.Errorf("%w: job %s is still %s", shared.ErrInvalidInput, jobID, job.Status)
	}

	c.mu.Lock()
	c.dismissed[jobID] = true
	c.mu.Unlock()

	c.notify()
	return nil
}

// handleJobChange runs after every job map mutation: it reconciles the
// per-video subscriptions against the new active union and refetches
// episodes when completion progressed.
func (c *Coordinator) handleJobChange() {
	ids := c.jobs.ActiveVideoIDs()

	c.mu.Lock()
	ctx := c.ctx
	c.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	c.videos.Reconcile(ctx, ids)
	c.maybeRefetchEpisodes(ctx)
	c.notify()
}

// maybeRefetchEpisodes refetches the episode list when any job's
// completed-video count increased since the last check.
func (c *Coordinator) maybeRefetchEpisodes(ctx context.Context) {
	grown := false

	c.mu.Lock()
	for _, job := range c.jobs.Jobs() {
		count := len(job.CompletedVideos)
		if count > c.completedCount[job.JobID] {
			grown = true
		}
		c.completedCount[job.JobID] = count
	}
	c.mu.Unlock()

	if !grown {
		return
	}

	c.scheduleRefetch(ctx)
}

// scheduleRefetch fetches immediately when the limiter permits and
// otherwise arms one deferred fetch for the moment the window reopens.
// Growth observed while a deferral is armed folds into the pending
// fetch instead of queuing another.
func (c *Coordinator) scheduleRefetch(ctx context.Context) {
	c.mu.Lock()
	if c.refetchPending {
		c.mu.Unlock()
		return
	}

	delay := c.refetch.Reserve().Delay()
	if delay > 0 {
		c.refetchPending = true
		c.refetchTimer = time.AfterFunc(delay, func() {
			c.mu.Lock()
			c.refetchPending = false
			c.refetchTimer = nil
			c.mu.Unlock()

			c.refetchEpisodes(ctx)
		})
	}
	c.mu.Unlock()

	if delay == 0 {
		go c.refetchEpisodes(ctx)
	}
}

func (c *Coordinator) refetchEpisodes(ctx context.Context) {
	episodes, err := c.api.ListEpisodes(ctx, c.agentID)
	if err != nil {
		c.logger.Warn("episode refetch failed", "error", err)
		return
	}

	c.mu.Lock()
	c.episodes = episodes
	c.mu.Unlock()

	c.notify()
}

// notify coalesces a state-change signal onto the updates channel.
func (c *Coordinator) notify() {
	select {
	case c.updates <- struct{}{}:
	default:
	}
}

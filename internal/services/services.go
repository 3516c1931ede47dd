// package services defines interface AgentAPI for interacting with the podcast agent backend
package services

import (
	"context"

	"github.com/podbridge/podbridge/internal/models"
)

// AgentAPI defines the REST surface of the agent backend consumed by
// the CLI, TUI, and sync layers. Import jobs are started and cancelled
// here; their progress is only ever observed via the push streams.
type AgentAPI interface {
	// ListAgents retrieves all channel automations for the account.
	ListAgents(ctx context.Context) ([]models.Agent, error)

	// GetAgent retrieves a single agent by ID.
	GetAgent(ctx context.Context, id string) (*models.Agent, error)

	// CreateAgent connects a new YouTube channel.
	CreateAgent(ctx context.Context, input models.CreateAgentInput) (*models.Agent, error)

	// UpdateAgent modifies agent podcast metadata.
	UpdateAgent(ctx context.Context, id string, input models.UpdateAgentInput) (*models.Agent, error)

	// DeleteAgent permanently removes an agent and its episodes.
	DeleteAgent(ctx context.Context, id string) error

	// ActivateAgent subscribes the agent's channel to WebSub push notifications.
	ActivateAgent(ctx context.Context, id string) error

	// ListEpisodes retrieves the agent's published episodes.
	ListEpisodes(ctx context.Context, id string) ([]models.Episode, error)

	// FeedURL returns the public RSS feed URL for an agent.
	FeedURL(ctx context.Context, id string) (string, error)

	// DashboardStats returns account-wide aggregate counts.
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)

	// StartImport begins a historical backfill of videos published since the given date.
	StartImport(ctx context.Context, agentID, since string) (*models.ImportAccepted, error)

	// CancelImport cancels a running backfill job.
	CancelImport(ctx context.Context, agentID, jobID string) error

	// ImportStatus fetches a one-shot snapshot of a backfill job.
	ImportStatus(ctx context.Context, agentID, jobID string) (*models.Job, error)

	// ListImports fetches all backfill jobs for an agent.
	ListImports(ctx context.Context, agentID string) ([]models.Job, error)
}

// MediaAPI defines the asset upload surface of the backend.
type MediaAPI interface {
	// UploadArtwork uploads podcast cover art, returning the stored URL.
	UploadArtwork(ctx context.Context, agentID, filename string, data []byte) (string, error)

	// UploadIntro uploads intro audio prepended to every episode.
	UploadIntro(ctx context.Context, agentID, filename string, data []byte) (string, error)

	// UploadOutro uploads outro audio appended to every episode.
	UploadOutro(ctx context.Context, agentID, filename string, data []byte) (string, error)

	// DeleteArtwork removes the agent's cover art.
	DeleteArtwork(ctx context.Context, agentID string) error

	// DeleteIntro removes the agent's intro audio.
	DeleteIntro(ctx context.Context, agentID string) error

	// DeleteOutro removes the agent's outro audio.
	DeleteOutro(ctx context.Context, agentID string) error
}

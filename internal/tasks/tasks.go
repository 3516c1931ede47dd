// package tasks implements bulk export operations for podcast agents.
//
// The core abstraction is ExportEngine, which orchestrates concurrent
// episode exports across agents. Operations emit progress updates via
// channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"

	"github.com/podbridge/podbridge/internal/models"
	"github.com/podbridge/podbridge/internal/services"
)

// AgentExportJob is one unit of work for the export worker pool: an
// agent with its episode listing already fetched.
type AgentExportJob struct {
	AgentID string
	Export  *models.EpisodeExport
}

// AgentExportResult records the outcome of exporting one agent.
type AgentExportResult struct {
	AgentID   string   // Agent identifier
	AgentName string   // Agent display name
	Success   bool     // Whether the export completed
	Files     []string // Paths of files written
	Error     error    // Error if the export failed
}

// BulkExportResult contains all data from a multi-agent export run.
type BulkExportResult struct {
	TotalAgents       int                 // Agents requested
	SuccessfulExports int                 // Exports that completed
	FailedExports     int                 // Exports that failed
	Results           []AgentExportResult // Per-agent outcomes
	OutputDirectory   string              // Base directory written to
	ManifestPath      string              // Path of the manifest file
}

// ExportEngine orchestrates bulk episode exports against the backend.
type ExportEngine struct {
	api services.AgentAPI
}

// NewExportEngine creates an engine backed by the given API client.
func NewExportEngine(api services.AgentAPI) *ExportEngine {
	return &ExportEngine{api: api}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ExportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// fetchExport retrieves one agent and its episodes.
func (e *ExportEngine) fetchExport(ctx context.Context, agentID string) (*models.EpisodeExport, error) {
	agent, err := e.api.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}

	episodes, err := e.api.ListEpisodes(ctx, agentID)
	if err != nil {
		return nil, err
	}

	return &models.EpisodeExport{Agent: *agent, Episodes: episodes}, nil
}

package tasks

import (
	"fmt"

	"github.com/podbridge/podbridge/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchAgent Phase = iota
	ExportAgent
)

func (p Phase) String() string {
	switch p {
	case FetchAgent:
		return "fetch_agent"
	case ExportAgent:
		return "export_agent"
	default:
		return ""
	}
}

func fetchAgentUpdate(step, total int, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchAgent,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching agent %s...", step, total, id),
	}
}

func fetchedAgentUpdate(step, total int, agent *models.Agent, episodes int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchAgent,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Found %s (%d episodes)", step, total, agent.Name, episodes),
		Data:    agent,
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportAgent,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportAgent,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}

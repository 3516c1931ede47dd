// Package tasks orchestrates multi-agent export operations with real-time progress reporting.
//
// # Core Operations
//
// [ExportEngine.BulkExport] exports every requested agent's episode
// listing to disk:
//   - Fetches each agent and its episodes from the backend (rate limited)
//   - Writes per-agent files via internal/formatter (csv, markdown, txt, json)
//   - Generates a manifest file summarizing the run
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Implementation
//
// [ExportEngine] depends on [services.AgentAPI] for fetches and uses a
// bounded worker pool so large accounts export concurrently without
// hammering the backend.
package tasks

// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for monitoring channel imports:
//  1. [AgentListView] : Browse and select configured agents
//  2. [EpisodeListView] : Preview the agent's published episodes
//  3. [ConfirmView] : Confirm starting a backfill import
//  4. [DashboardView] : Monitor live per-job and per-video progress
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through the [backfill.Coordinator] updates channel, re-projected into a fresh [backfill.Snapshot] on each signal.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, s, c, d, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui

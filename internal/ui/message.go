package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/podbridge/podbridge/internal/backfill"
	"github.com/podbridge/podbridge/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgAgentsFetched MsgKind = iota
	MsgEpisodesFetched
	MsgImportStarted
	MsgSnapshot
	MsgActionFailed
)

// agentsFetchedMsg is the constructor for [MsgAgentsFetched]
func agentsFetchedMsg(agents []models.Agent, err error) Msg {
	return Msg{
		kind: MsgAgentsFetched,
		data: struct {
			agents []models.Agent
			err    error
		}{agents, err},
	}
}

// episodesFetchedMsg is the constructor for [MsgEpisodesFetched]
func episodesFetchedMsg(episodes []models.Episode, err error) Msg {
	return Msg{
		kind: MsgEpisodesFetched,
		data: struct {
			episodes []models.Episode
			err      error
		}{episodes, err},
	}
}

// importStartedMsg is the constructor for [MsgImportStarted]
func importStartedMsg(accepted *models.ImportAccepted, err error) Msg {
	return Msg{
		kind: MsgImportStarted,
		data: struct {
			accepted *models.ImportAccepted
			err      error
		}{accepted, err},
	}
}

// snapshotMsg is the constructor for [MsgSnapshot]
func snapshotMsg(snap backfill.Snapshot) Msg {
	return Msg{kind: MsgSnapshot, data: snap}
}

// actionFailedMsg is the constructor for [MsgActionFailed]
func actionFailedMsg(err error) Msg {
	return Msg{kind: MsgActionFailed, data: err}
}

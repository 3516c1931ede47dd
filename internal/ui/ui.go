package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/podbridge/podbridge/internal/backfill"
	"github.com/podbridge/podbridge/internal/models"
	"github.com/podbridge/podbridge/internal/services"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	AgentListView ViewState = iota
	EpisodeListView
	ConfirmView
	DashboardView
)

// Model represents the TUI application state.
type Model struct {
	ctx         context.Context
	api         services.AgentAPI
	opener      backfill.StreamOpener
	logger      *log.Logger
	since       string
	view        ViewState
	width       int
	height      int
	agentList   list.Model
	agents      []models.Agent
	episodeList list.Model
	selected    *models.Agent
	coord       *backfill.Coordinator
	snap        backfill.Snapshot
	jobCursor   int
	status      string
	err         error
	help        help.Model
	keys        keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
// since is the published-after date passed to started imports; empty
// means the backend default.
func NewModel(ctx context.Context, api services.AgentAPI, opener backfill.StreamOpener, logger *log.Logger, since string) *Model {
	return &Model{
		ctx:    ctx,
		api:    api,
		opener: opener,
		logger: logger,
		since:  since,
		view:   AgentListView,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init initializes the TUI by fetching the agent list.
func (m *Model) Init() tea.Cmd {
	return m.fetchAgents()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.agentList.Width() == 0 {
			m.agentList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.episodeList.Width() == 0 {
			m.episodeList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case AgentListView:
			return m.handleAgentListKeys(msg)
		case EpisodeListView:
			return m.handleEpisodeListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case DashboardView:
			return m.handleDashboardKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgAgentsFetched:
		data := msg.data.(struct {
			agents []models.Agent
			err    error
		})
		if data.err != nil {
			m.err = data.err
			return m, tea.Quit
		}
		m.agents = data.agents
		items := make([]list.Item, len(data.agents))
		for i, a := range data.agents {
			items[i] = agentItem{agent: a}
		}
		m.agentList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.agentList.Title = "Agents"
		m.agentList.SetSize(m.width-4, m.height-8)
		return m, nil

	case MsgEpisodesFetched:
		data := msg.data.(struct {
			episodes []models.Episode
			err      error
		})
		if data.err != nil {
			m.err = data.err
			m.view = AgentListView
			return m, nil
		}
		items := make([]list.Item, len(data.episodes))
		for i, e := range data.episodes {
			items[i] = episodeItem{episode: e}
		}
		m.episodeList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.episodeList.Title = fmt.Sprintf("Episodes for '%s'", m.selected.Name)
		m.episodeList.SetSize(m.width-4, m.height-8)
		m.view = EpisodeListView
		return m, nil

	case MsgImportStarted:
		data := msg.data.(struct {
			accepted *models.ImportAccepted
			err      error
		})
		if data.err != nil {
			m.status = fmt.Sprintf("import failed to start: %v", data.err)
			return m, nil
		}
		m.status = fmt.Sprintf("import %s accepted", data.accepted.JobID)
		return m, nil

	case MsgSnapshot:
		m.snap = msg.data.(backfill.Snapshot)
		if m.jobCursor >= len(m.snap.Views) {
			m.jobCursor = 0
		}
		return m, m.waitForUpdate()

	case MsgActionFailed:
		m.status = fmt.Sprintf("%v", msg.data.(error))
		return m, nil
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case AgentListView:
		return m.renderAgentList()
	case EpisodeListView:
		return m.renderEpisodeList()
	case ConfirmView:
		return m.renderConfirm()
	case DashboardView:
		return m.renderDashboard()
	default:
		return ""
	}
}

// Close tears down the live streams. Call after the program exits.
func (m *Model) Close() {
	if m.coord != nil {
		m.coord.Stop()
	}
}

func (m *Model) handleAgentListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.agentList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(agentItem); ok {
				return m, m.selectAgent(item.agent)
			}
		}
	}

	var cmd tea.Cmd
	m.agentList, cmd = m.agentList.Update(msg)
	return m, cmd
}

func (m *Model) handleEpisodeListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.Close()
		return m, tea.Quit
	case "esc":
		m.view = AgentListView
		return m, nil
	case "s":
		m.view = ConfirmView
		return m, nil
	case "enter":
		m.view = DashboardView
		return m, nil
	}

	var cmd tea.Cmd
	m.episodeList, cmd = m.episodeList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = EpisodeListView
		return m, nil
	case "y":
		m.view = DashboardView
		return m, m.startImport()
	}
	return m, nil
}

func (m *Model) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.Close()
		return m, tea.Quit
	case "esc":
		m.view = EpisodeListView
		return m, nil
	case "up", "k":
		if m.jobCursor > 0 {
			m.jobCursor--
		}
		return m, nil
	case "down", "j":
		if m.jobCursor < len(m.snap.Views)-1 {
			m.jobCursor++
		}
		return m, nil
	case "s":
		m.view = ConfirmView
		return m, nil
	case "c":
		if view, ok := m.selectedView(); ok {
			return m, m.cancelImport(view.Job.JobID)
		}
		return m, nil
	case "d":
		if view, ok := m.selectedView(); ok {
			if err := m.coord.DismissJob(view.Job.JobID); err != nil {
				m.status = fmt.Sprintf("%v", err)
			} else {
				m.snap = m.coord.Snapshot()
				if m.jobCursor >= len(m.snap.Views) {
					m.jobCursor = 0
				}
			}
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) selectedView() (backfill.JobView, bool) {
	if m.jobCursor < 0 || m.jobCursor >= len(m.snap.Views) {
		return backfill.JobView{}, false
	}
	return m.snap.Views[m.jobCursor], true
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case AgentListView:
		m.agentList, cmd = m.agentList.Update(msg)
	case EpisodeListView:
		m.episodeList, cmd = m.episodeList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchAgents() tea.Cmd {
	return func() tea.Msg {
		agents, err := m.api.ListAgents(m.ctx)
		return agentsFetchedMsg(agents, err)
	}
}

// selectAgent swaps the live coordinator over to the chosen agent and
// loads its episode list.
func (m *Model) selectAgent(agent models.Agent) tea.Cmd {
	m.selected = &agent
	m.status = ""
	m.jobCursor = 0

	if m.coord != nil {
		m.coord.Stop()
	}
	m.coord = backfill.NewCoordinator(agent.ID, m.api, m.opener, m.logger)
	m.coord.Start(m.ctx)
	m.snap = m.coord.Snapshot()

	return tea.Batch(m.fetchEpisodes(agent.ID), m.waitForUpdate())
}

func (m *Model) fetchEpisodes(agentID string) tea.Cmd {
	return func() tea.Msg {
		episodes, err := m.api.ListEpisodes(m.ctx, agentID)
		return episodesFetchedMsg(episodes, err)
	}
}

func (m *Model) startImport() tea.Cmd {
	return func() tea.Msg {
		accepted, err := m.coord.StartImport(m.ctx, m.since)
		return importStartedMsg(accepted, err)
	}
}

func (m *Model) cancelImport(jobID string) tea.Cmd {
	return func() tea.Msg {
		if err := m.coord.CancelImport(m.ctx, jobID); err != nil {
			return actionFailedMsg(err)
		}
		return nil
	}
}

// waitForUpdate blocks on the coordinator's updates channel and hands
// back a fresh snapshot. Re-issued after every snapshot message.
func (m *Model) waitForUpdate() tea.Cmd {
	coord := m.coord
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return nil
		case <-coord.Updates():
			return snapshotMsg(coord.Snapshot())
		}
	}
}

func (m *Model) renderAgentList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.agentList.View(), helpView)
}

func (m *Model) renderEpisodeList() string {
	dashKey := key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "dashboard"),
	)
	helpKeys := []key.Binding{dashKey, m.keys.start, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.episodeList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Start import for '%s'?", m.selected.Name))
	since := m.since
	if since == "" {
		since = "beginning of channel"
	}
	info := fmt.Sprintf("\nChannel: %s\nVideos since: %s\n", m.selected.YouTubeChannelURL, since)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(styles.title.Render(fmt.Sprintf("Imports for '%s'", m.selected.Name)))
	b.WriteString("\n")

	if m.snap.Connected {
		b.WriteString(styles.ok.Render("● connected"))
	} else {
		b.WriteString(styles.warn.Render("○ reconnecting..."))
	}
	b.WriteString("\n\n")

	if len(m.snap.Views) == 0 {
		b.WriteString(styles.help.Render("No imports yet. Press s to start one."))
		b.WriteString("\n")
	}

	for i, view := range m.snap.Views {
		cursor := "  "
		if i == m.jobCursor {
			cursor = "▸ "
		}
		b.WriteString(fmt.Sprintf("%s%s  %s %d%%  (%d remaining)\n",
			cursor, m.renderBadge(view), renderBar(view.Percent), view.Percent, view.Remaining))

		for _, row := range view.Rows {
			b.WriteString("    " + renderRow(row) + "\n")
		}
		b.WriteString("\n")
	}

	if len(m.snap.Episodes) > 0 {
		b.WriteString(fmt.Sprintf("Episodes: %d\n", len(m.snap.Episodes)))
	}

	if m.status != "" {
		b.WriteString(styles.warn.Render(m.status))
		b.WriteString("\n")
	}

	helpKeys := []key.Binding{m.keys.start, m.keys.cancel, m.keys.dismiss, m.keys.back, m.keys.quit}
	b.WriteString("\n" + m.help.ShortHelpView(helpKeys))

	return b.String()
}

func (m *Model) renderBadge(view backfill.JobView) string {
	switch view.Badge {
	case backfill.BadgeFailed, backfill.BadgeCompletedErrors:
		return styles.err.Render(view.Badge)
	case backfill.BadgeCompletedClean:
		return styles.ok.Render(view.Badge)
	case backfill.BadgeProcessing:
		return styles.warn.Render(view.Badge)
	default:
		return view.Badge
	}
}

const barWidth = 24

// renderBar draws a fixed-width percent bar.
func renderBar(percent int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * barWidth / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

// renderRow formats one video row with a state glyph.
func renderRow(row backfill.UnifiedVideoRow) string {
	switch row.State {
	case backfill.RowActive:
		status := row.Status
		if !row.Connected {
			status = "waiting for stream"
		}
		return fmt.Sprintf("› %s  %d%% %s", row.Title, row.Progress, status)
	case backfill.RowQueued:
		return fmt.Sprintf("· %s  queued", row.Title)
	case backfill.RowCompleted:
		return styles.ok.Render("✓ ") + row.Title
	case backfill.RowFailed:
		return styles.err.Render("✗ ") + fmt.Sprintf("%s  %s", row.Title, row.Reason)
	default:
		return row.Title
	}
}

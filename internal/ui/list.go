package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/podbridge/podbridge/internal/models"
	"github.com/podbridge/podbridge/internal/shared"
)

var (
	_ list.Item = agentItem{}
	_ list.Item = episodeItem{}
)

// agentItem wraps [models.Agent] to implement [list.Item].
type agentItem struct {
	agent models.Agent
}

func (i agentItem) FilterValue() string { return i.agent.Name }
func (i agentItem) Title() string       { return i.agent.Name }
func (i agentItem) Description() string {
	desc := i.agent.YouTubeChannelURL
	if i.agent.PodcastTitle != "" {
		desc = fmt.Sprintf("%s • %s", i.agent.PodcastTitle, desc)
	}
	return desc
}

// episodeItem wraps [models.Episode] to implement [list.Item].
type episodeItem struct {
	episode models.Episode
}

func (i episodeItem) FilterValue() string { return i.episode.Title }
func (i episodeItem) Title() string       { return i.episode.Title }
func (i episodeItem) Description() string {
	desc := shared.PublishedString(i.episode.IsPublished)
	if i.episode.DurationSeconds > 0 {
		desc = fmt.Sprintf("%s • %s", desc, shared.FormatDuration(i.episode.DurationSeconds))
	}
	return desc
}

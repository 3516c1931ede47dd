// package models defines the data model for the podcast agent client
package models

import (
	"time"
)

// Model defines the base interface for all locally persisted models.
// Implementations include PersistedAgent and PersistedEpisode.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Agent represents one YouTube-channel-to-podcast automation as reported by the backend.
type Agent struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	YouTubeChannelID   string `json:"youtube_channel_id"`
	YouTubeChannelURL  string `json:"youtube_channel_url"`
	PodcastTitle       string `json:"podcast_title,omitempty"`
	PodcastDescription string `json:"podcast_description,omitempty"`
	PodcastAuthor      string `json:"podcast_author,omitempty"`
	PodcastArtworkURL  string `json:"podcast_artwork_url,omitempty"`
	IntroAudioURL      string `json:"intro_audio_url,omitempty"`
	OutroAudioURL      string `json:"outro_audio_url,omitempty"`
	WebSubStatus       string `json:"websub_status,omitempty"`
	WebSubExpiresAt    string `json:"websub_expires_at,omitempty"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}

// Episode represents one published podcast episode derived from a processed video.
type Episode struct {
	ID              string `json:"id"`
	AgentID         string `json:"agent_id"`
	YouTubeVideoID  string `json:"youtube_video_id"`
	YouTubeURL      string `json:"youtube_url"`
	GUID            string `json:"guid"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	AudioURL        string `json:"audio_url"`
	AudioSizeBytes  int64  `json:"audio_size_bytes"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
	PublishedAt     string `json:"published_at"`
	IsPublished     bool   `json:"is_published"`
	CreatedAt       string `json:"created_at"`
}

// CreateAgentInput contains the fields required to connect a new channel.
type CreateAgentInput struct {
	Name               string `json:"name"`
	YouTubeChannelURL  string `json:"youtube_channel_url"`
	RSSSlug            string `json:"rss_slug"`
	PodcastTitle       string `json:"podcast_title,omitempty"`
	PodcastDescription string `json:"podcast_description,omitempty"`
	PodcastAuthor      string `json:"podcast_author,omitempty"`
}

// UpdateAgentInput contains the mutable agent fields. Nil fields are left unchanged.
type UpdateAgentInput struct {
	Name               *string `json:"name,omitempty"`
	PodcastTitle       *string `json:"podcast_title,omitempty"`
	PodcastDescription *string `json:"podcast_description,omitempty"`
	PodcastAuthor      *string `json:"podcast_author,omitempty"`
}

// DashboardStats contains aggregate counts reported by the backend.
type DashboardStats struct {
	TotalAgents   int `json:"totalAgents"`
	TotalEpisodes int `json:"totalEpisodes"`
}

// EpisodeExport bundles an agent with its episode listing for file exports.
type EpisodeExport struct {
	Agent    Agent     `json:"agent"`
	Episodes []Episode `json:"episodes"`
}

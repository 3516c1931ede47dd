package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/podbridge/podbridge/internal/models"
	"github.com/podbridge/podbridge/internal/shared"
)

// AgentRepository implements models.Repository[*models.PersistedAgent] for the local agent cache.
//
// The backend's agent ID is the primary key, so cached rows line up
// with API responses. Soft deletes keep removed agents out of listings
// without losing their episode history.
type AgentRepository struct {
	db *sql.DB
}

// NewAgentRepository creates a new AgentRepository with the given database connection
func NewAgentRepository(db *sql.DB) *AgentRepository {
	return &AgentRepository{db: db}
}

// Create inserts a new agent into the cache with a generated sequence
func (r *AgentRepository) Create(agent *models.PersistedAgent) error {
	sequence, err := NextSequence(r.db, "agents")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	agent.SetSequence(sequence)

	if err := agent.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	dto := agent.Agent()
	query := `
		INSERT INTO agents (id, sequence, name, youtube_channel_id, youtube_channel_url, podcast_title, podcast_description, podcast_author, podcast_artwork_url, intro_audio_url, outro_audio_url, websub_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		agent.ID(),
		sequence,
		dto.Name,
		dto.YouTubeChannelID,
		dto.YouTubeChannelURL,
		dto.PodcastTitle,
		dto.PodcastDescription,
		dto.PodcastAuthor,
		dto.PodcastArtworkURL,
		dto.IntroAudioURL,
		dto.OutroAudioURL,
		dto.WebSubStatus,
		agent.CreatedAt(),
		agent.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert agent: %w", err)
	}

	return nil
}

// Get retrieves an agent by ID, excluding soft-deleted agents
func (r *AgentRepository) Get(id string) (*models.PersistedAgent, error) {
	query := agentSelect + ` WHERE id = ? AND deleted_at IS NULL`
	return scanAgent(r.db.QueryRow(query, id))
}

// Update modifies an existing cached agent
func (r *AgentRepository) Update(agent *models.PersistedAgent) error {
	if err := agent.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	agent.Touch()
	dto := agent.Agent()

	query := `
		UPDATE agents
		SET name = ?, youtube_channel_id = ?, youtube_channel_url = ?, podcast_title = ?, podcast_description = ?, podcast_author = ?, podcast_artwork_url = ?, intro_audio_url = ?, outro_audio_url = ?, websub_status = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		dto.Name,
		dto.YouTubeChannelID,
		dto.YouTubeChannelURL,
		dto.PodcastTitle,
		dto.PodcastDescription,
		dto.PodcastAuthor,
		dto.PodcastArtworkURL,
		dto.IntroAudioURL,
		dto.OutroAudioURL,
		dto.WebSubStatus,
		agent.UpdatedAt(),
		agent.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update agent: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrAgentNotFound, agent.ID())
	}

	return nil
}

// Delete soft-deletes an agent by ID
func (r *AgentRepository) Delete(id string) error {
	query := `
		UPDATE agents
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete agent: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrAgentNotFound, id)
	}

	return nil
}

// List retrieves cached agents matching the given criteria, excluding soft-deleted agents
func (r *AgentRepository) List(criteria map[string]any) ([]*models.PersistedAgent, error) {
	query := agentSelect + ` WHERE deleted_at IS NULL`
	args := []any{}

	if name, ok := criteria["name"].(string); ok && name != "" {
		query += " AND name = ?"
		args = append(args, name)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query agents: %w", err)
	}
	defer rows.Close()

	var agents []*models.PersistedAgent
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, agent)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return agents, nil
}

const agentSelect = `
	SELECT id, sequence, name, youtube_channel_id, youtube_channel_url, podcast_title, podcast_description, podcast_author, podcast_artwork_url, intro_audio_url, outro_audio_url, websub_status, created_at, updated_at
	FROM agents`

// rowScanner covers both sql.Row and sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanAgent restores one cached agent row.
func scanAgent(row rowScanner) (*models.PersistedAgent, error) {
	var (
		id          string
		sequence    int
		dto         models.Agent
		description sql.NullString
		author      sql.NullString
		title       sql.NullString
		artwork     sql.NullString
		intro       sql.NullString
		outro       sql.NullString
		websub      sql.NullString
		createdAt   time.Time
		updatedAt   time.Time
	)

	err := row.Scan(&id, &sequence, &dto.Name, &dto.YouTubeChannelID, &dto.YouTubeChannelURL, &title, &description, &author, &artwork, &intro, &outro, &websub, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, shared.ErrAgentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan agent: %w", err)
	}

	dto.ID = id
	dto.PodcastTitle = title.String
	dto.PodcastDescription = description.String
	dto.PodcastAuthor = author.String
	dto.PodcastArtworkURL = artwork.String
	dto.IntroAudioURL = intro.String
	dto.OutroAudioURL = outro.String
	dto.WebSubStatus = websub.String

	agent := models.NewPersistedAgent(sequence, dto)
	agent.SetTimestamps(createdAt, updatedAt)
	return agent, nil
}

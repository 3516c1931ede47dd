package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/podbridge/podbridge/internal/models"
	"github.com/podbridge/podbridge/internal/shared"
)

// EpisodeRepository implements models.Repository[*models.PersistedEpisode] for the local episode cache.
//
// Episodes are unique per (agent_id, youtube_video_id) so re-syncing a
// backend listing never duplicates rows.
type EpisodeRepository struct {
	db *sql.DB
}

// NewEpisodeRepository creates a new EpisodeRepository with the given database connection
func NewEpisodeRepository(db *sql.DB) *EpisodeRepository {
	return &EpisodeRepository{db: db}
}

// Create inserts a new episode into the cache with a generated sequence
func (r *EpisodeRepository) Create(episode *models.PersistedEpisode) error {
	sequence, err := NextSequence(r.db, "episodes")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	episode.SetSequence(sequence)

	if err := episode.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	dto := episode.Episode()
	query := `
		INSERT INTO episodes (id, sequence, agent_id, youtube_video_id, youtube_url, guid, title, description, audio_url, audio_size_bytes, duration_seconds, published_at, is_published, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		episode.ID(),
		sequence,
		dto.AgentID,
		dto.YouTubeVideoID,
		dto.YouTubeURL,
		dto.GUID,
		dto.Title,
		dto.Description,
		dto.AudioURL,
		dto.AudioSizeBytes,
		dto.DurationSeconds,
		dto.PublishedAt,
		dto.IsPublished,
		episode.CreatedAt(),
		episode.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert episode: %w", err)
	}

	return nil
}

// Get retrieves an episode by ID, excluding soft-deleted episodes
func (r *EpisodeRepository) Get(id string) (*models.PersistedEpisode, error) {
	query := episodeSelect + ` WHERE id = ? AND deleted_at IS NULL`
	return scanEpisode(r.db.QueryRow(query, id))
}

// GetByVideoID retrieves an episode by its agent and source video
func (r *EpisodeRepository) GetByVideoID(agentID, videoID string) (*models.PersistedEpisode, error) {
	query := episodeSelect + ` WHERE agent_id = ? AND youtube_video_id = ? AND deleted_at IS NULL`
	return scanEpisode(r.db.QueryRow(query, agentID, videoID))
}

// Update modifies an existing cached episode
func (r *EpisodeRepository) Update(episode *models.PersistedEpisode) error {
	if err := episode.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	episode.Touch()
	dto := episode.Episode()

	query := `
		UPDATE episodes
		SET title = ?, description = ?, audio_url = ?, audio_size_bytes = ?, duration_seconds = ?, published_at = ?, is_published = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		dto.Title,
		dto.Description,
		dto.AudioURL,
		dto.AudioSizeBytes,
		dto.DurationSeconds,
		dto.PublishedAt,
		dto.IsPublished,
		episode.UpdatedAt(),
		episode.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update episode: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrEpisodeNotFound, episode.ID())
	}

	return nil
}

// Delete soft-deletes an episode by ID
func (r *EpisodeRepository) Delete(id string) error {
	query := `
		UPDATE episodes
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete episode: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrEpisodeNotFound, id)
	}

	return nil
}

// List retrieves cached episodes matching the given criteria, excluding soft-deleted episodes
func (r *EpisodeRepository) List(criteria map[string]any) ([]*models.PersistedEpisode, error) {
	query := episodeSelect + ` WHERE deleted_at IS NULL`
	args := []any{}

	if agentID, ok := criteria["agent_id"].(string); ok && agentID != "" {
		query += " AND agent_id = ?"
		args = append(args, agentID)
	}

	if published, ok := criteria["is_published"].(bool); ok {
		query += " AND is_published = ?"
		args = append(args, published)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query episodes: %w", err)
	}
	defer rows.Close()

	var episodes []*models.PersistedEpisode
	for rows.Next() {
		episode, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, episode)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return episodes, nil
}

// CountByAgent returns the number of cached episodes for one agent.
func (r *EpisodeRepository) CountByAgent(agentID string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM episodes WHERE agent_id = ? AND deleted_at IS NULL`, agentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count episodes: %w", err)
	}
	return count, nil
}

const episodeSelect = `
	SELECT id, sequence, agent_id, youtube_video_id, youtube_url, guid, title, description, audio_url, audio_size_bytes, duration_seconds, published_at, is_published, created_at, updated_at
	FROM episodes`

// scanEpisode restores one cached episode row.
func scanEpisode(row rowScanner) (*models.PersistedEpisode, error) {
	var (
		id          string
		sequence    int
		dto         models.Episode
		description sql.NullString
		duration    sql.NullInt64
		publishedAt sql.NullString
		createdAt   time.Time
		updatedAt   time.Time
	)

	err := row.Scan(&id, &sequence, &dto.AgentID, &dto.YouTubeVideoID, &dto.YouTubeURL, &dto.GUID, &dto.Title, &description, &dto.AudioURL, &dto.AudioSizeBytes, &duration, &publishedAt, &dto.IsPublished, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, shared.ErrEpisodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan episode: %w", err)
	}

	dto.ID = id
	dto.Description = description.String
	dto.DurationSeconds = int(duration.Int64)
	dto.PublishedAt = publishedAt.String

	episode := models.NewPersistedEpisode(sequence, dto)
	episode.SetTimestamps(createdAt, updatedAt)
	return episode, nil
}

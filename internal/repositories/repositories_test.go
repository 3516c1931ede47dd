package repositories

import (
	"errors"
	"testing"

	"github.com/podbridge/podbridge/internal/models"
	"github.com/podbridge/podbridge/internal/shared"
)

func setupTestDB(t *testing.T) *AgentRepository {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return NewAgentRepository(db)
}

func testAgent(id, name string) models.Agent {
	return models.Agent{
		ID:                id,
		Name:              name,
		YouTubeChannelID:  "UC123",
		YouTubeChannelURL: "https://www.youtube.com/@" + name,
		PodcastTitle:      name + " Podcast",
	}
}

func testEpisode(agentID, videoID, title string) models.Episode {
	return models.Episode{
		ID:             "ep-" + videoID,
		AgentID:        agentID,
		YouTubeVideoID: videoID,
		YouTubeURL:     "https://youtu.be/" + videoID,
		GUID:           "guid-" + videoID,
		Title:          title,
		AudioURL:       "https://cdn.example.com/" + videoID + ".mp3",
		IsPublished:    true,
	}
}

func TestAgentRepository(t *testing.T) {
	repo := setupTestDB(t)

	t.Run("Create and Get", func(t *testing.T) {
		agent := models.NewPersistedAgent(0, testAgent("a1", "channel-one"))
		if err := repo.Create(agent); err != nil {
			t.Fatalf("failed to create agent: %v", err)
		}

		got, err := repo.Get("a1")
		if err != nil {
			t.Fatalf("failed to get agent: %v", err)
		}
		if got.Agent().Name != "channel-one" {
			t.Errorf("unexpected name %q", got.Agent().Name)
		}
		if got.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", got.Sequence())
		}
	})

	t.Run("Create Validates", func(t *testing.T) {
		agent := models.NewPersistedAgent(0, models.Agent{ID: "a2"})
		if err := repo.Create(agent); err == nil {
			t.Error("expected validation error for agent without name")
		}
	})

	t.Run("Update", func(t *testing.T) {
		got, err := repo.Get("a1")
		if err != nil {
			t.Fatalf("failed to get agent: %v", err)
		}

		dto := got.Agent()
		dto.PodcastTitle = "Renamed"
		got.SetAgent(dto)

		if err := repo.Update(got); err != nil {
			t.Fatalf("failed to update agent: %v", err)
		}

		updated, _ := repo.Get("a1")
		if updated.Agent().PodcastTitle != "Renamed" {
			t.Errorf("update not persisted: %q", updated.Agent().PodcastTitle)
		}
	})

	t.Run("List Ordered By Sequence", func(t *testing.T) {
		second := models.NewPersistedAgent(0, testAgent("a3", "channel-two"))
		if err := repo.Create(second); err != nil {
			t.Fatalf("failed to create agent: %v", err)
		}

		agents, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list agents: %v", err)
		}
		if len(agents) != 2 {
			t.Fatalf("expected 2 agents, got %d", len(agents))
		}
		if agents[0].ID() != "a1" || agents[1].ID() != "a3" {
			t.Errorf("unexpected ordering: %s, %s", agents[0].ID(), agents[1].ID())
		}
	})

	t.Run("Soft Delete", func(t *testing.T) {
		if err := repo.Delete("a1"); err != nil {
			t.Fatalf("failed to delete agent: %v", err)
		}

		if _, err := repo.Get("a1"); !errors.Is(err, shared.ErrAgentNotFound) {
			t.Errorf("expected ErrAgentNotFound, got %v", err)
		}

		t.Run("Twice Fails", func(t *testing.T) {
			if err := repo.Delete("a1"); !errors.Is(err, shared.ErrAgentNotFound) {
				t.Errorf("expected ErrAgentNotFound, got %v", err)
			}
		})
	})
}

func TestEpisodeRepository(t *testing.T) {
	agents := setupTestDB(t)
	repo := NewEpisodeRepository(agents.db)

	if err := agents.Create(models.NewPersistedAgent(0, testAgent("a1", "channel-one"))); err != nil {
		t.Fatalf("failed to create agent: %v", err)
	}

	t.Run("Create and Lookup", func(t *testing.T) {
		ep := models.NewPersistedEpisode(0, testEpisode("a1", "v1", "First Episode"))
		if err := repo.Create(ep); err != nil {
			t.Fatalf("failed to create episode: %v", err)
		}

		byID, err := repo.Get("ep-v1")
		if err != nil {
			t.Fatalf("failed to get episode: %v", err)
		}
		if byID.Episode().Title != "First Episode" {
			t.Errorf("unexpected title %q", byID.Episode().Title)
		}

		byVideo, err := repo.GetByVideoID("a1", "v1")
		if err != nil {
			t.Fatalf("failed to get episode by video: %v", err)
		}
		if byVideo.ID() != "ep-v1" {
			t.Errorf("unexpected episode %s", byVideo.ID())
		}
	})

	t.Run("Unique Per Agent And Video", func(t *testing.T) {
		dup := testEpisode("a1", "v1", "Duplicate")
		dup.ID = "ep-dup"
		if err := repo.Create(models.NewPersistedEpisode(0, dup)); err == nil {
			t.Error("expected UNIQUE constraint violation")
		}
	})

	t.Run("List By Agent", func(t *testing.T) {
		if err := repo.Create(models.NewPersistedEpisode(0, testEpisode("a1", "v2", "Second Episode"))); err != nil {
			t.Fatalf("failed to create episode: %v", err)
		}

		episodes, err := repo.List(map[string]any{"agent_id": "a1"})
		if err != nil {
			t.Fatalf("failed to list episodes: %v", err)
		}
		if len(episodes) != 2 {
			t.Errorf("expected 2 episodes, got %d", len(episodes))
		}

		none, err := repo.List(map[string]any{"agent_id": "missing"})
		if err != nil {
			t.Fatalf("failed to list episodes: %v", err)
		}
		if len(none) != 0 {
			t.Errorf("expected no episodes for unknown agent, got %d", len(none))
		}
	})

	t.Run("CountByAgent", func(t *testing.T) {
		count, err := repo.CountByAgent("a1")
		if err != nil {
			t.Fatalf("failed to count episodes: %v", err)
		}
		if count != 2 {
			t.Errorf("expected 2 episodes, got %d", count)
		}
	})
}

func TestCacheAdapter(t *testing.T) {
	agents := setupTestDB(t)
	episodes := NewEpisodeRepository(agents.db)
	cache := NewCacheAdapter(agents, episodes)

	t.Run("CacheAgent Upserts", func(t *testing.T) {
		dto := testAgent("a1", "channel-one")
		if err := cache.CacheAgent(dto); err != nil {
			t.Fatalf("failed to cache agent: %v", err)
		}

		dto.PodcastTitle = "Fresh Title"
		if err := cache.CacheAgent(dto); err != nil {
			t.Fatalf("failed to re-cache agent: %v", err)
		}

		got, err := agents.Get("a1")
		if err != nil {
			t.Fatalf("failed to get agent: %v", err)
		}
		if got.Agent().PodcastTitle != "Fresh Title" {
			t.Errorf("re-cache did not update: %q", got.Agent().PodcastTitle)
		}

		listed, _ := agents.List(nil)
		if len(listed) != 1 {
			t.Errorf("expected a single cached agent, got %d", len(listed))
		}
	})

	t.Run("CacheEpisodes Deduplicates", func(t *testing.T) {
		listing := []models.Episode{
			testEpisode("a1", "v1", "First Episode"),
			testEpisode("a1", "v2", "Second Episode"),
		}

		if _, err := cache.CacheEpisodes(listing); err != nil {
			t.Fatalf("failed to cache episodes: %v", err)
		}
		if _, err := cache.CacheEpisodes(listing); err != nil {
			t.Fatalf("failed to re-cache episodes: %v", err)
		}

		cached, err := episodes.List(map[string]any{"agent_id": "a1"})
		if err != nil {
			t.Fatalf("failed to list episodes: %v", err)
		}
		if len(cached) != 2 {
			t.Errorf("expected 2 cached episodes, got %d", len(cached))
		}
	})
}

func TestNextSequence(t *testing.T) {
	repo := setupTestDB(t)

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(repo.db, "agents")
		if err != nil {
			t.Fatalf("failed to get sequence: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}
}

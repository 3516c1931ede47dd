package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/podbridge/podbridge/internal/models"
	"github.com/podbridge/podbridge/internal/shared"
)

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			srv := NewAPIService("http://example.com", "tok", customClient)

			if srv.baseURL != "http://example.com" {
				t.Errorf("expected baseURL 'http://example.com', got %s", srv.baseURL)
			}
			if srv.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
			if srv.AuthHeader() != "Bearer tok" {
				t.Errorf("unexpected auth header %q", srv.AuthHeader())
			}
		})

		t.Run("With Empty BaseURL", func(t *testing.T) {
			srv := NewAPIService("", "", nil)

			if srv.baseURL != "http://localhost:3001/api" {
				t.Errorf("expected default baseURL, got %s", srv.baseURL)
			}
			if srv.AuthHeader() != "" {
				t.Error("expected empty auth header without token")
			}
		})
	})

	t.Run("Stream URLs", func(t *testing.T) {
		srv := NewAPIService("http://example.com/api", "", nil)

		if got := srv.JobStreamURL("a1"); got != "http://example.com/api/agents/a1/backfill/stream" {
			t.Errorf("unexpected job stream URL %s", got)
		}
		if got := srv.VideoStreamURL("a1", "v1"); got != "http://example.com/api/progress/a1_v1/stream" {
			t.Errorf("unexpected video stream URL %s", got)
		}
	})

	t.Run("ListAgents", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("expected GET method, got %s", r.Method)
			}
			if r.URL.Path != "/agents" {
				t.Errorf("expected path '/agents', got %s", r.URL.Path)
			}
			if auth := r.Header.Get("Authorization"); auth != "Bearer tok" {
				t.Errorf("expected bearer token, got %q", auth)
			}

			json.NewEncoder(w).Encode([]models.Agent{{ID: "a1", Name: "Channel One"}})
		}))
		defer server.Close()

		srv := NewAPIService(server.URL, "tok", nil)
		agents, err := srv.ListAgents(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(agents) != 1 || agents[0].ID != "a1" {
			t.Errorf("unexpected agents %+v", agents)
		}
	})

	t.Run("CreateAgent", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST method, got %s", r.Method)
			}

			var input models.CreateAgentInput
			if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
				t.Fatalf("failed to decode input: %v", err)
			}
			if input.Name != "My Channel" {
				t.Errorf("unexpected input name %q", input.Name)
			}

			json.NewEncoder(w).Encode(models.Agent{ID: "a2", Name: input.Name})
		}))
		defer server.Close()

		srv := NewAPIService(server.URL, "", nil)
		agent, err := srv.CreateAgent(context.Background(), models.CreateAgentInput{
			Name:              "My Channel",
			YouTubeChannelURL: "https://www.youtube.com/@mychannel",
			RSSSlug:           "my-channel",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if agent.ID != "a2" {
			t.Errorf("expected agent a2, got %s", agent.ID)
		}
	})

	t.Run("ListEpisodes", func(t *testing.T) {
		t.Run("Bare Array", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode([]models.Episode{{ID: "e1", Title: "Episode 1"}})
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, "", nil)
			episodes, err := srv.ListEpisodes(context.Background(), "a1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(episodes) != 1 || episodes[0].ID != "e1" {
				t.Errorf("unexpected episodes %+v", episodes)
			}
		})

		t.Run("Enveloped", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, `{"episodes":[{"id":"e2","title":"Episode 2"}],"total":1}`)
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, "", nil)
			episodes, err := srv.ListEpisodes(context.Background(), "a1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(episodes) != 1 || episodes[0].ID != "e2" {
				t.Errorf("unexpected episodes %+v", episodes)
			}
		})
	})

	t.Run("StartImport", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/agents/a1/backfill" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}

			var payload map[string]string
			json.NewDecoder(r.Body).Decode(&payload)
			if payload["since"] != "2024-01-01" {
				t.Errorf("unexpected since %q", payload["since"])
			}

			json.NewEncoder(w).Encode(models.ImportAccepted{JobID: "j1", Status: models.JobPending})
		}))
		defer server.Close()

		srv := NewAPIService(server.URL, "", nil)
		accepted, err := srv.StartImport(context.Background(), "a1", "2024-01-01")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if accepted.JobID != "j1" || accepted.Status != models.JobPending {
			t.Errorf("unexpected response %+v", accepted)
		}
	})

	t.Run("Server Error Message Surfaced", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error":"since date is in the future"}`)
		}))
		defer server.Close()

		srv := NewAPIService(server.URL, "", nil)
		_, err := srv.StartImport(context.Background(), "a1", "2999-01-01")
		if err == nil {
			t.Fatal("expected error")
		}
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		if !strings.Contains(err.Error(), "since date is in the future") {
			t.Errorf("server message not surfaced: %v", err)
		}
	})

	t.Run("Unauthorized", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		srv := NewAPIService(server.URL, "", nil)
		_, err := srv.ListAgents(context.Background())
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("CancelImport", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				t.Errorf("expected DELETE method, got %s", r.Method)
			}
			if r.URL.Path != "/agents/a1/backfill/j1" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		srv := NewAPIService(server.URL, "", nil)
		if err := srv.CancelImport(context.Background(), "a1", "j1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("UploadArtwork", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Fatalf("failed to parse multipart form: %v", err)
			}

			file, header, err := r.FormFile("image")
			if err != nil {
				t.Fatalf("missing image form file: %v", err)
			}
			defer file.Close()

			if header.Filename != "cover.png" {
				t.Errorf("unexpected filename %q", header.Filename)
			}

			data, _ := io.ReadAll(file)
			if string(data) != "png-bytes" {
				t.Errorf("unexpected file data %q", data)
			}

			json.NewEncoder(w).Encode(map[string]string{"podcast_artwork_url": "https://cdn.example.com/cover.png"})
		}))
		defer server.Close()

		srv := NewAPIService(server.URL, "", nil)
		url, err := srv.UploadArtwork(context.Background(), "a1", "cover.png", []byte("png-bytes"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if url != "https://cdn.example.com/cover.png" {
			t.Errorf("unexpected artwork URL %s", url)
		}
	})

	t.Run("FeedURL", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"feedUrl": "https://pods.example.com/feeds/my-channel.xml"})
		}))
		defer server.Close()

		srv := NewAPIService(server.URL, "", nil)
		url, err := srv.FeedURL(context.Background(), "a1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if url != "https://pods.example.com/feeds/my-channel.xml" {
			t.Errorf("unexpected feed URL %s", url)
		}
	})
}

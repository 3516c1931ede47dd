package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/podbridge/podbridge/internal/models"
	"github.com/podbridge/podbridge/internal/shared"
	tu "github.com/podbridge/podbridge/internal/testing"
	"github.com/urfave/cli/v3"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			api := &tu.MockAgentAPI{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				API:        api,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Fatal("expected registered commands")
		}

		names := map[string]bool{}
		for _, c := range commands {
			names[c.Name] = true
		}
		for _, want := range []string{"setup", "auth", "agents", "episodes", "media", "backfill", "feed", "cache", "tui"} {
			if !names[want] {
				t.Errorf("expected command %q to be registered", want)
			}
		}
	})
}

// runCommand executes the full CLI against a mock API and returns the
// captured output.
func runCommand(t *testing.T, api *tu.MockAgentAPI, args ...string) (string, error) {
	t.Helper()

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		API:    api,
		Media:  &tu.MockMediaAPI{},
		Output: output,
	})

	app := &cli.Command{
		Name:     "podbridge",
		Commands: runner.register(),
	}

	err := app.Run(context.Background(), append([]string{"podbridge"}, args...))
	return output.String(), err
}

func TestCommands(t *testing.T) {
	t.Run("agents list", func(t *testing.T) {
		api := &tu.MockAgentAPI{
			ListAgentsFn: func(ctx context.Context) ([]models.Agent, error) {
				return []models.Agent{
					{ID: "a1", Name: "Tech Talks", YouTubeChannelURL: "https://youtube.com/@techtalks"},
					{ID: "a2", Name: "Cooking", YouTubeChannelURL: "https://youtube.com/@cooking"},
				}, nil
			},
		}

		out, err := runCommand(t, api, "agents", "list")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "Found 2 agents") {
			t.Errorf("expected agent count, got %q", out)
		}
		if !strings.Contains(out, "Tech Talks") || !strings.Contains(out, "Cooking") {
			t.Errorf("expected agent names, got %q", out)
		}
	})

	t.Run("agents list as JSON", func(t *testing.T) {
		api := &tu.MockAgentAPI{
			ListAgentsFn: func(ctx context.Context) ([]models.Agent, error) {
				return []models.Agent{{ID: "a1", Name: "Tech Talks"}}, nil
			},
		}

		out, err := runCommand(t, api, "agents", "list", "--json")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, `"id": "a1"`) {
			t.Errorf("expected JSON output, got %q", out)
		}
	})

	t.Run("agents create", func(t *testing.T) {
		var got models.CreateAgentInput
		api := &tu.MockAgentAPI{
			CreateAgentFn: func(ctx context.Context, input models.CreateAgentInput) (*models.Agent, error) {
				got = input
				return &models.Agent{ID: "a9", Name: input.Name}, nil
			},
		}

		out, err := runCommand(t, api,
			"agents", "create",
			"--name", "Tech Talks",
			"--channel-url", "https://youtube.com/@techtalks",
			"--slug", "tech-talks",
		)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Name != "Tech Talks" || got.RSSSlug != "tech-talks" {
			t.Errorf("unexpected input sent: %+v", got)
		}
		if !strings.Contains(out, "✓ Agent created") {
			t.Errorf("expected confirmation, got %q", out)
		}
	})

	t.Run("agents update requires a change", func(t *testing.T) {
		_, err := runCommand(t, &tu.MockAgentAPI{}, "agents", "update", "a1")
		if err == nil {
			t.Fatal("expected error with no update flags")
		}
		if !strings.Contains(err.Error(), "nothing to update") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("agents update sends only set fields", func(t *testing.T) {
		var got models.UpdateAgentInput
		api := &tu.MockAgentAPI{
			UpdateAgentFn: func(ctx context.Context, id string, input models.UpdateAgentInput) (*models.Agent, error) {
				got = input
				return &models.Agent{ID: id, Name: "Tech Talks"}, nil
			},
		}

		_, err := runCommand(t, api, "agents", "update", "a1", "--title", "New Title")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.PodcastTitle == nil || *got.PodcastTitle != "New Title" {
			t.Errorf("expected title to be set, got %+v", got)
		}
		if got.Name != nil || got.PodcastAuthor != nil || got.PodcastDescription != nil {
			t.Errorf("expected unset fields to stay nil, got %+v", got)
		}
	})

	t.Run("agents delete requires confirmation", func(t *testing.T) {
		deleted := false
		api := &tu.MockAgentAPI{
			DeleteAgentFn: func(ctx context.Context, id string) error {
				deleted = true
				return nil
			},
		}

		out, err := runCommand(t, api, "agents", "delete", "a1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if deleted {
			t.Error("expected delete to be skipped without --yes")
		}
		if !strings.Contains(out, "--yes") {
			t.Errorf("expected confirmation hint, got %q", out)
		}

		if _, err := runCommand(t, api, "agents", "delete", "a1", "--yes"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !deleted {
			t.Error("expected delete with --yes")
		}
	})

	t.Run("episodes count", func(t *testing.T) {
		api := &tu.MockAgentAPI{
			ListEpisodesFn: func(ctx context.Context, id string) ([]models.Episode, error) {
				return make([]models.Episode, 7), nil
			},
		}

		out, err := runCommand(t, api, "episodes", "count", "a1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if strings.TrimSpace(out) != "7" {
			t.Errorf("expected 7, got %q", out)
		}
	})

	t.Run("backfill start", func(t *testing.T) {
		api := &tu.MockAgentAPI{
			StartImportFn: func(ctx context.Context, agentID, since string) (*models.ImportAccepted, error) {
				if agentID != "a1" || since != "2024-01-01" {
					t.Errorf("unexpected args: %s %s", agentID, since)
				}
				return &models.ImportAccepted{JobID: "j1", Status: models.JobPending}, nil
			},
		}

		out, err := runCommand(t, api, "backfill", "start", "a1", "--since", "2024-01-01")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "Job: j1") {
			t.Errorf("expected job ID, got %q", out)
		}
	})

	t.Run("backfill status renders badge and percent", func(t *testing.T) {
		api := &tu.MockAgentAPI{
			ImportStatusFn: func(ctx context.Context, agentID, jobID string) (*models.Job, error) {
				return &models.Job{
					JobID:           jobID,
					Status:          models.JobProcessing,
					TotalVideos:     40,
					ProcessedVideos: 13,
				}, nil
			},
		}

		out, err := runCommand(t, api, "backfill", "status", "a1", "j1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "Processing") {
			t.Errorf("expected badge, got %q", out)
		}
		if !strings.Contains(out, "13/40 (33%)") {
			t.Errorf("expected rounded percent, got %q", out)
		}
	})

	t.Run("feed prints URL", func(t *testing.T) {
		api := &tu.MockAgentAPI{
			FeedURLFn: func(ctx context.Context, id string) (string, error) {
				return "https://feeds.example.com/tech-talks.xml", nil
			},
		}

		out, err := runCommand(t, api, "feed", "a1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "https://feeds.example.com/tech-talks.xml") {
			t.Errorf("expected feed URL, got %q", out)
		}
	})

	t.Run("missing agent ID is rejected", func(t *testing.T) {
		for _, args := range [][]string{
			{"agents", "show"},
			{"episodes", "list"},
			{"backfill", "watch"},
			{"feed"},
		} {
			if _, err := runCommand(t, &tu.MockAgentAPI{}, args...); err == nil {
				t.Errorf("expected error for %v without agent ID", args)
			}
		}
	})
}

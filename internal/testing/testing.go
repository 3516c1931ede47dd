// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/podbridge/podbridge/internal/models"
)

// MockAgentAPI is a test double for [services.AgentAPI].
//
// Each method delegates to the matching function field when set and
// returns zero values otherwise, so tests only stub what they assert.
type MockAgentAPI struct {
	ListAgentsFn    func(ctx context.Context) ([]models.Agent, error)
	GetAgentFn      func(ctx context.Context, id string) (*models.Agent, error)
	CreateAgentFn   func(ctx context.Context, input models.CreateAgentInput) (*models.Agent, error)
	UpdateAgentFn   func(ctx context.Context, id string, input models.UpdateAgentInput) (*models.Agent, error)
	DeleteAgentFn   func(ctx context.Context, id string) error
	ActivateAgentFn func(ctx context.Context, id string) error
	ListEpisodesFn  func(ctx context.Context, id string) ([]models.Episode, error)
	FeedURLFn       func(ctx context.Context, id string) (string, error)
	StatsFn         func(ctx context.Context) (*models.DashboardStats, error)
	StartImportFn   func(ctx context.Context, agentID, since string) (*models.ImportAccepted, error)
	CancelImportFn  func(ctx context.Context, agentID, jobID string) error
	ImportStatusFn  func(ctx context.Context, agentID, jobID string) (*models.Job, error)
	ListImportsFn   func(ctx context.Context, agentID string) ([]models.Job, error)
}

func (m *MockAgentAPI) ListAgents(ctx context.Context) ([]models.Agent, error) {
	if m.ListAgentsFn != nil {
		return m.ListAgentsFn(ctx)
	}
	return []models.Agent{}, nil
}

func (m *MockAgentAPI) GetAgent(ctx context.Context, id string) (*models.Agent, error) {
	if m.GetAgentFn != nil {
		return m.GetAgentFn(ctx, id)
	}
	return &models.Agent{ID: id}, nil
}

func (m *MockAgentAPI) CreateAgent(ctx context.Context, input models.CreateAgentInput) (*models.Agent, error) {
	if m.CreateAgentFn != nil {
		return m.CreateAgentFn(ctx, input)
	}
	return &models.Agent{Name: input.Name}, nil
}

func (m *MockAgentAPI) UpdateAgent(ctx context.Context, id string, input models.UpdateAgentInput) (*models.Agent, error) {
	if m.UpdateAgentFn != nil {
		return m.UpdateAgentFn(ctx, id, input)
	}
	return &models.Agent{ID: id}, nil
}

func (m *MockAgentAPI) DeleteAgent(ctx context.Context, id string) error {
	if m.DeleteAgentFn != nil {
		return m.DeleteAgentFn(ctx, id)
	}
	return nil
}

func (m *MockAgentAPI) ActivateAgent(ctx context.Context, id string) error {
	if m.ActivateAgentFn != nil {
		return m.ActivateAgentFn(ctx, id)
	}
	return nil
}

func (m *MockAgentAPI) ListEpisodes(ctx context.Context, id string) ([]models.Episode, error) {
	if m.ListEpisodesFn != nil {
		return m.ListEpisodesFn(ctx, id)
	}
	return []models.Episode{}, nil
}

func (m *MockAgentAPI) FeedURL(ctx context.Context, id string) (string, error) {
	if m.FeedURLFn != nil {
		return m.FeedURLFn(ctx, id)
	}
	return "", nil
}

func (m *MockAgentAPI) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	if m.StatsFn != nil {
		return m.StatsFn(ctx)
	}
	return &models.DashboardStats{}, nil
}

func (m *MockAgentAPI) StartImport(ctx context.Context, agentID, since string) (*models.ImportAccepted, error) {
	if m.StartImportFn != nil {
		return m.StartImportFn(ctx, agentID, since)
	}
	return &models.ImportAccepted{JobID: "mock-job", Status: models.JobPending}, nil
}

func (m *MockAgentAPI) CancelImport(ctx context.Context, agentID, jobID string) error {
	if m.CancelImportFn != nil {
		return m.CancelImportFn(ctx, agentID, jobID)
	}
	return nil
}

func (m *MockAgentAPI) ImportStatus(ctx context.Context, agentID, jobID string) (*models.Job, error) {
	if m.ImportStatusFn != nil {
		return m.ImportStatusFn(ctx, agentID, jobID)
	}
	return &models.Job{JobID: jobID, Status: models.JobPending}, nil
}

func (m *MockAgentAPI) ListImports(ctx context.Context, agentID string) ([]models.Job, error) {
	if m.ListImportsFn != nil {
		return m.ListImportsFn(ctx, agentID)
	}
	return []models.Job{}, nil
}

// MockMediaAPI is a test double for [services.MediaAPI].
type MockMediaAPI struct {
	UploadArtworkFn func(ctx context.Context, agentID, filename string, data []byte) (string, error)
	UploadIntroFn   func(ctx context.Context, agentID, filename string, data []byte) (string, error)
	UploadOutroFn   func(ctx context.Context, agentID, filename string, data []byte) (string, error)
	DeleteArtworkFn func(ctx context.Context, agentID string) error
	DeleteIntroFn   func(ctx context.Context, agentID string) error
	DeleteOutroFn   func(ctx context.Context, agentID string) error
}

func (m *MockMediaAPI) UploadArtwork(ctx context.Context, agentID, filename string, data []byte) (string, error) {
	if m.UploadArtworkFn != nil {
		return m.UploadArtworkFn(ctx, agentID, filename, data)
	}
	return "https://cdn.example.com/artwork.jpg", nil
}

func (m *MockMediaAPI) UploadIntro(ctx context.Context, agentID, filename string, data []byte) (string, error) {
	if m.UploadIntroFn != nil {
		return m.UploadIntroFn(ctx, agentID, filename, data)
	}
	return "https://cdn.example.com/intro.mp3", nil
}

func (m *MockMediaAPI) UploadOutro(ctx context.Context, agentID, filename string, data []byte) (string, error) {
	if m.UploadOutroFn != nil {
		return m.UploadOutroFn(ctx, agentID, filename, data)
	}
	return "https://cdn.example.com/outro.mp3", nil
}

func (m *MockMediaAPI) DeleteArtwork(ctx context.Context, agentID string) error {
	if m.DeleteArtworkFn != nil {
		return m.DeleteArtworkFn(ctx, agentID)
	}
	return nil
}

func (m *MockMediaAPI) DeleteIntro(ctx context.Context, agentID string) error {
	if m.DeleteIntroFn != nil {
		return m.DeleteIntroFn(ctx, agentID)
	}
	return nil
}

func (m *MockMediaAPI) DeleteOutro(ctx context.Context, agentID string) error {
	if m.DeleteOutroFn != nil {
		return m.DeleteOutroFn(ctx, agentID)
	}
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// REST client for the podcast agent backend
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/podbridge/podbridge/internal/models"
	"github.com/podbridge/podbridge/internal/shared"
)

// APIService is the HTTP implementation of [AgentAPI] and [MediaAPI].
type APIService struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewAPIService creates a new API service instance for the agent backend.
func NewAPIService(baseURL, token string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = "http://localhost:3001/api"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    baseURL,
		token:      token,
		httpClient: client,
	}
}

// BaseURL returns the configured backend base URL.
func (a *APIService) BaseURL() string { return a.baseURL }

// JobStreamURL returns the push channel URL carrying backfill job updates for an agent.
func (a *APIService) JobStreamURL(agentID string) string {
	return fmt.Sprintf("%s/agents/%s/backfill/stream", a.baseURL, agentID)
}

// VideoStreamURL returns the push channel URL for one video's live processing progress.
//
// The backend keys per-video progress streams by "{agentID}_{videoID}".
func (a *APIService) VideoStreamURL(agentID, videoID string) string {
	return fmt.Sprintf("%s/progress/%s_%s/stream", a.baseURL, agentID, videoID)
}

// AuthHeader returns the Authorization header value for stream connections, or "" when unauthenticated.
func (a *APIService) AuthHeader() string {
	if a.token == "" {
		return ""
	}
	return "Bearer " + a.token
}

// errorBody is the backend's JSON error envelope.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do executes a request, decoding a JSON response into out when non-nil.
// Non-2xx responses are returned as errors carrying the server-provided
// message so callers can surface it inline.
func (a *APIService) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: status %d", shared.ErrNotAuthenticated, resp.StatusCode)
		}

		var eb errorBody
		if json.Unmarshal(data, &eb) == nil {
			if eb.Error != "" {
				return fmt.Errorf("%w: %s", shared.ErrAPIRequest, eb.Error)
			}
			if eb.Message != "" {
				return fmt.Errorf("%w: %s", shared.ErrAPIRequest, eb.Message)
			}
		}
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// getJSON issues a GET request decoding the response into out.
func (a *APIService) getJSON(ctx context.Context, path string, out any) error {
	return a.do(ctx, http.MethodGet, path, nil, "", out)
}

// sendJSON issues a request with a JSON-encoded body.
func (a *APIService) sendJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	return a.do(ctx, method, path, body, "application/json", out)
}

// ListAgents retrieves all channel automations for the account.
func (a *APIService) ListAgents(ctx context.Context) ([]models.Agent, error) {
	var agents []models.Agent
	if err := a.getJSON(ctx, "/agents", &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

// GetAgent retrieves a single agent by ID.
func (a *APIService) GetAgent(ctx context.Context, id string) (*models.Agent, error) {
	var agent models.Agent
	if err := a.getJSON(ctx, "/agents/"+id, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// CreateAgent connects a new YouTube channel.
func (a *APIService) CreateAgent(ctx context.Context, input models.CreateAgentInput) (*models.Agent, error) {
	var agent models.Agent
	if err := a.sendJSON(ctx, http.MethodPost, "/agents", input, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// UpdateAgent modifies agent podcast metadata.
func (a *APIService) UpdateAgent(ctx context.Context, id string, input models.UpdateAgentInput) (*models.Agent, error) {
	var agent models.Agent
	if err := a.sendJSON(ctx, http.MethodPut, "/agents/"+id, input, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// DeleteAgent permanently removes an agent and its episodes.
func (a *APIService) DeleteAgent(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/agents/"+id, nil, "", nil)
}

// ActivateAgent subscribes the agent's channel to WebSub push notifications.
func (a *APIService) ActivateAgent(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodPost, "/agents/"+id+"/activate", nil, "", nil)
}

// episodesEnvelope tolerates both bare arrays and {episodes: []} responses.
type episodesEnvelope struct {
	Episodes []models.Episode `json:"episodes"`
}

// ListEpisodes retrieves the agent's published episodes.
func (a *APIService) ListEpisodes(ctx context.Context, id string) ([]models.Episode, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/agents/"+id+"/episodes", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var episodes []models.Episode
	if err := json.Unmarshal(data, &episodes); err == nil {
		return episodes, nil
	}

	var env episodesEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode episodes: %w", err)
	}
	return env.Episodes, nil
}

// FeedURL returns the public RSS feed URL for an agent.
func (a *APIService) FeedURL(ctx context.Context, id string) (string, error) {
	var out struct {
		FeedURL string `json:"feedUrl"`
	}
	if err := a.getJSON(ctx, "/agents/"+id+"/feed-url", &out); err != nil {
		return "", err
	}
	return out.FeedURL, nil
}

// DashboardStats returns account-wide aggregate counts.
func (a *APIService) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	if err := a.getJSON(ctx, "/stats/dashboard", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// StartImport begins a historical backfill of videos published since the given date.
func (a *APIService) StartImport(ctx context.Context, agentID, since string) (*models.ImportAccepted, error) {
	payload := map[string]string{"since": since}
	var accepted models.ImportAccepted
	if err := a.sendJSON(ctx, http.MethodPost, "/agents/"+agentID+"/backfill", payload, &accepted); err != nil {
		return nil, err
	}
	return &accepted, nil
}

// CancelImport cancels a running backfill job.
func (a *APIService) CancelImport(ctx context.Context, agentID, jobID string) error {
	return a.do(ctx, http.MethodDelete, "/agents/"+agentID+"/backfill/"+jobID, nil, "", nil)
}

// ImportStatus fetches a one-shot snapshot of a backfill job.
func (a *APIService) ImportStatus(ctx context.Context, agentID, jobID string) (*models.Job, error) {
	var job models.Job
	if err := a.getJSON(ctx, "/agents/"+agentID+"/backfill/"+jobID, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// ListImports fetches all backfill jobs for an agent.
func (a *APIService) ListImports(ctx context.Context, agentID string) ([]models.Job, error) {
	var jobs []models.Job
	if err := a.getJSON(ctx, "/agents/"+agentID+"/backfill", &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// uploadFile sends a multipart upload to path under the given form field,
// returning the response body for URL extraction.
func (a *APIService) uploadFile(ctx context.Context, path, field, filename string, data []byte) (map[string]any, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	var out map[string]any
	if err := a.do(ctx, http.MethodPost, path, &buf, w.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// stringField extracts a string value from a decoded JSON object.
func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// UploadArtwork uploads podcast cover art, returning the stored URL.
func (a *APIService) UploadArtwork(ctx context.Context, agentID, filename string, data []byte) (string, error) {
	out, err := a.uploadFile(ctx, "/agents/"+agentID+"/artwork", "image", filename, data)
	if err != nil {
		return "", err
	}
	return stringField(out, "podcast_artwork_url"), nil
}

// UploadIntro uploads intro audio prepended to every episode.
func (a *APIService) UploadIntro(ctx context.Context, agentID, filename string, data []byte) (string, error) {
	out, err := a.uploadFile(ctx, "/agents/"+agentID+"/intro", "audio", filename, data)
	if err != nil {
		return "", err
	}
	return stringField(out, "intro_audio_url"), nil
}

// UploadOutro uploads outro audio appended to every episode.
func (a *APIService) UploadOutro(ctx context.Context, agentID, filename string, data []byte) (string, error) {
	out, err := a.uploadFile(ctx, "/agents/"+agentID+"/outro", "audio", filename, data)
	if err != nil {
		return "", err
	}
	return stringField(out, "outro_audio_url"), nil
}

// DeleteArtwork removes the agent's cover art.
func (a *APIService) DeleteArtwork(ctx context.Context, agentID string) error {
	return a.do(ctx, http.MethodDelete, "/agents/"+agentID+"/artwork", nil, "", nil)
}

// DeleteIntro removes the agent's intro audio.
func (a *APIService) DeleteIntro(ctx context.Context, agentID string) error {
	return a.do(ctx, http.MethodDelete, "/agents/"+agentID+"/intro", nil, "", nil)
}

// DeleteOutro removes the agent's outro audio.
func (a *APIService) DeleteOutro(ctx context.Context, agentID string) error {
	return a.do(ctx, http.MethodDelete, "/agents/"+agentID+"/outro", nil, "", nil)
}

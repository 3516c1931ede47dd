package backfill

import (
	"context"
	"net/http"

	"github.com/podbridge/podbridge/internal/services"
)

// StreamHandle is an open push-channel connection owned by a syncer.
type StreamHandle interface {
	Close()
}

// StreamOpener opens push channels for a syncer. Implementations must
// return without blocking; connection establishment and retries happen
// in the background with outcomes reported through the callbacks.
type StreamOpener interface {
	OpenJobStream(ctx context.Context, agentID string, cb services.StreamCallbacks) StreamHandle
	OpenVideoStream(ctx context.Context, agentID, videoID string, cb services.StreamCallbacks) StreamHandle
}

// apiOpener opens SSE streams against the backend using the REST
// client's URL scheme and credentials.
type apiOpener struct {
	api    *services.APIService
	client *http.Client
}

// NewStreamOpener returns a StreamOpener backed by the given API
// service. A nil client falls back to http.DefaultClient.
func NewStreamOpener(api *services.APIService, client *http.Client) StreamOpener {
	return &apiOpener{api: api, client: client}
}

func (o *apiOpener) OpenJobStream(ctx context.Context, agentID string, cb services.StreamCallbacks) StreamHandle {
	return services.OpenStream(ctx, o.api.JobStreamURL(agentID), o.opts(), cb)
}

func (o *apiOpener) OpenVideoStream(ctx context.Context, agentID, videoID string, cb services.StreamCallbacks) StreamHandle {
	return services.OpenStream(ctx, o.api.VideoStreamURL(agentID, videoID), o.opts(), cb)
}

func (o *apiOpener) opts() services.StreamOpts {
	return services.StreamOpts{Client: o.client, AuthHeader: o.api.AuthHeader()}
}

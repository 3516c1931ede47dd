package backfill

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/podbridge/podbridge/internal/services"
)

// fakeStream is a scripted push-channel connection. Tests deliver
// frames synchronously through its callbacks.
type fakeStream struct {
	agentID string
	videoID string // "" for job streams
	cb      services.StreamCallbacks

	mu     sync.Mutex
	closed bool
}

func (f *fakeStream) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeStream) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeStream) open() {
	if f.cb.OnOpen != nil {
		f.cb.OnOpen()
	}
}

func (f *fakeStream) push(t *testing.T, data string) {
	t.Helper()
	if f.cb.OnMessage == nil {
		t.Fatal("stream has no message callback")
	}
	f.cb.OnMessage([]byte(data))
}

func (f *fakeStream) drop(err error) {
	if f.cb.OnDisconnect != nil {
		f.cb.OnDisconnect(err)
	}
}

// fakeOpener records every opened stream so tests can assert on churn
// and deliver frames.
type fakeOpener struct {
	mu         sync.Mutex
	jobStreams []*fakeStream
	videos     map[string][]*fakeStream
}

func newFakeOpener() *fakeOpener {
	return &fakeOpener{videos: make(map[string][]*fakeStream)}
}

func (o *fakeOpener) OpenJobStream(ctx context.Context, agentID string, cb services.StreamCallbacks) StreamHandle {
	o.mu.Lock()
	defer o.mu.Unlock()

	st := &fakeStream{agentID: agentID, cb: cb}
	o.jobStreams = append(o.jobStreams, st)
	return st
}

func (o *fakeOpener) OpenVideoStream(ctx context.Context, agentID, videoID string, cb services.StreamCallbacks) StreamHandle {
	o.mu.Lock()
	defer o.mu.Unlock()

	st := &fakeStream{agentID: agentID, videoID: videoID, cb: cb}
	o.videos[videoID] = append(o.videos[videoID], st)
	return st
}

// jobStream returns the most recently opened job stream.
func (o *fakeOpener) jobStream(t *testing.T) *fakeStream {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.jobStreams) == 0 {
		t.Fatal("no job stream opened")
	}
	return o.jobStreams[len(o.jobStreams)-1]
}

// videoStream returns the most recently opened stream for a video.
func (o *fakeOpener) videoStream(t *testing.T, videoID string) *fakeStream {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()

	streams := o.videos[videoID]
	if len(streams) == 0 {
		t.Fatalf("no stream opened for video %s", videoID)
	}
	return streams[len(streams)-1]
}

func (o *fakeOpener) videoOpenCount(videoID string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.videos[videoID])
}

// waitFor polls cond until it holds or the deadline passes. Needed for
// the few paths that close streams on a separate goroutine.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

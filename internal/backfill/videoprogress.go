package backfill

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/podbridge/podbridge/internal/models"
	"github.com/podbridge/podbridge/internal/services"
	"github.com/podbridge/podbridge/internal/shared"
)

// benignStreamError marks the backend's "not yet started" response on
// a video stream. It means the worker has not picked the video up, not
// that anything failed.
const benignStreamError = "Job not found"

// videoFrame is the envelope for per-video stream messages. Progress
// and status use raw presence so malformed values can retain the
// previous state instead of collapsing to zero.
type videoFrame struct {
	Type     string          `json:"type"`
	Progress json.RawMessage `json:"progress"`
	Status   json.RawMessage `json:"status"`
	Message  string          `json:"message"`
}

// videoSub is one live per-video subscription and its progress state.
type videoSub struct {
	gen      int
	stream   StreamHandle // nil once the stream has been logically closed
	done     bool         // no further frames are applied once set
	progress models.VideoProgress
}

// VideoProgressSync holds exactly one live progress subscription per
// relevant video ID.
//
// The relevant set is supplied by Reconcile, which diffs it against
// the open subscriptions: absent IDs are closed and removed, new IDs
// are opened, and IDs present in both are left untouched so an
// unchanged input set causes no churn. Per-subscription generation
// numbers make frame handlers no-ops once their subscription has been
// torn down, even when delivery is already in flight.
type VideoProgressSync struct {
	agentID string
	opener  StreamOpener
	logger  *log.Logger

	// onChange fires after every progress mutation, with no locks held.
	onChange func()

	mu      sync.Mutex
	subs    map[string]*videoSub
	nextGen int
}

// NewVideoProgressSync creates a syncer for the given agent. onChange
// may be nil.
func NewVideoProgressSync(agentID string, opener StreamOpener, logger *log.Logger, onChange func()) *VideoProgressSync {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &VideoProgressSync{
		agentID:  agentID,
		opener:   opener,
		logger:   logger.With("agent", agentID),
		onChange: onChange,
		subs:     make(map[string]*videoSub),
	}
}

// Reconcile brings the subscription set in line with the desired video
// IDs. Order of the input is irrelevant; duplicates are ignored. The
// latest call always wins, so an ID excluded by two consecutive
// reconciliations cannot keep a stale subscription alive.
func (s *VideoProgressSync) Reconcile(ctx context.Context, videoIDs []string) {
	desired := make(map[string]struct{}, len(videoIDs))
	for _, id := range videoIDs {
		desired[id] = struct{}{}
	}

	var toClose []StreamHandle
	changed := false

	s.mu.Lock()
	for id, sub := range s.subs {
		if _, keep := desired[id]; keep {
			continue
		}
		sub.done = true
		if sub.stream != nil {
			toClose = append(toClose, sub.stream)
			sub.stream = nil
		}
		delete(s.subs, id)
		changed = true
	}

	for id := range desired {
		if _, open := s.subs[id]; open {
			continue
		}
		s.openLocked(ctx, id)
		changed = true
	}
	s.mu.Unlock()

	// Closing blocks until the reader goroutine exits, so it happens
	// outside the lock. The done flag already guarantees no further
	// frame is applied.
	for _, st := range toClose {
		st.Close()
	}

	if changed {
		s.notify()
	}
}

// openLocked starts a subscription for one video. Caller holds s.mu;
// the opener returns without blocking so this is safe under the lock.
func (s *VideoProgressSync) openLocked(ctx context.Context, videoID string) {
	s.nextGen++
	gen := s.nextGen

	sub := &videoSub{
		gen:      gen,
		progress: models.VideoProgress{VideoID: videoID},
	}
	s.subs[videoID] = sub

	sub.stream = s.opener.OpenVideoStream(ctx, s.agentID, videoID, services.StreamCallbacks{
		OnMessage:    func(data []byte) { s.handleFrame(videoID, gen, data) },
		OnDisconnect: func(err error) { s.handleDisconnect(videoID, gen, err) },
	})
}

// Progress returns a copy of the live per-video progress map.
func (s *VideoProgressSync) Progress() map[string]models.VideoProgress {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]models.VideoProgress, len(s.subs))
	for id, sub := range s.subs {
		out[id] = sub.progress
	}
	return out
}

// CloseAll tears down every subscription and clears all progress
// state. Guaranteed release for the owning context; safe to call
// repeatedly.
func (s *VideoProgressSync) CloseAll() {
	var toClose []StreamHandle

	s.mu.Lock()
	for id, sub := range s.subs {
		sub.done = true
		if sub.stream != nil {
			toClose = append(toClose, sub.stream)
			sub.stream = nil
		}
		delete(s.subs, id)
	}
	s.mu.Unlock()

	for _, st := range toClose {
		st.Close()
	}
}

// handleFrame applies one frame to the subscription identified by
// (videoID, gen); a mismatch means the subscription was torn down
// while the frame was in flight and the frame is dropped.
func (s *VideoProgressSync) handleFrame(videoID string, gen int, data []byte) {
	var frame videoFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		s.logger.Debug("discarding malformed video frame", "video", videoID, "error", err)
		return
	}

	s.mu.Lock()
	sub, ok := s.subs[videoID]
	if !ok || sub.gen != gen || sub.done {
		s.mu.Unlock()
		return
	}

	switch frame.Type {
	case "progress":
		// Malformed fields retain the previous value.
		var progress int
		if frame.Progress != nil && json.Unmarshal(frame.Progress, &progress) == nil {
			sub.progress.Progress = progress
		}
		var status string
		if frame.Status != nil && json.Unmarshal(frame.Status, &status) == nil {
			sub.progress.Status = status
		}
		sub.progress.Connected = true

	case "complete":
		sub.progress.Progress = 100
		sub.progress.Status = "Complete"
		sub.progress.Connected = false
		s.finishLocked(sub)

	case "error":
		if strings.Contains(frame.Message, benignStreamError) {
			s.mu.Unlock()
			return
		}
		s.logger.Debug("video stream reported error", "video", videoID, "message", frame.Message)
		sub.progress.Connected = false
		s.finishLocked(sub)

	default:
		s.logger.Debug("discarding video frame with unknown type", "type", frame.Type, "video", videoID)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.notify()
}

// finishLocked stops a subscription's stream while keeping its
// progress entry visible until reconciliation removes the video.
// The stream is closed on a separate goroutine because this runs on
// the stream's own reader goroutine. Caller holds s.mu.
func (s *VideoProgressSync) finishLocked(sub *videoSub) {
	sub.done = true
	if sub.stream != nil {
		st := sub.stream
		sub.stream = nil
		go st.Close()
	}
}

// handleDisconnect marks a transport-level drop. The entry survives;
// the transport reconnects on its own.
func (s *VideoProgressSync) handleDisconnect(videoID string, gen int, err error) {
	if err != nil {
		s.logger.Debug("video stream dropped", "video", videoID, "error", err)
	}

	s.mu.Lock()
	sub, ok := s.subs[videoID]
	if !ok || sub.gen != gen || sub.done || !sub.progress.Connected {
		s.mu.Unlock()
		return
	}
	sub.progress.Connected = false
	s.mu.Unlock()

	s.notify()
}

func (s *VideoProgressSync) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}

package backfill

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/podbridge/podbridge/internal/models"
	"github.com/podbridge/podbridge/internal/services"
	"github.com/podbridge/podbridge/internal/shared"
)

// jobFrame is the envelope for job-stream messages.
type jobFrame struct {
	Type string          `json:"type"`
	Jobs []models.Job    `json:"jobs"`
	Job  json.RawMessage `json:"job"`
}

// JobStreamSync maintains the authoritative set of import jobs for one
// agent, fed by a single push connection.
//
// Snapshot frames replace the job map wholesale. Incremental frames
// merge field by field into the matching job, or prepend a new job
// when the jobId is unknown. Malformed frames are discarded without
// touching state; transport drops only toggle the connected flag, the
// last-known-good job map survives any number of reconnect cycles.
type JobStreamSync struct {
	agentID string
	opener  StreamOpener
	logger  *log.Logger

	// onChange fires after every state mutation, with no locks held.
	onChange func()

	mu        sync.Mutex
	jobs      map[string]*models.Job
	order     []string // jobIds, newest first
	connected bool
	stream    StreamHandle
	epoch     int
}

// NewJobStreamSync creates a syncer for the given agent. onChange may
// be nil; when set it is invoked after each applied frame and each
// connection state change.
func NewJobStreamSync(agentID string, opener StreamOpener, logger *log.Logger, onChange func()) *JobStreamSync {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &JobStreamSync{
		agentID:  agentID,
		opener:   opener,
		logger:   logger.With("agent", agentID),
		onChange: onChange,
		jobs:     make(map[string]*models.Job),
	}
}

// Connect opens the job stream. Calling Connect while a stream is
// already open is a no-op; the transport owns all retry behavior.
func (s *JobStreamSync) Connect(ctx context.Context) {
	s.mu.Lock()
	if s.stream != nil {
		s.mu.Unlock()
		return
	}

	s.epoch++
	epoch := s.epoch
	s.stream = s.opener.OpenJobStream(ctx, s.agentID, services.StreamCallbacks{
		OnOpen:       func() { s.setConnected(epoch, true) },
		OnMessage:    func(data []byte) { s.handleFrame(epoch, data) },
		OnDisconnect: func(err error) { s.handleDisconnect(epoch, err) },
	})
	s.mu.Unlock()
}

// Disconnect closes the stream. The job map is retained so a later
// Connect resumes from last-known-good state. Safe to call repeatedly.
func (s *JobStreamSync) Disconnect() {
	s.mu.Lock()
	st := s.stream
	s.stream = nil
	s.connected = false
	s.epoch++
	s.mu.Unlock()

	if st != nil {
		st.Close()
	}
}

// Connected reports whether the stream is currently open.
func (s *JobStreamSync) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Jobs returns the current jobs in presentation order, newest first.
// The returned jobs are deep copies.
func (s *JobStreamSync) Jobs() []models.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Job, 0, len(s.order))
	for _, id := range s.order {
		if j, ok := s.jobs[id]; ok {
			out = append(out, j.Clone())
		}
	}
	return out
}

// Job returns a copy of one job by ID.
func (s *JobStreamSync) Job(jobID string) (models.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[jobID]
	if !ok {
		return models.Job{}, false
	}
	return j.Clone(), true
}

// ActiveVideoIDs returns the de-duplicated union of activeVideoIds
// across all pending and processing jobs, in job order. Deterministic
// for a given job map.
func (s *JobStreamSync) ActiveVideoIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{})
	var ids []string
	for _, id := range s.order {
		j, ok := s.jobs[id]
		if !ok || !j.Active() {
			continue
		}
		for _, vid := range j.ActiveVideoIDs {
			if _, dup := seen[vid]; dup {
				continue
			}
			seen[vid] = struct{}{}
			ids = append(ids, vid)
		}
	}
	return ids
}

// setConnected applies a connection state change for the given epoch.
func (s *JobStreamSync) setConnected(epoch int, connected bool) {
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return
	}
	changed := s.connected != connected
	s.connected = connected
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

func (s *JobStreamSync) handleDisconnect(epoch int, err error) {
	if err != nil {
		s.logger.Debug("job stream dropped", "error", err)
	}
	s.setConnected(epoch, false)
}

// handleFrame decodes and applies one push frame. Frames from a stale
// epoch (delivered after Disconnect unlocked but before the transport
// finished closing) are dropped.
func (s *JobStreamSync) handleFrame(epoch int, data []byte) {
	var frame jobFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		s.logger.Debug("discarding malformed job frame", "error", err)
		return
	}

	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return
	}

	switch frame.Type {
	case "connected":
		s.connected = true
	case "snapshot":
		s.applySnapshot(frame.Jobs)
	case "jobUpdate":
		if !s.applyUpdate(frame.Job) {
			s.mu.Unlock()
			return
		}
	default:
		s.logger.Debug("discarding job frame with unknown type", "type", frame.Type)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.notify()
}

// applySnapshot replaces the entire job map. The snapshot is
// authoritative: nothing from prior incremental updates survives.
// Caller holds s.mu.
func (s *JobStreamSync) applySnapshot(jobs []models.Job) {
	s.jobs = make(map[string]*models.Job, len(jobs))
	s.order = s.order[:0]
	for _, j := range jobs {
		if j.JobID == "" {
			continue
		}
		if _, dup := s.jobs[j.JobID]; dup {
			continue
		}
		job := j.Clone()
		s.jobs[j.JobID] = &job
		s.order = append(s.order, j.JobID)
	}
}

// applyUpdate merges one incremental update, prepending a new job when
// the jobId is unseen. Returns false when the patch is malformed.
// Caller holds s.mu.
func (s *JobStreamSync) applyUpdate(raw json.RawMessage) bool {
	var patch models.JobPatch
	if err := json.Unmarshal(raw, &patch); err != nil {
		s.logger.Debug("discarding malformed job update", "error", err)
		return false
	}

	if existing, ok := s.jobs[patch.JobID]; ok {
		existing.Apply(patch)
		return true
	}

	job := patch.Job()
	s.jobs[patch.JobID] = &job
	s.order = append([]string{patch.JobID}, s.order...)
	return true
}

func (s *JobStreamSync) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}

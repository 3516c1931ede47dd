package models

import (
	"encoding/json"
	"fmt"
)

// JobStatus enumerates the lifecycle states of an import job.
//
// Transitions run pending → processing → {completed, failed}. Terminal
// states never revert.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Valid reports whether s is one of the known statuses.
func (s JobStatus) Valid() bool {
	switch s {
	case JobPending, JobProcessing, JobCompleted, JobFailed:
		return true
	}
	return false
}

// Terminal reports whether s is completed or failed.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// VideoRef identifies one video within a job's queued, completed, or failed lists.
type VideoRef struct {
	VideoID string `json:"videoId"`
	Title   string `json:"title"`
	Reason  string `json:"reason,omitempty"`
}

// Job represents one backfill/import operation for an agent.
//
// Jobs are mutated exclusively by incoming stream messages; see
// [Job.Apply] for merge semantics.
type Job struct {
	JobID           string     `json:"jobId"`
	Status          JobStatus  `json:"status"`
	TotalVideos     int        `json:"totalVideos"`
	ProcessedVideos int        `json:"processedVideos"`
	EnqueuedVideos  int        `json:"enqueuedVideos"`
	ActiveVideoIDs  []string   `json:"activeVideoIds"`
	CompletedVideos []VideoRef `json:"completedVideos"`
	QueuedVideos    []VideoRef `json:"queuedVideos"`
	FailedVideos    []VideoRef `json:"failedVideos"`
	Error           string     `json:"error,omitempty"`
	CreatedAt       string     `json:"createdAt"`
	UpdatedAt       string     `json:"updatedAt"`
}

// Active reports whether the job is still pending or processing.
func (j Job) Active() bool {
	return !j.Status.Terminal()
}

// Clone returns a deep copy of the job so callers can hold snapshots
// without aliasing the owner's slices.
func (j Job) Clone() Job {
	c := j
	if j.ActiveVideoIDs != nil {
		c.ActiveVideoIDs = append([]string(nil), j.ActiveVideoIDs...)
	}
	if j.CompletedVideos != nil {
		c.CompletedVideos = append([]VideoRef(nil), j.CompletedVideos...)
	}
	if j.QueuedVideos != nil {
		c.QueuedVideos = append([]VideoRef(nil), j.QueuedVideos...)
	}
	if j.FailedVideos != nil {
		c.FailedVideos = append([]VideoRef(nil), j.FailedVideos...)
	}
	return c
}

// JobPatch is a tagged incremental update for a single job.
//
// Every field other than JobID carries explicit presence: a nil pointer
// means "not in the frame, retain the current value", while a non-nil
// pointer replaces the field wholesale. An explicit empty array clears
// the field; this resolves the ambiguity between "absent" and "empty"
// in favor of presence-based replacement.
type JobPatch struct {
	JobID           string
	Status          *JobStatus
	TotalVideos     *int
	ProcessedVideos *int
	EnqueuedVideos  *int
	ActiveVideoIDs  *[]string
	CompletedVideos *[]VideoRef
	QueuedVideos    *[]VideoRef
	FailedVideos    *[]VideoRef
	Error           *string
	CreatedAt       *string
	UpdatedAt       *string
}

// UnmarshalJSON decodes a patch with field-presence detection. A key
// that appears in the payload is marked present even when its value is
// null or empty; null values decode to the zero value of the field.
func (p *JobPatch) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("failed to decode job patch: %w", err)
	}

	raw, ok := fields["jobId"]
	if !ok {
		return fmt.Errorf("job patch missing jobId")
	}
	if err := json.Unmarshal(raw, &p.JobID); err != nil {
		return fmt.Errorf("invalid jobId in job patch: %w", err)
	}
	if p.JobID == "" {
		return fmt.Errorf("job patch has empty jobId")
	}

	if err := patchField(fields, "status", &p.Status); err != nil {
		return err
	}
	if err := patchField(fields, "totalVideos", &p.TotalVideos); err != nil {
		return err
	}
	if err := patchField(fields, "processedVideos", &p.ProcessedVideos); err != nil {
		return err
	}
	if err := patchField(fields, "enqueuedVideos", &p.EnqueuedVideos); err != nil {
		return err
	}
	if err := patchField(fields, "activeVideoIds", &p.ActiveVideoIDs); err != nil {
		return err
	}
	if err := patchField(fields, "completedVideos", &p.CompletedVideos); err != nil {
		return err
	}
	if err := patchField(fields, "queuedVideos", &p.QueuedVideos); err != nil {
		return err
	}
	if err := patchField(fields, "failedVideos", &p.FailedVideos); err != nil {
		return err
	}
	if err := patchField(fields, "error", &p.Error); err != nil {
		return err
	}
	if err := patchField(fields, "createdAt", &p.CreatedAt); err != nil {
		return err
	}
	if err := patchField(fields, "updatedAt", &p.UpdatedAt); err != nil {
		return err
	}

	return nil
}

// patchField decodes fields[key] into *dst when the key is present.
// A JSON null marks the field present with its zero value.
func patchField[T any](fields map[string]json.RawMessage, key string, dst **T) error {
	raw, ok := fields[key]
	if !ok {
		return nil
	}

	var value T
	if string(raw) != "null" {
		if err := json.Unmarshal(raw, &value); err != nil {
			return fmt.Errorf("invalid %s in job patch: %w", key, err)
		}
	}

	*dst = &value
	return nil
}

// Job constructs a Job from a patch targeting an unknown jobId. Absent
// fields take their zero values.
func (p JobPatch) Job() Job {
	j := Job{JobID: p.JobID, Status: JobPending}
	j.Apply(p)
	return j
}

// Apply merges the patch into the job field by field. Present fields
// replace the existing value wholesale (no element-wise merging of
// slices); absent fields are retained. Once the job is terminal its
// status is frozen: a patch carrying a different status keeps the
// terminal one while all other fields in the patch still apply.
// Unknown status strings are likewise ignored.
func (j *Job) Apply(p JobPatch) {
	if p.Status != nil && p.Status.Valid() && !j.Status.Terminal() {
		j.Status = *p.Status
	}
	if p.TotalVideos != nil {
		j.TotalVideos = *p.TotalVideos
	}
	if p.ProcessedVideos != nil {
		j.ProcessedVideos = *p.ProcessedVideos
	}
	if p.EnqueuedVideos != nil {
		j.EnqueuedVideos = *p.EnqueuedVideos
	}
	if p.ActiveVideoIDs != nil {
		j.ActiveVideoIDs = *p.ActiveVideoIDs
	}
	if p.CompletedVideos != nil {
		j.CompletedVideos = *p.CompletedVideos
	}
	if p.QueuedVideos != nil {
		j.QueuedVideos = *p.QueuedVideos
	}
	if p.FailedVideos != nil {
		j.FailedVideos = *p.FailedVideos
	}
	if p.Error != nil {
		j.Error = *p.Error
	}
	if p.CreatedAt != nil {
		j.CreatedAt = *p.CreatedAt
	}
	if p.UpdatedAt != nil {
		j.UpdatedAt = *p.UpdatedAt
	}
}

// VideoProgress is the live transient state for one video while it is
// actively being processed. Owned exclusively by the video progress
// syncer.
type VideoProgress struct {
	VideoID   string
	Progress  int
	Status    string
	Connected bool
}

// ImportAccepted is the backend's response to a start-import request.
type ImportAccepted struct {
	JobID  string    `json:"jobId"`
	Status JobStatus `json:"status"`
}

package models

import (
	"encoding/json"
	"testing"
)

func TestJobStatus(t *testing.T) {
	t.Run("Terminal", func(t *testing.T) {
		for _, s := range []JobStatus{JobPending, JobProcessing} {
			if s.Terminal() {
				t.Errorf("%s should not be terminal", s)
			}
		}
		for _, s := range []JobStatus{JobCompleted, JobFailed} {
			if !s.Terminal() {
				t.Errorf("%s should be terminal", s)
			}
		}
	})

	t.Run("Valid", func(t *testing.T) {
		if !JobProcessing.Valid() {
			t.Error("processing should be valid")
		}
		if JobStatus("exploded").Valid() {
			t.Error("unknown status should be invalid")
		}
	})
}

func TestJobPatchUnmarshal(t *testing.T) {
	t.Run("Presence Detection", func(t *testing.T) {
		payload := `{"jobId":"j1","processedVideos":3,"activeVideoIds":[]}`

		var p JobPatch
		if err := json.Unmarshal([]byte(payload), &p); err != nil {
			t.Fatalf("failed to unmarshal patch: %v", err)
		}

		if p.JobID != "j1" {
			t.Errorf("expected jobId j1, got %s", p.JobID)
		}
		if p.ProcessedVideos == nil || *p.ProcessedVideos != 3 {
			t.Error("expected processedVideos to be present with value 3")
		}
		if p.ActiveVideoIDs == nil {
			t.Fatal("explicit empty activeVideoIds should be present")
		}
		if len(*p.ActiveVideoIDs) != 0 {
			t.Errorf("expected empty activeVideoIds, got %v", *p.ActiveVideoIDs)
		}
		if p.TotalVideos != nil {
			t.Error("absent totalVideos should be nil")
		}
		if p.Status != nil {
			t.Error("absent status should be nil")
		}
	})

	t.Run("Null Marks Present With Zero Value", func(t *testing.T) {
		var p JobPatch
		if err := json.Unmarshal([]byte(`{"jobId":"j1","error":null}`), &p); err != nil {
			t.Fatalf("failed to unmarshal patch: %v", err)
		}
		if p.Error == nil {
			t.Fatal("null error should be present")
		}
		if *p.Error != "" {
			t.Errorf("null error should decode to empty string, got %q", *p.Error)
		}
	})

	t.Run("Missing JobID", func(t *testing.T) {
		var p JobPatch
		if err := json.Unmarshal([]byte(`{"status":"processing"}`), &p); err == nil {
			t.Error("expected error for patch without jobId")
		}
	})
}

func TestJobApply(t *testing.T) {
	t.Run("Shallow Merge Replaces Wholesale", func(t *testing.T) {
		job := Job{
			JobID:          "j1",
			Status:         JobProcessing,
			TotalVideos:    10,
			ActiveVideoIDs: []string{"a", "b"},
		}

		ids := []string{"c"}
		job.Apply(JobPatch{JobID: "j1", ActiveVideoIDs: &ids})

		if len(job.ActiveVideoIDs) != 1 || job.ActiveVideoIDs[0] != "c" {
			t.Errorf("expected activeVideoIds [c], got %v", job.ActiveVideoIDs)
		}
		if job.TotalVideos != 10 {
			t.Errorf("unrelated field changed: totalVideos = %d", job.TotalVideos)
		}
	})

	t.Run("Terminal Status Sticky", func(t *testing.T) {
		job := Job{JobID: "j1", Status: JobCompleted}

		status := JobProcessing
		processed := 7
		job.Apply(JobPatch{JobID: "j1", Status: &status, ProcessedVideos: &processed})

		if job.Status != JobCompleted {
			t.Errorf("terminal status reverted to %s", job.Status)
		}
		if job.ProcessedVideos != 7 {
			t.Error("non-status fields should still apply")
		}
	})

	t.Run("Invalid Status Ignored", func(t *testing.T) {
		job := Job{JobID: "j1", Status: JobProcessing}

		bogus := JobStatus("bogus")
		job.Apply(JobPatch{JobID: "j1", Status: &bogus})

		if job.Status != JobProcessing {
			t.Errorf("invalid status applied: %s", job.Status)
		}
	})
}

func TestJobClone(t *testing.T) {
	job := Job{
		JobID:          "j1",
		ActiveVideoIDs: []string{"a"},
		FailedVideos:   []VideoRef{{VideoID: "x", Title: "t", Reason: "boom"}},
	}

	c := job.Clone()
	c.ActiveVideoIDs[0] = "mutated"
	c.FailedVideos[0].Reason = "mutated"

	if job.ActiveVideoIDs[0] != "a" {
		t.Error("clone shares activeVideoIds backing array")
	}
	if job.FailedVideos[0].Reason != "boom" {
		t.Error("clone shares failedVideos backing array")
	}
}

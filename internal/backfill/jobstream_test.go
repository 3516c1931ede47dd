package backfill

import (
	"context"
	"reflect"
	"testing"

	"github.com/podbridge/podbridge/internal/models"
)

func TestJobStreamSync(t *testing.T) {
	connect := func(t *testing.T) (*JobStreamSync, *fakeOpener, *fakeStream) {
		t.Helper()
		opener := newFakeOpener()
		sync := NewJobStreamSync("agent-1", opener, nil, nil)
		sync.Connect(context.Background())
		stream := opener.jobStream(t)
		stream.open()
		return sync, opener, stream
	}

	t.Run("Connect", func(t *testing.T) {
		sync, opener, _ := connect(t)
		defer sync.Disconnect()

		if !sync.Connected() {
			t.Error("expected connected after open")
		}

		t.Run("Is Idempotent", func(t *testing.T) {
			sync.Connect(context.Background())

			opener.mu.Lock()
			count := len(opener.jobStreams)
			opener.mu.Unlock()
			if count != 1 {
				t.Errorf("expected a single job stream, got %d", count)
			}
		})
	})

	t.Run("Snapshot Replaces State", func(t *testing.T) {
		sync, _, stream := connect(t)
		defer sync.Disconnect()

		stream.push(t, `{"type":"jobUpdate","job":{"jobId":"j1","status":"processing","totalVideos":5,"activeVideoIds":["v1"]}}`)
		stream.push(t, `{"type":"jobUpdate","job":{"jobId":"j2","status":"pending"}}`)
		stream.push(t, `{"type":"snapshot","jobs":[{"jobId":"j3","status":"processing","totalVideos":2}]}`)

		jobs := sync.Jobs()
		if len(jobs) != 1 {
			t.Fatalf("expected snapshot to replace job map, got %d jobs", len(jobs))
		}
		if jobs[0].JobID != "j3" || jobs[0].TotalVideos != 2 {
			t.Errorf("unexpected surviving job %+v", jobs[0])
		}
		if len(jobs[0].ActiveVideoIDs) != 0 {
			t.Error("fields from discarded incrementals survived the snapshot")
		}
	})

	t.Run("Update Merges Shallow", func(t *testing.T) {
		sync, _, stream := connect(t)
		defer sync.Disconnect()

		stream.push(t, `{"type":"snapshot","jobs":[{"jobId":"j1","status":"processing","totalVideos":10,"activeVideoIds":["a","b"]}]}`)
		stream.push(t, `{"type":"jobUpdate","job":{"jobId":"j1","activeVideoIds":["c"]}}`)

		job, ok := sync.Job("j1")
		if !ok {
			t.Fatal("expected job j1")
		}
		if !reflect.DeepEqual(job.ActiveVideoIDs, []string{"c"}) {
			t.Errorf("expected wholesale replacement of activeVideoIds, got %v", job.ActiveVideoIDs)
		}
		if job.TotalVideos != 10 {
			t.Errorf("unrelated field changed: totalVideos = %d", job.TotalVideos)
		}

		t.Run("Empty Array Clears", func(t *testing.T) {
			stream.push(t, `{"type":"jobUpdate","job":{"jobId":"j1","activeVideoIds":[]}}`)

			job, _ := sync.Job("j1")
			if len(job.ActiveVideoIDs) != 0 {
				t.Errorf("explicit empty array should clear, got %v", job.ActiveVideoIDs)
			}
		})
	})

	t.Run("Unknown Job Prepended", func(t *testing.T) {
		sync, _, stream := connect(t)
		defer sync.Disconnect()

		stream.push(t, `{"type":"snapshot","jobs":[{"jobId":"j1","status":"completed"},{"jobId":"j2","status":"failed"}]}`)
		stream.push(t, `{"type":"jobUpdate","job":{"jobId":"j9","status":"pending"}}`)

		jobs := sync.Jobs()
		if len(jobs) != 3 {
			t.Fatalf("expected 3 jobs, got %d", len(jobs))
		}
		if jobs[0].JobID != "j9" {
			t.Errorf("expected new job first, got %s", jobs[0].JobID)
		}
		if jobs[1].JobID != "j1" || jobs[2].JobID != "j2" {
			t.Error("existing job order disturbed")
		}
	})

	t.Run("Terminal Status Sticky", func(t *testing.T) {
		sync, _, stream := connect(t)
		defer sync.Disconnect()

		stream.push(t, `{"type":"snapshot","jobs":[{"jobId":"j1","status":"completed","processedVideos":4}]}`)
		stream.push(t, `{"type":"jobUpdate","job":{"jobId":"j1","status":"processing","processedVideos":5}}`)

		job, _ := sync.Job("j1")
		if job.Status != models.JobCompleted {
			t.Errorf("terminal status reverted to %s", job.Status)
		}
		if job.ProcessedVideos != 5 {
			t.Error("other fields in the same update should still apply")
		}
	})

	t.Run("Malformed Frames Discarded", func(t *testing.T) {
		sync, _, stream := connect(t)
		defer sync.Disconnect()

		stream.push(t, `{"type":"snapshot","jobs":[{"jobId":"j1","status":"pending"}]}`)

		stream.push(t, `not json at all`)
		stream.push(t, `{"type":"mystery","jobs":[]}`)
		stream.push(t, `{"type":"jobUpdate","job":{"status":"processing"}}`)

		jobs := sync.Jobs()
		if len(jobs) != 1 || jobs[0].Status != models.JobPending {
			t.Errorf("malformed frames altered state: %+v", jobs)
		}
	})

	t.Run("Transport Drop Retains Jobs", func(t *testing.T) {
		sync, _, stream := connect(t)
		defer sync.Disconnect()

		stream.push(t, `{"type":"snapshot","jobs":[{"jobId":"j1","status":"processing"}]}`)
		stream.drop(nil)

		if sync.Connected() {
			t.Error("expected disconnected after transport drop")
		}
		if len(sync.Jobs()) != 1 {
			t.Error("job map should survive transport drops")
		}

		t.Run("Reconnect Restores Flag", func(t *testing.T) {
			stream.open()
			if !sync.Connected() {
				t.Error("expected connected after reconnect")
			}
		})
	})

	t.Run("Frames After Disconnect Are Dropped", func(t *testing.T) {
		sync, _, stream := connect(t)

		stream.push(t, `{"type":"snapshot","jobs":[{"jobId":"j1","status":"pending"}]}`)
		sync.Disconnect()

		stream.push(t, `{"type":"snapshot","jobs":[{"jobId":"j2","status":"pending"}]}`)
		stream.open()

		if _, ok := sync.Job("j2"); ok {
			t.Error("frame from a closed connection was applied")
		}
		if sync.Connected() {
			t.Error("stale open notification flipped the connected flag")
		}
	})

	t.Run("ActiveVideoIDs", func(t *testing.T) {
		sync, _, stream := connect(t)
		defer sync.Disconnect()

		stream.push(t, `{"type":"snapshot","jobs":[
			{"jobId":"j1","status":"processing","activeVideoIds":["v1","v2"]},
			{"jobId":"j2","status":"pending","activeVideoIds":["v2","v3"]},
			{"jobId":"j3","status":"completed","activeVideoIds":["v4"]}
		]}`)

		ids := sync.ActiveVideoIDs()
		if !reflect.DeepEqual(ids, []string{"v1", "v2", "v3"}) {
			t.Errorf("expected de-duplicated union over active jobs, got %v", ids)
		}
	})

	t.Run("OnChange Fires Per Applied Frame", func(t *testing.T) {
		opener := newFakeOpener()
		changes := 0
		sync := NewJobStreamSync("agent-1", opener, nil, func() { changes++ })
		sync.Connect(context.Background())
		defer sync.Disconnect()

		stream := opener.jobStream(t)
		stream.push(t, `{"type":"snapshot","jobs":[]}`)
		stream.push(t, `garbage`)
		stream.push(t, `{"type":"jobUpdate","job":{"jobId":"j1"}}`)

		if changes != 2 {
			t.Errorf("expected 2 change notifications, got %d", changes)
		}
	})
}

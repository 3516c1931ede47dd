package backfill

import (
	"math"

	"github.com/podbridge/podbridge/internal/models"
)

// RowState classifies one video row within a job view.
type RowState string

const (
	RowActive    RowState = "active"
	RowQueued    RowState = "queued"
	RowCompleted RowState = "completed"
	RowFailed    RowState = "failed"
)

// UnifiedVideoRow is one display row derived from a job and the live
// per-video progress. Purely a projection, never mutated in place.
type UnifiedVideoRow struct {
	VideoID   string
	Title     string
	State     RowState
	Progress  int
	Status    string
	Connected bool
	Reason    string
}

// JobView is the render-ready projection of one job.
type JobView struct {
	Job       models.Job
	Rows      []UnifiedVideoRow
	Percent   int
	Remaining int
	Badge     string
}

// Badge labels by job status.
const (
	BadgeQueued          = "Queued"
	BadgeProcessing      = "Processing"
	BadgeCompletedErrors = "Completed with errors"
	BadgeCompletedClean  = "All videos queued"
	BadgeFailed          = "Import failed"
)

// BadgeLabel maps a job's status, and whether it carries failed
// videos, to its presentation badge.
func BadgeLabel(j models.Job) string {
	switch j.Status {
	case models.JobPending:
		return BadgeQueued
	case models.JobProcessing:
		return BadgeProcessing
	case models.JobCompleted:
		if len(j.FailedVideos) > 0 {
			return BadgeCompletedErrors
		}
		return BadgeCompletedClean
	case models.JobFailed:
		return BadgeFailed
	}
	return string(j.Status)
}

// Percent returns the overall completion percentage for a job,
// rounded to the nearest integer, or 0 when no total is known yet.
func Percent(j models.Job) int {
	if j.TotalVideos <= 0 {
		return 0
	}
	return int(math.Round(float64(j.ProcessedVideos) / float64(j.TotalVideos) * 100))
}

// Project combines the job list and live progress map into ordered job
// views, skipping dismissed jobs. Pure and idempotent: identical
// inputs always yield structurally identical output, and calling it
// mutates nothing.
func Project(jobs []models.Job, progress map[string]models.VideoProgress, dismissed map[string]bool) []JobView {
	views := make([]JobView, 0, len(jobs))
	for _, j := range jobs {
		if dismissed[j.JobID] {
			continue
		}
		views = append(views, JobView{
			Job:       j.Clone(),
			Rows:      projectRows(j, progress),
			Percent:   Percent(j),
			Remaining: j.TotalVideos - j.ProcessedVideos,
			Badge:     BadgeLabel(j),
		})
	}
	return views
}

// projectRows builds one job's rows in fixed category order: active,
// queued, completed, failed. Within a category source order is
// preserved.
func projectRows(j models.Job, progress map[string]models.VideoProgress) []UnifiedVideoRow {
	settled := make(map[string]struct{}, len(j.CompletedVideos)+len(j.FailedVideos))
	for _, v := range j.CompletedVideos {
		settled[v.VideoID] = struct{}{}
	}
	for _, v := range j.FailedVideos {
		settled[v.VideoID] = struct{}{}
	}

	active := make(map[string]struct{}, len(j.ActiveVideoIDs))
	titles := make(map[string]string)
	for _, v := range j.QueuedVideos {
		titles[v.VideoID] = v.Title
	}

	rows := make([]UnifiedVideoRow, 0, len(j.ActiveVideoIDs)+len(j.QueuedVideos)+len(j.CompletedVideos)+len(j.FailedVideos))

	// Active rows: working videos not already settled. The live
	// progress decides whether the row shows as queued, active, or
	// already complete.
	for _, id := range j.ActiveVideoIDs {
		active[id] = struct{}{}
		if _, done := settled[id]; done {
			continue
		}

		row := UnifiedVideoRow{VideoID: id, Title: titles[id], State: RowQueued}
		if row.Title == "" {
			row.Title = id
		}
		if p, ok := progress[id]; ok {
			row.Progress = p.Progress
			row.Status = p.Status
			row.Connected = p.Connected
			switch {
			case p.Progress >= 100:
				row.State = RowCompleted
			case p.Progress > 0:
				row.State = RowActive
			}
		}
		rows = append(rows, row)
	}

	for _, v := range j.QueuedVideos {
		if _, activated := active[v.VideoID]; activated {
			continue
		}
		rows = append(rows, UnifiedVideoRow{
			VideoID: v.VideoID,
			Title:   v.Title,
			State:   RowQueued,
		})
	}

	for _, v := range j.CompletedVideos {
		rows = append(rows, UnifiedVideoRow{
			VideoID:  v.VideoID,
			Title:    v.Title,
			State:    RowCompleted,
			Progress: 100,
		})
	}

	for _, v := range j.FailedVideos {
		rows = append(rows, UnifiedVideoRow{
			VideoID: v.VideoID,
			Title:   v.Title,
			State:   RowFailed,
			Reason:  v.Reason,
		})
	}

	return rows
}

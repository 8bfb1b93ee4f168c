package models

import "time"

// SyncJobStatus is the run state of a named sync job.
type SyncJobStatus string

const (
	SyncJobIdle      SyncJobStatus = "idle"
	SyncJobRunning   SyncJobStatus = "running"
	SyncJobCompleted SyncJobStatus = "completed"
	SyncJobFailed    SyncJobStatus = "failed"
	SyncJobPaused    SyncJobStatus = "paused"
)

// SyncJobType selects which part of the catalog a job synchronizes.
type SyncJobType string

const (
	SyncJobTypeMovies  SyncJobType = "movies"
	SyncJobTypeTVShows SyncJobType = "tvshows"
	SyncJobTypeGenres  SyncJobType = "genres"
	SyncJobTypeAll     SyncJobType = "all"
)

// SyncJob is the persisted record of one logical sync job. One row per job
// name; the engine mutates it in place over the course of a run.
//
// Allowed status transitions: idle -> running -> completed|failed,
// running -> paused -> running. Completed and failed jobs can be re-run,
// which resets progress to zero.
type SyncJob struct {
	ID             int64         `json:"id"`
	Name           string        `json:"name"`
	Type           SyncJobType   `json:"type"`
	Status         SyncJobStatus `json:"status"`
	Progress       int           `json:"progress"` // 0-100, monotonic within a run
	ItemsProcessed int           `json:"itemsProcessed"`
	TotalItems     int           `json:"totalItems"`
	SuccessCount   int           `json:"successCount"`
	FailureCount   int           `json:"failureCount"`
	LastRunAt      *time.Time    `json:"lastRunAt,omitempty"`
	LastError      string        `json:"lastError,omitempty"`
	Config         string        `json:"config,omitempty"` // free-form JSON
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

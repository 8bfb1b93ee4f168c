package database

import (
	"database/sql"
	"fmt"
	"time"

	"streamvault/models"
)

// SyncJobRepository persists sync jobs. One row per logical job name; the
// engine mutates it in place during a run.
type SyncJobRepository struct {
	db *sql.DB
}

func NewSyncJobRepository(db *sql.DB) *SyncJobRepository {
	return &SyncJobRepository{db: db}
}

const syncJobColumns = `id, name, type, status, progress, items_processed, total_items,
	success_count, failure_count, last_run_at, last_error, config, created_at, updated_at`

// GetOrCreate returns the job with the given name, creating an idle one if
// it does not exist yet.
func (r *SyncJobRepository) GetOrCreate(name string, jobType models.SyncJobType) (*models.SyncJob, error) {
	job, err := r.GetByName(name)
	if err == nil {
		return job, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	now := time.Now().UTC()
	_, err = r.db.Exec(`INSERT INTO sync_jobs (name, type, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO NOTHING`, name, jobType, models.SyncJobIdle, now, now)
	if err != nil {
		return nil, fmt.Errorf("create sync job: %w", err)
	}
	return r.GetByName(name)
}

// GetByName returns the job, or ErrNotFound.
func (r *SyncJobRepository) GetByName(name string) (*models.SyncJob, error) {
	row := r.db.QueryRow(`SELECT `+syncJobColumns+` FROM sync_jobs WHERE name = ?`, name)
	return scanSyncJob(row)
}

// List returns all jobs ordered by name.
func (r *SyncJobRepository) List() ([]models.SyncJob, error) {
	rows, err := r.db.Query(`SELECT ` + syncJobColumns + ` FROM sync_jobs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list sync jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.SyncJob
	for rows.Next() {
		job, err := scanSyncJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// MarkRunning moves the job to running and resets run counters. Progress is
// monotonic within a run and starts at zero.
func (r *SyncJobRepository) MarkRunning(name string) error {
	now := time.Now().UTC()
	_, err := r.db.Exec(`UPDATE sync_jobs SET status = ?, progress = 0, items_processed = 0,
		total_items = 0, last_error = '', last_run_at = ?, updated_at = ? WHERE name = ?`,
		models.SyncJobRunning, now, now, name)
	return err
}

// UpdateProgress records page-completion progress for a running job.
func (r *SyncJobRepository) UpdateProgress(name string, progress, itemsProcessed, totalItems int) error {
	_, err := r.db.Exec(`UPDATE sync_jobs SET progress = MAX(progress, ?), items_processed = ?,
		total_items = ?, updated_at = ? WHERE name = ?`,
		progress, itemsProcessed, totalItems, time.Now().UTC(), name)
	return err
}

// MarkCompleted moves the job to completed and increments its success counter.
func (r *SyncJobRepository) MarkCompleted(name string) error {
	_, err := r.db.Exec(`UPDATE sync_jobs SET status = ?, progress = 100,
		success_count = success_count + 1, updated_at = ? WHERE name = ?`,
		models.SyncJobCompleted, time.Now().UTC(), name)
	return err
}

// MarkFailed moves the job to failed, recording the error and incrementing
// the failure counter.
func (r *SyncJobRepository) MarkFailed(name, errMsg string) error {
	_, err := r.db.Exec(`UPDATE sync_jobs SET status = ?, last_error = ?,
		failure_count = failure_count + 1, updated_at = ? WHERE name = ?`,
		models.SyncJobFailed, errMsg, time.Now().UTC(), name)
	return err
}

// SetStatus sets the job status directly (pause/resume transitions).
func (r *SyncJobRepository) SetStatus(name string, status models.SyncJobStatus) error {
	res, err := r.db.Exec(`UPDATE sync_jobs SET status = ?, updated_at = ? WHERE name = ?`,
		status, time.Now().UTC(), name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSyncJob(row rowScanner) (*models.SyncJob, error) {
	var job models.SyncJob
	var lastRun sql.NullTime
	err := row.Scan(&job.ID, &job.Name, &job.Type, &job.Status, &job.Progress,
		&job.ItemsProcessed, &job.TotalItems, &job.SuccessCount, &job.FailureCount,
		&lastRun, &job.LastError, &job.Config, &job.CreatedAt, &job.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if lastRun.Valid {
		t := lastRun.Time
		job.LastRunAt = &t
	}
	return &job, nil
}

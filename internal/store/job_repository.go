package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tOgg1/trackline/internal/jobs"
)

// Job repository errors.
var ErrJobNotFound = errors.New("render job not found")

// JobRepository handles render job persistence. It satisfies jobs.Source
// for the watcher.
type JobRepository struct {
	db *DB
}

// NewJobRepository creates a new JobRepository.
func NewJobRepository(db *DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create queues a new render job for a project.
func (r *JobRepository) Create(ctx context.Context, job *jobs.Job) error {
	if job.ProjectID == "" {
		return fmt.Errorf("render job requires a project id")
	}

	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.State == "" {
		job.State = jobs.StateQueued
	}

	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO render_jobs (id, project_id, state, progress, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		job.ID,
		job.ProjectID,
		string(job.State),
		job.Progress,
		job.Error,
		job.CreatedAt.Format(time.RFC3339),
		job.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert render job: %w", err)
	}

	return nil
}

// Get retrieves a render job by id.
func (r *JobRepository) Get(ctx context.Context, id string) (*jobs.Job, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, project_id, state, progress, error, created_at, updated_at
		FROM render_jobs
		WHERE id = ?
	`, id)

	return scanJob(row.Scan)
}

// List retrieves all render jobs, newest first.
func (r *JobRepository) List(ctx context.Context) ([]*jobs.Job, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, state, progress, error, created_at, updated_at
		FROM render_jobs
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query render jobs: %w", err)
	}
	defer rows.Close()

	var all []*jobs.Job
	for rows.Next() {
		job, err := scanJob(rows.Scan)
		if err != nil {
			return nil, err
		}
		all = append(all, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating render jobs: %w", err)
	}

	return all, nil
}

// UpdateState advances a job's lifecycle state and progress.
func (r *JobRepository) UpdateState(ctx context.Context, id string, state jobs.State, progress float64, jobErr string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE render_jobs SET state = ?, progress = ?, error = ?, updated_at = ?
		WHERE id = ?
	`,
		string(state),
		progress,
		jobErr,
		time.Now().UTC().Format(time.RFC3339),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update render job: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrJobNotFound
	}

	return nil
}

// Delete removes a render job.
func (r *JobRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM render_jobs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete render job: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrJobNotFound
	}

	return nil
}

func scanJob(scan func(dest ...any) error) (*jobs.Job, error) {
	var job jobs.Job
	var state string
	var jobErr sql.NullString
	var createdAt, updatedAt string

	err := scan(
		&job.ID,
		&job.ProjectID,
		&state,
		&job.Progress,
		&jobErr,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to scan render job: %w", err)
	}

	job.State = jobs.State(state)
	if jobErr.Valid {
		job.Error = jobErr.String
	}

	if job.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if job.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return &job, nil
}

package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
)

type dispatchJobRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDispatchJobRepository creates the durable dispatch queue repository
func NewDispatchJobRepository(db *sql.DB, logger *zap.Logger) *dispatchJobRepository {
	return &dispatchJobRepository{
		db:     db,
		logger: logger,
	}
}

func (r *dispatchJobRepository) Enqueue(ctx context.Context, job *domain.DispatchJob) error {
	query := `
		INSERT INTO dispatch_jobs (id, order_id, status, attempts, last_error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	now := time.Now()
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = domain.JobStatusQueued
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		job.ID,
		job.OrderID,
		job.Status,
		job.Attempts,
		job.LastError,
		job.CreatedAt,
		job.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to enqueue dispatch job", zap.Error(err), zap.String("order_id", job.OrderID.String()))
		return err
	}

	return nil
}

// ClaimNext flips the oldest queued job to running in a single statement so
// concurrent workers never claim the same job twice.
func (r *dispatchJobRepository) ClaimNext(ctx context.Context) (*domain.DispatchJob, error) {
	query := `
		UPDATE dispatch_jobs
		SET status = $1, attempts = attempts + 1, updated_at = $2
		WHERE id = (
			SELECT id FROM dispatch_jobs
			WHERE status = $3
			ORDER BY created_at ASC
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING id, order_id, status, attempts, last_error, created_at, updated_at
	`

	var job domain.DispatchJob
	var lastError sql.NullString

	err := r.db.QueryRowContext(ctx, query, domain.JobStatusRunning, time.Now(), domain.JobStatusQueued).Scan(
		&job.ID,
		&job.OrderID,
		&job.Status,
		&job.Attempts,
		&lastError,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to claim dispatch job", zap.Error(err))
		return nil, err
	}

	if lastError.Valid {
		job.LastError = &lastError.String
	}

	return &job, nil
}

func (r *dispatchJobRepository) MarkDone(ctx context.Context, id uuid.UUID, status domain.JobStatus, lastError *string) error {
	query := `
		UPDATE dispatch_jobs
		SET status = $2, last_error = $3, updated_at = $4
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, status, lastError, time.Now())
	if err != nil {
		r.logger.Error("Failed to mark dispatch job done", zap.Error(err), zap.String("job_id", id.String()))
		return err
	}
	return nil
}

func (r *dispatchJobRepository) Requeue(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE dispatch_jobs
		SET status = $2, last_error = NULL, updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, domain.JobStatusQueued, time.Now())
	if err != nil {
		r.logger.Error("Failed to requeue dispatch job", zap.Error(err), zap.String("job_id", id.String()))
		return err
	}
	return nil
}

func (r *dispatchJobRepository) ListByStatus(ctx context.Context, status domain.JobStatus, limit int) ([]*domain.DispatchJob, error) {
	query := `
		SELECT id, order_id, status, attempts, last_error, created_at, updated_at
		FROM dispatch_jobs
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, status, limit)
	if err != nil {
		r.logger.Error("Failed to list dispatch jobs", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var jobs []*domain.DispatchJob
	for rows.Next() {
		var job domain.DispatchJob
		var lastError sql.NullString

		err := rows.Scan(
			&job.ID,
			&job.OrderID,
			&job.Status,
			&job.Attempts,
			&lastError,
			&job.CreatedAt,
			&job.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		if lastError.Valid {
			job.LastError = &lastError.String
		}

		jobs = append(jobs, &job)
	}

	return jobs, rows.Err()
}

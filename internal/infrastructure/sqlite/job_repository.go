package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmartens/shopvault/internal/core/domain"
	"github.com/jmartens/shopvault/internal/core/repository"
)

const jobColumns = `id, command_id, kind, resource_id, status, output, error, start_time, end_time`

type jobRepository struct {
	db *DB
}

func NewJobRepository(db *DB) repository.JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *domain.Job) error {
	query := `
		INSERT INTO job (command_id, kind, resource_id, status, output, error, start_time, end_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		job.CommandID,
		job.Kind,
		NullString(job.ResourceID),
		job.Status,
		NullString(job.Output),
		NullString(job.Error),
		job.StartTime,
		NullTime(job.EndTime),
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	job.ID = id

	return nil
}

func (r *jobRepository) FindByID(ctx context.Context, id int64) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM job WHERE id = ?`
	job, err := scanJobColumns(r.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("job %w", repository.ErrNotFound)
	}
	return job, err
}

func (r *jobRepository) FindByCommandID(ctx context.Context, commandID string) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM job WHERE command_id = ?`
	job, err := scanJobColumns(r.db.QueryRowContext(ctx, query, commandID).Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("job %w", repository.ErrNotFound)
	}
	return job, err
}

func (r *jobRepository) Update(ctx context.Context, job *domain.Job) error {
	query := `
		UPDATE job
		SET status = ?, output = ?, error = ?, end_time = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		job.Status,
		NullString(job.Output),
		NullString(job.Error),
		NullTime(job.EndTime),
		job.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("job %w: %d", repository.ErrNotFound, job.ID)
	}

	return nil
}

func (r *jobRepository) List(ctx context.Context, filter repository.JobFilter) ([]*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM job WHERE 1=1`
	args := []interface{}{}

	query, args = ApplyFilters(query, args, filter.Filters)
	query = ApplyOrdering(query, filter.Order, "start_time DESC")
	query, args = ApplyPagination(query, args, filter.Page, filter.PerPage)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*domain.Job
	for rows.Next() {
		job, err := scanJobColumns(rows.Scan)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating jobs: %w", err)
	}

	return jobs, nil
}

func (r *jobRepository) Count(ctx context.Context, filter repository.JobFilter) (int, error) {
	query := `SELECT COUNT(*) FROM job WHERE 1=1`
	args := []interface{}{}

	query, args = ApplyFilters(query, args, filter.Filters)

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	return count, nil
}

func scanJobColumns(scan func(...interface{}) error) (*domain.Job, error) {
	var job domain.Job
	var resourceID, output, errOutput sql.NullString
	var endTime sql.NullTime

	err := scan(
		&job.ID,
		&job.CommandID,
		&job.Kind,
		&resourceID,
		&job.Status,
		&output,
		&errOutput,
		&job.StartTime,
		&endTime,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}

	if resourceID.Valid {
		job.ResourceID = &resourceID.String
	}
	if output.Valid {
		job.Output = &output.String
	}
	if errOutput.Valid {
		job.Error = &errOutput.String
	}
	if endTime.Valid {
		job.EndTime = &endTime.Time
	}

	return &job, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmartens/shopvault/internal/core/domain"
	"github.com/jmartens/shopvault/internal/core/repository"
)

const scheduleColumns = `id, name, kind, frequency, hour, minute, day_of_week, day_of_month,
	retention_days, enabled, last_run_at, next_run_at, created_at, updated_at`

type scheduleRepository struct {
	db *DB
}

func NewScheduleRepository(db *DB) repository.ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) Create(ctx context.Context, schedule *domain.Schedule) error {
	query := `
		INSERT INTO schedule (name, kind, frequency, hour, minute, day_of_week, day_of_month,
			retention_days, enabled, last_run_at, next_run_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		schedule.Name,
		schedule.Kind,
		schedule.Frequency,
		schedule.Hour,
		schedule.Minute,
		NullInt(schedule.DayOfWeek),
		NullInt(schedule.DayOfMonth),
		schedule.RetentionDays,
		schedule.Enabled,
		NullTime(schedule.LastRunAt),
		NullTime(schedule.NextRunAt),
		schedule.CreatedAt,
		schedule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	schedule.ID = id

	return nil
}

func (r *scheduleRepository) FindByID(ctx context.Context, id int64) (*domain.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedule WHERE id = ?`
	schedule, err := scanScheduleColumns(r.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("schedule %w", repository.ErrNotFound)
	}
	return schedule, err
}

func (r *scheduleRepository) Update(ctx context.Context, schedule *domain.Schedule) error {
	query := `
		UPDATE schedule
		SET name = ?, kind = ?, frequency = ?, hour = ?, minute = ?, day_of_week = ?, day_of_month = ?,
			retention_days = ?, enabled = ?, last_run_at = ?, next_run_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		schedule.Name,
		schedule.Kind,
		schedule.Frequency,
		schedule.Hour,
		schedule.Minute,
		NullInt(schedule.DayOfWeek),
		NullInt(schedule.DayOfMonth),
		schedule.RetentionDays,
		schedule.Enabled,
		NullTime(schedule.LastRunAt),
		NullTime(schedule.NextRunAt),
		schedule.UpdatedAt,
		schedule.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("schedule %w: %d", repository.ErrNotFound, schedule.ID)
	}

	return nil
}

func (r *scheduleRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM schedule WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("schedule %w: %d", repository.ErrNotFound, id)
	}

	return nil
}

func (r *scheduleRepository) List(ctx context.Context, filter repository.ScheduleFilter) ([]*domain.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedule WHERE 1=1`
	args := []interface{}{}

	if filter.Kind != nil {
		query += " AND kind = ?"
		args = append(args, *filter.Kind)
	}
	if filter.Enabled != nil {
		query += " AND enabled = ?"
		args = append(args, *filter.Enabled)
	}

	query += " ORDER BY id ASC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	return r.querySchedules(ctx, query, args...)
}

func (r *scheduleRepository) Count(ctx context.Context, filter repository.ScheduleFilter) (int, error) {
	query := `SELECT COUNT(*) FROM schedule WHERE 1=1`
	args := []interface{}{}

	if filter.Kind != nil {
		query += " AND kind = ?"
		args = append(args, *filter.Kind)
	}
	if filter.Enabled != nil {
		query += " AND enabled = ?"
		args = append(args, *filter.Enabled)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count schedules: %w", err)
	}

	return count, nil
}

func (r *scheduleRepository) FindAllEnabled(ctx context.Context) ([]*domain.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedule WHERE enabled = 1 ORDER BY id ASC`
	return r.querySchedules(ctx, query)
}

func (r *scheduleRepository) querySchedules(ctx context.Context, query string, args ...interface{}) ([]*domain.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer rows.Close()

	var schedules []*domain.Schedule
	for rows.Next() {
		schedule, err := scanScheduleColumns(rows.Scan)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedules: %w", err)
	}

	return schedules, nil
}

func scanScheduleColumns(scan func(...interface{}) error) (*domain.Schedule, error) {
	var schedule domain.Schedule
	var dayOfWeek, dayOfMonth sql.NullInt64
	var lastRunAt, nextRunAt sql.NullTime

	err := scan(
		&schedule.ID,
		&schedule.Name,
		&schedule.Kind,
		&schedule.Frequency,
		&schedule.Hour,
		&schedule.Minute,
		&dayOfWeek,
		&dayOfMonth,
		&schedule.RetentionDays,
		&schedule.Enabled,
		&lastRunAt,
		&nextRunAt,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan schedule: %w", err)
	}

	if dayOfWeek.Valid {
		dow := int(dayOfWeek.Int64)
		schedule.DayOfWeek = &dow
	}
	if dayOfMonth.Valid {
		dom := int(dayOfMonth.Int64)
		schedule.DayOfMonth = &dom
	}
	if lastRunAt.Valid {
		schedule.LastRunAt = &lastRunAt.Time
	}
	if nextRunAt.Valid {
		schedule.NextRunAt = &nextRunAt.Time
	}

	return &schedule, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmartens/shopvault/internal/core/domain"
	"github.com/jmartens/shopvault/internal/core/repository"
)

const backupColumns = `id, name, kind, status, database_file, database_size, media_file, media_size,
	compress, exclude_logs, schedule_id, created_by, error, created_at, started_at, completed_at`

type backupRepository struct {
	db *DB
}

func NewBackupRepository(db *DB) repository.BackupRepository {
	return &backupRepository{db: db}
}

func (r *backupRepository) Create(ctx context.Context, backup *domain.Backup) error {
	query := `
		INSERT INTO backup (` + backupColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		backup.ID,
		backup.Name,
		backup.Kind,
		backup.Status,
		NullString(backup.DatabaseFile),
		NullInt64(backup.DatabaseSize),
		NullString(backup.MediaFile),
		NullInt64(backup.MediaSize),
		backup.Compress,
		backup.ExcludeLogs,
		NullInt64(backup.ScheduleID),
		NullString(backup.CreatedBy),
		NullString(backup.Error),
		backup.CreatedAt,
		NullTime(backup.StartedAt),
		NullTime(backup.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}
	return nil
}

func (r *backupRepository) FindByID(ctx context.Context, id string) (*domain.Backup, error) {
	query := `SELECT ` + backupColumns + ` FROM backup WHERE id = ?`
	return r.scanBackup(r.db.QueryRowContext(ctx, query, id))
}

func (r *backupRepository) Update(ctx context.Context, backup *domain.Backup) error {
	query := `
		UPDATE backup
		SET status = ?, database_file = ?, database_size = ?, media_file = ?, media_size = ?,
			error = ?, started_at = ?, completed_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		backup.Status,
		NullString(backup.DatabaseFile),
		NullInt64(backup.DatabaseSize),
		NullString(backup.MediaFile),
		NullInt64(backup.MediaSize),
		NullString(backup.Error),
		NullTime(backup.StartedAt),
		NullTime(backup.CompletedAt),
		backup.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update backup: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("backup %w: %s", repository.ErrNotFound, backup.ID)
	}

	return nil
}

func (r *backupRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM backup WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete backup: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("backup %w: %s", repository.ErrNotFound, id)
	}

	return nil
}

func (r *backupRepository) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf("DELETE FROM backup WHERE id IN (%s)", strings.Join(placeholders, ","))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete backups: %w", err)
	}
	return nil
}

func (r *backupRepository) List(ctx context.Context, filter repository.BackupFilter) ([]*domain.Backup, error) {
	query := `SELECT ` + backupColumns + ` FROM backup WHERE 1=1`
	args := []interface{}{}

	query, args = ApplyFilters(query, args, filter.Filters)
	query = ApplyOrdering(query, filter.Order, "created_at DESC")
	query, args = ApplyPagination(query, args, filter.Page, filter.PerPage)

	return r.queryBackups(ctx, query, args...)
}

func (r *backupRepository) Count(ctx context.Context, filter repository.BackupFilter) (int, error) {
	query := `SELECT COUNT(*) FROM backup WHERE 1=1`
	args := []interface{}{}

	query, args = ApplyFilters(query, args, filter.Filters)

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count backups: %w", err)
	}

	return count, nil
}

func (r *backupRepository) FindCompletedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Backup, error) {
	query := `
		SELECT ` + backupColumns + `
		FROM backup
		WHERE status = ? AND created_at < ?
		ORDER BY created_at ASC
	`
	return r.queryBackups(ctx, query, domain.StatusCompleted, cutoff)
}

func (r *backupRepository) FindRestorable(ctx context.Context, kind *domain.BackupKind) ([]*domain.Backup, error) {
	query := `SELECT ` + backupColumns + ` FROM backup WHERE status = ?`
	args := []interface{}{domain.StatusCompleted}

	if kind != nil {
		// A full backup can source any restore kind.
		query += " AND (kind = ? OR kind = ?)"
		args = append(args, *kind, domain.BackupKindFull)
	}
	query += " ORDER BY created_at DESC"

	return r.queryBackups(ctx, query, args...)
}

func (r *backupRepository) FindBySchedule(ctx context.Context, scheduleID int64) ([]*domain.Backup, error) {
	query := `
		SELECT ` + backupColumns + `
		FROM backup
		WHERE schedule_id = ?
		ORDER BY created_at ASC
	`
	return r.queryBackups(ctx, query, scheduleID)
}

func (r *backupRepository) queryBackups(ctx context.Context, query string, args ...interface{}) ([]*domain.Backup, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query backups: %w", err)
	}
	defer rows.Close()

	var backups []*domain.Backup
	for rows.Next() {
		backup, err := scanBackupColumns(rows.Scan)
		if err != nil {
			return nil, err
		}
		backups = append(backups, backup)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating backups: %w", err)
	}

	return backups, nil
}

func (r *backupRepository) scanBackup(row *sql.Row) (*domain.Backup, error) {
	backup, err := scanBackupColumns(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("backup %w", repository.ErrNotFound)
	}
	return backup, err
}

func scanBackupColumns(scan func(...interface{}) error) (*domain.Backup, error) {
	var backup domain.Backup
	var databaseFile, mediaFile, createdBy, errMsg sql.NullString
	var databaseSize, mediaSize, scheduleID sql.NullInt64
	var startedAt, completedAt sql.NullTime

	err := scan(
		&backup.ID,
		&backup.Name,
		&backup.Kind,
		&backup.Status,
		&databaseFile,
		&databaseSize,
		&mediaFile,
		&mediaSize,
		&backup.Compress,
		&backup.ExcludeLogs,
		&scheduleID,
		&createdBy,
		&errMsg,
		&backup.CreatedAt,
		&startedAt,
		&completedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan backup: %w", err)
	}

	if databaseFile.Valid {
		backup.DatabaseFile = &databaseFile.String
	}
	if databaseSize.Valid {
		backup.DatabaseSize = &databaseSize.Int64
	}
	if mediaFile.Valid {
		backup.MediaFile = &mediaFile.String
	}
	if mediaSize.Valid {
		backup.MediaSize = &mediaSize.Int64
	}
	if scheduleID.Valid {
		backup.ScheduleID = &scheduleID.Int64
	}
	if createdBy.Valid {
		backup.CreatedBy = &createdBy.String
	}
	if errMsg.Valid {
		backup.Error = &errMsg.String
	}
	if startedAt.Valid {
		backup.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		backup.CompletedAt = &completedAt.Time
	}

	return &backup, nil
}

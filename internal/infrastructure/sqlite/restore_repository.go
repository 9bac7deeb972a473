package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmartens/shopvault/internal/core/domain"
	"github.com/jmartens/shopvault/internal/core/repository"
)

const restoreColumns = `id, kind, status, backup_id, uploaded_database_file, uploaded_media_file,
	overwrite, snapshot_first, safety_backup_id, created_by, error, created_at, started_at, completed_at`

type restoreRepository struct {
	db *DB
}

func NewRestoreRepository(db *DB) repository.RestoreRepository {
	return &restoreRepository{db: db}
}

func (r *restoreRepository) Create(ctx context.Context, restore *domain.Restore) error {
	query := `
		INSERT INTO restore (kind, status, backup_id, uploaded_database_file, uploaded_media_file,
			overwrite, snapshot_first, safety_backup_id, created_by, error, created_at, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		restore.Kind,
		restore.Status,
		NullString(restore.BackupID),
		NullString(restore.UploadedDatabaseFile),
		NullString(restore.UploadedMediaFile),
		restore.Overwrite,
		restore.SnapshotFirst,
		NullString(restore.SafetyBackupID),
		NullString(restore.CreatedBy),
		NullString(restore.Error),
		restore.CreatedAt,
		NullTime(restore.StartedAt),
		NullTime(restore.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create restore: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	restore.ID = id

	return nil
}

func (r *restoreRepository) FindByID(ctx context.Context, id int64) (*domain.Restore, error) {
	query := `SELECT ` + restoreColumns + ` FROM restore WHERE id = ?`
	restore, err := scanRestoreColumns(r.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("restore %w", repository.ErrNotFound)
	}
	return restore, err
}

func (r *restoreRepository) Update(ctx context.Context, restore *domain.Restore) error {
	query := `
		UPDATE restore
		SET status = ?, safety_backup_id = ?, error = ?, started_at = ?, completed_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		restore.Status,
		NullString(restore.SafetyBackupID),
		NullString(restore.Error),
		NullTime(restore.StartedAt),
		NullTime(restore.CompletedAt),
		restore.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update restore: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("restore %w: %d", repository.ErrNotFound, restore.ID)
	}

	return nil
}

func (r *restoreRepository) List(ctx context.Context, filter repository.RestoreFilter) ([]*domain.Restore, error) {
	query := `SELECT ` + restoreColumns + ` FROM restore WHERE 1=1`
	args := []interface{}{}

	query, args = ApplyFilters(query, args, filter.Filters)
	query = ApplyOrdering(query, filter.Order, "created_at DESC")
	query, args = ApplyPagination(query, args, filter.Page, filter.PerPage)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list restores: %w", err)
	}
	defer rows.Close()

	var restores []*domain.Restore
	for rows.Next() {
		restore, err := scanRestoreColumns(rows.Scan)
		if err != nil {
			return nil, err
		}
		restores = append(restores, restore)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating restores: %w", err)
	}

	return restores, nil
}

func (r *restoreRepository) Count(ctx context.Context, filter repository.RestoreFilter) (int, error) {
	query := `SELECT COUNT(*) FROM restore WHERE 1=1`
	args := []interface{}{}

	query, args = ApplyFilters(query, args, filter.Filters)

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count restores: %w", err)
	}

	return count, nil
}

func scanRestoreColumns(scan func(...interface{}) error) (*domain.Restore, error) {
	var restore domain.Restore
	var backupID, uploadedDB, uploadedMedia, safetyBackupID, createdBy, errMsg sql.NullString
	var startedAt, completedAt sql.NullTime

	err := scan(
		&restore.ID,
		&restore.Kind,
		&restore.Status,
		&backupID,
		&uploadedDB,
		&uploadedMedia,
		&restore.Overwrite,
		&restore.SnapshotFirst,
		&safetyBackupID,
		&createdBy,
		&errMsg,
		&restore.CreatedAt,
		&startedAt,
		&completedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan restore: %w", err)
	}

	if backupID.Valid {
		restore.BackupID = &backupID.String
	}
	if uploadedDB.Valid {
		restore.UploadedDatabaseFile = &uploadedDB.String
	}
	if uploadedMedia.Valid {
		restore.UploadedMediaFile = &uploadedMedia.String
	}
	if safetyBackupID.Valid {
		restore.SafetyBackupID = &safetyBackupID.String
	}
	if createdBy.Valid {
		restore.CreatedBy = &createdBy.String
	}
	if errMsg.Valid {
		restore.Error = &errMsg.String
	}
	if startedAt.Valid {
		restore.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		restore.CompletedAt = &completedAt.Time
	}

	return &restore, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmartens/shopvault/internal/core/domain"
	"github.com/jmartens/shopvault/internal/core/repository"
)

const settingsColumns = `id, backup_dir, dump_binary, client_binary, db_host, db_port, db_user,
	db_password, db_name, compression_level, default_retention_days, notify_email, updated_at`

type settingsRepository struct {
	db               *DB
	defaultBackupDir string
}

func NewSettingsRepository(db *DB, defaultBackupDir string) repository.SettingsRepository {
	return &settingsRepository{db: db, defaultBackupDir: defaultBackupDir}
}

func (r *settingsRepository) Get(ctx context.Context) (*domain.Settings, error) {
	query := `SELECT ` + settingsColumns + ` FROM settings WHERE id = ?`

	var settings domain.Settings
	err := r.db.QueryRowContext(ctx, query, domain.SettingsID).Scan(
		&settings.ID,
		&settings.BackupDir,
		&settings.DumpBinary,
		&settings.ClientBinary,
		&settings.DBHost,
		&settings.DBPort,
		&settings.DBUser,
		&settings.DBPassword,
		&settings.DBName,
		&settings.CompressionLevel,
		&settings.DefaultRetentionDays,
		&settings.NotifyEmail,
		&settings.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return r.createDefaults(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan settings: %w", err)
	}

	return &settings, nil
}

func (r *settingsRepository) Update(ctx context.Context, settings *domain.Settings) error {
	settings.ID = domain.SettingsID
	settings.UpdatedAt = time.Now()

	query := `
		UPDATE settings
		SET backup_dir = ?, dump_binary = ?, client_binary = ?, db_host = ?, db_port = ?,
			db_user = ?, db_password = ?, db_name = ?, compression_level = ?,
			default_retention_days = ?, notify_email = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		settings.BackupDir,
		settings.DumpBinary,
		settings.ClientBinary,
		settings.DBHost,
		settings.DBPort,
		settings.DBUser,
		settings.DBPassword,
		settings.DBName,
		settings.CompressionLevel,
		settings.DefaultRetentionDays,
		settings.NotifyEmail,
		settings.UpdatedAt,
		settings.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		// Singleton row not created yet, seed then retry once.
		if _, err := r.createDefaults(ctx); err != nil {
			return err
		}
		return r.Update(ctx, settings)
	}

	return nil
}

func (r *settingsRepository) createDefaults(ctx context.Context) (*domain.Settings, error) {
	settings := domain.DefaultSettings(r.defaultBackupDir)

	query := `
		INSERT INTO settings (id, backup_dir, dump_binary, client_binary, db_host, db_port,
			db_user, db_password, db_name, compression_level, default_retention_days,
			notify_email, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		settings.ID,
		settings.BackupDir,
		settings.DumpBinary,
		settings.ClientBinary,
		settings.DBHost,
		settings.DBPort,
		settings.DBUser,
		settings.DBPassword,
		settings.DBName,
		settings.CompressionLevel,
		settings.DefaultRetentionDays,
		settings.NotifyEmail,
		settings.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create default settings: %w", err)
	}

	return settings, nil
}

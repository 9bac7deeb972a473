package repository

import (
	"context"
	"time"

	"github.com/jmartens/shopvault/internal/api/util"
	"github.com/jmartens/shopvault/internal/core/domain"
)

type BackupFilter struct {
	util.ListFilter
}

type BackupRepository interface {
	Create(ctx context.Context, backup *domain.Backup) error
	FindByID(ctx context.Context, id string) (*domain.Backup, error)
	Update(ctx context.Context, backup *domain.Backup) error
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) error
	List(ctx context.Context, filter BackupFilter) ([]*domain.Backup, error)
	Count(ctx context.Context, filter BackupFilter) (int, error)

	// Find completed backups created strictly before the cutoff (retention
	// evaluation).
	FindCompletedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Backup, error)

	// Find completed backups usable as restore sources, newest first.
	FindRestorable(ctx context.Context, kind *domain.BackupKind) ([]*domain.Backup, error)

	FindBySchedule(ctx context.Context, scheduleID int64) ([]*domain.Backup, error)
}

package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jmartens/shopvault/internal/core/domain"
	"github.com/jmartens/shopvault/internal/core/repository"
)

type CleanupService struct {
	backupRepo   repository.BackupRepository
	scheduleRepo repository.ScheduleRepository
	settingsRepo repository.SettingsRepository
	log          *logrus.Entry
}

func NewCleanupService(
	backupRepo repository.BackupRepository,
	scheduleRepo repository.ScheduleRepository,
	settingsRepo repository.SettingsRepository,
) *CleanupService {
	return &CleanupService{
		backupRepo:   backupRepo,
		scheduleRepo: scheduleRepo,
		settingsRepo: settingsRepo,
		log:          logrus.WithField("component", "cleanup"),
	}
}

type CleanupOptions struct {
	// RetentionDays overrides every retention window when set, the
	// per-schedule ones included.
	RetentionDays *int
	DryRun        bool
}

type CleanupResult struct {
	RetentionDays int
	Cutoff        *time.Time
	DeletedIDs    []string
	BytesFreed    int64
	DryRun        bool
}

// Run deletes completed backups strictly older than their retention window,
// files first, then records. Backups produced by a schedule use that
// schedule's retention; everything else uses the settings default. Retention
// zero keeps everything.
func (s *CleanupService) Run(ctx context.Context, opts CleanupOptions) (*CleanupResult, error) {
	now := time.Now()

	if opts.RetentionDays != nil {
		if *opts.RetentionDays < 0 {
			return nil, NewServiceError(400, "retention_days must be zero or positive")
		}
		return s.runUniform(ctx, *opts.RetentionDays, now, opts.DryRun)
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	result := &CleanupResult{RetentionDays: settings.DefaultRetentionDays, DryRun: opts.DryRun}

	schedules, err := s.scheduleRepo.List(ctx, repository.ScheduleFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load schedules: %w", err)
	}
	scheduled := make(map[int64]bool, len(schedules))
	for _, schedule := range schedules {
		scheduled[schedule.ID] = true
	}

	var expired []*domain.Backup

	if settings.DefaultRetentionDays > 0 {
		cutoff := now.AddDate(0, 0, -settings.DefaultRetentionDays)
		result.Cutoff = &cutoff

		candidates, err := s.backupRepo.FindCompletedBefore(ctx, cutoff)
		if err != nil {
			return nil, fmt.Errorf("failed to find expired backups: %w", err)
		}
		for _, backup := range candidates {
			// Backups of a live schedule follow that schedule's window.
			// A deleted schedule falls back to the default.
			if backup.ScheduleID != nil && scheduled[*backup.ScheduleID] {
				continue
			}
			expired = append(expired, backup)
		}
	}

	for _, schedule := range schedules {
		if schedule.RetentionDays == 0 {
			continue
		}
		cutoff := now.AddDate(0, 0, -schedule.RetentionDays)

		backups, err := s.backupRepo.FindBySchedule(ctx, schedule.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load backups for schedule %d: %w", schedule.ID, err)
		}
		for _, backup := range backups {
			if backup.Status == domain.StatusCompleted && backup.CreatedAt.Before(cutoff) {
				expired = append(expired, backup)
			}
		}
	}

	return s.sweep(ctx, result, expired)
}

// runUniform applies one retention window to every completed backup.
func (s *CleanupService) runUniform(ctx context.Context, retention int, now time.Time, dryRun bool) (*CleanupResult, error) {
	result := &CleanupResult{RetentionDays: retention, DryRun: dryRun}
	if retention == 0 {
		return result, nil
	}

	cutoff := now.AddDate(0, 0, -retention)
	result.Cutoff = &cutoff

	expired, err := s.backupRepo.FindCompletedBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to find expired backups: %w", err)
	}
	return s.sweep(ctx, result, expired)
}

func (s *CleanupService) sweep(ctx context.Context, result *CleanupResult, expired []*domain.Backup) (*CleanupResult, error) {
	for _, backup := range expired {
		result.DeletedIDs = append(result.DeletedIDs, backup.ID)
		if backup.DatabaseSize != nil {
			result.BytesFreed += *backup.DatabaseSize
		}
		if backup.MediaSize != nil {
			result.BytesFreed += *backup.MediaSize
		}
	}

	if result.DryRun || len(expired) == 0 {
		return result, nil
	}

	for _, backup := range expired {
		s.deleteFiles(backup)
	}

	if err := s.backupRepo.DeleteMany(ctx, result.DeletedIDs); err != nil {
		return nil, fmt.Errorf("failed to delete backup records: %w", err)
	}

	s.log.WithField("deleted", len(result.DeletedIDs)).Info("cleanup completed")
	return result, nil
}

func (s *CleanupService) deleteFiles(backup *domain.Backup) {
	for _, path := range artifactPaths(backup) {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.log.WithError(err).WithField("path", path).Warn("failed to delete backup file")
		}
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jmartens/shopvault/internal/core/domain"
	"github.com/jmartens/shopvault/internal/core/repository"
	"github.com/jmartens/shopvault/internal/engine"
)

// backupIDFormat is also the timestamp segment of artifact filenames.
const backupIDFormat = "20060102-150405"

type BackupService struct {
	backupRepo   repository.BackupRepository
	settingsRepo repository.SettingsRepository
	runner       *JobRunner
	dumper       engine.Dumper
	mediaDir     string
	notifier     Notifier
	log          *logrus.Entry
}

func NewBackupService(
	backupRepo repository.BackupRepository,
	settingsRepo repository.SettingsRepository,
	runner *JobRunner,
	dumper engine.Dumper,
	mediaDir string,
	notifier Notifier,
) *BackupService {
	return &BackupService{
		backupRepo:   backupRepo,
		settingsRepo: settingsRepo,
		runner:       runner,
		dumper:       dumper,
		mediaDir:     mediaDir,
		notifier:     notifier,
		log:          logrus.WithField("component", "backup"),
	}
}

type CreateBackupOptions struct {
	Name        string
	Kind        domain.BackupKind
	Compress    bool
	ExcludeLogs bool
	ScheduleID  *int64
	CreatedBy   *string
}

// CreateBackup records a pending backup and starts it in the background.
// The returned job's command ID is the polling handle for API callers.
func (s *BackupService) CreateBackup(ctx context.Context, opts CreateBackupOptions) (*domain.Backup, *domain.Job, error) {
	backup, err := s.prepare(ctx, opts)
	if err != nil {
		return nil, nil, err
	}

	kind := domain.JobKindBackup
	if opts.ScheduleID != nil {
		kind = domain.JobKindScheduledBackup
	}

	job, err := s.runner.Start(ctx, kind, &backup.ID, func(jobCtx context.Context) (string, error) {
		if err := s.Execute(jobCtx, backup); err != nil {
			return "", err
		}
		return fmt.Sprintf("backup %s completed", backup.ID), nil
	})
	if err != nil {
		return nil, nil, err
	}

	return backup, job, nil
}

// RunBackup records and executes a backup synchronously. Used by the CLI
// with --wait and by the restore safety snapshot.
func (s *BackupService) RunBackup(ctx context.Context, opts CreateBackupOptions) (*domain.Backup, error) {
	backup, err := s.prepare(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := s.Execute(ctx, backup); err != nil {
		return backup, err
	}
	return backup, nil
}

func (s *BackupService) prepare(ctx context.Context, opts CreateBackupOptions) (*domain.Backup, error) {
	switch opts.Kind {
	case domain.BackupKindDatabase, domain.BackupKindMedia, domain.BackupKindFull:
	default:
		return nil, NewServiceError(400, fmt.Sprintf("invalid backup kind: %q", opts.Kind))
	}

	// Two backups inside the same second get a numeric suffix.
	id := time.Now().Format(backupIDFormat)
	base := id
	for n := 2; ; n++ {
		_, err := s.backupRepo.FindByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to check backup id: %w", err)
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}

	name := opts.Name
	if name == "" {
		name = string(opts.Kind)
	}

	backup := domain.NewBackup(id, name, opts.Kind)
	backup.Compress = opts.Compress
	backup.ExcludeLogs = opts.ExcludeLogs
	backup.ScheduleID = opts.ScheduleID
	backup.CreatedBy = opts.CreatedBy

	if err := s.backupRepo.Create(ctx, backup); err != nil {
		return nil, fmt.Errorf("failed to create backup record: %w", err)
	}

	return backup, nil
}

// Execute runs the backup through its lifecycle. Any failure is persisted
// verbatim on the record; partial artifacts stay on disk for inspection.
func (s *BackupService) Execute(ctx context.Context, backup *domain.Backup) error {
	log := s.log.WithFields(logrus.Fields{"backup_id": backup.ID, "kind": backup.Kind})

	backup.Start()
	if err := s.backupRepo.Update(ctx, backup); err != nil {
		return fmt.Errorf("failed to mark backup in progress: %w", err)
	}

	err := s.produceArtifacts(ctx, backup)
	switch {
	case ctx.Err() == context.Canceled:
		log.Info("backup cancelled")
		backup.Cancel()
	case err != nil:
		log.WithError(err).Error("backup failed")
		backup.Fail(err.Error())
	default:
		log.Info("backup completed")
		backup.Complete()
	}

	if uerr := s.backupRepo.Update(context.Background(), backup); uerr != nil {
		log.WithError(uerr).Error("failed to persist backup outcome")
	}

	s.notify(ctx, backup)
	return err
}

func (s *BackupService) produceArtifacts(ctx context.Context, backup *domain.Backup) error {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	timestamp := backup.ID
	name := sanitizeName(backup.Name)

	if backup.Kind.IncludesDatabase() {
		outPath := filepath.Join(settings.BackupDir,
			fmt.Sprintf("database_%s_%s.sql", name, timestamp))
		result, err := s.dumper.Dump(ctx, engine.DumpOptions{
			Settings:   settings,
			OutputPath: outPath,
			Compress:   backup.Compress,
		})
		if err != nil {
			return fmt.Errorf("database dump failed: %w", err)
		}
		backup.SetDatabaseArtifact(result.Path, result.Size)
	}

	if backup.Kind.IncludesMedia() {
		outPath := filepath.Join(settings.BackupDir,
			fmt.Sprintf("media_%s_%s.tar.gz", name, timestamp))
		size, err := engine.CreateArchive(ctx, s.mediaDir, outPath, engine.ArchiveOptions{
			ExcludeDirs:      []string{settings.BackupDir},
			ExcludeLogs:      backup.ExcludeLogs,
			CompressionLevel: settings.CompressionLevel,
		})
		if err != nil {
			return fmt.Errorf("media archive failed: %w", err)
		}
		backup.SetMediaArtifact(outPath, size)
	}

	return nil
}

func (s *BackupService) notify(ctx context.Context, backup *domain.Backup) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil || settings.NotifyEmail == "" {
		return
	}

	var subject, body string
	switch backup.Status {
	case domain.StatusCompleted:
		subject = fmt.Sprintf("Backup %s completed", backup.ID)
		body = fmt.Sprintf("Backup %q (%s) completed at %s.",
			backup.Name, backup.Kind, backup.CompletedAt.Format(time.RFC3339))
	case domain.StatusFailed:
		subject = fmt.Sprintf("Backup %s FAILED", backup.ID)
		msg := ""
		if backup.Error != nil {
			msg = *backup.Error
		}
		body = fmt.Sprintf("Backup %q (%s) failed: %s", backup.Name, backup.Kind, msg)
	default:
		return
	}

	if err := s.notifier.Notify(settings.NotifyEmail, subject, body); err != nil {
		s.log.WithError(err).Warn("failed to send backup notification")
	}
}

// CancelBackup cancels a running backup job.
func (s *BackupService) CancelBackup(ctx context.Context, id string) error {
	backup, err := s.backupRepo.FindByID(ctx, id)
	if err != nil {
		return NewServiceError(404, "backup not found")
	}
	if backup.Status.IsTerminal() {
		return NewServiceError(409, fmt.Sprintf("backup already %s", backup.Status))
	}
	if !s.runner.CancelByResource(id) {
		return NewServiceError(409, "backup has no running job")
	}
	return nil
}

// GetBackup retrieves a backup by ID.
func (s *BackupService) GetBackup(ctx context.Context, id string) (*domain.Backup, error) {
	return s.backupRepo.FindByID(ctx, id)
}

// ListBackups lists backups with filtering.
func (s *BackupService) ListBackups(ctx context.Context, filter repository.BackupFilter) ([]*domain.Backup, error) {
	return s.backupRepo.List(ctx, filter)
}

// CountBackups counts backups with filtering.
func (s *BackupService) CountBackups(ctx context.Context, filter repository.BackupFilter) (int, error) {
	return s.backupRepo.Count(ctx, filter)
}

// DeleteBackup deletes a backup's artifacts and its record.
func (s *BackupService) DeleteBackup(ctx context.Context, id string) error {
	backup, err := s.backupRepo.FindByID(ctx, id)
	if err != nil {
		return NewServiceError(404, "backup not found")
	}
	if backup.Status == domain.StatusInProgress {
		return NewServiceError(409, "backup is in progress, cancel it first")
	}

	for _, path := range artifactPaths(backup) {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete backup file: %w", err)
		}
	}

	if err := s.backupRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete backup record: %w", err)
	}

	return nil
}

// ArtifactPath resolves the on-disk file for a download request.
func (s *BackupService) ArtifactPath(ctx context.Context, id, artifact string) (string, error) {
	backup, err := s.backupRepo.FindByID(ctx, id)
	if err != nil {
		return "", NewServiceError(404, "backup not found")
	}
	if backup.Status != domain.StatusCompleted {
		return "", NewServiceError(409, "backup is not completed")
	}

	var path *string
	switch artifact {
	case "database":
		path = backup.DatabaseFile
	case "media":
		path = backup.MediaFile
	default:
		return "", NewServiceError(400, fmt.Sprintf("invalid artifact: %q", artifact))
	}
	if path == nil {
		return "", NewServiceError(404, fmt.Sprintf("backup has no %s artifact", artifact))
	}

	if _, err := os.Stat(*path); err != nil {
		return "", NewServiceError(404, "artifact file missing on disk")
	}

	return *path, nil
}

func artifactPaths(backup *domain.Backup) []string {
	var paths []string
	if backup.DatabaseFile != nil {
		paths = append(paths, *backup.DatabaseFile)
	}
	if backup.MediaFile != nil {
		paths = append(paths, *backup.MediaFile)
	}
	return paths
}

// sanitizeName makes a backup name safe for use inside a filename.
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '.':
			return r
		default:
			return '-'
		}
	}, name)
}

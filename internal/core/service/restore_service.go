package service

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/jmartens/shopvault/internal/core/domain"
	"github.com/jmartens/shopvault/internal/core/repository"
	"github.com/jmartens/shopvault/internal/engine"
)

type RestoreService struct {
	restoreRepo  repository.RestoreRepository
	backupRepo   repository.BackupRepository
	settingsRepo repository.SettingsRepository
	backupServ   *BackupService
	runner       *JobRunner
	dumper       engine.Dumper
	mediaDir     string
	log          *logrus.Entry
}

func NewRestoreService(
	restoreRepo repository.RestoreRepository,
	backupRepo repository.BackupRepository,
	settingsRepo repository.SettingsRepository,
	backupServ *BackupService,
	runner *JobRunner,
	dumper engine.Dumper,
	mediaDir string,
) *RestoreService {
	return &RestoreService{
		restoreRepo:  restoreRepo,
		backupRepo:   backupRepo,
		settingsRepo: settingsRepo,
		backupServ:   backupServ,
		runner:       runner,
		dumper:       dumper,
		mediaDir:     mediaDir,
		log:          logrus.WithField("component", "restore"),
	}
}

type CreateRestoreOptions struct {
	Kind                 domain.BackupKind
	BackupID             *string
	UploadedDatabaseFile *string
	UploadedMediaFile    *string
	Overwrite            bool
	SnapshotFirst        bool
	CreatedBy            *string
}

// restoreSources holds the resolved artifact paths after validation.
type restoreSources struct {
	databaseFile *string
	mediaFile    *string
}

// CreateRestore validates the source, records a pending restore, and starts
// it in the background.
func (s *RestoreService) CreateRestore(ctx context.Context, opts CreateRestoreOptions) (*domain.Restore, *domain.Job, error) {
	restore, err := s.prepare(ctx, opts)
	if err != nil {
		return nil, nil, err
	}

	resourceID := fmt.Sprintf("restore-%d", restore.ID)
	job, err := s.runner.Start(ctx, domain.JobKindRestore, &resourceID, func(jobCtx context.Context) (string, error) {
		if err := s.Execute(jobCtx, restore); err != nil {
			return "", err
		}
		return fmt.Sprintf("restore %d completed", restore.ID), nil
	})
	if err != nil {
		return nil, nil, err
	}

	return restore, job, nil
}

// RunRestore validates, records and executes a restore synchronously.
func (s *RestoreService) RunRestore(ctx context.Context, opts CreateRestoreOptions) (*domain.Restore, error) {
	restore, err := s.prepare(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := s.Execute(ctx, restore); err != nil {
		return restore, err
	}
	return restore, nil
}

func (s *RestoreService) prepare(ctx context.Context, opts CreateRestoreOptions) (*domain.Restore, error) {
	restore := domain.NewRestore(opts.Kind)
	restore.BackupID = opts.BackupID
	restore.UploadedDatabaseFile = opts.UploadedDatabaseFile
	restore.UploadedMediaFile = opts.UploadedMediaFile
	restore.Overwrite = opts.Overwrite
	restore.SnapshotFirst = opts.SnapshotFirst
	restore.CreatedBy = opts.CreatedBy

	// Hard pre-flight: every source the kind needs must resolve before any
	// destructive action is taken.
	if _, err := s.resolveSources(ctx, restore); err != nil {
		return nil, err
	}

	if err := s.restoreRepo.Create(ctx, restore); err != nil {
		return nil, fmt.Errorf("failed to create restore record: %w", err)
	}

	return restore, nil
}

func (s *RestoreService) resolveSources(ctx context.Context, restore *domain.Restore) (*restoreSources, error) {
	switch restore.Kind {
	case domain.BackupKindDatabase, domain.BackupKindMedia, domain.BackupKindFull:
	default:
		return nil, NewServiceError(400, fmt.Sprintf("invalid restore kind: %q", restore.Kind))
	}

	if restore.BackupID != nil && restore.HasUploadedSource() {
		return nil, NewServiceError(400, "restore source must be a backup or uploaded files, not both")
	}

	sources := &restoreSources{}

	if restore.BackupID != nil {
		backup, err := s.backupRepo.FindByID(ctx, *restore.BackupID)
		if err != nil {
			return nil, NewServiceError(404, "source backup not found")
		}
		if backup.Status != domain.StatusCompleted {
			return nil, NewServiceError(409, "source backup is not completed")
		}
		sources.databaseFile = backup.DatabaseFile
		sources.mediaFile = backup.MediaFile
	} else {
		sources.databaseFile = restore.UploadedDatabaseFile
		sources.mediaFile = restore.UploadedMediaFile
	}

	if restore.Kind.IncludesDatabase() {
		if err := requireFile(sources.databaseFile, "database dump"); err != nil {
			return nil, err
		}
	}
	if restore.Kind.IncludesMedia() {
		if err := requireFile(sources.mediaFile, "media archive"); err != nil {
			return nil, err
		}
	}

	return sources, nil
}

func requireFile(path *string, what string) error {
	if path == nil {
		return NewServiceError(400, fmt.Sprintf("restore requires a %s source", what))
	}
	if _, err := os.Stat(*path); err != nil {
		return NewServiceError(400, fmt.Sprintf("%s source missing on disk: %s", what, *path))
	}
	return nil
}

// Execute runs the restore through its lifecycle: optional safety snapshot,
// database replay, media extraction.
func (s *RestoreService) Execute(ctx context.Context, restore *domain.Restore) error {
	log := s.log.WithFields(logrus.Fields{"restore_id": restore.ID, "kind": restore.Kind})

	restore.Start()
	if err := s.restoreRepo.Update(ctx, restore); err != nil {
		return fmt.Errorf("failed to mark restore in progress: %w", err)
	}

	err := s.apply(ctx, restore)
	switch {
	case ctx.Err() == context.Canceled:
		log.Info("restore cancelled")
		restore.Cancel()
	case err != nil:
		log.WithError(err).Error("restore failed")
		restore.Fail(err.Error())
	default:
		log.Info("restore completed")
		restore.Complete()
	}

	if uerr := s.restoreRepo.Update(context.Background(), restore); uerr != nil {
		log.WithError(uerr).Error("failed to persist restore outcome")
	}

	return err
}

func (s *RestoreService) apply(ctx context.Context, restore *domain.Restore) error {
	// Re-validate: the artifacts may have been deleted between creation and
	// execution.
	sources, err := s.resolveSources(ctx, restore)
	if err != nil {
		return err
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	if restore.SnapshotFirst {
		safety, err := s.backupServ.RunBackup(ctx, CreateBackupOptions{
			Name:      "pre-restore",
			Kind:      domain.BackupKindFull,
			Compress:  true,
			CreatedBy: restore.CreatedBy,
		})
		if err != nil {
			return fmt.Errorf("safety backup failed: %w", err)
		}
		restore.SafetyBackupID = &safety.ID
		if err := s.restoreRepo.Update(ctx, restore); err != nil {
			return fmt.Errorf("failed to link safety backup: %w", err)
		}
	}

	if restore.Kind.IncludesDatabase() {
		if err := s.dumper.Restore(ctx, engine.RestoreOptions{
			Settings:  settings,
			InputPath: *sources.databaseFile,
		}); err != nil {
			return fmt.Errorf("database restore failed: %w", err)
		}
	}

	if restore.Kind.IncludesMedia() {
		if err := engine.ExtractArchive(ctx, *sources.mediaFile, s.mediaDir, restore.Overwrite); err != nil {
			return fmt.Errorf("media restore failed: %w", err)
		}
	}

	return nil
}

// GetRestore retrieves a restore by ID.
func (s *RestoreService) GetRestore(ctx context.Context, id int64) (*domain.Restore, error) {
	return s.restoreRepo.FindByID(ctx, id)
}

// ListRestores lists restores with filtering.
func (s *RestoreService) ListRestores(ctx context.Context, filter repository.RestoreFilter) ([]*domain.Restore, error) {
	return s.restoreRepo.List(ctx, filter)
}

// CountRestores counts restores with filtering.
func (s *RestoreService) CountRestores(ctx context.Context, filter repository.RestoreFilter) (int, error) {
	return s.restoreRepo.Count(ctx, filter)
}

// ListRestorable lists completed backups usable as restore sources.
func (s *RestoreService) ListRestorable(ctx context.Context, kind *domain.BackupKind) ([]*domain.Backup, error) {
	return s.backupRepo.FindRestorable(ctx, kind)
}

package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmartens/shopvault/internal/core/domain"
	"github.com/jmartens/shopvault/internal/core/repository"
)

func TestRestorePreflightRejectsMissingSource(t *testing.T) {
	env := setupServiceEnv(t)

	_, err := env.restoreServ.RunRestore(context.Background(), CreateRestoreOptions{
		Kind: domain.BackupKindDatabase,
	})
	assertServiceError(t, err, 400)

	// Pre-flight failures must not leave a restore record behind
	count, err := env.restoreRepo.Count(context.Background(), repository.RestoreFilter{})
	if err != nil {
		t.Fatalf("failed to count restores: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no restore records, got %d", count)
	}
}

func TestRestorePreflightRejectsBothSources(t *testing.T) {
	env := setupServiceEnv(t)

	_, err := env.restoreServ.RunRestore(context.Background(), CreateRestoreOptions{
		Kind:                 domain.BackupKindDatabase,
		BackupID:             ptr("20250101-000000"),
		UploadedDatabaseFile: ptr("/tmp/dump.sql"),
	})
	assertServiceError(t, err, 400)
}

func TestRestorePreflightRejectsIncompleteBackup(t *testing.T) {
	env := setupServiceEnv(t)

	pending := domain.NewBackup("20250101-000000", "pending", domain.BackupKindDatabase)
	if err := env.backupRepo.Create(context.Background(), pending); err != nil {
		t.Fatalf("failed to seed backup: %v", err)
	}

	_, err := env.restoreServ.RunRestore(context.Background(), CreateRestoreOptions{
		Kind:     domain.BackupKindDatabase,
		BackupID: &pending.ID,
	})
	assertServiceError(t, err, 409)
}

func TestRestorePreflightRejectsMissingArtifactFile(t *testing.T) {
	env := setupServiceEnv(t)

	backup, err := env.backupServ.RunBackup(context.Background(), CreateBackupOptions{
		Kind:     domain.BackupKindDatabase,
		Compress: true,
	})
	if err != nil {
		t.Fatalf("RunBackup failed: %v", err)
	}

	// Artifact disappearing between backup and restore must fail pre-flight
	if err := os.Remove(*backup.DatabaseFile); err != nil {
		t.Fatalf("failed to remove artifact: %v", err)
	}

	_, err = env.restoreServ.RunRestore(context.Background(), CreateRestoreOptions{
		Kind:     domain.BackupKindDatabase,
		BackupID: &backup.ID,
	})
	assertServiceError(t, err, 400)
}

func TestRestoreDatabaseRoundTrip(t *testing.T) {
	env := setupServiceEnv(t)

	original, err := os.ReadFile(env.dbFile)
	if err != nil {
		t.Fatalf("failed to read database file: %v", err)
	}

	backup, err := env.backupServ.RunBackup(context.Background(), CreateBackupOptions{
		Kind:     domain.BackupKindDatabase,
		Compress: true,
	})
	if err != nil {
		t.Fatalf("RunBackup failed: %v", err)
	}

	// Corrupt the live database, then restore from the backup
	if err := os.WriteFile(env.dbFile, []byte("corrupted"), 0644); err != nil {
		t.Fatalf("failed to overwrite database file: %v", err)
	}

	restore, err := env.restoreServ.RunRestore(context.Background(), CreateRestoreOptions{
		Kind:          domain.BackupKindDatabase,
		BackupID:      &backup.ID,
		SnapshotFirst: false,
	})
	if err != nil {
		t.Fatalf("RunRestore failed: %v", err)
	}
	if restore.Status != domain.StatusCompleted {
		t.Fatalf("expected status completed, got %s", restore.Status)
	}

	restored, err := os.ReadFile(env.dbFile)
	if err != nil {
		t.Fatalf("failed to read restored database: %v", err)
	}
	if string(restored) != string(original) {
		t.Error("restored database does not match original contents")
	}
}

func TestRestoreMediaMovesExistingTreeAside(t *testing.T) {
	env := setupServiceEnv(t)

	backup, err := env.backupServ.RunBackup(context.Background(), CreateBackupOptions{
		Kind:     domain.BackupKindMedia,
		Compress: true,
	})
	if err != nil {
		t.Fatalf("RunBackup failed: %v", err)
	}

	// Add a file after the backup; without overwrite it survives in the
	// moved-aside tree, not the restored one
	if err := os.WriteFile(filepath.Join(env.mediaDir, "later.jpg"), []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write media file: %v", err)
	}

	restore, err := env.restoreServ.RunRestore(context.Background(), CreateRestoreOptions{
		Kind:      domain.BackupKindMedia,
		BackupID:  &backup.ID,
		Overwrite: false,
	})
	if err != nil {
		t.Fatalf("RunRestore failed: %v", err)
	}
	if restore.Status != domain.StatusCompleted {
		t.Fatalf("expected status completed, got %s", restore.Status)
	}

	if _, err := os.Stat(filepath.Join(env.mediaDir, "product.jpg")); err != nil {
		t.Errorf("restored media file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.mediaDir, "later.jpg")); !os.IsNotExist(err) {
		t.Error("file added after backup should not be in the restored tree")
	}
}

func TestRestoreSnapshotFirstLinksSafetyBackup(t *testing.T) {
	env := setupServiceEnv(t)

	backup, err := env.backupServ.RunBackup(context.Background(), CreateBackupOptions{
		Kind:     domain.BackupKindDatabase,
		Compress: true,
	})
	if err != nil {
		t.Fatalf("RunBackup failed: %v", err)
	}

	restore, err := env.restoreServ.RunRestore(context.Background(), CreateRestoreOptions{
		Kind:          domain.BackupKindDatabase,
		BackupID:      &backup.ID,
		SnapshotFirst: true,
	})
	if err != nil {
		t.Fatalf("RunRestore failed: %v", err)
	}

	if restore.SafetyBackupID == nil {
		t.Fatal("expected a safety backup to be linked")
	}
	safety, err := env.backupRepo.FindByID(context.Background(), *restore.SafetyBackupID)
	if err != nil {
		t.Fatalf("safety backup not found: %v", err)
	}
	if safety.Kind != domain.BackupKindFull {
		t.Errorf("safety backup should be full, got %s", safety.Kind)
	}
	if safety.Status != domain.StatusCompleted {
		t.Errorf("safety backup should be completed, got %s", safety.Status)
	}
}

func TestListRestorable(t *testing.T) {
	env := setupServiceEnv(t)

	dbBackup, err := env.backupServ.RunBackup(context.Background(), CreateBackupOptions{
		Kind:     domain.BackupKindDatabase,
		Compress: true,
	})
	if err != nil {
		t.Fatalf("RunBackup failed: %v", err)
	}

	failed := domain.NewBackup("20250101-000000", "broken", domain.BackupKindDatabase)
	failed.Fail("dump failed")
	if err := env.backupRepo.Create(context.Background(), failed); err != nil {
		t.Fatalf("failed to seed backup: %v", err)
	}

	restorable, err := env.restoreServ.ListRestorable(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListRestorable failed: %v", err)
	}
	if len(restorable) != 1 {
		t.Fatalf("expected 1 restorable backup, got %d", len(restorable))
	}
	if restorable[0].ID != dbBackup.ID {
		t.Errorf("expected backup %s, got %s", dbBackup.ID, restorable[0].ID)
	}

	kind := domain.BackupKindMedia
	restorable, err = env.restoreServ.ListRestorable(context.Background(), &kind)
	if err != nil {
		t.Fatalf("ListRestorable failed: %v", err)
	}
	if len(restorable) != 0 {
		t.Errorf("expected no media-restorable backups, got %d", len(restorable))
	}
}

package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmartens/shopvault/internal/core/domain"
)

// seedCompletedBackup creates a completed backup record with a real artifact
// file, created the given number of days ago. Retention cutoffs compare
// against creation time.
func seedCompletedBackup(t *testing.T, env *serviceEnv, id string, daysAgo int) *domain.Backup {
	t.Helper()

	path := filepath.Join(env.backupDir, "database_seed_"+id+".sql.gz")
	content := []byte("dump for " + id)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write artifact: %v", err)
	}

	backup := domain.NewBackup(id, "seed", domain.BackupKindDatabase)
	backup.Start()
	backup.SetDatabaseArtifact(path, int64(len(content)))
	backup.Complete()
	backup.CreatedAt = time.Now().AddDate(0, 0, -daysAgo)
	completedAt := backup.CreatedAt.Add(time.Minute)
	backup.CompletedAt = &completedAt

	if err := env.backupRepo.Create(context.Background(), backup); err != nil {
		t.Fatalf("failed to seed backup %s: %v", id, err)
	}
	if err := env.backupRepo.Update(context.Background(), backup); err != nil {
		t.Fatalf("failed to update backup %s: %v", id, err)
	}
	return backup
}

func TestCleanupDeletesExpiredOnly(t *testing.T) {
	env := setupServiceEnv(t)

	old := seedCompletedBackup(t, env, "20250101-000000", 40)
	recent := seedCompletedBackup(t, env, "20250801-000000", 5)

	result, err := env.cleanupServ.Run(context.Background(), CleanupOptions{})
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}

	if result.RetentionDays != 30 {
		t.Errorf("expected default retention 30, got %d", result.RetentionDays)
	}
	if len(result.DeletedIDs) != 1 || result.DeletedIDs[0] != old.ID {
		t.Fatalf("expected only %s deleted, got %v", old.ID, result.DeletedIDs)
	}
	if result.BytesFreed != *old.DatabaseSize {
		t.Errorf("expected %d bytes freed, got %d", *old.DatabaseSize, result.BytesFreed)
	}

	if _, err := os.Stat(*old.DatabaseFile); !os.IsNotExist(err) {
		t.Error("expired artifact should have been deleted")
	}
	if _, err := os.Stat(*recent.DatabaseFile); err != nil {
		t.Errorf("recent artifact should still exist: %v", err)
	}

	if _, err := env.backupRepo.FindByID(context.Background(), old.ID); err == nil {
		t.Error("expired backup record should have been deleted")
	}
	if _, err := env.backupRepo.FindByID(context.Background(), recent.ID); err != nil {
		t.Errorf("recent backup record should still exist: %v", err)
	}
}

func TestCleanupSkipsNonCompletedBackups(t *testing.T) {
	env := setupServiceEnv(t)

	failed := domain.NewBackup("20250101-000000", "broken", domain.BackupKindDatabase)
	failed.Fail("dump failed")
	failed.CreatedAt = time.Now().AddDate(0, 0, -90)
	completedAt := failed.CreatedAt.Add(time.Minute)
	failed.CompletedAt = &completedAt
	if err := env.backupRepo.Create(context.Background(), failed); err != nil {
		t.Fatalf("failed to seed backup: %v", err)
	}

	result, err := env.cleanupServ.Run(context.Background(), CleanupOptions{})
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if len(result.DeletedIDs) != 0 {
		t.Errorf("failed backups must not be cleaned up, got %v", result.DeletedIDs)
	}
}

func TestCleanupRetentionZeroKeepsEverything(t *testing.T) {
	env := setupServiceEnv(t)

	seedCompletedBackup(t, env, "20240101-000000", 400)

	result, err := env.cleanupServ.Run(context.Background(), CleanupOptions{
		RetentionDays: ptr(0),
	})
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}

	if len(result.DeletedIDs) != 0 {
		t.Errorf("retention zero must keep everything, got %v", result.DeletedIDs)
	}
	if result.Cutoff != nil {
		t.Error("retention zero should not compute a cutoff")
	}
}

func TestCleanupDryRun(t *testing.T) {
	env := setupServiceEnv(t)

	old := seedCompletedBackup(t, env, "20250101-000000", 40)

	result, err := env.cleanupServ.Run(context.Background(), CleanupOptions{DryRun: true})
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}

	if len(result.DeletedIDs) != 1 {
		t.Fatalf("dry run should report 1 expired backup, got %d", len(result.DeletedIDs))
	}
	if !result.DryRun {
		t.Error("result should be marked as dry run")
	}

	if _, err := os.Stat(*old.DatabaseFile); err != nil {
		t.Errorf("dry run must not delete files: %v", err)
	}
	if _, err := env.backupRepo.FindByID(context.Background(), old.ID); err != nil {
		t.Errorf("dry run must not delete records: %v", err)
	}
}

func TestCleanupRejectsNegativeRetention(t *testing.T) {
	env := setupServiceEnv(t)

	_, err := env.cleanupServ.Run(context.Background(), CleanupOptions{
		RetentionDays: ptr(-1),
	})
	assertServiceError(t, err, 400)
}

// seedScheduledBackup is seedCompletedBackup for a backup produced by a
// schedule.
func seedScheduledBackup(t *testing.T, env *serviceEnv, id string, daysAgo int, scheduleID int64) *domain.Backup {
	t.Helper()

	path := filepath.Join(env.backupDir, "database_sched_"+id+".sql.gz")
	content := []byte("scheduled dump for " + id)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write artifact: %v", err)
	}

	backup := domain.NewBackup(id, "sched", domain.BackupKindDatabase)
	backup.Start()
	backup.SetDatabaseArtifact(path, int64(len(content)))
	backup.Complete()
	backup.ScheduleID = &scheduleID
	backup.CreatedAt = time.Now().AddDate(0, 0, -daysAgo)
	completedAt := backup.CreatedAt.Add(time.Minute)
	backup.CompletedAt = &completedAt

	if err := env.backupRepo.Create(context.Background(), backup); err != nil {
		t.Fatalf("failed to seed backup %s: %v", id, err)
	}
	return backup
}

func TestCleanupAppliesScheduleRetention(t *testing.T) {
	env := setupServiceEnv(t)

	weekly := domain.NewSchedule("weekly", domain.BackupKindDatabase, domain.FrequencyDaily, true)
	weekly.RetentionDays = 7
	if err := env.scheduleRepo.Create(context.Background(), weekly); err != nil {
		t.Fatalf("failed to create schedule: %v", err)
	}

	scheduled := seedScheduledBackup(t, env, "20260815-000000", 10, weekly.ID)
	adhoc := seedCompletedBackup(t, env, "20260814-000000", 10)

	// Default retention is 30 days: the ad-hoc backup stays, the scheduled
	// one expires under its schedule's 7-day window.
	result, err := env.cleanupServ.Run(context.Background(), CleanupOptions{})
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}

	if len(result.DeletedIDs) != 1 || result.DeletedIDs[0] != scheduled.ID {
		t.Fatalf("expected only %s deleted, got %v", scheduled.ID, result.DeletedIDs)
	}
	if _, err := os.Stat(*scheduled.DatabaseFile); !os.IsNotExist(err) {
		t.Error("scheduled artifact should have been deleted")
	}
	if _, err := os.Stat(*adhoc.DatabaseFile); err != nil {
		t.Errorf("ad-hoc artifact should still exist: %v", err)
	}
}

func TestCleanupScheduleRetentionZeroKeepsItsBackups(t *testing.T) {
	env := setupServiceEnv(t)

	keeper := domain.NewSchedule("archive", domain.BackupKindFull, domain.FrequencyDaily, true)
	keeper.RetentionDays = 0
	if err := env.scheduleRepo.Create(context.Background(), keeper); err != nil {
		t.Fatalf("failed to create schedule: %v", err)
	}

	old := seedScheduledBackup(t, env, "20250101-000000", 90, keeper.ID)

	result, err := env.cleanupServ.Run(context.Background(), CleanupOptions{})
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}

	if len(result.DeletedIDs) != 0 {
		t.Fatalf("expected nothing deleted, got %v", result.DeletedIDs)
	}
	if _, err := os.Stat(*old.DatabaseFile); err != nil {
		t.Errorf("keep-forever artifact should still exist: %v", err)
	}
}

func TestCleanupOverrideAppliesToScheduledBackups(t *testing.T) {
	env := setupServiceEnv(t)

	keeper := domain.NewSchedule("archive", domain.BackupKindFull, domain.FrequencyDaily, true)
	keeper.RetentionDays = 0
	if err := env.scheduleRepo.Create(context.Background(), keeper); err != nil {
		t.Fatalf("failed to create schedule: %v", err)
	}

	scheduled := seedScheduledBackup(t, env, "20260819-000000", 10, keeper.ID)

	result, err := env.cleanupServ.Run(context.Background(), CleanupOptions{RetentionDays: ptr(5)})
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}

	if len(result.DeletedIDs) != 1 || result.DeletedIDs[0] != scheduled.ID {
		t.Fatalf("expected %s deleted under the override, got %v", scheduled.ID, result.DeletedIDs)
	}
}

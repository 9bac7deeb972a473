package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jmartens/shopvault/internal/core/domain"
	"github.com/jmartens/shopvault/internal/infrastructure/sqlite"
)

func setupRunner(t *testing.T) *JobRunner {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create records database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewJobRunner(sqlite.NewJobRepository(db))
}

func TestJobRunnerSuccess(t *testing.T) {
	runner := setupRunner(t)

	job, err := runner.Start(context.Background(), domain.JobKindBackup, nil, func(ctx context.Context) (string, error) {
		return "done", nil
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	runner.Wait()

	stored, err := runner.GetJobByCommandID(context.Background(), job.CommandID)
	if err != nil {
		t.Fatalf("failed to load job: %v", err)
	}
	if stored.Status != domain.JobStatusSuccess {
		t.Errorf("expected status success, got %s", stored.Status)
	}
	if stored.Output == nil || *stored.Output != "done" {
		t.Error("expected job output to be recorded")
	}
	if stored.EndTime == nil {
		t.Error("expected end time to be set")
	}
}

func TestJobRunnerFailure(t *testing.T) {
	runner := setupRunner(t)

	job, err := runner.Start(context.Background(), domain.JobKindBackup, nil, func(ctx context.Context) (string, error) {
		return "", errors.New("disk full")
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	runner.Wait()

	stored, err := runner.GetJobByCommandID(context.Background(), job.CommandID)
	if err != nil {
		t.Fatalf("failed to load job: %v", err)
	}
	if stored.Status != domain.JobStatusFailed {
		t.Errorf("expected status failed, got %s", stored.Status)
	}
	if stored.Error == nil || *stored.Error != "disk full" {
		t.Error("expected failure reason to be recorded")
	}
}

func TestJobRunnerPanicRecovery(t *testing.T) {
	runner := setupRunner(t)

	job, err := runner.Start(context.Background(), domain.JobKindBackup, nil, func(ctx context.Context) (string, error) {
		panic("boom")
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	runner.Wait()

	stored, err := runner.GetJobByCommandID(context.Background(), job.CommandID)
	if err != nil {
		t.Fatalf("failed to load job: %v", err)
	}
	if stored.Status != domain.JobStatusFailed {
		t.Errorf("panicking job should be marked failed, got %s", stored.Status)
	}
}

func TestJobRunnerCancelByResource(t *testing.T) {
	runner := setupRunner(t)

	resourceID := "20250101-000000"
	started := make(chan struct{})
	job, err := runner.Start(context.Background(), domain.JobKindBackup, &resourceID, func(ctx context.Context) (string, error) {
		close(started)
		<-ctx.Done()
		return "", ctx.Err()
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	<-started
	if !runner.CancelByResource(resourceID) {
		t.Fatal("expected cancel to find the running job")
	}
	runner.Wait()

	stored, err := runner.GetJobByCommandID(context.Background(), job.CommandID)
	if err != nil {
		t.Fatalf("failed to load job: %v", err)
	}
	if stored.Status != domain.JobStatusCancelled {
		t.Errorf("expected status cancelled, got %s", stored.Status)
	}

	// The resource mapping is released once the job finishes
	if runner.CancelByResource(resourceID) {
		t.Error("cancel should not find a finished job")
	}
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jmartens/shopvault/internal/api/dto"
	"github.com/jmartens/shopvault/internal/core/domain"
	"github.com/jmartens/shopvault/internal/core/repository"
	"github.com/jmartens/shopvault/internal/core/service"
	"github.com/jmartens/shopvault/internal/engine"
	"github.com/jmartens/shopvault/internal/infrastructure/sqlite"
)

// testEnv holds all test dependencies
type testEnv struct {
	db        *sqlite.DB
	router    *gin.Engine
	backupDir string
	mediaDir  string

	backupRepo   repository.BackupRepository
	restoreRepo  repository.RestoreRepository
	scheduleRepo repository.ScheduleRepository

	runner      *service.JobRunner
	backupServ  *service.BackupService
	restoreServ *service.RestoreService
}

// setupTestEnv creates a test environment with an in-memory records
// database, the sqlite dump engine and real temp directories.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	backupDir := t.TempDir()
	mediaDir := t.TempDir()
	uploadDir := t.TempDir()

	dbFile := filepath.Join(t.TempDir(), "shop.sqlite3")
	if err := os.WriteFile(dbFile, []byte("shop database contents"), 0644); err != nil {
		t.Fatalf("failed to write database file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(mediaDir, "product.jpg"), []byte("image bytes"), 0644); err != nil {
		t.Fatalf("failed to write media file: %v", err)
	}

	// Create repositories
	backupRepo := sqlite.NewBackupRepository(db)
	restoreRepo := sqlite.NewRestoreRepository(db)
	scheduleRepo := sqlite.NewScheduleRepository(db)
	settingsRepo := sqlite.NewSettingsRepository(db, backupDir)
	jobRepo := sqlite.NewJobRepository(db)

	settings, err := settingsRepo.Get(context.Background())
	if err != nil {
		t.Fatalf("failed to load settings: %v", err)
	}
	settings.DBName = dbFile
	if err := settingsRepo.Update(context.Background(), settings); err != nil {
		t.Fatalf("failed to update settings: %v", err)
	}

	dumper, err := engine.ForEngine("sqlite")
	if err != nil {
		t.Fatalf("failed to select engine: %v", err)
	}

	// Create services
	runner := service.NewJobRunner(jobRepo)
	backupServ := service.NewBackupService(backupRepo, settingsRepo, runner, dumper, mediaDir, service.NewNopNotifier())
	restoreServ := service.NewRestoreService(restoreRepo, backupRepo, settingsRepo, backupServ, runner, dumper, mediaDir)
	scheduleServ := service.NewScheduleService(scheduleRepo, backupRepo, backupServ)
	settingsServ := service.NewSettingsService(settingsRepo)
	cleanupServ := service.NewCleanupService(backupRepo, scheduleRepo, settingsRepo)

	// Create handlers
	backupHandler := NewBackupHandler(backupServ, scheduleRepo)
	restoreHandler := NewRestoreHandler(restoreServ, uploadDir)
	scheduleHandler := NewScheduleHandler(scheduleServ)
	settingsHandler := NewSettingsHandler(settingsServ)
	cleanupHandler := NewCleanupHandler(cleanupServ)
	jobHandler := NewJobHandler(runner)

	// Setup gin router in test mode
	gin.SetMode(gin.TestMode)
	router := gin.New()

	// Register routes without auth middleware
	router.POST("/backups", backupHandler.CreateBackup)
	router.GET("/backups", backupHandler.ListBackups)
	router.GET("/backups/:id", backupHandler.GetBackup)
	router.DELETE("/backups/:id", backupHandler.DeleteBackup)
	router.POST("/backups/:id/cancel", backupHandler.CancelBackup)
	router.GET("/backups/:id/download", backupHandler.DownloadBackup)
	router.POST("/restores", restoreHandler.CreateRestore)
	router.POST("/restores/upload", restoreHandler.UploadRestore)
	router.GET("/restores", restoreHandler.ListRestores)
	router.GET("/restores/restorable", restoreHandler.ListRestorable)
	router.GET("/restores/:id", restoreHandler.GetRestore)
	router.POST("/schedules", scheduleHandler.CreateSchedule)
	router.GET("/schedules", scheduleHandler.ListSchedules)
	router.GET("/schedules/:id", scheduleHandler.GetSchedule)
	router.PUT("/schedules/:id", scheduleHandler.UpdateSchedule)
	router.DELETE("/schedules/:id", scheduleHandler.DeleteSchedule)
	router.GET("/settings", settingsHandler.GetSettings)
	router.PUT("/settings", settingsHandler.UpdateSettings)
	router.POST("/cleanup", cleanupHandler.Cleanup)
	router.GET("/jobs", jobHandler.ListJobs)
	router.GET("/jobs/:id", jobHandler.GetJob)
	router.GET("/status/:command_id", jobHandler.GetJobByCommandID)

	return &testEnv{
		db:           db,
		router:       router,
		backupDir:    backupDir,
		mediaDir:     mediaDir,
		backupRepo:   backupRepo,
		restoreRepo:  restoreRepo,
		scheduleRepo: scheduleRepo,
		runner:       runner,
		backupServ:   backupServ,
		restoreServ:  restoreServ,
	}
}

// seedBackups populates the database with backup records for filtering tests
func (env *testEnv) seedBackups(t *testing.T) {
	t.Helper()

	// Base time: Aug 1, 2026
	baseTime := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	backups := []struct {
		id     string
		name   string
		kind   domain.BackupKind
		status domain.RecordStatus
		day    int
	}{
		{"20260801-100000", "nightly", domain.BackupKindFull, domain.StatusCompleted, 0},
		{"20260802-100000", "nightly", domain.BackupKindFull, domain.StatusCompleted, 1},
		{"20260803-100000", "nightly", domain.BackupKindFull, domain.StatusFailed, 2},
		{"20260804-100000", "db-only", domain.BackupKindDatabase, domain.StatusCompleted, 3},
		{"20260805-100000", "db-only", domain.BackupKindDatabase, domain.StatusCompleted, 4},
		{"20260806-100000", "media-only", domain.BackupKindMedia, domain.StatusCompleted, 5},
		{"20260807-100000", "media-only", domain.BackupKindMedia, domain.StatusCancelled, 6},
		{"20260808-100000", "adhoc", domain.BackupKindFull, domain.StatusCompleted, 7},
		{"20260809-100000", "adhoc", domain.BackupKindDatabase, domain.StatusFailed, 8},
		{"20260810-100000", "adhoc", domain.BackupKindFull, domain.StatusInProgress, 9},
	}

	for _, b := range backups {
		backup := domain.NewBackup(b.id, b.name, b.kind)
		backup.Status = b.status
		backup.CreatedAt = baseTime.AddDate(0, 0, b.day)
		if err := env.backupRepo.Create(context.Background(), backup); err != nil {
			t.Fatalf("failed to seed backup %s: %v", b.id, err)
		}
	}
}

// makeRequest performs a request with an optional JSON body
func (env *testEnv) makeRequest(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// runBackup creates a completed backup through the service layer
func (env *testEnv) runBackup(t *testing.T, kind domain.BackupKind) *domain.Backup {
	t.Helper()

	backup, err := env.backupServ.RunBackup(context.Background(), service.CreateBackupOptions{
		Kind:     kind,
		Compress: true,
	})
	if err != nil {
		t.Fatalf("failed to run backup: %v", err)
	}
	return backup
}

func parseJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var resp T
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v\nBody: %s", err, w.Body.String())
	}
	return resp
}

// parseErrorResponse parses the response body into ErrorResponse
func parseErrorResponse(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	return parseJSON[dto.ErrorResponse](t, w)
}

// ptr is a helper to create a pointer to a value
func ptr[T any](v T) *T {
	return &v
}

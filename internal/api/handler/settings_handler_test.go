package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/jmartens/shopvault/internal/api/dto"
)

func TestGetSettings(t *testing.T) {
	env := setupTestEnv(t)

	w := env.makeRequest(t, http.MethodGet, "/settings", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	resp := parseJSON[dto.SettingsResponse](t, w)
	if resp.BackupDir != env.backupDir {
		t.Errorf("expected backup dir %s, got %s", env.backupDir, resp.BackupDir)
	}
	if resp.CompressionLevel != 6 || resp.DefaultRetentionDays != 30 {
		t.Errorf("unexpected defaults: %+v", resp)
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Error("settings response must never include the database password")
	}
}

func TestUpdateSettings(t *testing.T) {
	env := setupTestEnv(t)

	w := env.makeRequest(t, http.MethodPut, "/settings", dto.UpdateSettingsRequest{
		BackupDir:            env.backupDir,
		DBHost:               "db.internal",
		DBPort:               3307,
		DBUser:               "shop",
		DBPassword:           "secret",
		DBName:               "shopdb",
		CompressionLevel:     9,
		DefaultRetentionDays: 7,
		NotifyEmail:          "ops@example.com",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d\nBody: %s", w.Code, w.Body.String())
	}

	resp := parseJSON[dto.SettingsResponse](t, w)
	if resp.DBHost != "db.internal" || resp.CompressionLevel != 9 {
		t.Errorf("unexpected settings: %+v", resp)
	}

	// Omitting the password keeps the stored one: read back and confirm the
	// update stuck without it
	w = env.makeRequest(t, http.MethodPut, "/settings", dto.UpdateSettingsRequest{
		BackupDir:        env.backupDir,
		DBHost:           "db.internal",
		DBPort:           3307,
		CompressionLevel: 9,
		NotifyEmail:      "",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = env.makeRequest(t, http.MethodGet, "/settings", nil)
	resp = parseJSON[dto.SettingsResponse](t, w)
	if resp.NotifyEmail != "" {
		t.Errorf("notify email should have been cleared, got %s", resp.NotifyEmail)
	}
}

func TestUpdateSettingsValidation(t *testing.T) {
	env := setupTestEnv(t)

	// Compression level outside gzip's range
	w := env.makeRequest(t, http.MethodPut, "/settings", dto.UpdateSettingsRequest{
		BackupDir:        env.backupDir,
		DBHost:           "localhost",
		DBPort:           3306,
		CompressionLevel: 12,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

package handler

import (
	"net/http"
	"testing"

	"github.com/jmartens/shopvault/internal/api/dto"
)

func TestJobStatusPolling(t *testing.T) {
	env := setupTestEnv(t)

	w := env.makeRequest(t, http.MethodPost, "/backups", dto.CreateBackupRequest{Kind: "database"})
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
	async := parseJSON[dto.AsyncResponse](t, w)
	env.runner.Wait()

	// Poll by command ID
	w = env.makeRequest(t, http.MethodGet, "/status/"+async.CommandID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	job := parseJSON[dto.JobResponse](t, w)
	if job.CommandID != async.CommandID {
		t.Errorf("expected command ID %s, got %s", async.CommandID, job.CommandID)
	}
	if job.Kind != "backup" {
		t.Errorf("expected kind backup, got %s", job.Kind)
	}
	if job.EndTime == nil {
		t.Error("finished job should have an end time")
	}

	// And by database ID
	w = env.makeRequest(t, http.MethodGet, "/jobs/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestJobStatusNotFound(t *testing.T) {
	env := setupTestEnv(t)

	w := env.makeRequest(t, http.MethodGet, "/status/no-such-command", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}

	w = env.makeRequest(t, http.MethodGet, "/jobs/999", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestListJobs(t *testing.T) {
	env := setupTestEnv(t)

	for i := 0; i < 2; i++ {
		w := env.makeRequest(t, http.MethodPost, "/backups", dto.CreateBackupRequest{Kind: "database"})
		if w.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d", w.Code)
		}
	}
	env.runner.Wait()

	w := env.makeRequest(t, http.MethodGet, "/jobs?query=status|success", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d\nBody: %s", w.Code, w.Body.String())
	}
	resp := parseJSON[dto.JobListResponse](t, w)
	if len(resp.Items) != 2 {
		t.Errorf("expected 2 successful jobs, got %d", len(resp.Items))
	}
}

package handler

import (
	"net/http"
	"testing"

	"github.com/jmartens/shopvault/internal/api/dto"
)

func TestCreateSchedule(t *testing.T) {
	tests := []struct {
		name           string
		request        dto.CreateScheduleRequest
		expectedStatus int
	}{
		{
			name: "valid daily schedule",
			request: dto.CreateScheduleRequest{
				Name:      "nightly",
				Kind:      "full",
				Frequency: "daily",
				Hour:      3,
				Minute:    30,
				Enabled:   true,
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "valid weekly schedule",
			request: dto.CreateScheduleRequest{
				Name:      "weekly",
				Kind:      "database",
				Frequency: "weekly",
				Hour:      2,
				DayOfWeek: ptr(0),
				Enabled:   true,
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "weekly without day_of_week",
			request: dto.CreateScheduleRequest{
				Name:      "broken",
				Kind:      "database",
				Frequency: "weekly",
				Hour:      2,
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "monthly without day_of_month",
			request: dto.CreateScheduleRequest{
				Name:      "broken",
				Kind:      "media",
				Frequency: "monthly",
				Hour:      2,
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "invalid frequency rejected by binding",
			request: dto.CreateScheduleRequest{
				Name:      "broken",
				Kind:      "full",
				Frequency: "hourly",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "hour out of range",
			request: dto.CreateScheduleRequest{
				Name:      "broken",
				Kind:      "full",
				Frequency: "daily",
				Hour:      24,
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t)

			w := env.makeRequest(t, http.MethodPost, "/schedules", tt.request)
			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d\nBody: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedStatus != http.StatusCreated {
				return
			}

			resp := parseJSON[dto.ScheduleResponse](t, w)
			if resp.ID == 0 {
				t.Error("expected schedule ID to be assigned")
			}
			if resp.NextRunAt == nil {
				t.Error("expected next run time to be computed")
			}
		})
	}
}

func TestScheduleCRUD(t *testing.T) {
	env := setupTestEnv(t)

	w := env.makeRequest(t, http.MethodPost, "/schedules", dto.CreateScheduleRequest{
		Name:          "nightly",
		Kind:          "full",
		Frequency:     "daily",
		Hour:          3,
		RetentionDays: 14,
		Enabled:       true,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create failed: %d\nBody: %s", w.Code, w.Body.String())
	}
	created := parseJSON[dto.ScheduleResponse](t, w)

	// Read it back
	w = env.makeRequest(t, http.MethodGet, "/schedules/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	got := parseJSON[dto.ScheduleResponse](t, w)
	if got.Name != "nightly" || got.RetentionDays != 14 {
		t.Errorf("unexpected schedule: %+v", got)
	}

	// Partial update keeps unspecified fields
	w = env.makeRequest(t, http.MethodPut, "/schedules/1", dto.UpdateScheduleRequest{
		Enabled: ptr(false),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update failed: %d\nBody: %s", w.Code, w.Body.String())
	}
	updated := parseJSON[dto.ScheduleResponse](t, w)
	if updated.Enabled {
		t.Error("schedule should be disabled")
	}
	if updated.Name != created.Name || updated.Hour != created.Hour {
		t.Error("partial update must not clear other fields")
	}

	// Invalid update is rejected
	w = env.makeRequest(t, http.MethodPut, "/schedules/1", dto.UpdateScheduleRequest{
		Frequency: ptr("weekly"),
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("weekly without day_of_week should fail, got %d", w.Code)
	}

	// Delete
	w = env.makeRequest(t, http.MethodDelete, "/schedules/1", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete failed: %d", w.Code)
	}
	w = env.makeRequest(t, http.MethodGet, "/schedules/1", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("deleted schedule should be gone, got %d", w.Code)
	}
}

func TestListSchedules(t *testing.T) {
	env := setupTestEnv(t)

	for _, req := range []dto.CreateScheduleRequest{
		{Name: "a", Kind: "full", Frequency: "daily", Hour: 1, Enabled: true},
		{Name: "b", Kind: "database", Frequency: "daily", Hour: 2, Enabled: true},
		{Name: "c", Kind: "database", Frequency: "daily", Hour: 3, Enabled: false},
	} {
		w := env.makeRequest(t, http.MethodPost, "/schedules", req)
		if w.Code != http.StatusCreated {
			t.Fatalf("seed create failed: %d", w.Code)
		}
	}

	w := env.makeRequest(t, http.MethodGet, "/schedules", nil)
	resp := parseJSON[dto.ScheduleListResponse](t, w)
	if len(resp.Items) != 3 {
		t.Errorf("expected 3 schedules, got %d", len(resp.Items))
	}

	w = env.makeRequest(t, http.MethodGet, "/schedules?kind=database&enabled=true", nil)
	resp = parseJSON[dto.ScheduleListResponse](t, w)
	if len(resp.Items) != 1 || resp.Items[0].Name != "b" {
		t.Errorf("expected only schedule b, got %+v", resp.Items)
	}
}

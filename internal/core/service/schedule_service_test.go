package service

import (
	"context"
	"testing"
	"time"

	"github.com/jmartens/shopvault/internal/core/domain"
)

func TestValidateSchedule(t *testing.T) {
	valid := func() *domain.Schedule {
		s := domain.NewSchedule("nightly", domain.BackupKindFull, domain.FrequencyDaily, true)
		s.Hour = 3
		s.Minute = 30
		return s
	}

	tests := []struct {
		name    string
		mutate  func(s *domain.Schedule)
		wantErr bool
	}{
		{
			name:   "valid daily schedule",
			mutate: func(s *domain.Schedule) {},
		},
		{
			name: "valid weekly schedule",
			mutate: func(s *domain.Schedule) {
				s.Frequency = domain.FrequencyWeekly
				s.DayOfWeek = ptr(1)
			},
		},
		{
			name: "valid monthly schedule",
			mutate: func(s *domain.Schedule) {
				s.Frequency = domain.FrequencyMonthly
				s.DayOfMonth = ptr(15)
			},
		},
		{
			name:    "empty name",
			mutate:  func(s *domain.Schedule) { s.Name = "" },
			wantErr: true,
		},
		{
			name:    "invalid kind",
			mutate:  func(s *domain.Schedule) { s.Kind = domain.BackupKind("tarball") },
			wantErr: true,
		},
		{
			name:    "invalid frequency",
			mutate:  func(s *domain.Schedule) { s.Frequency = domain.ScheduleFrequency("hourly") },
			wantErr: true,
		},
		{
			name:    "hour out of range",
			mutate:  func(s *domain.Schedule) { s.Hour = 24 },
			wantErr: true,
		},
		{
			name:    "minute out of range",
			mutate:  func(s *domain.Schedule) { s.Minute = 60 },
			wantErr: true,
		},
		{
			name:    "negative retention",
			mutate:  func(s *domain.Schedule) { s.RetentionDays = -1 },
			wantErr: true,
		},
		{
			name:    "weekly without day_of_week",
			mutate:  func(s *domain.Schedule) { s.Frequency = domain.FrequencyWeekly },
			wantErr: true,
		},
		{
			name: "weekly with day_of_week out of range",
			mutate: func(s *domain.Schedule) {
				s.Frequency = domain.FrequencyWeekly
				s.DayOfWeek = ptr(7)
			},
			wantErr: true,
		},
		{
			name:    "monthly without day_of_month",
			mutate:  func(s *domain.Schedule) { s.Frequency = domain.FrequencyMonthly },
			wantErr: true,
		},
		{
			name: "monthly with day_of_month out of range",
			mutate: func(s *domain.Schedule) {
				s.Frequency = domain.FrequencyMonthly
				s.DayOfMonth = ptr(32)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)
			err := validateSchedule(s)
			if tt.wantErr && err == nil {
				t.Error("expected a validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestCreateScheduleComputesNextRun(t *testing.T) {
	env := setupServiceEnv(t)

	schedule := domain.NewSchedule("nightly", domain.BackupKindFull, domain.FrequencyDaily, true)
	schedule.Hour = 3
	schedule.Minute = 30

	if err := env.scheduleServ.CreateSchedule(context.Background(), schedule); err != nil {
		t.Fatalf("CreateSchedule failed: %v", err)
	}

	if schedule.ID == 0 {
		t.Error("expected schedule ID to be assigned")
	}
	if schedule.NextRunAt == nil {
		t.Fatal("expected next run time to be computed")
	}
	if schedule.NextRunAt.Hour() != 3 || schedule.NextRunAt.Minute() != 30 {
		t.Errorf("next run should land on 03:30, got %s", schedule.NextRunAt.Format("15:04"))
	}
	if !schedule.NextRunAt.After(time.Now()) {
		t.Error("next run should be in the future")
	}
}

func TestMonthlyScheduleSkipsShortMonths(t *testing.T) {
	// A schedule for the 31st must only fire in months that have one
	schedule := domain.NewSchedule("monthly", domain.BackupKindDatabase, domain.FrequencyMonthly, true)
	schedule.Hour = 1
	schedule.DayOfMonth = ptr(31)

	spec, err := cronParser.Parse(schedule.CronExpression())
	if err != nil {
		t.Fatalf("failed to parse expression: %v", err)
	}

	from := time.Date(2026, 1, 31, 2, 0, 0, 0, time.UTC)
	next := spec.Next(from)
	if next.Month() != time.March || next.Day() != 31 {
		t.Errorf("expected next run on March 31, got %s", next.Format("2006-01-02"))
	}
}

func TestRunDueTriggersOnlyDueSchedules(t *testing.T) {
	env := setupServiceEnv(t)

	due := domain.NewSchedule("due", domain.BackupKindDatabase, domain.FrequencyDaily, true)
	due.Hour = 3
	if err := env.scheduleServ.CreateSchedule(context.Background(), due); err != nil {
		t.Fatalf("CreateSchedule failed: %v", err)
	}
	past := time.Now().Add(-time.Hour)
	due.NextRunAt = &past
	if err := env.scheduleRepo.Update(context.Background(), due); err != nil {
		t.Fatalf("failed to backdate schedule: %v", err)
	}

	notDue := domain.NewSchedule("not-due", domain.BackupKindDatabase, domain.FrequencyDaily, true)
	notDue.Hour = 3
	if err := env.scheduleServ.CreateSchedule(context.Background(), notDue); err != nil {
		t.Fatalf("CreateSchedule failed: %v", err)
	}

	result, err := env.scheduleServ.RunDue(context.Background(), RunDueOptions{})
	if err != nil {
		t.Fatalf("RunDue failed: %v", err)
	}

	if len(result.Triggered) != 1 || result.Triggered[0].ID != due.ID {
		t.Fatalf("expected only the due schedule to trigger, got %d", len(result.Triggered))
	}
	if len(result.Backups) != 1 {
		t.Fatalf("expected 1 backup, got %d", len(result.Backups))
	}
	if result.Backups[0].Status != domain.StatusCompleted {
		t.Errorf("scheduled backup should complete, got %s", result.Backups[0].Status)
	}
	if result.Backups[0].ScheduleID == nil || *result.Backups[0].ScheduleID != due.ID {
		t.Error("backup should be linked to its schedule")
	}

	// The due schedule advanced past now
	reloaded, err := env.scheduleRepo.FindByID(context.Background(), due.ID)
	if err != nil {
		t.Fatalf("failed to reload schedule: %v", err)
	}
	if reloaded.LastRunAt == nil {
		t.Error("last run time should be recorded")
	}
	if reloaded.NextRunAt == nil || !reloaded.NextRunAt.After(time.Now()) {
		t.Error("next run should have advanced into the future")
	}
}

func TestRunDueDryRun(t *testing.T) {
	env := setupServiceEnv(t)

	due := domain.NewSchedule("due", domain.BackupKindDatabase, domain.FrequencyDaily, true)
	due.Hour = 3
	if err := env.scheduleServ.CreateSchedule(context.Background(), due); err != nil {
		t.Fatalf("CreateSchedule failed: %v", err)
	}
	past := time.Now().Add(-time.Hour)
	due.NextRunAt = &past
	if err := env.scheduleRepo.Update(context.Background(), due); err != nil {
		t.Fatalf("failed to backdate schedule: %v", err)
	}

	result, err := env.scheduleServ.RunDue(context.Background(), RunDueOptions{DryRun: true})
	if err != nil {
		t.Fatalf("RunDue failed: %v", err)
	}

	if len(result.Triggered) != 1 {
		t.Fatalf("expected 1 due schedule, got %d", len(result.Triggered))
	}
	if len(result.Backups) != 0 {
		t.Errorf("dry run must not run backups, got %d", len(result.Backups))
	}
}

func TestRunDueSkipsDisabledSchedules(t *testing.T) {
	env := setupServiceEnv(t)

	disabled := domain.NewSchedule("disabled", domain.BackupKindDatabase, domain.FrequencyDaily, false)
	disabled.Hour = 3
	if err := env.scheduleServ.CreateSchedule(context.Background(), disabled); err != nil {
		t.Fatalf("CreateSchedule failed: %v", err)
	}

	result, err := env.scheduleServ.RunDue(context.Background(), RunDueOptions{Force: true})
	if err != nil {
		t.Fatalf("RunDue failed: %v", err)
	}
	if len(result.Triggered) != 0 {
		t.Errorf("disabled schedules must never trigger, got %d", len(result.Triggered))
	}
}

func TestScheduleMutationsFireOnChange(t *testing.T) {
	env := setupServiceEnv(t)

	var fired int
	env.scheduleServ.OnChange(func() { fired++ })

	schedule := domain.NewSchedule("nightly", domain.BackupKindFull, domain.FrequencyDaily, true)
	schedule.Hour = 3
	if err := env.scheduleServ.CreateSchedule(context.Background(), schedule); err != nil {
		t.Fatalf("failed to create schedule: %v", err)
	}
	if fired != 1 {
		t.Fatalf("expected one change notification after create, got %d", fired)
	}

	schedule.Enabled = false
	if err := env.scheduleServ.UpdateSchedule(context.Background(), schedule); err != nil {
		t.Fatalf("failed to update schedule: %v", err)
	}
	if fired != 2 {
		t.Fatalf("expected two change notifications after update, got %d", fired)
	}

	if err := env.scheduleServ.DeleteSchedule(context.Background(), schedule.ID); err != nil {
		t.Fatalf("failed to delete schedule: %v", err)
	}
	if fired != 3 {
		t.Fatalf("expected three change notifications after delete, got %d", fired)
	}

	invalid := domain.NewSchedule("", domain.BackupKindFull, domain.FrequencyDaily, true)
	if err := env.scheduleServ.CreateSchedule(context.Background(), invalid); err == nil {
		t.Fatal("expected a validation error")
	}
	if fired != 3 {
		t.Fatalf("a rejected mutation should not notify, got %d", fired)
	}
}

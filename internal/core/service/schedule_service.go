package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/jmartens/shopvault/internal/core/domain"
	"github.com/jmartens/shopvault/internal/core/repository"
)

var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

type ScheduleService struct {
	scheduleRepo repository.ScheduleRepository
	backupRepo   repository.BackupRepository
	backupServ   *BackupService
	onChange     func()
	log          *logrus.Entry
}

func NewScheduleService(
	scheduleRepo repository.ScheduleRepository,
	backupRepo repository.BackupRepository,
	backupServ *BackupService,
) *ScheduleService {
	return &ScheduleService{
		scheduleRepo: scheduleRepo,
		backupRepo:   backupRepo,
		backupServ:   backupServ,
		log:          logrus.WithField("component", "schedule"),
	}
}

// OnChange registers a callback invoked after every schedule mutation, so
// an in-process scheduler can pick up the new entry set.
func (s *ScheduleService) OnChange(fn func()) {
	s.onChange = fn
}

func (s *ScheduleService) notifyChange() {
	if s.onChange != nil {
		s.onChange()
	}
}

// CreateSchedule validates and creates a schedule with its next run time.
func (s *ScheduleService) CreateSchedule(ctx context.Context, schedule *domain.Schedule) error {
	if err := validateSchedule(schedule); err != nil {
		return err
	}

	if err := s.computeNextRun(schedule, time.Now()); err != nil {
		return err
	}

	if err := s.scheduleRepo.Create(ctx, schedule); err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}

	s.notifyChange()
	return nil
}

// UpdateSchedule validates and updates an existing schedule.
func (s *ScheduleService) UpdateSchedule(ctx context.Context, schedule *domain.Schedule) error {
	if err := validateSchedule(schedule); err != nil {
		return err
	}

	if err := s.computeNextRun(schedule, time.Now()); err != nil {
		return err
	}

	schedule.UpdatedAt = time.Now()
	if err := s.scheduleRepo.Update(ctx, schedule); err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}

	s.notifyChange()
	return nil
}

// DeleteSchedule deletes a schedule. Backups it produced keep their records
// with the schedule link cleared.
func (s *ScheduleService) DeleteSchedule(ctx context.Context, id int64) error {
	if err := s.scheduleRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	s.notifyChange()
	return nil
}

// GetSchedule retrieves a schedule by ID.
func (s *ScheduleService) GetSchedule(ctx context.Context, id int64) (*domain.Schedule, error) {
	return s.scheduleRepo.FindByID(ctx, id)
}

// ListSchedules lists schedules with filtering.
func (s *ScheduleService) ListSchedules(ctx context.Context, filter repository.ScheduleFilter) ([]*domain.Schedule, error) {
	return s.scheduleRepo.List(ctx, filter)
}

// CountSchedules counts schedules with filtering.
func (s *ScheduleService) CountSchedules(ctx context.Context, filter repository.ScheduleFilter) (int, error) {
	return s.scheduleRepo.Count(ctx, filter)
}

// GetBackupsForSchedule gets all backups produced by a schedule.
func (s *ScheduleService) GetBackupsForSchedule(ctx context.Context, scheduleID int64) ([]*domain.Backup, error) {
	return s.backupRepo.FindBySchedule(ctx, scheduleID)
}

type RunDueOptions struct {
	// Force triggers every enabled schedule regardless of due time.
	Force  bool
	DryRun bool
}

type RunDueResult struct {
	Triggered []*domain.Schedule
	Backups   []*domain.Backup
	DryRun    bool
}

// RunDue triggers every enabled schedule whose next run time has passed and
// advances its next run. Backups run synchronously, one schedule at a time.
func (s *ScheduleService) RunDue(ctx context.Context, opts RunDueOptions) (*RunDueResult, error) {
	schedules, err := s.scheduleRepo.FindAllEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedules: %w", err)
	}

	now := time.Now()
	result := &RunDueResult{DryRun: opts.DryRun}

	for _, schedule := range schedules {
		if !opts.Force && !isDue(schedule, now) {
			continue
		}
		result.Triggered = append(result.Triggered, schedule)

		if opts.DryRun {
			continue
		}

		backup, err := s.TriggerSchedule(ctx, schedule)
		if err != nil {
			s.log.WithError(err).WithField("schedule_id", schedule.ID).
				Error("scheduled backup failed")
		}
		if backup != nil {
			result.Backups = append(result.Backups, backup)
		}
	}

	return result, nil
}

// TriggerSchedule runs one schedule's backup now and advances its run times.
func (s *ScheduleService) TriggerSchedule(ctx context.Context, schedule *domain.Schedule) (*domain.Backup, error) {
	log := s.log.WithField("schedule_id", schedule.ID)
	log.Info("triggering scheduled backup")

	backup, err := s.backupServ.RunBackup(ctx, CreateBackupOptions{
		Name:       schedule.Name,
		Kind:       schedule.Kind,
		Compress:   true,
		ScheduleID: &schedule.ID,
	})

	now := time.Now()
	schedule.LastRunAt = &now
	if cerr := s.computeNextRun(schedule, now); cerr != nil {
		log.WithError(cerr).Error("failed to compute next run")
	}
	schedule.UpdatedAt = now
	if uerr := s.scheduleRepo.Update(ctx, schedule); uerr != nil {
		log.WithError(uerr).Error("failed to advance schedule run times")
	}

	return backup, err
}

func (s *ScheduleService) computeNextRun(schedule *domain.Schedule, from time.Time) error {
	spec, err := cronParser.Parse(schedule.CronExpression())
	if err != nil {
		return fmt.Errorf("failed to parse schedule expression: %w", err)
	}
	next := spec.Next(from)
	schedule.NextRunAt = &next
	return nil
}

func isDue(schedule *domain.Schedule, now time.Time) bool {
	return schedule.NextRunAt != nil && !schedule.NextRunAt.After(now)
}

func validateSchedule(schedule *domain.Schedule) error {
	switch schedule.Kind {
	case domain.BackupKindDatabase, domain.BackupKindMedia, domain.BackupKindFull:
	default:
		return NewServiceError(400, fmt.Sprintf("invalid backup kind: %q", schedule.Kind))
	}

	if schedule.Name == "" {
		return NewServiceError(400, "schedule name is required")
	}
	if schedule.Hour < 0 || schedule.Hour > 23 {
		return NewServiceError(400, "hour must be between 0 and 23")
	}
	if schedule.Minute < 0 || schedule.Minute > 59 {
		return NewServiceError(400, "minute must be between 0 and 59")
	}
	if schedule.RetentionDays < 0 {
		return NewServiceError(400, "retention_days must be zero or positive")
	}

	switch schedule.Frequency {
	case domain.FrequencyDaily:
	case domain.FrequencyWeekly:
		if schedule.DayOfWeek == nil {
			return NewServiceError(400, "weekly schedules require day_of_week")
		}
		if *schedule.DayOfWeek < 0 || *schedule.DayOfWeek > 6 {
			return NewServiceError(400, "day_of_week must be between 0 and 6")
		}
	case domain.FrequencyMonthly:
		if schedule.DayOfMonth == nil {
			return NewServiceError(400, "monthly schedules require day_of_month")
		}
		if *schedule.DayOfMonth < 1 || *schedule.DayOfMonth > 31 {
			return NewServiceError(400, "day_of_month must be between 1 and 31")
		}
	default:
		return NewServiceError(400, fmt.Sprintf("invalid frequency: %q", schedule.Frequency))
	}

	return nil
}

package domain

import (
	"fmt"
	"time"
)

type ScheduleFrequency string

const (
	FrequencyDaily   ScheduleFrequency = "daily"
	FrequencyWeekly  ScheduleFrequency = "weekly"
	FrequencyMonthly ScheduleFrequency = "monthly"
)

// Schedule describes a recurring backup. RetentionDays bounds how long the
// backups it produces are kept; zero means keep forever.
type Schedule struct {
	ID            int64             `db:"id"`
	Name          string            `db:"name"`
	Kind          BackupKind        `db:"kind"`
	Frequency     ScheduleFrequency `db:"frequency"`
	Hour          int               `db:"hour"`   // 0-23
	Minute        int               `db:"minute"` // 0-59
	DayOfWeek     *int              `db:"day_of_week"`  // 0-6 (Sunday-Saturday), weekly only
	DayOfMonth    *int              `db:"day_of_month"` // 1-31, monthly only
	RetentionDays int               `db:"retention_days"`
	Enabled       bool              `db:"enabled"`
	LastRunAt     *time.Time        `db:"last_run_at"`
	NextRunAt     *time.Time        `db:"next_run_at"`
	CreatedAt     time.Time         `db:"created_at"`
	UpdatedAt     time.Time         `db:"updated_at"`
}

func NewSchedule(name string, kind BackupKind, frequency ScheduleFrequency, enabled bool) *Schedule {
	now := time.Now()
	return &Schedule{
		Name:      name,
		Kind:      kind,
		Frequency: frequency,
		Enabled:   enabled,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CronExpression renders the schedule as a standard 5-field cron spec.
func (s *Schedule) CronExpression() string {
	switch s.Frequency {
	case FrequencyWeekly:
		dow := 0
		if s.DayOfWeek != nil {
			dow = *s.DayOfWeek
		}
		return fmt.Sprintf("%d %d * * %d", s.Minute, s.Hour, dow)
	case FrequencyMonthly:
		dom := 1
		if s.DayOfMonth != nil {
			dom = *s.DayOfMonth
		}
		return fmt.Sprintf("%d %d %d * *", s.Minute, s.Hour, dom)
	default:
		return fmt.Sprintf("%d %d * * *", s.Minute, s.Hour)
	}
}

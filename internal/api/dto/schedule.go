package dto

import "time"

// CreateScheduleRequest represents the schedule creation request
type CreateScheduleRequest struct {
	Name          string `json:"name" binding:"required"`
	Kind          string `json:"kind" binding:"required,oneof=database media full"`
	Frequency     string `json:"frequency" binding:"required,oneof=daily weekly monthly"`
	Hour          int    `json:"hour"`                   // 0-23
	Minute        int    `json:"minute"`                 // 0-59
	DayOfWeek     *int   `json:"day_of_week,omitempty"`  // 0-6 (Sunday-Saturday)
	DayOfMonth    *int   `json:"day_of_month,omitempty"` // 1-31
	RetentionDays int    `json:"retention_days"`         // 0 = keep forever
	Enabled       bool   `json:"enabled"`
}

// UpdateScheduleRequest represents the schedule update request
type UpdateScheduleRequest struct {
	Name          *string `json:"name,omitempty"`
	Kind          *string `json:"kind,omitempty"`
	Frequency     *string `json:"frequency,omitempty"`
	Hour          *int    `json:"hour,omitempty"`
	Minute        *int    `json:"minute,omitempty"`
	DayOfWeek     *int    `json:"day_of_week,omitempty"`
	DayOfMonth    *int    `json:"day_of_month,omitempty"`
	RetentionDays *int    `json:"retention_days,omitempty"`
	Enabled       *bool   `json:"enabled,omitempty"`
}

// ScheduleResponse represents a schedule
type ScheduleResponse struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Kind          string     `json:"kind"`
	Frequency     string     `json:"frequency"`
	Hour          int        `json:"hour"`
	Minute        int        `json:"minute"`
	DayOfWeek     *int       `json:"day_of_week,omitempty"`
	DayOfMonth    *int       `json:"day_of_month,omitempty"`
	RetentionDays int        `json:"retention_days"`
	Enabled       bool       `json:"enabled"`
	LastRunAt     *time.Time `json:"last_run_at,omitempty"`
	NextRunAt     *time.Time `json:"next_run_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ScheduleListResponse represents a list of schedules
type ScheduleListResponse struct {
	Items      []ScheduleResponse `json:"items"`
	Pagination PaginationInfo     `json:"pagination"`
}

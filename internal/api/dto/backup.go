package dto

import "time"

// CreateBackupRequest represents the backup creation request
type CreateBackupRequest struct {
	Kind        string `json:"kind" binding:"required,oneof=database media full"`
	Name        string `json:"name"`
	Compress    *bool  `json:"compress"`     // Defaults to true
	ExcludeLogs bool   `json:"exclude_logs"`
}

// BackupResponse represents a backup
type BackupResponse struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Kind          string     `json:"kind"`
	Status        string     `json:"status"`
	DatabaseFile  *string    `json:"database_file,omitempty"`
	DatabaseSize  *int64     `json:"database_size,omitempty"`
	MediaFile     *string    `json:"media_file,omitempty"`
	MediaSize     *int64     `json:"media_size,omitempty"`
	Compress      bool       `json:"compress"`
	ExcludeLogs   bool       `json:"exclude_logs"`
	ScheduleID    *int64     `json:"schedule_id,omitempty"`
	RetentionDays *int       `json:"retention_days,omitempty"`
	CreatedBy     *string    `json:"created_by,omitempty"`
	Error         *string    `json:"error,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// BackupListResponse represents a list of backups
type BackupListResponse struct {
	Items      []BackupResponse `json:"items"`
	Pagination PaginationInfo   `json:"pagination"`
}

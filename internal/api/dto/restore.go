package dto

import "time"

// CreateRestoreRequest represents a restore from an existing backup record
type CreateRestoreRequest struct {
	Kind          string `json:"kind" binding:"required,oneof=database media full"`
	BackupID      string `json:"backup_id" binding:"required"`
	Overwrite     bool   `json:"overwrite"`
	SnapshotFirst *bool  `json:"snapshot_first"` // Defaults to true
}

// RestoreResponse represents a restore
type RestoreResponse struct {
	ID                   int64      `json:"id"`
	Kind                 string     `json:"kind"`
	Status               string     `json:"status"`
	BackupID             *string    `json:"backup_id,omitempty"`
	UploadedDatabaseFile *string    `json:"uploaded_database_file,omitempty"`
	UploadedMediaFile    *string    `json:"uploaded_media_file,omitempty"`
	Overwrite            bool       `json:"overwrite"`
	SnapshotFirst        bool       `json:"snapshot_first"`
	SafetyBackupID       *string    `json:"safety_backup_id,omitempty"`
	CreatedBy            *string    `json:"created_by,omitempty"`
	Error                *string    `json:"error,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	StartedAt            *time.Time `json:"started_at,omitempty"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
}

// RestoreListResponse represents a list of restores
type RestoreListResponse struct {
	Items      []RestoreResponse `json:"items"`
	Pagination PaginationInfo    `json:"pagination"`
}

// RestorableBackupResponse is one entry of GET /restores/restorable
type RestorableBackupResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Kind         string    `json:"kind"`
	DatabaseFile *string   `json:"database_file,omitempty"`
	MediaFile    *string   `json:"media_file,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

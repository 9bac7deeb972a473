package dto

// CleanupRequest represents the cleanup request
type CleanupRequest struct {
	RetentionDays *int `json:"retention_days,omitempty"` // Override the settings default
	DryRun        bool `json:"dry_run"`
}

// CleanupResponse represents the cleanup outcome
type CleanupResponse struct {
	RetentionDays int      `json:"retention_days"`
	Cutoff        *string  `json:"cutoff,omitempty"`
	DeletedIDs    []string `json:"deleted_ids"`
	DeletedCount  int      `json:"deleted_count"`
	BytesFreed    int64    `json:"bytes_freed"`
	DryRun        bool     `json:"dry_run"`
}

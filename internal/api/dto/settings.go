package dto

import "time"

// UpdateSettingsRequest represents the settings update request
type UpdateSettingsRequest struct {
	BackupDir            string `json:"backup_dir" binding:"required"`
	DumpBinary           string `json:"dump_binary"`
	ClientBinary         string `json:"client_binary"`
	DBHost               string `json:"db_host" binding:"required"`
	DBPort               int    `json:"db_port" binding:"required"`
	DBUser               string `json:"db_user"`
	DBPassword           string `json:"db_password"`
	DBName               string `json:"db_name"`
	CompressionLevel     int    `json:"compression_level" binding:"required,min=1,max=9"`
	DefaultRetentionDays int    `json:"default_retention_days"`
	NotifyEmail          string `json:"notify_email"`
}

// SettingsResponse represents settings. The database password is never
// echoed back.
type SettingsResponse struct {
	BackupDir            string    `json:"backup_dir"`
	DumpBinary           string    `json:"dump_binary"`
	ClientBinary         string    `json:"client_binary"`
	DBHost               string    `json:"db_host"`
	DBPort               int       `json:"db_port"`
	DBUser               string    `json:"db_user"`
	DBName               string    `json:"db_name"`
	CompressionLevel     int       `json:"compression_level"`
	DefaultRetentionDays int       `json:"default_retention_days"`
	NotifyEmail          string    `json:"notify_email"`
	UpdatedAt            time.Time `json:"updated_at"`
}

package domain

import "time"

const SettingsID = 1

// Settings is the process-wide singleton holding operational backup knobs.
// It is lazily created with defaults on first access and never deleted.
type Settings struct {
	ID                   int64     `db:"id"`
	BackupDir            string    `db:"backup_dir"`
	DumpBinary           string    `db:"dump_binary"`   // e.g. /usr/bin/mysqldump
	ClientBinary         string    `db:"client_binary"` // e.g. /usr/bin/mysql
	DBHost               string    `db:"db_host"`
	DBPort               int       `db:"db_port"`
	DBUser               string    `db:"db_user"`
	DBPassword           string    `db:"db_password"`
	DBName               string    `db:"db_name"`
	CompressionLevel     int       `db:"compression_level"` // gzip 1-9
	DefaultRetentionDays int       `db:"default_retention_days"`
	NotifyEmail          string    `db:"notify_email"`
	UpdatedAt            time.Time `db:"updated_at"`
}

// DefaultSettings returns the row created on first access.
func DefaultSettings(backupDir string) *Settings {
	return &Settings{
		ID:                   SettingsID,
		BackupDir:            backupDir,
		DBHost:               "localhost",
		DBPort:               3306,
		CompressionLevel:     6,
		DefaultRetentionDays: 30,
		UpdatedAt:            time.Now(),
	}
}

package domain

import "time"

type BackupKind string

const (
	BackupKindDatabase BackupKind = "database"
	BackupKindMedia    BackupKind = "media"
	BackupKindFull     BackupKind = "full"
)

// IncludesDatabase reports whether the kind produces a database dump.
func (k BackupKind) IncludesDatabase() bool {
	return k == BackupKindDatabase || k == BackupKindFull
}

// IncludesMedia reports whether the kind produces a media archive.
func (k BackupKind) IncludesMedia() bool {
	return k == BackupKindMedia || k == BackupKindFull
}

type RecordStatus string

const (
	StatusPending    RecordStatus = "pending"
	StatusInProgress RecordStatus = "in_progress"
	StatusCompleted  RecordStatus = "completed"
	StatusFailed     RecordStatus = "failed"
	StatusCancelled  RecordStatus = "cancelled"
)

// IsTerminal reports whether the status allows no further transitions.
func (s RecordStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Backup is a single backup run: the audit record plus the artifact paths
// and sizes once the run completes. A completed record always has the file
// and size fields populated for every artifact its kind covers.
type Backup struct {
	ID           string       `db:"id"`
	Name         string       `db:"name"`
	Kind         BackupKind   `db:"kind"`
	Status       RecordStatus `db:"status"`
	DatabaseFile *string      `db:"database_file"`
	DatabaseSize *int64       `db:"database_size"`
	MediaFile    *string      `db:"media_file"`
	MediaSize    *int64       `db:"media_size"`
	Compress     bool         `db:"compress"`
	ExcludeLogs  bool         `db:"exclude_logs"`
	ScheduleID   *int64       `db:"schedule_id"`
	CreatedBy    *string      `db:"created_by"`
	Error        *string      `db:"error"`
	CreatedAt    time.Time    `db:"created_at"`
	StartedAt    *time.Time   `db:"started_at"`
	CompletedAt  *time.Time   `db:"completed_at"`
}

func NewBackup(id, name string, kind BackupKind) *Backup {
	return &Backup{
		ID:        id,
		Name:      name,
		Kind:      kind,
		Status:    StatusPending,
		Compress:  true,
		CreatedAt: time.Now(),
	}
}

func (b *Backup) Start() {
	now := time.Now()
	b.Status = StatusInProgress
	b.StartedAt = &now
}

func (b *Backup) Complete() {
	now := time.Now()
	b.Status = StatusCompleted
	b.CompletedAt = &now
}

func (b *Backup) Fail(message string) {
	now := time.Now()
	b.Status = StatusFailed
	b.CompletedAt = &now
	if message != "" {
		b.Error = &message
	}
}

func (b *Backup) Cancel() {
	now := time.Now()
	b.Status = StatusCancelled
	b.CompletedAt = &now
}

func (b *Backup) SetDatabaseArtifact(path string, size int64) {
	b.DatabaseFile = &path
	b.DatabaseSize = &size
}

func (b *Backup) SetMediaArtifact(path string, size int64) {
	b.MediaFile = &path
	b.MediaSize = &size
}

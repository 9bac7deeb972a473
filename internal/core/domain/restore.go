package domain

import "time"

// Restore is a single restore run. The source is either an existing backup
// record (BackupID) or a pair of uploaded artifact files; exactly one of the
// two must resolve before execution proceeds.
type Restore struct {
	ID                   int64        `db:"id"`
	Kind                 BackupKind   `db:"kind"`
	Status               RecordStatus `db:"status"`
	BackupID             *string      `db:"backup_id"`
	UploadedDatabaseFile *string      `db:"uploaded_database_file"`
	UploadedMediaFile    *string      `db:"uploaded_media_file"`
	Overwrite            bool         `db:"overwrite"`
	SnapshotFirst        bool         `db:"snapshot_first"`
	SafetyBackupID       *string      `db:"safety_backup_id"`
	CreatedBy            *string      `db:"created_by"`
	Error                *string      `db:"error"`
	CreatedAt            time.Time    `db:"created_at"`
	StartedAt            *time.Time   `db:"started_at"`
	CompletedAt          *time.Time   `db:"completed_at"`
}

func NewRestore(kind BackupKind) *Restore {
	return &Restore{
		Kind:          kind,
		Status:        StatusPending,
		SnapshotFirst: true,
		CreatedAt:     time.Now(),
	}
}

// HasUploadedSource reports whether the restore was created from uploaded
// files rather than an existing backup record.
func (r *Restore) HasUploadedSource() bool {
	return r.UploadedDatabaseFile != nil || r.UploadedMediaFile != nil
}

func (r *Restore) Start() {
	now := time.Now()
	r.Status = StatusInProgress
	r.StartedAt = &now
}

func (r *Restore) Complete() {
	now := time.Now()
	r.Status = StatusCompleted
	r.CompletedAt = &now
}

func (r *Restore) Fail(message string) {
	now := time.Now()
	r.Status = StatusFailed
	r.CompletedAt = &now
	if message != "" {
		r.Error = &message
	}
}

func (r *Restore) Cancel() {
	now := time.Now()
	r.Status = StatusCancelled
	r.CompletedAt = &now
}

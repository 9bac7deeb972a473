package domain

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusSuccess   JobStatus = "success"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

type JobKind string

const (
	JobKindBackup          JobKind = "backup"
	JobKindRestore         JobKind = "restore"
	JobKindCleanup         JobKind = "cleanup"
	JobKindScheduledBackup JobKind = "scheduled_backup"
)

// Job is the audit record for one background operation run by the job
// runner. API callers poll it by CommandID; ResourceID links back to the
// backup or restore record the job operates on.
type Job struct {
	ID         int64      `db:"id"`
	CommandID  string     `db:"command_id"` // UUID for API polling
	Kind       JobKind    `db:"kind"`
	ResourceID *string    `db:"resource_id"`
	Status     JobStatus  `db:"status"`
	Output     *string    `db:"output"`
	Error      *string    `db:"error"`
	StartTime  time.Time  `db:"start_time"`
	EndTime    *time.Time `db:"end_time"`
}

func NewJob(kind JobKind, resourceID *string) *Job {
	return &Job{
		CommandID:  uuid.New().String(),
		Kind:       kind,
		ResourceID: resourceID,
		Status:     JobStatusRunning,
		StartTime:  time.Now(),
	}
}

func (j *Job) Complete(output string) {
	now := time.Now()
	j.EndTime = &now
	j.Status = JobStatusSuccess
	if output != "" {
		j.Output = &output
	}
}

func (j *Job) Fail(errorOutput string) {
	now := time.Now()
	j.EndTime = &now
	j.Status = JobStatusFailed
	if errorOutput != "" {
		j.Error = &errorOutput
	}
}

func (j *Job) MarkCancelled() {
	now := time.Now()
	j.EndTime = &now
	j.Status = JobStatusCancelled
}

func (j *Job) IsComplete() bool {
	return j.Status != JobStatusRunning
}

package dto

import "time"

// JobResponse represents a background job
type JobResponse struct {
	ID         int64      `json:"id"`
	CommandID  string     `json:"command_id"`
	Kind       string     `json:"kind"`
	ResourceID *string    `json:"resource_id,omitempty"`
	Status     string     `json:"status"`
	Output     *string    `json:"output,omitempty"`
	Error      *string    `json:"error,omitempty"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	Link       *string    `json:"link,omitempty"`
}

// JobListResponse represents a list of jobs
type JobListResponse struct {
	Items      []JobResponse  `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
}

package dto

// ErrorResponse is the uniform error body for every endpoint
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// PaginationInfo describes the page window of a list response
type PaginationInfo struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
}

// AsyncResponse represents an async operation response (202 Accepted)
type AsyncResponse struct {
	Status     string  `json:"status"`
	Link       *string `json:"link,omitempty"`
	CommandID  string  `json:"command_id"`
	ResourceID *string `json:"resource_id,omitempty"`
}

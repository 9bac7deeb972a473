package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jmartens/shopvault/internal/api/dto"
	"github.com/jmartens/shopvault/internal/core/domain"
	"github.com/jmartens/shopvault/internal/core/repository"
	"github.com/jmartens/shopvault/internal/core/service"
)

// Allowed fields for job queries and ordering
var (
	jobQueryFields = []string{"id", "command_id", "kind", "resource_id", "status", "start_time", "end_time"}
	jobOrderFields = []string{"id", "start_time", "end_time"}
)

type JobHandler struct {
	runner *service.JobRunner
}

func NewJobHandler(runner *service.JobRunner) *JobHandler {
	return &JobHandler{
		runner: runner,
	}
}

// GetJob handles GET /jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "Invalid job ID")
		return
	}

	job, err := h.runner.GetJob(c.Request.Context(), id)
	if err != nil {
		respondNotFound(c, fmt.Sprintf("Job not found: %d", id))
		return
	}

	c.JSON(http.StatusOK, toJobResponse(job))
}

// GetJobByCommandID handles GET /status/:command_id
func (h *JobHandler) GetJobByCommandID(c *gin.Context) {
	commandID := c.Param("command_id")

	job, err := h.runner.GetJobByCommandID(c.Request.Context(), commandID)
	if err != nil {
		respondNotFound(c, fmt.Sprintf("Job not found: %s", commandID))
		return
	}

	c.JSON(http.StatusOK, toJobResponse(job))
}

// ListJobs handles GET /jobs
func (h *JobHandler) ListJobs(c *gin.Context) {
	listFilter, ok := parseListFilter(c, jobQueryFields, jobOrderFields)
	if !ok {
		return
	}
	filter := repository.JobFilter{ListFilter: listFilter}

	jobs, err := h.runner.ListJobs(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	count, _ := h.runner.CountJobs(c.Request.Context(), filter)

	response := dto.JobListResponse{
		Items:      make([]dto.JobResponse, len(jobs)),
		Pagination: paginationInfo(count, listFilter.Page, listFilter.PerPage),
	}
	for i, job := range jobs {
		response.Items[i] = toJobResponse(job)
	}

	c.JSON(http.StatusOK, response)
}

func toJobResponse(job *domain.Job) dto.JobResponse {
	return dto.JobResponse{
		ID:         job.ID,
		CommandID:  job.CommandID,
		Kind:       string(job.Kind),
		ResourceID: job.ResourceID,
		Status:     string(job.Status),
		Output:     job.Output,
		Error:      job.Error,
		StartTime:  job.StartTime,
		EndTime:    job.EndTime,
		Link:       statusLink(job.CommandID),
	}
}

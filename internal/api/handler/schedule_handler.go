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

type ScheduleHandler struct {
	scheduleService *service.ScheduleService
}

func NewScheduleHandler(scheduleService *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: scheduleService,
	}
}

// CreateSchedule handles POST /schedules
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	var req dto.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	schedule := domain.NewSchedule(req.Name, domain.BackupKind(req.Kind),
		domain.ScheduleFrequency(req.Frequency), req.Enabled)
	schedule.Hour = req.Hour
	schedule.Minute = req.Minute
	schedule.DayOfWeek = req.DayOfWeek
	schedule.DayOfMonth = req.DayOfMonth
	schedule.RetentionDays = req.RetentionDays

	if err := h.scheduleService.CreateSchedule(c.Request.Context(), schedule); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toScheduleResponse(schedule))
}

// UpdateSchedule handles PUT /schedules/:id
func (h *ScheduleHandler) UpdateSchedule(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "Invalid schedule ID")
		return
	}

	schedule, err := h.scheduleService.GetSchedule(c.Request.Context(), id)
	if err != nil {
		respondNotFound(c, fmt.Sprintf("Schedule not found: %d", id))
		return
	}

	var req dto.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if req.Name != nil {
		schedule.Name = *req.Name
	}
	if req.Kind != nil {
		schedule.Kind = domain.BackupKind(*req.Kind)
	}
	if req.Frequency != nil {
		schedule.Frequency = domain.ScheduleFrequency(*req.Frequency)
	}
	if req.Hour != nil {
		schedule.Hour = *req.Hour
	}
	if req.Minute != nil {
		schedule.Minute = *req.Minute
	}
	if req.DayOfWeek != nil {
		schedule.DayOfWeek = req.DayOfWeek
	}
	if req.DayOfMonth != nil {
		schedule.DayOfMonth = req.DayOfMonth
	}
	if req.RetentionDays != nil {
		schedule.RetentionDays = *req.RetentionDays
	}
	if req.Enabled != nil {
		schedule.Enabled = *req.Enabled
	}

	if err := h.scheduleService.UpdateSchedule(c.Request.Context(), schedule); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toScheduleResponse(schedule))
}

// DeleteSchedule handles DELETE /schedules/:id
func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "Invalid schedule ID")
		return
	}

	if err := h.scheduleService.DeleteSchedule(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetSchedule handles GET /schedules/:id
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "Invalid schedule ID")
		return
	}

	schedule, err := h.scheduleService.GetSchedule(c.Request.Context(), id)
	if err != nil {
		respondNotFound(c, fmt.Sprintf("Schedule not found: %d", id))
		return
	}

	c.JSON(http.StatusOK, toScheduleResponse(schedule))
}

// ListSchedules handles GET /schedules
func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "25"))

	filter := repository.ScheduleFilter{
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}

	if kindStr := c.Query("kind"); kindStr != "" {
		kind := domain.BackupKind(kindStr)
		filter.Kind = &kind
	}
	if enabledStr := c.Query("enabled"); enabledStr != "" {
		enabled := enabledStr == "true"
		filter.Enabled = &enabled
	}

	schedules, err := h.scheduleService.ListSchedules(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	count, _ := h.scheduleService.CountSchedules(c.Request.Context(), filter)

	response := dto.ScheduleListResponse{
		Items:      make([]dto.ScheduleResponse, len(schedules)),
		Pagination: paginationInfo(count, page, perPage),
	}
	for i, schedule := range schedules {
		response.Items[i] = toScheduleResponse(schedule)
	}

	c.JSON(http.StatusOK, response)
}

func toScheduleResponse(schedule *domain.Schedule) dto.ScheduleResponse {
	return dto.ScheduleResponse{
		ID:            schedule.ID,
		Name:          schedule.Name,
		Kind:          string(schedule.Kind),
		Frequency:     string(schedule.Frequency),
		Hour:          schedule.Hour,
		Minute:        schedule.Minute,
		DayOfWeek:     schedule.DayOfWeek,
		DayOfMonth:    schedule.DayOfMonth,
		RetentionDays: schedule.RetentionDays,
		Enabled:       schedule.Enabled,
		LastRunAt:     schedule.LastRunAt,
		NextRunAt:     schedule.NextRunAt,
		CreatedAt:     schedule.CreatedAt,
		UpdatedAt:     schedule.UpdatedAt,
	}
}

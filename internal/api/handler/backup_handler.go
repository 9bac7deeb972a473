package handler

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/jmartens/shopvault/internal/api/dto"
	"github.com/jmartens/shopvault/internal/core/domain"
	"github.com/jmartens/shopvault/internal/core/repository"
	"github.com/jmartens/shopvault/internal/core/service"
)

// Allowed fields for backup queries and ordering
var (
	backupQueryFields = []string{"id", "name", "kind", "status", "schedule_id", "created_by", "created_at", "started_at", "completed_at"}
	backupOrderFields = []string{"id", "name", "created_at", "started_at", "completed_at"}
)

type BackupHandler struct {
	backupService *service.BackupService
	scheduleRepo  repository.ScheduleRepository
}

func NewBackupHandler(backupService *service.BackupService, scheduleRepo repository.ScheduleRepository) *BackupHandler {
	return &BackupHandler{
		backupService: backupService,
		scheduleRepo:  scheduleRepo,
	}
}

// CreateBackup handles POST /backups
func (h *BackupHandler) CreateBackup(c *gin.Context) {
	var req dto.CreateBackupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	compress := true
	if req.Compress != nil {
		compress = *req.Compress
	}

	backup, job, err := h.backupService.CreateBackup(c.Request.Context(), service.CreateBackupOptions{
		Name:        req.Name,
		Kind:        domain.BackupKind(req.Kind),
		Compress:    compress,
		ExcludeLogs: req.ExcludeLogs,
		CreatedBy:   currentUsername(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.AsyncResponse{
		Status:     string(job.Status),
		Link:       statusLink(job.CommandID),
		CommandID:  job.CommandID,
		ResourceID: &backup.ID,
	})
}

// GetBackup handles GET /backups/:id
func (h *BackupHandler) GetBackup(c *gin.Context) {
	id := c.Param("id")

	backup, err := h.backupService.GetBackup(c.Request.Context(), id)
	if err != nil {
		respondNotFound(c, fmt.Sprintf("Backup not found: %s", id))
		return
	}

	c.JSON(http.StatusOK, h.toBackupResponse(c.Request.Context(), backup))
}

// ListBackups handles GET /backups
func (h *BackupHandler) ListBackups(c *gin.Context) {
	listFilter, ok := parseListFilter(c, backupQueryFields, backupOrderFields)
	if !ok {
		return
	}
	filter := repository.BackupFilter{ListFilter: listFilter}

	backups, err := h.backupService.ListBackups(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	count, _ := h.backupService.CountBackups(c.Request.Context(), filter)

	response := dto.BackupListResponse{
		Items:      make([]dto.BackupResponse, len(backups)),
		Pagination: paginationInfo(count, listFilter.Page, listFilter.PerPage),
	}
	for i, backup := range backups {
		response.Items[i] = h.toBackupResponse(c.Request.Context(), backup)
	}

	c.JSON(http.StatusOK, response)
}

// DeleteBackup handles DELETE /backups/:id
func (h *BackupHandler) DeleteBackup(c *gin.Context) {
	id := c.Param("id")

	if err := h.backupService.DeleteBackup(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CancelBackup handles POST /backups/:id/cancel
func (h *BackupHandler) CancelBackup(c *gin.Context) {
	id := c.Param("id")

	if err := h.backupService.CancelBackup(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cancelling"})
}

// DownloadBackup handles GET /backups/:id/download?artifact=database|media
func (h *BackupHandler) DownloadBackup(c *gin.Context) {
	id := c.Param("id")
	artifact := c.DefaultQuery("artifact", "database")

	path, err := h.backupService.ArtifactPath(c.Request.Context(), id, artifact)
	if err != nil {
		respondError(c, err)
		return
	}

	c.FileAttachment(path, filepath.Base(path))
}

func (h *BackupHandler) toBackupResponse(ctx context.Context, backup *domain.Backup) dto.BackupResponse {
	resp := dto.BackupResponse{
		ID:           backup.ID,
		Name:         backup.Name,
		Kind:         string(backup.Kind),
		Status:       string(backup.Status),
		DatabaseFile: backup.DatabaseFile,
		DatabaseSize: backup.DatabaseSize,
		MediaFile:    backup.MediaFile,
		MediaSize:    backup.MediaSize,
		Compress:     backup.Compress,
		ExcludeLogs:  backup.ExcludeLogs,
		ScheduleID:   backup.ScheduleID,
		CreatedBy:    backup.CreatedBy,
		Error:        backup.Error,
		CreatedAt:    backup.CreatedAt,
		StartedAt:    backup.StartedAt,
		CompletedAt:  backup.CompletedAt,
	}

	// Surface the owning schedule's retention window
	if backup.ScheduleID != nil {
		if schedule, err := h.scheduleRepo.FindByID(ctx, *backup.ScheduleID); err == nil {
			resp.RetentionDays = &schedule.RetentionDays
		}
	}

	return resp
}

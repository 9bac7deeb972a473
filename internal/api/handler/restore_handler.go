package handler

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jmartens/shopvault/internal/api/dto"
	"github.com/jmartens/shopvault/internal/core/domain"
	"github.com/jmartens/shopvault/internal/core/repository"
	"github.com/jmartens/shopvault/internal/core/service"
)

// Allowed fields for restore queries and ordering
var (
	restoreQueryFields = []string{"id", "kind", "status", "backup_id", "created_by", "created_at", "started_at", "completed_at"}
	restoreOrderFields = []string{"id", "created_at", "started_at", "completed_at"}
)

type RestoreHandler struct {
	restoreService *service.RestoreService
	uploadDir      string
}

func NewRestoreHandler(restoreService *service.RestoreService, uploadDir string) *RestoreHandler {
	return &RestoreHandler{
		restoreService: restoreService,
		uploadDir:      uploadDir,
	}
}

// CreateRestore handles POST /restores (restore from an existing backup)
func (h *RestoreHandler) CreateRestore(c *gin.Context) {
	var req dto.CreateRestoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	snapshotFirst := true
	if req.SnapshotFirst != nil {
		snapshotFirst = *req.SnapshotFirst
	}

	restore, job, err := h.restoreService.CreateRestore(c.Request.Context(), service.CreateRestoreOptions{
		Kind:          domain.BackupKind(req.Kind),
		BackupID:      &req.BackupID,
		Overwrite:     req.Overwrite,
		SnapshotFirst: snapshotFirst,
		CreatedBy:     currentUsername(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resourceID := fmt.Sprintf("%d", restore.ID)
	c.JSON(http.StatusAccepted, dto.AsyncResponse{
		Status:     string(job.Status),
		Link:       statusLink(job.CommandID),
		CommandID:  job.CommandID,
		ResourceID: &resourceID,
	})
}

// UploadRestore handles POST /restores/upload (multipart restore from
// uploaded artifacts)
func (h *RestoreHandler) UploadRestore(c *gin.Context) {
	kind := domain.BackupKind(c.PostForm("kind"))
	overwrite := c.PostForm("overwrite") == "true"
	snapshotFirst := c.DefaultPostForm("snapshot_first", "true") != "false"

	var databasePath, mediaPath *string

	if file, err := c.FormFile("database_file"); err == nil {
		path, err := h.saveUpload(c, file, "database")
		if err != nil {
			respondError(c, err)
			return
		}
		databasePath = &path
	}
	if file, err := c.FormFile("media_file"); err == nil {
		path, err := h.saveUpload(c, file, "media")
		if err != nil {
			respondError(c, err)
			return
		}
		mediaPath = &path
	}

	restore, job, err := h.restoreService.CreateRestore(c.Request.Context(), service.CreateRestoreOptions{
		Kind:                 kind,
		UploadedDatabaseFile: databasePath,
		UploadedMediaFile:    mediaPath,
		Overwrite:            overwrite,
		SnapshotFirst:        snapshotFirst,
		CreatedBy:            currentUsername(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resourceID := fmt.Sprintf("%d", restore.ID)
	c.JSON(http.StatusAccepted, dto.AsyncResponse{
		Status:     string(job.Status),
		Link:       statusLink(job.CommandID),
		CommandID:  job.CommandID,
		ResourceID: &resourceID,
	})
}

func (h *RestoreHandler) saveUpload(c *gin.Context, file *multipart.FileHeader, prefix string) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s_%s", prefix, time.Now().Format("20060102-150405"),
		filepath.Base(file.Filename))
	path := filepath.Join(h.uploadDir, name)

	if err := c.SaveUploadedFile(file, path); err != nil {
		return "", fmt.Errorf("failed to save upload: %w", err)
	}

	return path, nil
}

// GetRestore handles GET /restores/:id
func (h *RestoreHandler) GetRestore(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "Invalid restore ID")
		return
	}

	restore, err := h.restoreService.GetRestore(c.Request.Context(), id)
	if err != nil {
		respondNotFound(c, fmt.Sprintf("Restore not found: %d", id))
		return
	}

	c.JSON(http.StatusOK, toRestoreResponse(restore))
}

// ListRestores handles GET /restores
func (h *RestoreHandler) ListRestores(c *gin.Context) {
	listFilter, ok := parseListFilter(c, restoreQueryFields, restoreOrderFields)
	if !ok {
		return
	}
	filter := repository.RestoreFilter{ListFilter: listFilter}

	restores, err := h.restoreService.ListRestores(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	count, _ := h.restoreService.CountRestores(c.Request.Context(), filter)

	response := dto.RestoreListResponse{
		Items:      make([]dto.RestoreResponse, len(restores)),
		Pagination: paginationInfo(count, listFilter.Page, listFilter.PerPage),
	}
	for i, restore := range restores {
		response.Items[i] = toRestoreResponse(restore)
	}

	c.JSON(http.StatusOK, response)
}

// ListRestorable handles GET /restores/restorable?kind=database|media|full
func (h *RestoreHandler) ListRestorable(c *gin.Context) {
	var kind *domain.BackupKind
	if kindStr := c.Query("kind"); kindStr != "" {
		k := domain.BackupKind(kindStr)
		switch k {
		case domain.BackupKindDatabase, domain.BackupKindMedia, domain.BackupKindFull:
			kind = &k
		default:
			respondBadRequest(c, fmt.Sprintf("Invalid kind: %q", kindStr))
			return
		}
	}

	backups, err := h.restoreService.ListRestorable(c.Request.Context(), kind)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]dto.RestorableBackupResponse, len(backups))
	for i, backup := range backups {
		items[i] = dto.RestorableBackupResponse{
			ID:           backup.ID,
			Name:         backup.Name,
			Kind:         string(backup.Kind),
			DatabaseFile: backup.DatabaseFile,
			MediaFile:    backup.MediaFile,
			CreatedAt:    backup.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func toRestoreResponse(restore *domain.Restore) dto.RestoreResponse {
	return dto.RestoreResponse{
		ID:                   restore.ID,
		Kind:                 string(restore.Kind),
		Status:               string(restore.Status),
		BackupID:             restore.BackupID,
		UploadedDatabaseFile: restore.UploadedDatabaseFile,
		UploadedMediaFile:    restore.UploadedMediaFile,
		Overwrite:            restore.Overwrite,
		SnapshotFirst:        restore.SnapshotFirst,
		SafetyBackupID:       restore.SafetyBackupID,
		CreatedBy:            restore.CreatedBy,
		Error:                restore.Error,
		CreatedAt:            restore.CreatedAt,
		StartedAt:            restore.StartedAt,
		CompletedAt:          restore.CompletedAt,
	}
}

package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jmartens/shopvault/internal/api/dto"
	"github.com/jmartens/shopvault/internal/core/service"
)

type CleanupHandler struct {
	cleanupService *service.CleanupService
}

func NewCleanupHandler(cleanupService *service.CleanupService) *CleanupHandler {
	return &CleanupHandler{
		cleanupService: cleanupService,
	}
}

// Cleanup handles POST /cleanup
func (h *CleanupHandler) Cleanup(c *gin.Context) {
	var req dto.CleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// No body means cleanup with the settings default
		req = dto.CleanupRequest{}
	}

	result, err := h.cleanupService.Run(c.Request.Context(), service.CleanupOptions{
		RetentionDays: req.RetentionDays,
		DryRun:        req.DryRun,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response := dto.CleanupResponse{
		RetentionDays: result.RetentionDays,
		DeletedIDs:    result.DeletedIDs,
		DeletedCount:  len(result.DeletedIDs),
		BytesFreed:    result.BytesFreed,
		DryRun:        result.DryRun,
	}
	if response.DeletedIDs == nil {
		response.DeletedIDs = []string{}
	}
	if result.Cutoff != nil {
		cutoff := result.Cutoff.Format(time.RFC3339)
		response.Cutoff = &cutoff
	}

	c.JSON(http.StatusOK, response)
}

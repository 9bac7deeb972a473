package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jmartens/shopvault/internal/api/dto"
	"github.com/jmartens/shopvault/internal/core/domain"
	"github.com/jmartens/shopvault/internal/core/service"
)

type SettingsHandler struct {
	settingsService *service.SettingsService
}

func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
	}
}

// GetSettings handles GET /settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.GetSettings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSettingsResponse(settings))
}

// UpdateSettings handles PUT /settings
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	current, err := h.settingsService.GetSettings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	settings := &domain.Settings{
		ID:                   domain.SettingsID,
		BackupDir:            req.BackupDir,
		DumpBinary:           req.DumpBinary,
		ClientBinary:         req.ClientBinary,
		DBHost:               req.DBHost,
		DBPort:               req.DBPort,
		DBUser:               req.DBUser,
		DBPassword:           req.DBPassword,
		DBName:               req.DBName,
		CompressionLevel:     req.CompressionLevel,
		DefaultRetentionDays: req.DefaultRetentionDays,
		NotifyEmail:          req.NotifyEmail,
	}
	// Omitting the password keeps the stored one
	if settings.DBPassword == "" {
		settings.DBPassword = current.DBPassword
	}

	if err := h.settingsService.UpdateSettings(c.Request.Context(), settings); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSettingsResponse(settings))
}

func toSettingsResponse(settings *domain.Settings) dto.SettingsResponse {
	return dto.SettingsResponse{
		BackupDir:            settings.BackupDir,
		DumpBinary:           settings.DumpBinary,
		ClientBinary:         settings.ClientBinary,
		DBHost:               settings.DBHost,
		DBPort:               settings.DBPort,
		DBUser:               settings.DBUser,
		DBName:               settings.DBName,
		CompressionLevel:     settings.CompressionLevel,
		DefaultRetentionDays: settings.DefaultRetentionDays,
		NotifyEmail:          settings.NotifyEmail,
		UpdatedAt:            settings.UpdatedAt,
	}
}

package service

import (
	"context"
	"fmt"

	"github.com/jmartens/shopvault/internal/core/domain"
	"github.com/jmartens/shopvault/internal/core/repository"
)

type SettingsService struct {
	settingsRepo repository.SettingsRepository
}

func NewSettingsService(settingsRepo repository.SettingsRepository) *SettingsService {
	return &SettingsService{settingsRepo: settingsRepo}
}

// GetSettings returns the singleton settings row.
func (s *SettingsService) GetSettings(ctx context.Context) (*domain.Settings, error) {
	return s.settingsRepo.Get(ctx)
}

// UpdateSettings validates and persists new settings values.
func (s *SettingsService) UpdateSettings(ctx context.Context, settings *domain.Settings) error {
	if settings.BackupDir == "" {
		return NewServiceError(400, "backup_dir is required")
	}
	if settings.CompressionLevel < 1 || settings.CompressionLevel > 9 {
		return NewServiceError(400, "compression_level must be between 1 and 9")
	}
	if settings.DefaultRetentionDays < 0 {
		return NewServiceError(400, "default_retention_days must be zero or positive")
	}
	if settings.DBPort <= 0 || settings.DBPort > 65535 {
		return NewServiceError(400, fmt.Sprintf("invalid db_port: %d", settings.DBPort))
	}

	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}

	return nil
}

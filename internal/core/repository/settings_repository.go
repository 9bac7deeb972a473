package repository

import (
	"context"

	"github.com/jmartens/shopvault/internal/core/domain"
)

type SettingsRepository interface {
	// Get returns the singleton settings row, creating it with defaults on
	// first access.
	Get(ctx context.Context) (*domain.Settings, error)
	Update(ctx context.Context, settings *domain.Settings) error
}

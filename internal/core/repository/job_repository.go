package repository

import (
	"context"

	"github.com/jmartens/shopvault/internal/api/util"
	"github.com/jmartens/shopvault/internal/core/domain"
)

type JobFilter struct {
	util.ListFilter
}

type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	FindByID(ctx context.Context, id int64) (*domain.Job, error)
	FindByCommandID(ctx context.Context, commandID string) (*domain.Job, error)
	Update(ctx context.Context, job *domain.Job) error
	List(ctx context.Context, filter JobFilter) ([]*domain.Job, error)
	Count(ctx context.Context, filter JobFilter) (int, error)
}

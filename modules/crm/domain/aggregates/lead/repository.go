package lead

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("lead not found")

type FindParams struct {
	Q      string
	Status Status
	Source Source
	Limit  int
	Offset int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Lead, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (Lead, error)
	GetByEmail(ctx context.Context, email string) (Lead, error)
	GetByPhone(ctx context.Context, phone string) (Lead, error)
	GetAll(ctx context.Context) ([]Lead, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, l Lead) (Lead, error)
	Update(ctx context.Context, l Lead) (Lead, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// FindParams filters session listings.
type FindParams struct {
	CreatedBy string
	Phase     Phase
	Limit     int
	Offset    int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]*Session, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, s *Session) error
	Update(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ClaimExecuting atomically moves a ready session to executing and
	// records the decisions. It returns ErrExecuteInProgress when the
	// session is already executing and a PhaseError for any other phase,
	// so two concurrent execute requests cannot both win.
	ClaimExecuting(ctx context.Context, id uuid.UUID, decisions map[int]Decision) (*Session, error)
	// DeleteExpired removes sessions idle since before the cutoff,
	// returning how many were removed.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

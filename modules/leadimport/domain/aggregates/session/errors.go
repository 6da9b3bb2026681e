package session

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("import session not found")
	ErrExecuteInProgress = errors.New("import session is already executing")
)

// PhaseError reports an operation attempted in a phase that does not allow it.
type PhaseError struct {
	ID     uuid.UUID
	Phase  Phase
	Action string
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("cannot %s import session %s in phase %q", e.Action, e.ID, e.Phase)
}

// InvalidDecisionError reports an unrecognized duplicate decision.
type InvalidDecisionError struct {
	Row      int
	Decision Decision
}

func (e *InvalidDecisionError) Error() string {
	return fmt.Sprintf("invalid decision %q for row %d", e.Decision, e.Row)
}

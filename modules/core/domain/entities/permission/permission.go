package permission

import "github.com/google/uuid"

type Resource string

type Action string

type Modifier string

const (
	ActionCreate  Action = "create"
	ActionRead    Action = "read"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionExecute Action = "execute"
)

const (
	ModifierAll Modifier = "all"
	ModifierOwn Modifier = "own"
)

type Permission struct {
	ID       uuid.UUID
	Name     string
	Resource Resource
	Action   Action
	Modifier Modifier
}

// Equals compares by resource, action and modifier; IDs are stable seeds and
// not part of the comparison.
func (p *Permission) Equals(other *Permission) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.Resource == other.Resource &&
		p.Action == other.Action &&
		p.Modifier == other.Modifier
}

package user

import "github.com/google/uuid"

// Role names are fixed; the role to permission matrix lives in pkg/defaults.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleSales   Role = "sales"
)

// User is the authenticated principal as seen by this service. Session
// management is an external concern; only the identity and role reach here.
type User struct {
	ID    uuid.UUID
	Email string
	Role  Role
}

func (u User) IsZero() bool {
	return u.ID == uuid.Nil && u.Email == ""
}

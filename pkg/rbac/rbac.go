package rbac

import (
	"github.com/vantagecrm/vantage/modules/core/domain/entities/permission"
	"github.com/vantagecrm/vantage/modules/core/domain/entities/user"
)

// PermissionSet groups related permissions for assignment to roles.
type PermissionSet struct {
	Key         string
	Label       string
	Module      string
	Permissions []*permission.Permission
}

// PermissionSchema is the full catalog of permission sets.
type PermissionSchema struct {
	Sets []PermissionSet
}

// Schema is the immutable role to permission matrix. Built once at startup,
// queried by pure lookups; no runtime mutation.
type Schema struct {
	byRole map[user.Role][]*permission.Permission
}

func New(bindings map[user.Role][]PermissionSet) *Schema {
	byRole := make(map[user.Role][]*permission.Permission, len(bindings))
	for role, sets := range bindings {
		var perms []*permission.Permission
		for _, set := range sets {
			perms = append(perms, set.Permissions...)
		}
		byRole[role] = perms
	}
	return &Schema{byRole: byRole}
}

func (s *Schema) RoleCan(role user.Role, p *permission.Permission) bool {
	for _, granted := range s.byRole[role] {
		if granted.Equals(p) {
			return true
		}
	}
	return false
}

func (s *Schema) UserCan(u user.User, p *permission.Permission) bool {
	return s.RoleCan(u.Role, p)
}

// Permissions returns a copy of the role's grants.
func (s *Schema) Permissions(role user.Role) []*permission.Permission {
	perms := s.byRole[role]
	out := make([]*permission.Permission, len(perms))
	copy(out, perms)
	return out
}

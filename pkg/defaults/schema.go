package defaults

import (
	"github.com/vantagecrm/vantage/modules/core/domain/entities/permission"
	"github.com/vantagecrm/vantage/modules/core/domain/entities/user"
	"github.com/vantagecrm/vantage/pkg/rbac"

	crmPerms "github.com/vantagecrm/vantage/modules/crm/permissions"
	importPerms "github.com/vantagecrm/vantage/modules/leadimport/permissions"
)

// AllPermissions returns all permissions from all modules.
func AllPermissions() []*permission.Permission {
	permissions := make([]*permission.Permission, 0,
		len(crmPerms.Permissions)+len(importPerms.Permissions))
	permissions = append(permissions, crmPerms.Permissions...)
	permissions = append(permissions, importPerms.Permissions...)
	return permissions
}

func leadViewSet() rbac.PermissionSet {
	return rbac.PermissionSet{
		Key:         "lead_view",
		Label:       "Leads: view",
		Module:      "crm",
		Permissions: []*permission.Permission{crmPerms.LeadRead},
	}
}

func leadManageSet() rbac.PermissionSet {
	return rbac.PermissionSet{
		Key:    "lead_manage",
		Label:  "Leads: manage",
		Module: "crm",
		Permissions: []*permission.Permission{
			crmPerms.LeadCreate, crmPerms.LeadRead,
			crmPerms.LeadUpdate, crmPerms.LeadDelete,
		},
	}
}

func importViewSet() rbac.PermissionSet {
	return rbac.PermissionSet{
		Key:         "lead_import_view",
		Label:       "Lead import: view",
		Module:      "leadimport",
		Permissions: []*permission.Permission{importPerms.ImportRead},
	}
}

func importManageSet() rbac.PermissionSet {
	return rbac.PermissionSet{
		Key:    "lead_import_manage",
		Label:  "Lead import: manage",
		Module: "leadimport",
		Permissions: []*permission.Permission{
			importPerms.ImportUpload, importPerms.ImportRead,
			importPerms.ImportExecute, importPerms.ImportDelete,
		},
	}
}

// PermissionSchema returns the full catalog of permission sets.
func PermissionSchema() *rbac.PermissionSchema {
	return &rbac.PermissionSchema{Sets: []rbac.PermissionSet{
		leadViewSet(),
		leadManageSet(),
		importViewSet(),
		importManageSet(),
	}}
}

// RBACSchema binds roles to permission sets. The matrix is fixed at startup;
// permission checks are pure lookups against it.
func RBACSchema() *rbac.Schema {
	return rbac.New(map[user.Role][]rbac.PermissionSet{
		user.RoleAdmin: {
			leadManageSet(),
			importManageSet(),
		},
		user.RoleManager: {
			leadManageSet(),
			importManageSet(),
		},
		// Sales can work leads and inspect import sessions but cannot
		// commit an import.
		user.RoleSales: {
			leadManageSet(),
			importViewSet(),
		},
	})
}

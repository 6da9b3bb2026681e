package defaults_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/vantagecrm/vantage/modules/core/domain/entities/user"
	crmPerms "github.com/vantagecrm/vantage/modules/crm/permissions"
	importPerms "github.com/vantagecrm/vantage/modules/leadimport/permissions"
	"github.com/vantagecrm/vantage/pkg/defaults"
)

func TestRBACSchema_ImportExecuteMatrix(t *testing.T) {
	schema := defaults.RBACSchema()

	assert.True(t, schema.RoleCan(user.RoleAdmin, importPerms.ImportExecute))
	assert.True(t, schema.RoleCan(user.RoleManager, importPerms.ImportExecute))
	assert.False(t, schema.RoleCan(user.RoleSales, importPerms.ImportExecute))
	assert.False(t, schema.RoleCan(user.RoleSales, importPerms.ImportUpload))

	// sales keeps read access to sessions and full lead management
	assert.True(t, schema.RoleCan(user.RoleSales, importPerms.ImportRead))
	assert.True(t, schema.RoleCan(user.RoleSales, crmPerms.LeadCreate))
}

func TestRBACSchema_UserCan(t *testing.T) {
	schema := defaults.RBACSchema()
	rep := user.User{ID: uuid.New(), Email: "rep@example.com", Role: user.RoleSales}

	assert.True(t, schema.UserCan(rep, importPerms.ImportRead))
	assert.False(t, schema.UserCan(rep, importPerms.ImportExecute))
}

func TestRBACSchema_UnknownRoleDeniedEverything(t *testing.T) {
	schema := defaults.RBACSchema()

	for _, p := range defaults.AllPermissions() {
		assert.False(t, schema.RoleCan(user.Role("intern"), p), p.Name)
	}
}

func TestAllPermissions_CoversBothModules(t *testing.T) {
	all := defaults.AllPermissions()

	assert.Contains(t, all, crmPerms.LeadRead)
	assert.Contains(t, all, importPerms.ImportExecute)

	seen := make(map[string]bool, len(all))
	for _, p := range all {
		assert.False(t, seen[p.Name], "duplicate permission %s", p.Name)
		seen[p.Name] = true
	}
}

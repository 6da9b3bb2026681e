package permissions

import (
	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/modules/core/domain/entities/permission"
)

const (
	ResourceLead permission.Resource = "lead"
)

var (
	LeadCreate = &permission.Permission{
		ID:       uuid.MustParse("7c2f3d41-0b8a-4f29-9d14-6a1e8b27c5d3"),
		Name:     "Lead.Create",
		Resource: ResourceLead,
		Action:   permission.ActionCreate,
		Modifier: permission.ModifierAll,
	}
	LeadRead = &permission.Permission{
		ID:       uuid.MustParse("3e9a51c8-72d4-4b06-8f3b-2c5d90e17a46"),
		Name:     "Lead.Read",
		Resource: ResourceLead,
		Action:   permission.ActionRead,
		Modifier: permission.ModifierAll,
	}
	LeadUpdate = &permission.Permission{
		ID:       uuid.MustParse("b1d6e7f2-9a38-4c50-a27e-84f0c3b9d615"),
		Name:     "Lead.Update",
		Resource: ResourceLead,
		Action:   permission.ActionUpdate,
		Modifier: permission.ModifierAll,
	}
	LeadDelete = &permission.Permission{
		ID:       uuid.MustParse("5f48a2b9-c610-4d73-b5e9-07d2c816f394"),
		Name:     "Lead.Delete",
		Resource: ResourceLead,
		Action:   permission.ActionDelete,
		Modifier: permission.ModifierAll,
	}
)

var Permissions = []*permission.Permission{
	LeadCreate,
	LeadRead,
	LeadUpdate,
	LeadDelete,
}

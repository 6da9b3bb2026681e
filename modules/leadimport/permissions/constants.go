package permissions

import (
	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/modules/core/domain/entities/permission"
)

const (
	ResourceLeadImport permission.Resource = "lead_import"
)

var (
	ImportUpload = &permission.Permission{
		ID:       uuid.MustParse("9a3c7e15-4b82-4d60-bf17-28c5d9a0e364"),
		Name:     "LeadImport.Upload",
		Resource: ResourceLeadImport,
		Action:   permission.ActionCreate,
		Modifier: permission.ModifierAll,
	}
	ImportRead = &permission.Permission{
		ID:       uuid.MustParse("d40b8f26-5c93-4e71-80f8-39d6e0b1f475"),
		Name:     "LeadImport.Read",
		Resource: ResourceLeadImport,
		Action:   permission.ActionRead,
		Modifier: permission.ModifierAll,
	}
	// ImportExecute gates the commit phase of the wizard.
	ImportExecute = &permission.Permission{
		ID:       uuid.MustParse("e51c9037-6da4-4f82-91a9-40e7f1c20586"),
		Name:     "LeadImport.Execute",
		Resource: ResourceLeadImport,
		Action:   permission.ActionExecute,
		Modifier: permission.ModifierAll,
	}
	ImportDelete = &permission.Permission{
		ID:       uuid.MustParse("f62da148-7eb5-4093-a2ba-51f802d31697"),
		Name:     "LeadImport.Delete",
		Resource: ResourceLeadImport,
		Action:   permission.ActionDelete,
		Modifier: permission.ModifierAll,
	}
)

var Permissions = []*permission.Permission{
	ImportUpload,
	ImportRead,
	ImportExecute,
	ImportDelete,
}

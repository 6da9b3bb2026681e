package importtemplate

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/modules/leadimport/mapping"
)

var (
	ErrNotFound  = errors.New("import template not found")
	ErrNameTaken = errors.New("import template name already in use")
	ErrEmptyName = errors.New("import template name is required")
)

// Template is a saved column-mapping bundle that can seed the mapping phase
// of a later import. Names are unique per installation; at most one template
// is the default offered on upload.
type Template struct {
	id          uuid.UUID
	name        string
	description string
	bundle      mapping.Bundle
	isDefault   bool
	createdBy   string
	createdAt   time.Time
	updatedAt   time.Time
}

// New creates a template after validating the name and bundle shape. The
// bundle is checked for internal conflicts only; required-field coverage is
// not enforced, since a template may intentionally cover part of a file.
func New(name, description, createdBy string, bundle mapping.Bundle, isDefault bool) (*Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if err := mapping.ValidateShape(bundle); err != nil {
		return nil, err
	}
	now := time.Now()
	return &Template{
		id:          uuid.New(),
		name:        name,
		description: strings.TrimSpace(description),
		bundle:      bundle,
		isDefault:   isDefault,
		createdBy:   createdBy,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

func Hydrate(id uuid.UUID, name, description, createdBy string, bundle mapping.Bundle, isDefault bool, createdAt, updatedAt time.Time) *Template {
	return &Template{
		id:          id,
		name:        name,
		description: description,
		bundle:      bundle,
		isDefault:   isDefault,
		createdBy:   createdBy,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (t *Template) ID() uuid.UUID          { return t.id }
func (t *Template) Name() string           { return t.name }
func (t *Template) Description() string    { return t.description }
func (t *Template) Bundle() mapping.Bundle { return t.bundle }
func (t *Template) IsDefault() bool        { return t.isDefault }
func (t *Template) CreatedBy() string      { return t.createdBy }
func (t *Template) CreatedAt() time.Time   { return t.createdAt }
func (t *Template) UpdatedAt() time.Time   { return t.updatedAt }

// Rename changes the template name. Uniqueness is the repository's concern.
func (t *Template) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	t.name = name
	t.updatedAt = time.Now()
	return nil
}

// SetBundle replaces the saved mapping.
func (t *Template) SetBundle(bundle mapping.Bundle) error {
	if err := mapping.ValidateShape(bundle); err != nil {
		return err
	}
	t.bundle = bundle
	t.updatedAt = time.Now()
	return nil
}

func (t *Template) SetDescription(description string) {
	t.description = strings.TrimSpace(description)
	t.updatedAt = time.Now()
}

// SetDefault marks or unmarks the template as the upload default. The
// repository keeps at most one default by clearing the others on write.
func (t *Template) SetDefault(isDefault bool) {
	t.isDefault = isDefault
	t.updatedAt = time.Now()
}

type Repository interface {
	GetAll(ctx context.Context) ([]*Template, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Template, error)
	GetByName(ctx context.Context, name string) (*Template, error)
	Create(ctx context.Context, t *Template) error
	Update(ctx context.Context, t *Template) error
	Delete(ctx context.Context, id uuid.UUID) error
}

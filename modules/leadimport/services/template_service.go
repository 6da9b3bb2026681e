package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/modules/core/domain/entities/permission"
	"github.com/vantagecrm/vantage/modules/leadimport/domain/aggregates/importtemplate"
	"github.com/vantagecrm/vantage/modules/leadimport/mapping"
	"github.com/vantagecrm/vantage/modules/leadimport/permissions"
	"github.com/vantagecrm/vantage/pkg/composables"
	"github.com/vantagecrm/vantage/pkg/rbac"
)

// TemplateService manages saved column-mapping templates.
type TemplateService struct {
	repo importtemplate.Repository
	rbac *rbac.Schema
}

func NewTemplateService(repo importtemplate.Repository, schema *rbac.Schema) *TemplateService {
	return &TemplateService{repo: repo, rbac: schema}
}

func (s *TemplateService) GetAll(ctx context.Context) ([]*importtemplate.Template, error) {
	if err := s.require(ctx, permissions.ImportRead); err != nil {
		return nil, err
	}
	return s.repo.GetAll(ctx)
}

func (s *TemplateService) GetByID(ctx context.Context, id uuid.UUID) (*importtemplate.Template, error) {
	if err := s.require(ctx, permissions.ImportRead); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *TemplateService) Create(ctx context.Context, name, description string, bundle mapping.Bundle, isDefault bool) (*importtemplate.Template, error) {
	if err := s.require(ctx, permissions.ImportUpload); err != nil {
		return nil, err
	}
	createdBy := ""
	if u, err := composables.UseUser(ctx); err == nil {
		createdBy = u.Email
	}
	t, err := importtemplate.New(name, description, createdBy, bundle, isDefault)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TemplateService) Update(ctx context.Context, id uuid.UUID, name, description string, bundle mapping.Bundle, isDefault bool) (*importtemplate.Template, error) {
	if err := s.require(ctx, permissions.ImportUpload); err != nil {
		return nil, err
	}
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := t.Rename(name); err != nil {
		return nil, err
	}
	if err := t.SetBundle(bundle); err != nil {
		return nil, err
	}
	t.SetDescription(description)
	t.SetDefault(isDefault)
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TemplateService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.require(ctx, permissions.ImportDelete); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *TemplateService) require(ctx context.Context, p *permission.Permission) error {
	u, err := composables.UseUser(ctx)
	if err != nil {
		return composables.ErrNoUser
	}
	if !s.rbac.UserCan(u, p) {
		return ErrForbidden
	}
	return nil
}

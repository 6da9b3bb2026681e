package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/lead"
	"github.com/vantagecrm/vantage/pkg/eventbus"
)

type LeadService struct {
	repo      lead.Repository
	publisher eventbus.EventBus
}

func NewLeadService(repo lead.Repository, publisher eventbus.EventBus) *LeadService {
	return &LeadService{repo: repo, publisher: publisher}
}

func (s *LeadService) GetPaginated(ctx context.Context, params *lead.FindParams) ([]lead.Lead, int64, error) {
	if params != nil {
		params.Q = strings.TrimSpace(params.Q)
	}
	return s.repo.GetPaginated(ctx, params)
}

func (s *LeadService) GetByID(ctx context.Context, id uuid.UUID) (lead.Lead, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *LeadService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *LeadService) Create(ctx context.Context, dto *lead.CreateDTO) (lead.Lead, error) {
	if dto == nil {
		return lead.Lead{}, errors.New("missing dto")
	}
	created, err := s.repo.Create(ctx, dto.ToEntity())
	if err != nil {
		return lead.Lead{}, err
	}
	s.publisher.Publish(lead.CreatedEvent{Result: created})
	return created, nil
}

func (s *LeadService) Update(ctx context.Context, l lead.Lead) (lead.Lead, error) {
	updated, err := s.repo.Update(ctx, l)
	if err != nil {
		return lead.Lead{}, err
	}
	s.publisher.Publish(lead.UpdatedEvent{Result: updated})
	return updated, nil
}

func (s *LeadService) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publisher.Publish(lead.DeletedEvent{Result: existing})
	return nil
}

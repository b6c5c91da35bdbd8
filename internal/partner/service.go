package partner

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

type Service interface {
	GetPartner(ctx context.Context, id int64) (*Partner, error)
	SearchPartners(ctx context.Context, query string, kind Kind, limit int) ([]Partner, error)
	CreatePartner(ctx context.Context, p *Partner) (*Partner, error)
	ListManagers(ctx context.Context) ([]Manager, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetPartner(ctx context.Context, id int64) (*Partner, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPartnerNotFound) {
			return nil, ErrPartnerNotFound
		}
		log.Error().Err(err).Int64("partner_id", id).Msg("service: failed to fetch partner")
		return nil, fmt.Errorf("service: failed to fetch partner %d: %w", id, err)
	}
	return p, nil
}

func (s *service) SearchPartners(ctx context.Context, query string, kind Kind, limit int) ([]Partner, error) {
	partners, err := s.repo.Search(ctx, query, kind, limit)
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("service: partner search failed")
		return nil, fmt.Errorf("service: partner search failed: %w", err)
	}
	return partners, nil
}

func (s *service) CreatePartner(ctx context.Context, p *Partner) (*Partner, error) {
	if p.Name == "" {
		return nil, errors.New("service: partner name is required")
	}
	if p.Kind != KindClient && p.Kind != KindCarrier {
		return nil, fmt.Errorf("service: unknown partner kind %q", p.Kind)
	}

	id, err := s.repo.Create(ctx, p)
	if err != nil {
		log.Error().Err(err).Str("name", p.Name).Msg("service: failed to create partner")
		return nil, fmt.Errorf("service: failed to create partner: %w", err)
	}
	p.ID = id
	log.Info().Int64("partner_id", id).Str("name", p.Name).Msg("service: partner created")
	return p, nil
}

func (s *service) ListManagers(ctx context.Context) ([]Manager, error) {
	managers, err := s.repo.ListManagers(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list managers")
		return nil, fmt.Errorf("service: failed to list managers: %w", err)
	}
	return managers, nil
}

package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Service is the seam the HTTP layer talks to.
type Service interface {
	GetOrder(ctx context.Context, id int64) (*Order, error)
	SearchOrders(ctx context.Context, q OrderSearch) ([]Order, error)
	CommitOrder(ctx context.Context, o *Order) (*CommitResult, error)
	DeleteOrder(ctx context.Context, id int64) error
}

type service struct {
	stores Stores
	editor *Editor
}

func NewService(stores Stores) Service {
	return &service{stores: stores, editor: NewEditor(stores)}
}

func (s *service) GetOrder(ctx context.Context, id int64) (*Order, error) {
	o, err := s.stores.Orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Int64("order_id", id).Msg("service: failed to fetch order")
		return nil, fmt.Errorf("service: failed to fetch order %d: %w", id, err)
	}
	return o, nil
}

func (s *service) SearchOrders(ctx context.Context, q OrderSearch) ([]Order, error) {
	orders, err := s.stores.Orders.Search(ctx, q)
	if err != nil {
		log.Error().Err(err).Msg("service: order search failed")
		return nil, fmt.Errorf("service: order search failed: %w", err)
	}
	return orders, nil
}

func (s *service) CommitOrder(ctx context.Context, o *Order) (*CommitResult, error) {
	result, err := s.editor.Commit(ctx, o)
	if err != nil {
		// The editor already logged the failing step; just pass it up.
		return nil, err
	}
	return result, nil
}

func (s *service) DeleteOrder(ctx context.Context, id int64) error {
	if err := s.stores.Orders.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		log.Error().Err(err).Int64("order_id", id).Msg("service: failed to delete order")
		return fmt.Errorf("service: failed to delete order %d: %w", id, err)
	}
	log.Info().Int64("order_id", id).Msg("service: order deleted")
	return nil
}

package order

import (
	"context"
	"errors"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrClientRequired  = errors.New("client is required")
	ErrStopsRequired   = errors.New("at least one loading and one unloading stop are required")
	ErrCountryRequired = errors.New("every route stop must carry a country")
)

// The store exposes no aggregate replace, only per-row operations on each
// sub-collection. The reconciler performs the cascade itself.

// OrderStore persists the order header and refetches the canonical aggregate.
type OrderStore interface {
	// GetByID returns the full aggregate: header plus all three collections.
	GetByID(ctx context.Context, id int64) (*Order, error)
	// Create persists the header only and returns the server-assigned id.
	Create(ctx context.Context, o *Order) (int64, error)
	// Update persists the header only.
	Update(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, q OrderSearch) ([]Order, error)
}

// OrderSearch filters the header list for the search/assignment dialogs.
type OrderSearch struct {
	Reference string
	ClientID  int64
	Status    Status
	Limit     int
}

type RouteStopStore interface {
	ListByOrder(ctx context.Context, orderID int64) ([]RouteStop, error)
	// Create returns the server-assigned id.
	Create(ctx context.Context, stop *RouteStop) (int64, error)
	Update(ctx context.Context, stop *RouteStop) error
	Delete(ctx context.Context, id int64) error
}

type CargoItemStore interface {
	ListByOrder(ctx context.Context, orderID int64) ([]CargoItem, error)
	Create(ctx context.Context, item *CargoItem) (int64, error)
	Update(ctx context.Context, item *CargoItem) error
	Delete(ctx context.Context, id int64) error
}

type CarrierCostStore interface {
	ListByOrder(ctx context.Context, orderID int64) ([]CarrierCost, error)
	Create(ctx context.Context, cost *CarrierCost) (int64, error)
	Update(ctx context.Context, cost *CarrierCost) error
	Delete(ctx context.Context, id int64) error
}

// Stores bundles the per-family stores the editor needs for one commit.
type Stores struct {
	Orders   OrderStore
	Stops    RouteStopStore
	Cargo    CargoItemStore
	Carriers CarrierCostStore
}

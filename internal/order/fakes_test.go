package order_test

import (
	"context"
	"sort"
	"sync"

	"github.com/transmodal/freightdesk/internal/order"
)

// fakeStore is an in-memory stand-in for the remote per-row collection API.
// Failure hooks let tests fail individual operations.
type fakeStore struct {
	mu     sync.Mutex
	nextID int64

	orders map[int64]order.Order
	stops  map[int64]order.RouteStop
	cargo  map[int64]order.CargoItem
	costs  map[int64]order.CarrierCost

	deletedStops []int64
	deletedCargo []int64
	deletedCosts []int64

	stopCreateErr  func(s *order.RouteStop) error
	cargoCreateErr func(it *order.CargoItem) error
	cargoListErr   error
	costListErr    error
	orderUpdateErr error
	refetchErr     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders: make(map[int64]order.Order),
		stops:  make(map[int64]order.RouteStop),
		cargo:  make(map[int64]order.CargoItem),
		costs:  make(map[int64]order.CarrierCost),
	}
}

func (f *fakeStore) stores() order.Stores {
	return order.Stores{
		Orders:   &fakeOrderStore{f},
		Stops:    &fakeStopStore{f},
		Cargo:    &fakeCargoStore{f},
		Carriers: &fakeCostStore{f},
	}
}

func (f *fakeStore) allocate() int64 {
	f.nextID++
	return f.nextID
}

type fakeOrderStore struct{ f *fakeStore }

func (s *fakeOrderStore) GetByID(_ context.Context, id int64) (*order.Order, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	if s.f.refetchErr != nil {
		return nil, s.f.refetchErr
	}
	o, ok := s.f.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	stops := &fakeStopStore{s.f}
	o.RouteStops = stops.listLocked(id)
	cargo := &fakeCargoStore{s.f}
	o.CargoItems = cargo.listLocked(id)
	costs := &fakeCostStore{s.f}
	o.CarrierCosts = costs.listLocked(id)
	return &o, nil
}

func (s *fakeOrderStore) Create(_ context.Context, o *order.Order) (int64, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	id := s.f.allocate()
	stored := *o
	stored.ID = id
	s.f.orders[id] = stored
	return id, nil
}

func (s *fakeOrderStore) Update(_ context.Context, o *order.Order) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	if s.f.orderUpdateErr != nil {
		return s.f.orderUpdateErr
	}
	if _, ok := s.f.orders[o.ID]; !ok {
		return order.ErrOrderNotFound
	}
	s.f.orders[o.ID] = *o
	return nil
}

func (s *fakeOrderStore) Delete(_ context.Context, id int64) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	if _, ok := s.f.orders[id]; !ok {
		return order.ErrOrderNotFound
	}
	delete(s.f.orders, id)
	return nil
}

func (s *fakeOrderStore) Search(_ context.Context, _ order.OrderSearch) ([]order.Order, error) {
	return nil, nil
}

type fakeStopStore struct{ f *fakeStore }

func (s *fakeStopStore) listLocked(orderID int64) []order.RouteStop {
	out := make([]order.RouteStop, 0)
	for _, row := range s.f.stops {
		if row.OrderID == orderID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func (s *fakeStopStore) ListByOrder(_ context.Context, orderID int64) ([]order.RouteStop, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	return s.listLocked(orderID), nil
}

func (s *fakeStopStore) Create(_ context.Context, stop *order.RouteStop) (int64, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	if s.f.stopCreateErr != nil {
		if err := s.f.stopCreateErr(stop); err != nil {
			return 0, err
		}
	}
	id := s.f.allocate()
	stored := *stop
	stored.ID = id
	s.f.stops[id] = stored
	return id, nil
}

func (s *fakeStopStore) Update(_ context.Context, stop *order.RouteStop) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	s.f.stops[stop.ID] = *stop
	return nil
}

func (s *fakeStopStore) Delete(_ context.Context, id int64) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	delete(s.f.stops, id)
	s.f.deletedStops = append(s.f.deletedStops, id)
	return nil
}

type fakeCargoStore struct{ f *fakeStore }

func (s *fakeCargoStore) listLocked(orderID int64) []order.CargoItem {
	out := make([]order.CargoItem, 0)
	for _, row := range s.f.cargo {
		if row.OrderID == orderID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func (s *fakeCargoStore) ListByOrder(_ context.Context, orderID int64) ([]order.CargoItem, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	if s.f.cargoListErr != nil {
		return nil, s.f.cargoListErr
	}
	return s.listLocked(orderID), nil
}

func (s *fakeCargoStore) Create(_ context.Context, item *order.CargoItem) (int64, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	if s.f.cargoCreateErr != nil {
		if err := s.f.cargoCreateErr(item); err != nil {
			return 0, err
		}
	}
	id := s.f.allocate()
	stored := *item
	stored.ID = id
	s.f.cargo[id] = stored
	return id, nil
}

func (s *fakeCargoStore) Update(_ context.Context, item *order.CargoItem) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	s.f.cargo[item.ID] = *item
	return nil
}

func (s *fakeCargoStore) Delete(_ context.Context, id int64) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	delete(s.f.cargo, id)
	s.f.deletedCargo = append(s.f.deletedCargo, id)
	return nil
}

type fakeCostStore struct{ f *fakeStore }

func (s *fakeCostStore) listLocked(orderID int64) []order.CarrierCost {
	out := make([]order.CarrierCost, 0)
	for _, row := range s.f.costs {
		if row.OrderID == orderID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *fakeCostStore) ListByOrder(_ context.Context, orderID int64) ([]order.CarrierCost, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	if s.f.costListErr != nil {
		return nil, s.f.costListErr
	}
	return s.listLocked(orderID), nil
}

func (s *fakeCostStore) Create(_ context.Context, cost *order.CarrierCost) (int64, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	id := s.f.allocate()
	stored := *cost
	stored.ID = id
	s.f.costs[id] = stored
	return id, nil
}

func (s *fakeCostStore) Update(_ context.Context, cost *order.CarrierCost) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	s.f.costs[cost.ID] = *cost
	return nil
}

func (s *fakeCostStore) Delete(_ context.Context, id int64) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	delete(s.f.costs, id)
	s.f.deletedCosts = append(s.f.deletedCosts, id)
	return nil
}

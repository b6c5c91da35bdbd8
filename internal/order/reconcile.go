package order

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// RemapTable records the persisted id of every row that survived one
// collection's reconciliation: created rows map their local id to the id the
// store assigned, kept rows map their real id to itself. An id absent from
// the table was deleted in this commit or never created.
type RemapTable map[int64]int64

// Resolve maps a stop reference to a persistable one. References to rows in
// the table are rewritten to their real id; references to anything else, a
// failed create or a stop removed in the same commit, are nulled so a dead id
// is never sent.
func (t RemapTable) Resolve(ref *int64) *int64 {
	if ref == nil {
		return nil
	}
	if real, ok := t[*ref]; ok {
		return &real
	}
	return nil
}

// Warning is a non-fatal commit finding. The commit proceeds; the caller
// surfaces the list to the user.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	WarnRowCreateFailed  = "row_create_failed"
	WarnRouteDates       = "route_dates_inconsistent"
	WarnPriceBelowCost   = "client_price_below_carrier_cost"
	WarnVATRateOutOfBand = "vat_rate_out_of_range"
)

// Reconciler diffs one in-memory collection against the persisted rows and
// applies the delta row by row: delete rows the user removed, update rows
// with real ids, create rows that only have local ids. The store assigns real
// ids synchronously on create, which feeds the remap table.
type Reconciler struct {
	stores Stores
}

func NewReconciler(stores Stores) *Reconciler {
	return &Reconciler{stores: stores}
}

// ReconcileStops makes the persisted route stops match the in-memory slice.
// Positions are rewritten to 0..n-1 in slice order before anything is sent.
// The returned remap holds every stop that exists after the pass, so the
// cargo pass can null references to anything else. Row create failures are
// demoted to warnings: the failed stop simply never enters the remap table.
// List, update and delete failures fail the whole pass.
func (r *Reconciler) ReconcileStops(ctx context.Context, orderID int64, stops []RouteStop) (RemapTable, []Warning, error) {
	persisted, err := r.stores.Stops.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, nil, fmt.Errorf("list route stops for order %d: %w", orderID, err)
	}

	keep := make(map[int64]bool, len(stops))
	for i := range stops {
		stops[i].OrderID = orderID
		stops[i].Position = i
		if !IsLocalID(stops[i].ID) {
			keep[stops[i].ID] = true
		}
	}

	for _, row := range persisted {
		if keep[row.ID] {
			continue
		}
		if err := r.stores.Stops.Delete(ctx, row.ID); err != nil {
			return nil, nil, fmt.Errorf("delete route stop %d: %w", row.ID, err)
		}
	}

	remap := make(RemapTable)
	var warnings []Warning
	for i := range stops {
		stop := &stops[i]
		if IsLocalID(stop.ID) {
			localID := stop.ID
			realID, err := r.stores.Stops.Create(ctx, stop)
			if err != nil {
				log.Warn().Err(err).Int64("order_id", orderID).Int("position", stop.Position).
					Msg("route stop create failed, dependent references will be nulled")
				warnings = append(warnings, Warning{
					Code:    WarnRowCreateFailed,
					Message: fmt.Sprintf("route stop at position %d could not be saved: %v", stop.Position, err),
				})
				continue
			}
			stop.ID = realID
			remap[localID] = realID
			continue
		}
		if err := r.stores.Stops.Update(ctx, stop); err != nil {
			return nil, warnings, fmt.Errorf("update route stop %d: %w", stop.ID, err)
		}
		remap[stop.ID] = stop.ID
	}

	return remap, warnings, nil
}

// ReconcileCargo is the dependent pass: every stop reference that still holds
// a local id is rewritten through stopRemap (or nulled) before the row is
// sent. Otherwise the algorithm mirrors ReconcileStops.
func (r *Reconciler) ReconcileCargo(ctx context.Context, orderID int64, items []CargoItem, stopRemap RemapTable) (RemapTable, []Warning, error) {
	persisted, err := r.stores.Cargo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, nil, fmt.Errorf("list cargo items for order %d: %w", orderID, err)
	}

	keep := make(map[int64]bool, len(items))
	for i := range items {
		items[i].OrderID = orderID
		items[i].Position = i
		items[i].LoadingStopID = stopRemap.Resolve(items[i].LoadingStopID)
		items[i].UnloadingStopID = stopRemap.Resolve(items[i].UnloadingStopID)
		if !IsLocalID(items[i].ID) {
			keep[items[i].ID] = true
		}
	}

	for _, row := range persisted {
		if keep[row.ID] {
			continue
		}
		if err := r.stores.Cargo.Delete(ctx, row.ID); err != nil {
			return nil, nil, fmt.Errorf("delete cargo item %d: %w", row.ID, err)
		}
	}

	remap := make(RemapTable)
	var warnings []Warning
	for i := range items {
		item := &items[i]
		if IsLocalID(item.ID) {
			localID := item.ID
			realID, err := r.stores.Cargo.Create(ctx, item)
			if err != nil {
				log.Warn().Err(err).Int64("order_id", orderID).Int("position", item.Position).
					Msg("cargo item create failed")
				warnings = append(warnings, Warning{
					Code:    WarnRowCreateFailed,
					Message: fmt.Sprintf("cargo item at position %d could not be saved: %v", item.Position, err),
				})
				continue
			}
			item.ID = realID
			remap[localID] = realID
			continue
		}
		if err := r.stores.Cargo.Update(ctx, item); err != nil {
			return nil, warnings, fmt.Errorf("update cargo item %d: %w", item.ID, err)
		}
		remap[item.ID] = item.ID
	}

	return remap, warnings, nil
}

// ReconcileCarrierCosts reconciles the cost lines. They reference nothing
// inside the aggregate, so no remap is consumed; the pass runs last only to
// keep the commit order fixed.
func (r *Reconciler) ReconcileCarrierCosts(ctx context.Context, orderID int64, costs []CarrierCost) (RemapTable, []Warning, error) {
	persisted, err := r.stores.Carriers.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, nil, fmt.Errorf("list carrier costs for order %d: %w", orderID, err)
	}

	keep := make(map[int64]bool, len(costs))
	for i := range costs {
		costs[i].OrderID = orderID
		if !IsLocalID(costs[i].ID) {
			keep[costs[i].ID] = true
		}
	}

	for _, row := range persisted {
		if keep[row.ID] {
			continue
		}
		if err := r.stores.Carriers.Delete(ctx, row.ID); err != nil {
			return nil, nil, fmt.Errorf("delete carrier cost %d: %w", row.ID, err)
		}
	}

	remap := make(RemapTable)
	var warnings []Warning
	for i := range costs {
		cost := &costs[i]
		if IsLocalID(cost.ID) {
			localID := cost.ID
			realID, err := r.stores.Carriers.Create(ctx, cost)
			if err != nil {
				log.Warn().Err(err).Int64("order_id", orderID).Int64("partner_id", cost.PartnerID).
					Msg("carrier cost create failed")
				warnings = append(warnings, Warning{
					Code:    WarnRowCreateFailed,
					Message: fmt.Sprintf("carrier cost for partner %d could not be saved: %v", cost.PartnerID, err),
				})
				continue
			}
			cost.ID = realID
			remap[localID] = realID
			continue
		}
		if err := r.stores.Carriers.Update(ctx, cost); err != nil {
			return nil, warnings, fmt.Errorf("update carrier cost %d: %w", cost.ID, err)
		}
		remap[cost.ID] = cost.ID
	}

	return remap, warnings, nil
}

package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// NewStores wires the pgx-backed implementation of every store family.
func NewStores(db *pgxpool.Pool) Stores {
	return Stores{
		Orders:   &orderRepository{db: db},
		Stops:    &routeStopRepository{db: db},
		Cargo:    &cargoItemRepository{db: db},
		Carriers: &carrierCostRepository{db: db},
	}
}

// Monetary columns are numeric in the database and travel as strings, never
// binary floats. Scanning goes through text casts into decimal.Decimal.

type orderRepository struct {
	db *pgxpool.Pool
}

const orderColumns = `
	id, reference, client_id, manager_id, status,
	client_price_net::text, internal_price_net::text, margin_manually_set,
	vat_rate::text, vat_article, other_costs,
	route_exempt, route_from_country, route_from_city, route_from_date,
	route_to_country, route_to_city, route_to_date,
	created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o          Order
		priceNet   string
		marginNet  string
		vatRate    string
		otherCosts []byte
	)
	err := row.Scan(
		&o.ID, &o.Reference, &o.ClientID, &o.ManagerID, &o.Status,
		&priceNet, &marginNet, &o.MarginManuallySet,
		&vatRate, &o.VATArticle, &otherCosts,
		&o.RouteExempt, &o.RouteFromCountry, &o.RouteFromCity, &o.RouteFromDate,
		&o.RouteToCountry, &o.RouteToCity, &o.RouteToDate,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if o.ClientPriceNet, err = decimal.NewFromString(priceNet); err != nil {
		return nil, fmt.Errorf("parse client_price_net: %w", err)
	}
	if o.InternalPriceNet, err = decimal.NewFromString(marginNet); err != nil {
		return nil, fmt.Errorf("parse internal_price_net: %w", err)
	}
	if o.VATRate, err = decimal.NewFromString(vatRate); err != nil {
		return nil, fmt.Errorf("parse vat_rate: %w", err)
	}
	if len(otherCosts) > 0 {
		if err := json.Unmarshal(otherCosts, &o.OtherCosts); err != nil {
			return nil, fmt.Errorf("parse other_costs: %w", err)
		}
	}
	return &o, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order %d: %w", id, err)
	}

	stops := &routeStopRepository{db: r.db}
	if o.RouteStops, err = stops.ListByOrder(ctx, id); err != nil {
		return nil, err
	}
	cargo := &cargoItemRepository{db: r.db}
	if o.CargoItems, err = cargo.ListByOrder(ctx, id); err != nil {
		return nil, err
	}
	carriers := &carrierCostRepository{db: r.db}
	if o.CarrierCosts, err = carriers.ListByOrder(ctx, id); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) Create(ctx context.Context, o *Order) (int64, error) {
	otherCosts, err := json.Marshal(o.OtherCosts)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to encode other costs: %w", err)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO orders (
			reference, client_id, manager_id, status,
			client_price_net, internal_price_net, margin_manually_set,
			vat_rate, vat_article, other_costs,
			route_exempt, route_from_country, route_from_city, route_from_date,
			route_to_country, route_to_city, route_to_date,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		RETURNING id`

	var id int64
	err = r.db.QueryRow(ctx, query,
		o.Reference, o.ClientID, o.ManagerID, o.Status,
		o.ClientPriceNet.String(), o.InternalPriceNet.String(), o.MarginManuallySet,
		o.VATRate.String(), o.VATArticle, otherCosts,
		o.RouteExempt, o.RouteFromCountry, o.RouteFromCity, o.RouteFromDate,
		o.RouteToCountry, o.RouteToCity, o.RouteToDate,
		now, now,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to insert order: %w", err)
	}
	o.CreatedAt = now
	o.UpdatedAt = now
	return id, nil
}

func (r *orderRepository) Update(ctx context.Context, o *Order) error {
	otherCosts, err := json.Marshal(o.OtherCosts)
	if err != nil {
		return fmt.Errorf("repository: failed to encode other costs: %w", err)
	}

	query := `
		UPDATE orders SET
			reference = $1, client_id = $2, manager_id = $3, status = $4,
			client_price_net = $5, internal_price_net = $6, margin_manually_set = $7,
			vat_rate = $8, vat_article = $9, other_costs = $10,
			route_exempt = $11, route_from_country = $12, route_from_city = $13, route_from_date = $14,
			route_to_country = $15, route_to_city = $16, route_to_date = $17,
			updated_at = $18
		WHERE id = $19`

	cmdTag, err := r.db.Exec(ctx, query,
		o.Reference, o.ClientID, o.ManagerID, o.Status,
		o.ClientPriceNet.String(), o.InternalPriceNet.String(), o.MarginManuallySet,
		o.VATRate.String(), o.VATArticle, otherCosts,
		o.RouteExempt, o.RouteFromCountry, o.RouteFromCity, o.RouteFromDate,
		o.RouteToCountry, o.RouteToCity, o.RouteToDate,
		time.Now().UTC(), o.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update order %d: %w", o.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete order %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) Search(ctx context.Context, q OrderSearch) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	args := []any{}
	if q.Reference != "" {
		args = append(args, "%"+q.Reference+"%")
		query += fmt.Sprintf(" AND reference ILIKE $%d", len(args))
	}
	if q.ClientID != 0 {
		args = append(args, q.ClientID)
		query += fmt.Sprintf(" AND client_id = $%d", len(args))
	}
	if q.Status != "" {
		args = append(args, string(q.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to search orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order row: %w", err)
		}
		orders = append(orders, *o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order rows: %w", err)
	}
	return orders, nil
}

type routeStopRepository struct {
	db *pgxpool.Pool
}

const stopColumns = `
	id, order_id, position, kind, company_name, country, city, postal_code,
	address, date_from, date_to, created_at, updated_at`

func (r *routeStopRepository) ListByOrder(ctx context.Context, orderID int64) ([]RouteStop, error) {
	query := `SELECT ` + stopColumns + ` FROM route_stops WHERE order_id = $1 ORDER BY position`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query route stops for order %d: %w", orderID, err)
	}
	defer rows.Close()

	stops := make([]RouteStop, 0)
	for rows.Next() {
		var s RouteStop
		err := rows.Scan(
			&s.ID, &s.OrderID, &s.Position, &s.Kind, &s.CompanyName, &s.Country,
			&s.City, &s.PostalCode, &s.Address, &s.DateFrom, &s.DateTo,
			&s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan route stop: %w", err)
		}
		stops = append(stops, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating route stops: %w", err)
	}
	return stops, nil
}

func (r *routeStopRepository) Create(ctx context.Context, stop *RouteStop) (int64, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO route_stops (
			order_id, position, kind, company_name, country, city, postal_code,
			address, date_from, date_to, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id`

	var id int64
	err := r.db.QueryRow(ctx, query,
		stop.OrderID, stop.Position, stop.Kind, stop.CompanyName, stop.Country,
		stop.City, stop.PostalCode, stop.Address, stop.DateFrom, stop.DateTo,
		now, now,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to insert route stop: %w", err)
	}
	return id, nil
}

func (r *routeStopRepository) Update(ctx context.Context, stop *RouteStop) error {
	query := `
		UPDATE route_stops SET
			position = $1, kind = $2, company_name = $3, country = $4, city = $5,
			postal_code = $6, address = $7, date_from = $8, date_to = $9, updated_at = $10
		WHERE id = $11`

	cmdTag, err := r.db.Exec(ctx, query,
		stop.Position, stop.Kind, stop.CompanyName, stop.Country, stop.City,
		stop.PostalCode, stop.Address, stop.DateFrom, stop.DateTo,
		time.Now().UTC(), stop.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update route stop %d: %w", stop.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("repository: route stop %d not found", stop.ID)
	}
	return nil
}

func (r *routeStopRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM route_stops WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete route stop %d: %w", id, err)
	}
	return nil
}

type cargoItemRepository struct {
	db *pgxpool.Pool
}

const cargoColumns = `
	id, order_id, position, loading_stop_id, unloading_stop_id, name,
	weight_kg::text, volume_m3::text, loading_meters::text,
	pallet_count, package_count, fragile, hazardous, temp_controlled,
	forklift_needed, created_at, updated_at`

func (r *cargoItemRepository) ListByOrder(ctx context.Context, orderID int64) ([]CargoItem, error) {
	query := `SELECT ` + cargoColumns + ` FROM cargo_items WHERE order_id = $1 ORDER BY position`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query cargo items for order %d: %w", orderID, err)
	}
	defer rows.Close()

	items := make([]CargoItem, 0)
	for rows.Next() {
		var (
			it       CargoItem
			weight   string
			volume   string
			loadingM string
		)
		err := rows.Scan(
			&it.ID, &it.OrderID, &it.Position, &it.LoadingStopID, &it.UnloadingStopID,
			&it.Name, &weight, &volume, &loadingM,
			&it.PalletCount, &it.PackageCount, &it.Fragile, &it.Hazardous,
			&it.TempControlled, &it.ForkliftNeeded, &it.CreatedAt, &it.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan cargo item: %w", err)
		}
		if it.WeightKg, err = decimal.NewFromString(weight); err != nil {
			return nil, fmt.Errorf("parse weight_kg: %w", err)
		}
		if it.VolumeM3, err = decimal.NewFromString(volume); err != nil {
			return nil, fmt.Errorf("parse volume_m3: %w", err)
		}
		if it.LoadingMeters, err = decimal.NewFromString(loadingM); err != nil {
			return nil, fmt.Errorf("parse loading_meters: %w", err)
		}
		items = append(items, it)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating cargo items: %w", err)
	}
	return items, nil
}

func (r *cargoItemRepository) Create(ctx context.Context, item *CargoItem) (int64, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO cargo_items (
			order_id, position, loading_stop_id, unloading_stop_id, name,
			weight_kg, volume_m3, loading_meters, pallet_count, package_count,
			fragile, hazardous, temp_controlled, forklift_needed, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING id`

	var id int64
	err := r.db.QueryRow(ctx, query,
		item.OrderID, item.Position, item.LoadingStopID, item.UnloadingStopID, item.Name,
		item.WeightKg.String(), item.VolumeM3.String(), item.LoadingMeters.String(),
		item.PalletCount, item.PackageCount, item.Fragile, item.Hazardous,
		item.TempControlled, item.ForkliftNeeded, now, now,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to insert cargo item: %w", err)
	}
	return id, nil
}

func (r *cargoItemRepository) Update(ctx context.Context, item *CargoItem) error {
	query := `
		UPDATE cargo_items SET
			position = $1, loading_stop_id = $2, unloading_stop_id = $3, name = $4,
			weight_kg = $5, volume_m3 = $6, loading_meters = $7,
			pallet_count = $8, package_count = $9, fragile = $10, hazardous = $11,
			temp_controlled = $12, forklift_needed = $13, updated_at = $14
		WHERE id = $15`

	cmdTag, err := r.db.Exec(ctx, query,
		item.Position, item.LoadingStopID, item.UnloadingStopID, item.Name,
		item.WeightKg.String(), item.VolumeM3.String(), item.LoadingMeters.String(),
		item.PalletCount, item.PackageCount, item.Fragile, item.Hazardous,
		item.TempControlled, item.ForkliftNeeded, time.Now().UTC(), item.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update cargo item %d: %w", item.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("repository: cargo item %d not found", item.ID)
	}
	return nil
}

func (r *cargoItemRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cargo_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete cargo item %d: %w", id, err)
	}
	return nil
}

type carrierCostRepository struct {
	db *pgxpool.Pool
}

const costColumns = `
	id, order_id, partner_id, kind, price_net::text, vat_rate::text,
	has_custom_dates, date_from, date_to, payment_state,
	invoice_received, invoice_number, created_at, updated_at`

func (r *carrierCostRepository) ListByOrder(ctx context.Context, orderID int64) ([]CarrierCost, error) {
	query := `SELECT ` + costColumns + ` FROM carrier_costs WHERE order_id = $1 ORDER BY id`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query carrier costs for order %d: %w", orderID, err)
	}
	defer rows.Close()

	costs := make([]CarrierCost, 0)
	for rows.Next() {
		var (
			c        CarrierCost
			priceNet string
			vatRate  string
		)
		err := rows.Scan(
			&c.ID, &c.OrderID, &c.PartnerID, &c.Kind, &priceNet, &vatRate,
			&c.HasCustomDates, &c.DateFrom, &c.DateTo, &c.PaymentState,
			&c.InvoiceReceived, &c.InvoiceNumber, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan carrier cost: %w", err)
		}
		if c.PriceNet, err = decimal.NewFromString(priceNet); err != nil {
			return nil, fmt.Errorf("parse price_net: %w", err)
		}
		if c.VATRate, err = decimal.NewFromString(vatRate); err != nil {
			return nil, fmt.Errorf("parse vat_rate: %w", err)
		}
		costs = append(costs, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating carrier costs: %w", err)
	}
	return costs, nil
}

func (r *carrierCostRepository) Create(ctx context.Context, cost *CarrierCost) (int64, error) {
	if cost.PaymentState == "" {
		cost.PaymentState = PaymentNotPaid
	}
	now := time.Now().UTC()
	query := `
		INSERT INTO carrier_costs (
			order_id, partner_id, kind, price_net, vat_rate, has_custom_dates,
			date_from, date_to, payment_state, invoice_received, invoice_number,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING id`

	var id int64
	err := r.db.QueryRow(ctx, query,
		cost.OrderID, cost.PartnerID, cost.Kind, cost.PriceNet.String(),
		cost.VATRate.String(), cost.HasCustomDates, cost.DateFrom, cost.DateTo,
		cost.PaymentState, cost.InvoiceReceived, cost.InvoiceNumber, now, now,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to insert carrier cost: %w", err)
	}
	return id, nil
}

func (r *carrierCostRepository) Update(ctx context.Context, cost *CarrierCost) error {
	query := `
		UPDATE carrier_costs SET
			partner_id = $1, kind = $2, price_net = $3, vat_rate = $4,
			has_custom_dates = $5, date_from = $6, date_to = $7, payment_state = $8,
			invoice_received = $9, invoice_number = $10, updated_at = $11
		WHERE id = $12`

	cmdTag, err := r.db.Exec(ctx, query,
		cost.PartnerID, cost.Kind, cost.PriceNet.String(), cost.VATRate.String(),
		cost.HasCustomDates, cost.DateFrom, cost.DateTo, cost.PaymentState,
		cost.InvoiceReceived, cost.InvoiceNumber, time.Now().UTC(), cost.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update carrier cost %d: %w", cost.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("repository: carrier cost %d not found", cost.ID)
	}
	return nil
}

func (r *carrierCostRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM carrier_costs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete carrier cost %d: %w", id, err)
	}
	return nil
}

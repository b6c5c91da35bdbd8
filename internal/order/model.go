package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusNew        Status = "NEW"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

func (s Status) String() string {
	return string(s)
}

type StopKind string

const (
	StopLoading   StopKind = "loading"
	StopUnloading StopKind = "unloading"
)

type CostKind string

const (
	CostCarrier   CostKind = "carrier"
	CostWarehouse CostKind = "warehouse"
)

type PaymentState string

const (
	PaymentNotPaid       PaymentState = "not_paid"
	PaymentPartiallyPaid PaymentState = "partially_paid"
	PaymentPaid          PaymentState = "paid"
)

// RouteStop is one point of the order's route. Position is the aggregate-local
// display order; positions are rewritten to a contiguous 0..n-1 range on commit.
type RouteStop struct {
	ID          int64      `json:"id" db:"id"`
	OrderID     int64      `json:"order_id" db:"order_id"`
	Position    int        `json:"position" db:"position"`
	Kind        StopKind   `json:"kind" db:"kind"`
	CompanyName string     `json:"company_name" db:"company_name"`
	Country     string     `json:"country" db:"country"`
	City        string     `json:"city" db:"city"`
	PostalCode  string     `json:"postal_code" db:"postal_code"`
	Address     string     `json:"address" db:"address"`
	DateFrom    *time.Time `json:"date_from" db:"date_from"`
	DateTo      *time.Time `json:"date_to" db:"date_to"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// CargoItem describes one piece of freight. LoadingStopID and UnloadingStopID
// reference RouteStops of the same order and may hold local (negative) ids
// while the referenced stops are not persisted yet.
type CargoItem struct {
	ID              int64           `json:"id" db:"id"`
	OrderID         int64           `json:"order_id" db:"order_id"`
	Position        int             `json:"position" db:"position"`
	LoadingStopID   *int64          `json:"loading_stop_id" db:"loading_stop_id"`
	UnloadingStopID *int64          `json:"unloading_stop_id" db:"unloading_stop_id"`
	Name            string          `json:"name" db:"name"`
	WeightKg        decimal.Decimal `json:"weight_kg" db:"weight_kg"`
	VolumeM3        decimal.Decimal `json:"volume_m3" db:"volume_m3"`
	LoadingMeters   decimal.Decimal `json:"loading_meters" db:"loading_meters"`
	PalletCount     int             `json:"pallet_count" db:"pallet_count"`
	PackageCount    int             `json:"package_count" db:"package_count"`
	Fragile         bool            `json:"fragile" db:"fragile"`
	Hazardous       bool            `json:"hazardous" db:"hazardous"`
	TempControlled  bool            `json:"temp_controlled" db:"temp_controlled"`
	ForkliftNeeded  bool            `json:"forklift_needed" db:"forklift_needed"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// CarrierCost is one purchased service line (carrier or warehouse). Its date
// window follows the order's route dates unless HasCustomDates is set.
type CarrierCost struct {
	ID              int64           `json:"id" db:"id"`
	OrderID         int64           `json:"order_id" db:"order_id"`
	PartnerID       int64           `json:"partner_id" db:"partner_id"`
	Kind            CostKind        `json:"kind" db:"kind"`
	PriceNet        decimal.Decimal `json:"price_net" db:"price_net"`
	VATRate         decimal.Decimal `json:"vat_rate" db:"vat_rate"`
	HasCustomDates  bool            `json:"has_custom_dates" db:"has_custom_dates"`
	DateFrom        *time.Time      `json:"date_from" db:"date_from"`
	DateTo          *time.Time      `json:"date_to" db:"date_to"`
	PaymentState    PaymentState    `json:"payment_state" db:"payment_state"`
	InvoiceReceived bool            `json:"invoice_received" db:"invoice_received"`
	InvoiceNumber   string          `json:"invoice_number" db:"invoice_number"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// OtherCost is a free-text cost line embedded in the order header. The whole
// list is replaced on every save, it has no identity of its own.
type OtherCost struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Order is the aggregate root edited in memory and committed as one unit.
type Order struct {
	ID        int64  `json:"id" db:"id"`
	Reference string `json:"reference" db:"reference"`
	ClientID  int64  `json:"client_id" db:"client_id"`
	ManagerID int64  `json:"manager_id" db:"manager_id"`
	Status    Status `json:"status" db:"status"`

	ClientPriceNet    decimal.Decimal `json:"client_price_net" db:"client_price_net"`
	InternalPriceNet  decimal.Decimal `json:"internal_price_net" db:"internal_price_net"`
	MarginManuallySet bool            `json:"margin_manually_set" db:"margin_manually_set"`
	VATRate           decimal.Decimal `json:"vat_rate" db:"vat_rate"`
	VATArticle        string          `json:"vat_article" db:"vat_article"`
	OtherCosts        []OtherCost     `json:"other_costs" db:"other_costs"`

	// Route summary fields are derived from the stops at commit time, never
	// edited directly.
	RouteExempt      bool       `json:"route_exempt" db:"route_exempt"`
	RouteFromCountry string     `json:"route_from_country" db:"route_from_country"`
	RouteFromCity    string     `json:"route_from_city" db:"route_from_city"`
	RouteFromDate    *time.Time `json:"route_from_date" db:"route_from_date"`
	RouteToCountry   string     `json:"route_to_country" db:"route_to_country"`
	RouteToCity      string     `json:"route_to_city" db:"route_to_city"`
	RouteToDate      *time.Time `json:"route_to_date" db:"route_to_date"`

	RouteStops   []RouteStop   `json:"route_stops" db:"-"`
	CargoItems   []CargoItem   `json:"cargo_items" db:"-"`
	CarrierCosts []CarrierCost `json:"carrier_costs" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

package partner

import "time"

type Kind string

const (
	KindClient  Kind = "client"
	KindCarrier Kind = "carrier"
)

// Partner is a company the forwarder trades with: a client being invoiced or
// a carrier/warehouse being paid.
type Partner struct {
	ID        int64     `json:"id" db:"id"`
	Kind      Kind      `json:"kind" db:"kind"`
	Name      string    `json:"name" db:"name"`
	VATNumber string    `json:"vat_number" db:"vat_number"`
	Country   string    `json:"country" db:"country"`
	City      string    `json:"city" db:"city"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Manager is an internal employee responsible for orders.
type Manager struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

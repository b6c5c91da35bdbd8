package invoice

import (
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindSales    Kind = "sales"
	KindPurchase Kind = "purchase"
)

// SalesInvoice is issued to the client of an order.
type SalesInvoice struct {
	ID         int64           `json:"id" db:"id"`
	OrderID    int64           `json:"order_id" db:"order_id"`
	ClientID   int64           `json:"client_id" db:"client_id"`
	Number     string          `json:"number" db:"number"`
	TotalNet   decimal.Decimal `json:"total_net" db:"total_net"`
	TotalGross decimal.Decimal `json:"total_gross" db:"total_gross"`
	PaidAmount decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	Status     Status          `json:"status" db:"status"`
	IssueDate  time.Time       `json:"issue_date" db:"issue_date"`
	DueDate    time.Time       `json:"due_date" db:"due_date"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}

// Remaining is the gross amount still owed.
func (i *SalesInvoice) Remaining() decimal.Decimal {
	return i.TotalGross.Sub(i.PaidAmount)
}

// DisplayStatus derives the badge for this invoice. The overdue badge is
// read from the persisted status, never derived from amounts; a fully
// covered invoice still shows paid.
func (i *SalesInvoice) DisplayStatus() DisplayStatus {
	st := ResolveDisplayStatus(i.PaidAmount, i.TotalGross, i.Remaining(), i.Status)
	if st != DisplayPaid && i.Status == StatusOverdue {
		return DisplayOverdue
	}
	return st
}

// PurchaseInvoice is received from a carrier or warehouse partner, optionally
// linked to the carrier cost line it covers.
type PurchaseInvoice struct {
	ID            int64           `json:"id" db:"id"`
	OrderID       *int64          `json:"order_id" db:"order_id"`
	PartnerID     int64           `json:"partner_id" db:"partner_id"`
	CarrierCostID *int64          `json:"carrier_cost_id" db:"carrier_cost_id"`
	Number        string          `json:"number" db:"number"`
	TotalNet      decimal.Decimal `json:"total_net" db:"total_net"`
	TotalGross    decimal.Decimal `json:"total_gross" db:"total_gross"`
	PaidAmount    decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	Status        Status          `json:"status" db:"status"`
	IssueDate     time.Time       `json:"issue_date" db:"issue_date"`
	DueDate       time.Time       `json:"due_date" db:"due_date"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

func (i *PurchaseInvoice) Remaining() decimal.Decimal {
	return i.TotalGross.Sub(i.PaidAmount)
}

func (i *PurchaseInvoice) DisplayStatus() DisplayStatus {
	st := ResolveDisplayStatus(i.PaidAmount, i.TotalGross, i.Remaining(), i.Status)
	if st != DisplayPaid && i.Status == StatusOverdue {
		return DisplayOverdue
	}
	return st
}

// Payment is one recorded payment against an invoice.
type Payment struct {
	ID          int64           `json:"id" db:"id"`
	InvoiceKind Kind            `json:"invoice_kind" db:"invoice_kind"`
	InvoiceID   int64           `json:"invoice_id" db:"invoice_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	PaidAt      time.Time       `json:"paid_at" db:"paid_at"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// UnpaidSummary is the advisory read-side figure shown next to a partner:
// how many purchase invoices are outstanding and for how much. It is never
// part of the aggregate's correctness, lookups may degrade to a zero value.
type UnpaidSummary struct {
	PartnerID   int64           `json:"partner_id"`
	Count       int             `json:"count"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

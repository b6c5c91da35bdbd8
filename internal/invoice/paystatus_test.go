package invoice_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/transmodal/freightdesk/internal/invoice"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestResolveDisplayStatus(t *testing.T) {
	tests := []struct {
		name      string
		paid      string
		total     string
		remaining string
		stored    invoice.Status
		want      invoice.DisplayStatus
	}{
		{"fully_paid_by_amounts", "100", "100", "0", invoice.StatusUnpaid, invoice.DisplayPaid},
		{"partially_paid", "40", "100", "60", invoice.StatusUnpaid, invoice.DisplayPartiallyPaid},
		{"nothing_paid", "0", "100", "100", invoice.StatusUnpaid, invoice.DisplayUnpaid},
		{"stored_paid_wins_over_amounts", "0", "100", "100", invoice.StatusPaid, invoice.DisplayPaid},
		{"remaining_within_epsilon", "100", "100", "0.01", invoice.StatusUnpaid, invoice.DisplayPaid},
		{"overpaid", "120", "100", "-20", invoice.StatusUnpaid, invoice.DisplayPaid},
		{"stored_overdue_not_derived", "0", "100", "100", invoice.StatusOverdue, invoice.DisplayUnpaid},
		{"tiny_payment_still_partial", "0.05", "100", "99.95", invoice.StatusUnpaid, invoice.DisplayPartiallyPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := invoice.ResolveDisplayStatus(dec(tt.paid), dec(tt.total), dec(tt.remaining), tt.stored)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDaysUntilDue(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, invoice.DaysUntilDue(now, now))
	assert.Equal(t, 5, invoice.DaysUntilDue(now.AddDate(0, 0, 5), now))
	assert.Equal(t, -3, invoice.DaysUntilDue(now.AddDate(0, 0, -3), now))
}

// The persisted overdue badge and the computed days-until-due indicator are
// independent signals and may disagree: an invoice marked unpaid by hand can
// still have a due date in the future.
func TestOverdueSignalsMayDisagree(t *testing.T) {
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	inv := invoice.PurchaseInvoice{
		TotalGross: dec("100"),
		PaidAmount: dec("0"),
		Status:     invoice.StatusUnpaid,
		DueDate:    now.AddDate(0, 0, 14),
	}

	assert.Equal(t, invoice.DisplayUnpaid, inv.DisplayStatus())
	assert.Equal(t, 14, invoice.DaysUntilDue(inv.DueDate, now))

	overdue := inv
	overdue.Status = invoice.StatusOverdue
	// The badge follows the stored status while the indicator stays positive.
	assert.Equal(t, invoice.DisplayOverdue, overdue.DisplayStatus())
	assert.Positive(t, invoice.DaysUntilDue(overdue.DueDate, now))
	// The raw resolver never derives overdue on its own.
	assert.Equal(t, invoice.DisplayUnpaid,
		invoice.ResolveDisplayStatus(overdue.PaidAmount, overdue.TotalGross, overdue.Remaining(), overdue.Status))
}

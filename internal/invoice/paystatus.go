package invoice

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the persisted payment status of an invoice. Overdue is only ever
// set here, by hand or by a background job; the display resolver below never
// derives it.
type Status string

const (
	StatusUnpaid        Status = "unpaid"
	StatusPartiallyPaid Status = "partially_paid"
	StatusPaid          Status = "paid"
	StatusOverdue       Status = "overdue"
)

// DisplayStatus is the badge shown for any priced line, derived from amounts.
type DisplayStatus string

const (
	DisplayUnpaid        DisplayStatus = "unpaid"
	DisplayPartiallyPaid DisplayStatus = "partially_paid"
	DisplayPaid          DisplayStatus = "paid"
	DisplayOverdue       DisplayStatus = "overdue"
)

// paidEpsilon absorbs cent-level rounding in the remaining amount.
var paidEpsilon = decimal.NewFromFloat(0.01)

// ResolveDisplayStatus derives the badge for a priced line from its amounts
// and the persisted status, evaluated in order:
//
//  1. stored paid wins: an explicit payment date beats amount math
//  2. fully covered: remaining within epsilon and paid >= total
//  3. partially covered: something paid, something remaining
//  4. otherwise unpaid
//
// Overdue is deliberately not derived here. The overdue badge is read from
// the persisted status; the separate days-until-due indicator comes from
// DaysUntilDue. The two signals may disagree and that is intended: a manually
// marked unpaid invoice can still have a due date in the future.
func ResolveDisplayStatus(paid, total, remaining decimal.Decimal, stored Status) DisplayStatus {
	if stored == StatusPaid {
		return DisplayPaid
	}
	if remaining.LessThanOrEqual(paidEpsilon) && paid.GreaterThanOrEqual(total) {
		return DisplayPaid
	}
	if paid.IsPositive() && remaining.GreaterThan(paidEpsilon) {
		return DisplayPartiallyPaid
	}
	return DisplayUnpaid
}

// DaysUntilDue returns whole days from now until due, negative when the due
// date has passed. It is an independent indicator and must not be folded into
// ResolveDisplayStatus.
func DaysUntilDue(due, now time.Time) int {
	d := due.Truncate(24 * time.Hour)
	n := now.Truncate(24 * time.Hour)
	return int(d.Sub(n).Hours() / 24)
}

package order

import (
	"github.com/shopspring/decimal"
)

// marginEpsilon guards recomputation against decimal rounding noise: the
// stored margin is only overwritten when it moves by more than one cent.
var marginEpsilon = decimal.NewFromFloat(0.01)

// TotalCarrierCost sums the net price of every carrier cost line.
func TotalCarrierCost(o *Order) decimal.Decimal {
	total := decimal.Zero
	for _, c := range o.CarrierCosts {
		total = total.Add(c.PriceNet)
	}
	return total
}

// TotalOtherCost sums the embedded free-text cost lines.
func TotalOtherCost(o *Order) decimal.Decimal {
	total := decimal.Zero
	for _, c := range o.OtherCosts {
		total = total.Add(c.Amount)
	}
	return total
}

// RecomputeMargin derives the internal margin price:
//
//	margin = max(0, clientPriceNet - Σ carrier costs - Σ other costs)
//
// While the manual-override latch is set the stored margin is left alone,
// unless force is true, which clears the latch and recomputes. Repeated calls
// with unchanged inputs never change the stored value.
func RecomputeMargin(o *Order, force bool) {
	if force {
		o.MarginManuallySet = false
	}
	if o.MarginManuallySet {
		return
	}

	margin := o.ClientPriceNet.Sub(TotalCarrierCost(o)).Sub(TotalOtherCost(o))
	if margin.IsNegative() {
		margin = decimal.Zero
	}

	if margin.Sub(o.InternalPriceNet).Abs().LessThanOrEqual(marginEpsilon) {
		return
	}
	o.InternalPriceNet = margin
}

// SetClientPrice updates the client price and clears the manual-override
// latch: editing the client price is the user's signal that the margin should
// follow automatically again.
func SetClientPrice(o *Order, price decimal.Decimal) {
	o.ClientPriceNet = price
	o.MarginManuallySet = false
	RecomputeMargin(o, false)
}

// SetMarginManually stores a user-entered margin and sets the latch so that
// subsequent recomputations do not overwrite it.
func SetMarginManually(o *Order, margin decimal.Decimal) {
	o.InternalPriceNet = margin
	o.MarginManuallySet = true
}

// ProfitNet is the unclamped display figure: client price minus all costs.
// Unlike the stored margin it may be negative.
func ProfitNet(o *Order) decimal.Decimal {
	return o.ClientPriceNet.Sub(TotalCarrierCost(o)).Sub(TotalOtherCost(o))
}

// GrossPrice applies a percentage VAT rate to a net amount.
func GrossPrice(net, vatRate decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	return net.Mul(hundred.Add(vatRate)).Div(hundred).Round(2)
}

// DeriveRouteSummary rewrites the order's route_from/route_to fields from the
// first loading stop and the last unloading stop in sequence order. The
// summary fields are derived state, they are never edited directly.
func DeriveRouteSummary(o *Order) {
	var first, last *RouteStop
	for i := range o.RouteStops {
		s := &o.RouteStops[i]
		switch s.Kind {
		case StopLoading:
			if first == nil || s.Position < first.Position {
				first = s
			}
		case StopUnloading:
			if last == nil || s.Position > last.Position {
				last = s
			}
		}
	}

	if first != nil {
		o.RouteFromCountry = first.Country
		o.RouteFromCity = first.City
		o.RouteFromDate = first.DateFrom
	} else {
		o.RouteFromCountry = ""
		o.RouteFromCity = ""
		o.RouteFromDate = nil
	}

	if last != nil {
		o.RouteToCountry = last.Country
		o.RouteToCity = last.City
		o.RouteToDate = last.DateTo
	} else {
		o.RouteToCountry = ""
		o.RouteToCity = ""
		o.RouteToDate = nil
	}
}

package order_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/transmodal/freightdesk/internal/order"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRecomputeMargin(t *testing.T) {
	tests := []struct {
		name       string
		order      *order.Order
		wantMargin string
	}{
		{
			name: "price_minus_costs",
			order: &order.Order{
				ClientPriceNet: dec("1000"),
				CarrierCosts: []order.CarrierCost{
					{PriceNet: dec("600")},
					{PriceNet: dec("150")},
				},
				OtherCosts: []order.OtherCost{{Description: "tolls", Amount: dec("50")}},
			},
			wantMargin: "200",
		},
		{
			name: "clamped_at_zero",
			order: &order.Order{
				ClientPriceNet: dec("100"),
				CarrierCosts:   []order.CarrierCost{{PriceNet: dec("500")}},
			},
			wantMargin: "0",
		},
		{
			name: "no_costs_margin_equals_price",
			order: &order.Order{
				ClientPriceNet: dec("750.50"),
			},
			wantMargin: "750.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order.RecomputeMargin(tt.order, false)
			assert.True(t, dec(tt.wantMargin).Equal(tt.order.InternalPriceNet),
				"want %s, got %s", tt.wantMargin, tt.order.InternalPriceNet)
		})
	}
}

func TestRecomputeMargin_Idempotent(t *testing.T) {
	o := &order.Order{
		ClientPriceNet: dec("1000.005"),
		CarrierCosts:   []order.CarrierCost{{PriceNet: dec("333.335")}},
	}

	order.RecomputeMargin(o, false)
	first := o.InternalPriceNet
	order.RecomputeMargin(o, false)
	order.RecomputeMargin(o, false)

	assert.True(t, first.Equal(o.InternalPriceNet))
}

func TestRecomputeMargin_EpsilonGuard(t *testing.T) {
	o := &order.Order{
		ClientPriceNet:   dec("100"),
		InternalPriceNet: dec("99.995"),
	}

	// The freshly derived margin (100) is within a cent of the stored value,
	// so the stored value must survive.
	order.RecomputeMargin(o, false)
	assert.True(t, dec("99.995").Equal(o.InternalPriceNet))
}

func TestMarginOverrideLatch(t *testing.T) {
	o := &order.Order{
		ClientPriceNet: dec("1000"),
		CarrierCosts:   []order.CarrierCost{{PriceNet: dec("400")}},
	}
	order.RecomputeMargin(o, false)
	assert.True(t, dec("600").Equal(o.InternalPriceNet))

	// A manual edit sticks through recomputation.
	order.SetMarginManually(o, dec("999"))
	order.RecomputeMargin(o, false)
	assert.True(t, dec("999").Equal(o.InternalPriceNet))
	assert.True(t, o.MarginManuallySet)

	// Forcing clears the latch.
	order.RecomputeMargin(o, true)
	assert.True(t, dec("600").Equal(o.InternalPriceNet))
	assert.False(t, o.MarginManuallySet)

	// Editing the client price clears the latch too.
	order.SetMarginManually(o, dec("1"))
	order.SetClientPrice(o, dec("500"))
	assert.False(t, o.MarginManuallySet)
	assert.True(t, dec("100").Equal(o.InternalPriceNet))
}

func TestRecomputeMargin_AfterRemovingAllCarrierCosts(t *testing.T) {
	o := &order.Order{
		ClientPriceNet: dec("800"),
		CarrierCosts:   []order.CarrierCost{{PriceNet: dec("300")}},
	}
	order.RecomputeMargin(o, false)
	assert.True(t, dec("500").Equal(o.InternalPriceNet))

	o.CarrierCosts = nil
	order.RecomputeMargin(o, true)
	assert.True(t, o.ClientPriceNet.Equal(o.InternalPriceNet))
}

func TestProfitNet_MayBeNegative(t *testing.T) {
	o := &order.Order{
		ClientPriceNet: dec("100"),
		CarrierCosts:   []order.CarrierCost{{PriceNet: dec("150")}},
	}
	assert.True(t, dec("-50").Equal(order.ProfitNet(o)))
}

func TestGrossPrice(t *testing.T) {
	assert.True(t, dec("123").Equal(order.GrossPrice(dec("100"), dec("23"))))
	assert.True(t, dec("100").Equal(order.GrossPrice(dec("100"), dec("0"))))
}

func TestDeriveRouteSummary(t *testing.T) {
	d1 := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 3, 3, 16, 0, 0, 0, time.UTC)

	o := &order.Order{
		RouteStops: []order.RouteStop{
			{Position: 0, Kind: order.StopLoading, Country: "DE", City: "Hamburg", DateFrom: &d1},
			{Position: 1, Kind: order.StopUnloading, Country: "PL", City: "Poznan", DateTo: &d2},
			{Position: 2, Kind: order.StopLoading, Country: "CZ", City: "Brno"},
		},
	}

	order.DeriveRouteSummary(o)

	// Two loading stops (positions 0 and 2) and one unloading stop (position
	// 1): the summary takes the first loading and the last unloading in
	// sequence order, not submission order.
	assert.Equal(t, "DE", o.RouteFromCountry)
	assert.Equal(t, "Hamburg", o.RouteFromCity)
	assert.Equal(t, &d1, o.RouteFromDate)
	assert.Equal(t, "PL", o.RouteToCountry)
	assert.Equal(t, "Poznan", o.RouteToCity)
	assert.Equal(t, &d2, o.RouteToDate)
}

func TestDeriveRouteSummary_Empty(t *testing.T) {
	o := &order.Order{
		RouteFromCountry: "DE",
		RouteToCountry:   "PL",
	}
	order.DeriveRouteSummary(o)
	assert.Empty(t, o.RouteFromCountry)
	assert.Empty(t, o.RouteToCountry)
	assert.Nil(t, o.RouteFromDate)
	assert.Nil(t, o.RouteToDate)
}

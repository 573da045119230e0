package cart

import (
	"testing"

	"github.com/shopspring/decimal"
)

func testRules() PricingRules {
	return PricingRules{
		TaxRate:               decimal.RequireFromString("0.18"),
		ShippingCost:          decimal.NewFromInt(60),
		FreeShippingThreshold: decimal.NewFromInt(999),
	}
}

func mustPromo(t *testing.T, code string) *Promo {
	t.Helper()
	promo, ok := LookupPromo(code)
	if !ok {
		t.Fatalf("promo %q missing from table", code)
	}
	return &promo
}

func TestCalculateTotals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		items    []LineItem
		promo    *Promo
		subtotal string
		discount string
		shipping string
		tax      string
		total    string
	}{
		{
			name:     "empty cart",
			items:    nil,
			subtotal: "0", discount: "0", shipping: "0", tax: "0", total: "0",
		},
		{
			name:     "below threshold pays shipping",
			items:    []LineItem{{UnitPrice: 500, Quantity: 1}},
			subtotal: "500", discount: "0", shipping: "60", tax: "90", total: "650",
		},
		{
			name:     "exactly at threshold still pays shipping",
			items:    []LineItem{{UnitPrice: 999, Quantity: 1}},
			subtotal: "999", discount: "0", shipping: "60", tax: "179.82", total: "1238.82",
		},
		{
			name:     "above threshold ships free",
			items:    []LineItem{{UnitPrice: 1000, Quantity: 1}},
			subtotal: "1000", discount: "0", shipping: "0", tax: "180", total: "1180",
		},
		{
			name:     "percentage promo discounts before tax",
			items:    []LineItem{{UnitPrice: 1000, Quantity: 1}},
			promo:    mustPromo(t, "SAVE10"),
			subtotal: "1000", discount: "100", shipping: "0", tax: "162", total: "1062",
		},
		{
			name:     "fixed promo caps at subtotal",
			items:    []LineItem{{UnitPrice: 150, Quantity: 1}},
			promo:    mustPromo(t, "PREMIUM200"),
			subtotal: "150", discount: "150", shipping: "60", tax: "0", total: "60",
		},
		{
			name:     "fixed promo below subtotal",
			items:    []LineItem{{UnitPrice: 400, Quantity: 2}},
			promo:    mustPromo(t, "PREMIUM200"),
			subtotal: "800", discount: "200", shipping: "60", tax: "108", total: "768",
		},
		{
			name:     "free shipping promo waives shipping only",
			items:    []LineItem{{UnitPrice: 500, Quantity: 1}},
			promo:    mustPromo(t, "FREESHIP"),
			subtotal: "500", discount: "0", shipping: "0", tax: "90", total: "590",
		},
		{
			name:     "multiple lines sum into subtotal",
			items:    []LineItem{{UnitPrice: 250, Quantity: 2}, {UnitPrice: 100, Quantity: 3}},
			subtotal: "800", discount: "0", shipping: "60", tax: "144", total: "1004",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			totals := CalculateTotals(tc.items, tc.promo, testRules())

			assertDecimal(t, "subtotal", totals.Subtotal, tc.subtotal)
			assertDecimal(t, "discount", totals.Discount, tc.discount)
			assertDecimal(t, "shipping", totals.Shipping, tc.shipping)
			assertDecimal(t, "tax", totals.Tax, tc.tax)
			assertDecimal(t, "total", totals.Total, tc.total)
		})
	}
}

func TestCalculateTotalsNeverNegative(t *testing.T) {
	t.Parallel()

	totals := CalculateTotals([]LineItem{{UnitPrice: 50, Quantity: 1}}, mustPromo(t, "PREMIUM200"), testRules())
	if totals.Total.IsNegative() || totals.Discount.GreaterThan(totals.Subtotal) {
		t.Fatalf("fixed promo overshot: discount=%s subtotal=%s total=%s", totals.Discount, totals.Subtotal, totals.Total)
	}
}

func assertDecimal(t *testing.T, field string, got decimal.Decimal, want string) {
	t.Helper()
	expected := decimal.RequireFromString(want)
	if !got.Equal(expected) {
		t.Fatalf("%s = %s, want %s", field, got, expected)
	}
}

package cart

import "github.com/shopspring/decimal"

// PricingRules are the storefront constants the totals are computed
// from. Values come from configuration; amounts are whole rupees.
type PricingRules struct {
	TaxRate               decimal.Decimal
	ShippingCost          decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

// CalculateTotals derives the full pricing breakdown. It is pure and
// never fails: a nil promo means no discount.
//
// The discount applies to the subtotal only. Shipping is waived for an
// empty cart, above the free-shipping threshold, or under a
// free-shipping promo. Tax is charged on the discounted subtotal, not
// on shipping.
func CalculateTotals(items []LineItem, promo *Promo, rules PricingRules) Totals {
	subtotal := decimal.Zero
	itemCount := 0
	for _, item := range items {
		line := decimal.NewFromInt(item.UnitPrice).Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
		itemCount += item.Quantity
	}

	discount := decimal.Zero
	promoCode := ""
	promoMessage := ""
	freeShippingPromo := false
	if promo != nil {
		promoCode = promo.Code
		promoMessage = promo.Message()
		switch promo.Kind {
		case PromoPercentage:
			discount = subtotal.Mul(promo.Value).Round(2)
		case PromoFixed:
			discount = promo.Value
			if discount.GreaterThan(subtotal) {
				discount = subtotal
			}
		case PromoFreeShipping:
			freeShippingPromo = true
		}
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}

	discountedSubtotal := subtotal.Sub(discount)
	if discountedSubtotal.IsNegative() {
		discountedSubtotal = decimal.Zero
	}

	shipping := rules.ShippingCost
	freeShipping := false
	switch {
	case subtotal.IsZero():
		shipping = decimal.Zero
	case freeShippingPromo:
		shipping = decimal.Zero
		freeShipping = true
	case subtotal.GreaterThan(rules.FreeShippingThreshold):
		shipping = decimal.Zero
		freeShipping = true
	}

	tax := discountedSubtotal.Mul(rules.TaxRate).Round(2)
	total := discountedSubtotal.Add(shipping).Add(tax)

	return Totals{
		Subtotal:     subtotal,
		Discount:     discount,
		Shipping:     shipping,
		Tax:          tax,
		Total:        total,
		PromoCode:    promoCode,
		PromoMessage: promoMessage,
		FreeShipping: freeShipping,
		ItemCount:    itemCount,
	}
}

package cart

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PromoKind selects how a promo code changes the totals.
type PromoKind string

const (
	PromoPercentage   PromoKind = "percentage"
	PromoFixed        PromoKind = "fixed"
	PromoFreeShipping PromoKind = "free_shipping"
)

// Promo is one redeemable code.
type Promo struct {
	Code        string
	Kind        PromoKind
	Value       decimal.Decimal
	Description string
}

// Message renders the confirmation shown when the promo applies.
func (p Promo) Message() string {
	switch p.Kind {
	case PromoPercentage:
		return fmt.Sprintf("Promo applied: %s off your order!", p.Value.Mul(decimal.NewFromInt(100)).StringFixed(0)+"%")
	case PromoFixed:
		return fmt.Sprintf("Promo applied: ₹%s off your order!", p.Value.StringFixed(0))
	case PromoFreeShipping:
		return "Promo applied: free shipping on this order!"
	default:
		return "Promo applied!"
	}
}

var promoTable = map[string]Promo{
	"SAVE10": {
		Code:        "SAVE10",
		Kind:        PromoPercentage,
		Value:       decimal.RequireFromString("0.10"),
		Description: "10% off the subtotal",
	},
	"PREMIUM200": {
		Code:        "PREMIUM200",
		Kind:        PromoFixed,
		Value:       decimal.NewFromInt(200),
		Description: "Flat ₹200 off",
	},
	"FREESHIP": {
		Code:        "FREESHIP",
		Kind:        PromoFreeShipping,
		Description: "Free shipping regardless of order value",
	},
}

// NormalizePromoCode trims and uppercases user input.
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// LookupPromo resolves a normalized code against the static table.
func LookupPromo(code string) (Promo, bool) {
	promo, ok := promoTable[NormalizePromoCode(code)]
	return promo, ok
}

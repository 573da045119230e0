package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one cart row. Identity is the (ProductID, Options) pair:
// the same product in a different size or color is a separate line.
// UnitPrice is captured at add time so a later catalog reprice does
// not silently change an existing cart.
type LineItem struct {
	ProductID int               `json:"product_id"`
	Name      string            `json:"name"`
	Image     string            `json:"image"`
	UnitPrice int64             `json:"unit_price"`
	Quantity  int               `json:"quantity"`
	Options   map[string]string `json:"options,omitempty"`
}

// Cart is the durable per-session cart snapshot.
type Cart struct {
	Items     []LineItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ItemCount sums quantities across lines.
func (c *Cart) ItemCount() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

func (c *Cart) findLine(productID int, options map[string]string) int {
	for i, item := range c.Items {
		if item.ProductID == productID && optionsEqual(item.Options, options) {
			return i
		}
	}
	return -1
}

// Totals is the fully computed pricing breakdown for a cart.
type Totals struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	Discount     decimal.Decimal `json:"discount"`
	Shipping     decimal.Decimal `json:"shipping"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
	PromoCode    string          `json:"promo_code,omitempty"`
	PromoMessage string          `json:"promo_message,omitempty"`
	FreeShipping bool            `json:"free_shipping"`
	ItemCount    int             `json:"item_count"`
}

// View is what cart reads and mutations return: the cart plus its
// computed totals, and an optional advisory message (partial adds,
// quantity clamps).
type View struct {
	Cart    Cart   `json:"cart"`
	Totals  Totals `json:"totals"`
	Message string `json:"message,omitempty"`
}

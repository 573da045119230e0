package types

// OrderItem is the line-item snapshot frozen into an order at
// checkout time.
type OrderItem struct {
	ProductID int               `json:"product_id"`
	Name      string            `json:"name"`
	Image     string            `json:"image,omitempty"`
	Quantity  int               `json:"quantity"`
	UnitPrice string            `json:"unit_price"`
	Options   map[string]string `json:"options,omitempty"`
}

// OrderTotals freezes the computed totals for an order. Amounts are
// decimal strings to avoid float drift in storage.
type OrderTotals struct {
	Subtotal     string `json:"subtotal"`
	Discount     string `json:"discount"`
	Shipping     string `json:"shipping"`
	Tax          string `json:"tax"`
	Total        string `json:"total"`
	PromoCode    string `json:"promo_code,omitempty"`
	PromoMessage string `json:"promo_message,omitempty"`
}

// ShippingInfo carries the validated checkout form fields.
type ShippingInfo struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// PaymentInfo stores the mock payment record; only the card's last
// four digits are ever retained.
type PaymentInfo struct {
	CardType string `json:"card_type"`
	Last4    string `json:"last4"`
}

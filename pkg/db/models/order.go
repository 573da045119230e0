package models

import (
	"time"

	"github.com/premiumstore/premiumstore-backend/pkg/types"
)

// Order records a completed mock checkout.
type Order struct {
	ID           string             `gorm:"column:id;primaryKey" json:"id"`
	SessionID    string             `gorm:"column:session_id;not null;index:orders_session_id_idx" json:"-"`
	Items        []types.OrderItem  `gorm:"column:items;serializer:json" json:"items"`
	Totals       types.OrderTotals  `gorm:"column:totals;serializer:json" json:"totals"`
	ShippingInfo types.ShippingInfo `gorm:"column:shipping_info;serializer:json" json:"shipping_info"`
	PaymentInfo  types.PaymentInfo  `gorm:"column:payment_info;serializer:json" json:"payment_info"`
	UserEmail    *string            `gorm:"column:user_email" json:"user_email,omitempty"`
	PlacedAt     time.Time          `gorm:"column:placed_at;not null" json:"placed_at"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName pins the orders table.
func (Order) TableName() string {
	return "orders"
}

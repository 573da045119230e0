package models

import "time"

// StoreSnapshot is one durable key-value blob: the full serialized
// state of a session-scoped store (cart, wishlist, theme) at a point
// in time. Snapshots are replaced wholesale, never patched.
type StoreSnapshot struct {
	SessionID string    `gorm:"column:session_id;primaryKey"`
	Key       string    `gorm:"column:key;primaryKey"`
	Payload   string    `gorm:"column:payload;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the snapshot table.
func (StoreSnapshot) TableName() string {
	return "store_snapshots"
}

// Package orders runs the mock checkout and keeps the order history.
package orders

import (
	"context"
	"errors"

	"github.com/premiumstore/premiumstore-backend/pkg/db/models"
	pkgerrors "github.com/premiumstore/premiumstore-backend/pkg/errors"
	"gorm.io/gorm"
)

// Repository encapsulates order persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an order repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert stores a completed order.
func (r *Repository) Insert(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "insert order")
	}
	return nil
}

// ListBySession returns the session's orders, newest first.
func (r *Repository) ListBySession(ctx context.Context, sessionID string) ([]models.Order, error) {
	var records []models.Order
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("placed_at DESC").
		Find(&records).
		Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list orders")
	}
	return records, nil
}

// FindByID loads one order scoped to its session.
func (r *Repository) FindByID(ctx context.Context, sessionID, orderID string) (*models.Order, error) {
	var record models.Order
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND id = ?", sessionID, orderID).
		First(&record).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load order")
	}
	return &record, nil
}

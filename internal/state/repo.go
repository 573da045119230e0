package state

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/premiumstore/premiumstore-backend/pkg/db/models"
	pkgerrors "github.com/premiumstore/premiumstore-backend/pkg/errors"
	"github.com/premiumstore/premiumstore-backend/pkg/metrics"
	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	saveMaxRetries   = 3
	saveRetryBackoff = 50 * time.Millisecond
)

// Repository implements SnapshotStore on the store_snapshots table.
// Saves replace the whole row and are retried on transient failures.
type Repository struct {
	db      *gorm.DB
	metrics *metrics.StoreMetrics
}

// NewRepository binds a snapshot repository to the provided gorm DB.
// Metrics may be nil.
func NewRepository(db *gorm.DB, storeMetrics *metrics.StoreMetrics) *Repository {
	return &Repository{db: db, metrics: storeMetrics}
}

// Save upserts the snapshot for a session/key pair.
func (r *Repository) Save(ctx context.Context, sessionID, key string, payload []byte) error {
	if err := validateSnapshotKey(sessionID, key); err != nil {
		return err
	}

	record := models.StoreSnapshot{
		SessionID: sessionID,
		Key:       key,
		Payload:   string(payload),
	}

	started := time.Now()
	backoff := retry.WithMaxRetries(saveMaxRetries, retry.NewFibonacci(saveRetryBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		result := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "session_id"}, {Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
			}).
			Create(&record)
		if result.Error != nil {
			return retry.RetryableError(result.Error)
		}
		return nil
	})

	r.metrics.ObserveDuration("snapshot_save", time.Since(started))
	if err != nil {
		r.metrics.IncFailure("snapshot_save")
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "save snapshot")
	}
	r.metrics.IncSuccess("snapshot_save")
	return nil
}

// Load reads the snapshot payload, or CodeNotFound when absent.
func (r *Repository) Load(ctx context.Context, sessionID, key string) ([]byte, error) {
	if err := validateSnapshotKey(sessionID, key); err != nil {
		return nil, err
	}

	var record models.StoreSnapshot
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND key = ?", sessionID, key).
		First(&record).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "snapshot not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load snapshot")
	}
	return []byte(record.Payload), nil
}

// Delete removes the snapshot if it exists. Absent rows are a no-op.
func (r *Repository) Delete(ctx context.Context, sessionID, key string) error {
	if err := validateSnapshotKey(sessionID, key); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).
		Where("session_id = ? AND key = ?", sessionID, key).
		Delete(&models.StoreSnapshot{}).
		Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "delete snapshot")
	}
	return nil
}

func validateSnapshotKey(sessionID, key string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if strings.TrimSpace(key) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "snapshot key is required")
	}
	return nil
}

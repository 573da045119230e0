// Package wishlist keeps the per-session list of liked products: an
// ordered set of product ids, deduplicated, persisted wholesale.
package wishlist

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/premiumstore/premiumstore-backend/internal/catalog"
	"github.com/premiumstore/premiumstore-backend/internal/state"
	pkgerrors "github.com/premiumstore/premiumstore-backend/pkg/errors"
	"github.com/premiumstore/premiumstore-backend/pkg/logger"
	"github.com/premiumstore/premiumstore-backend/pkg/pubsub"
)

// View is the resolved wishlist: ids in insertion order plus the
// catalog entries that still exist for them.
type View struct {
	ProductIDs []int              `json:"product_ids"`
	Products   []*catalog.Product `json:"products"`
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	Catalog   *catalog.Store
	Snapshots state.SnapshotStore
	Bus       pubsub.Publisher
	Logger    *logger.Logger
}

// Service exposes business rules for the wishlist.
type Service interface {
	List(ctx context.Context, sessionID string) (View, error)
	Add(ctx context.Context, sessionID string, productID int) (View, error)
	Remove(ctx context.Context, sessionID string, productID int) (View, error)
	Toggle(ctx context.Context, sessionID string, productID int) (View, bool, error)
	Contains(ctx context.Context, sessionID string, productID int) (bool, error)
}

type service struct {
	catalog   *catalog.Store
	snapshots state.SnapshotStore
	bus       pubsub.Publisher
	logg      *logger.Logger

	mu       sync.Mutex
	sessions map[string]*sync.Mutex
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog store is required")
	}
	if params.Snapshots == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "snapshot store is required")
	}
	if params.Bus == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event bus is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		catalog:   params.Catalog,
		snapshots: params.Snapshots,
		bus:       params.Bus,
		logg:      params.Logger,
		sessions:  make(map[string]*sync.Mutex),
	}, nil
}

func (s *service) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.sessions[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.sessions[sessionID] = lock
	}
	return lock
}

// List returns the wishlist in insertion order.
func (s *service) List(ctx context.Context, sessionID string) (View, error) {
	if err := requireSession(sessionID); err != nil {
		return View{}, err
	}
	ids, err := s.load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	return s.resolve(ids), nil
}

// Add puts the product on the wishlist. Adding a duplicate keeps the
// original position.
func (s *service) Add(ctx context.Context, sessionID string, productID int) (View, error) {
	if err := requireSession(sessionID); err != nil {
		return View{}, err
	}
	if _, err := s.catalog.FindByID(productID); err != nil {
		return View{}, err
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	ids, err := s.load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	if containsID(ids, productID) {
		return s.resolve(ids), nil
	}
	ids = append(ids, productID)
	if err := s.save(ctx, sessionID, ids); err != nil {
		return View{}, err
	}
	s.publish(ctx, sessionID, ids)
	return s.resolve(ids), nil
}

// Remove drops the product. Removing an absent id is a no-op.
func (s *service) Remove(ctx context.Context, sessionID string, productID int) (View, error) {
	if err := requireSession(sessionID); err != nil {
		return View{}, err
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	ids, err := s.load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	filtered := ids[:0]
	for _, id := range ids {
		if id != productID {
			filtered = append(filtered, id)
		}
	}
	if len(filtered) == len(ids) {
		return s.resolve(ids), nil
	}
	if err := s.save(ctx, sessionID, filtered); err != nil {
		return View{}, err
	}
	s.publish(ctx, sessionID, filtered)
	return s.resolve(filtered), nil
}

// Toggle adds the product when absent and removes it when present.
// The boolean reports whether the product is on the list afterwards.
func (s *service) Toggle(ctx context.Context, sessionID string, productID int) (View, bool, error) {
	if err := requireSession(sessionID); err != nil {
		return View{}, false, err
	}
	if _, err := s.catalog.FindByID(productID); err != nil {
		return View{}, false, err
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	ids, err := s.load(ctx, sessionID)
	if err != nil {
		return View{}, false, err
	}

	added := false
	if containsID(ids, productID) {
		filtered := ids[:0]
		for _, id := range ids {
			if id != productID {
				filtered = append(filtered, id)
			}
		}
		ids = filtered
	} else {
		ids = append(ids, productID)
		added = true
	}

	if err := s.save(ctx, sessionID, ids); err != nil {
		return View{}, false, err
	}
	s.publish(ctx, sessionID, ids)
	return s.resolve(ids), added, nil
}

// Contains reports whether the product is on the wishlist.
func (s *service) Contains(ctx context.Context, sessionID string, productID int) (bool, error) {
	if err := requireSession(sessionID); err != nil {
		return false, err
	}
	ids, err := s.load(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return containsID(ids, productID), nil
}

func (s *service) load(ctx context.Context, sessionID string) ([]int, error) {
	payload, err := s.snapshots.Load(ctx, sessionID, state.KeyWishlist)
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var ids []int
	if err := json.Unmarshal(payload, &ids); err != nil {
		s.logg.Error(s.logg.WithSessionID(ctx, sessionID), "corrupt wishlist snapshot, resetting", err)
		return nil, nil
	}
	return dedupe(ids), nil
}

func (s *service) save(ctx context.Context, sessionID string, ids []int) error {
	if ids == nil {
		ids = []int{}
	}
	payload, err := json.Marshal(ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode wishlist")
	}
	return s.snapshots.Save(ctx, sessionID, state.KeyWishlist, payload)
}

func (s *service) publish(ctx context.Context, sessionID string, ids []int) {
	s.bus.Publish(ctx, pubsub.Event{
		Topic:      pubsub.TopicWishlistChanged,
		SessionID:  sessionID,
		Payload:    map[string]any{"product_ids": ids, "count": len(ids)},
		OccurredAt: time.Now().UTC(),
	})
}

// resolve maps ids to catalog entries, skipping products that have
// disappeared from the catalog since they were liked.
func (s *service) resolve(ids []int) View {
	view := View{ProductIDs: ids, Products: make([]*catalog.Product, 0, len(ids))}
	if view.ProductIDs == nil {
		view.ProductIDs = []int{}
	}
	for _, id := range ids {
		product, err := s.catalog.FindByID(id)
		if err != nil {
			continue
		}
		view.Products = append(view.Products, product)
	}
	return view
}

func containsID(ids []int, id int) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func dedupe(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return nil
}

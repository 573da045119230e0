package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/premiumstore/premiumstore-backend/internal/catalog"
	"github.com/premiumstore/premiumstore-backend/internal/state"
	"github.com/premiumstore/premiumstore-backend/pkg/config"
	pkgerrors "github.com/premiumstore/premiumstore-backend/pkg/errors"
	"github.com/premiumstore/premiumstore-backend/pkg/logger"
	"github.com/premiumstore/premiumstore-backend/pkg/metrics"
	"github.com/premiumstore/premiumstore-backend/pkg/pubsub"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// PromoKeeper persists the applied promo code for a session. The promo
// is session-scoped: it does not survive a new session the way the
// cart itself does.
type PromoKeeper interface {
	SavePromo(ctx context.Context, sessionID, code string) error
	LoadPromo(ctx context.Context, sessionID string) (string, error)
	ClearPromo(ctx context.Context, sessionID string) error
}

// Sleeper injects the simulated backend latency so tests run instantly.
type Sleeper func(ctx context.Context, d time.Duration)

// SleepFor waits for the duration or until the context is done.
func SleepFor(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// AddItemInput describes one add-to-cart request. A zero Quantity
// defaults to one; negative quantities are rejected. Options may be
// empty even for variant products; such adds land in their own
// unspecified-variant line (the quick-add path).
type AddItemInput struct {
	ProductID int
	Quantity  int
	Options   map[string]string
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Catalog   *catalog.Store
	Snapshots state.SnapshotStore
	Promos    PromoKeeper
	Bus       pubsub.Publisher
	Logger    *logger.Logger
	Metrics   *metrics.StoreMetrics
	Pricing   config.PricingConfig
	Sleep     Sleeper
}

// Service exposes the cart business rules.
type Service interface {
	Get(ctx context.Context, sessionID string) (View, error)
	AddItem(ctx context.Context, sessionID string, input AddItemInput) (View, error)
	UpdateQuantity(ctx context.Context, sessionID string, productID int, options map[string]string, rawQuantity string) (View, error)
	RemoveItem(ctx context.Context, sessionID string, productID int, options map[string]string) (View, error)
	Clear(ctx context.Context, sessionID string) error
	ApplyPromo(ctx context.Context, sessionID, code string) (View, error)
	RemovePromo(ctx context.Context, sessionID string) (View, error)
	Totals(ctx context.Context, sessionID string) (Totals, error)
}

type service struct {
	catalog   *catalog.Store
	snapshots state.SnapshotStore
	promos    PromoKeeper
	bus       pubsub.Publisher
	logg      *logger.Logger
	metrics   *metrics.StoreMetrics
	rules     PricingRules
	latency   time.Duration
	sleep     Sleeper

	mu       sync.Mutex
	sessions map[string]*sync.Mutex
}

// NewService builds a cart service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog store is required")
	}
	if params.Snapshots == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "snapshot store is required")
	}
	if params.Promos == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo keeper is required")
	}
	if params.Bus == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event bus is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	sleep := params.Sleep
	if sleep == nil {
		sleep = SleepFor
	}
	return &service{
		catalog:   params.Catalog,
		snapshots: params.Snapshots,
		promos:    params.Promos,
		bus:       params.Bus,
		logg:      params.Logger,
		metrics:   params.Metrics,
		rules:     RulesFromConfig(params.Pricing),
		latency:   params.Pricing.MockLatency,
		sleep:     sleep,
		sessions:  make(map[string]*sync.Mutex),
	}, nil
}

// RulesFromConfig converts the pricing configuration into decimals.
func RulesFromConfig(cfg config.PricingConfig) PricingRules {
	return PricingRules{
		TaxRate:               decimal.NewFromFloat(cfg.TaxRate),
		ShippingCost:          decimal.NewFromInt(cfg.ShippingCost),
		FreeShippingThreshold: decimal.NewFromInt(cfg.FreeShippingThreshold),
	}
}

// sessionLock serializes mutations within one session. Different
// sessions proceed in parallel.
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

// Get returns the cart with computed totals. A session with no saved
// cart gets an empty one.
func (s *service) Get(ctx context.Context, sessionID string) (View, error) {
	if err := requireSession(sessionID); err != nil {
		return View{}, err
	}
	cart, err := s.loadCart(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	return s.view(ctx, sessionID, cart, ""), nil
}

// Totals computes the pricing breakdown without the item detail.
func (s *service) Totals(ctx context.Context, sessionID string) (Totals, error) {
	view, err := s.Get(ctx, sessionID)
	if err != nil {
		return Totals{}, err
	}
	return view.Totals, nil
}

// AddItem puts a product in the cart. Stock is confirmed against the
// live catalog after the simulated latency, so a concurrent stock
// change is observed. Lines merge on identical product and options;
// quantities clamp to available stock with an advisory message, and
// adding to a line already at stock is a hard error.
func (s *service) AddItem(ctx context.Context, sessionID string, input AddItemInput) (View, error) {
	if err := requireSession(sessionID); err != nil {
		return View{}, err
	}
	if input.ProductID <= 0 {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	quantity := input.Quantity
	if quantity < 0 {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if quantity == 0 {
		quantity = 1
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	s.sleep(ctx, s.latency)
	if err := ctx.Err(); err != nil {
		return View{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "request cancelled")
	}

	product, err := s.catalog.FindByID(input.ProductID)
	if err != nil {
		return View{}, err
	}

	options, err := resolveOptions(product, input.Options)
	if err != nil {
		return View{}, err
	}

	cart, err := s.loadCart(ctx, sessionID)
	if err != nil {
		return View{}, err
	}

	if product.Stock == 0 {
		return View{}, pkgerrors.New(pkgerrors.CodeOutOfStock, fmt.Sprintf("%s is out of stock", product.Name)).
			WithDetails(map[string]any{"product_id": product.ID})
	}

	message := ""
	index := cart.findLine(product.ID, options)
	if index >= 0 {
		existing := cart.Items[index].Quantity
		if existing >= product.Stock {
			return View{}, pkgerrors.New(pkgerrors.CodeOutOfStock,
				fmt.Sprintf("you already have the maximum available quantity of %s", product.Name)).
				WithDetails(map[string]any{"product_id": product.ID, "in_cart": existing, "stock": product.Stock})
		}
		headroom := product.Stock - existing
		if quantity > headroom {
			quantity = headroom
			message = fmt.Sprintf("Only %d more of %s available; added %d.", headroom, product.Name, headroom)
		}
		cart.Items[index].Quantity = existing + quantity
	} else {
		if quantity > product.Stock {
			quantity = product.Stock
			message = fmt.Sprintf("Only %d of %s available; added %d.", product.Stock, product.Name, product.Stock)
		}
		image := ""
		if len(product.Images) > 0 {
			image = product.Images[0]
		}
		cart.Items = append(cart.Items, LineItem{
			ProductID: product.ID,
			Name:      product.Name,
			Image:     image,
			UnitPrice: product.Price,
			Quantity:  quantity,
			Options:   options,
		})
	}

	if err := s.saveCart(ctx, sessionID, &cart); err != nil {
		return View{}, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"product_id": product.ID,
		"quantity":   quantity,
		"options":    optionKeys(options),
	}), "cart item added")
	view := s.view(ctx, sessionID, cart, message)
	s.publishCart(ctx, sessionID, view)
	return view, nil
}

// UpdateQuantity sets the quantity on an existing line. Unparseable or
// negative input keeps the previous quantity, values above stock clamp
// with a message, and exactly zero removes the line.
func (s *service) UpdateQuantity(ctx context.Context, sessionID string, productID int, options map[string]string, rawQuantity string) (View, error) {
	if err := requireSession(sessionID); err != nil {
		return View{}, err
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	cart, err := s.loadCart(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	index := cart.findLine(productID, options)
	if index < 0 {
		return View{}, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}

	previous := cart.Items[index].Quantity
	quantity, err := strconv.Atoi(strings.TrimSpace(rawQuantity))
	if err != nil || quantity < 0 {
		quantity = previous
	}

	if quantity == 0 {
		cart.Items = append(cart.Items[:index], cart.Items[index+1:]...)
		if err := s.saveCart(ctx, sessionID, &cart); err != nil {
			return View{}, err
		}
		view := s.view(ctx, sessionID, cart, "")
		s.publishCart(ctx, sessionID, view)
		return view, nil
	}

	message := ""
	if product, err := s.catalog.FindByID(productID); err == nil && quantity > product.Stock {
		quantity = product.Stock
		message = fmt.Sprintf("Only %d of %s available.", product.Stock, product.Name)
	}
	cart.Items[index].Quantity = quantity

	if err := s.saveCart(ctx, sessionID, &cart); err != nil {
		return View{}, err
	}
	view := s.view(ctx, sessionID, cart, message)
	s.publishCart(ctx, sessionID, view)
	return view, nil
}

// RemoveItem drops a line. Removing an absent line is a no-op.
func (s *service) RemoveItem(ctx context.Context, sessionID string, productID int, options map[string]string) (View, error) {
	if err := requireSession(sessionID); err != nil {
		return View{}, err
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	cart, err := s.loadCart(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	index := cart.findLine(productID, options)
	if index < 0 {
		return s.view(ctx, sessionID, cart, ""), nil
	}

	cart.Items = append(cart.Items[:index], cart.Items[index+1:]...)
	if err := s.saveCart(ctx, sessionID, &cart); err != nil {
		return View{}, err
	}
	view := s.view(ctx, sessionID, cart, "")
	s.publishCart(ctx, sessionID, view)
	return view, nil
}

// Clear wipes the cart and any applied promo. Used after checkout.
func (s *service) Clear(ctx context.Context, sessionID string) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	err := multierr.Combine(
		s.snapshots.Delete(ctx, sessionID, state.KeyCart),
		s.promos.ClearPromo(ctx, sessionID),
	)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "clear cart")
	}
	view := s.view(ctx, sessionID, Cart{}, "")
	s.publishCart(ctx, sessionID, view)
	return nil
}

// ApplyPromo validates and stores a promo code. An unknown code clears
// any previously applied promo before failing.
func (s *service) ApplyPromo(ctx context.Context, sessionID, code string) (View, error) {
	if err := requireSession(sessionID); err != nil {
		return View{}, err
	}
	normalized := NormalizePromoCode(code)
	if normalized == "" {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "promo code is required")
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	promo, ok := LookupPromo(normalized)
	if !ok {
		if err := s.promos.ClearPromo(ctx, sessionID); err != nil {
			s.logg.Error(ctx, "clear promo after invalid code", err)
		}
		s.publishPromo(ctx, sessionID, "")
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid promo code").
			WithDetails(map[string]any{"code": normalized})
	}

	if err := s.promos.SavePromo(ctx, sessionID, promo.Code); err != nil {
		return View{}, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "save promo")
	}

	cart, err := s.loadCart(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	view := s.view(ctx, sessionID, cart, promo.Message())
	s.publishPromo(ctx, sessionID, promo.Code)
	return view, nil
}

// RemovePromo clears the applied promo, if any.
func (s *service) RemovePromo(ctx context.Context, sessionID string) (View, error) {
	if err := requireSession(sessionID); err != nil {
		return View{}, err
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.promos.ClearPromo(ctx, sessionID); err != nil {
		return View{}, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "clear promo")
	}
	cart, err := s.loadCart(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	view := s.view(ctx, sessionID, cart, "")
	s.publishPromo(ctx, sessionID, "")
	return view, nil
}

func (s *service) loadCart(ctx context.Context, sessionID string) (Cart, error) {
	payload, err := s.snapshots.Load(ctx, sessionID, state.KeyCart)
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
			return Cart{}, nil
		}
		return Cart{}, err
	}
	var cart Cart
	if err := json.Unmarshal(payload, &cart); err != nil {
		// A corrupt snapshot is unrecoverable; start the session fresh
		// rather than wedging every cart operation.
		s.logg.Error(s.logg.WithSessionID(ctx, sessionID), "corrupt cart snapshot, resetting", err)
		return Cart{}, nil
	}
	return cart, nil
}

func (s *service) saveCart(ctx context.Context, sessionID string, cart *Cart) error {
	cart.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(cart)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	return s.snapshots.Save(ctx, sessionID, state.KeyCart, payload)
}

// loadPromo resolves the stored code against the promo table. A stored
// code that no longer resolves is treated as no promo and logged.
func (s *service) loadPromo(ctx context.Context, sessionID string) *Promo {
	code, err := s.promos.LoadPromo(ctx, sessionID)
	if err != nil {
		if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
			s.logg.Error(s.logg.WithSessionID(ctx, sessionID), "load applied promo", err)
		}
		return nil
	}
	if code == "" {
		return nil
	}
	promo, ok := LookupPromo(code)
	if !ok {
		s.logg.Warn(s.logg.WithField(ctx, "code", code), "stored promo code no longer valid, ignoring")
		return nil
	}
	return &promo
}

func (s *service) view(ctx context.Context, sessionID string, cart Cart, message string) View {
	if cart.Items == nil {
		cart.Items = []LineItem{}
	}
	promo := s.loadPromo(ctx, sessionID)
	return View{
		Cart:    cart,
		Totals:  CalculateTotals(cart.Items, promo, s.rules),
		Message: message,
	}
}

func (s *service) publishCart(ctx context.Context, sessionID string, view View) {
	s.metrics.IncSuccess("cart_mutation")
	s.bus.Publish(ctx, pubsub.Event{
		Topic:      pubsub.TopicCartChanged,
		SessionID:  sessionID,
		Payload:    view.Totals,
		OccurredAt: time.Now().UTC(),
	})
}

func (s *service) publishPromo(ctx context.Context, sessionID, code string) {
	s.bus.Publish(ctx, pubsub.Event{
		Topic:      pubsub.TopicPromoChanged,
		SessionID:  sessionID,
		Payload:    map[string]string{"code": code},
		OccurredAt: time.Now().UTC(),
	})
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return nil
}

// resolveOptions validates a variant selection. An empty selection is
// allowed even for variant products and forms its own line, distinct
// from every explicit size/color combination (the quick-add path). A
// partial selection is rejected: a caller that picks one dimension
// must pick them all.
func resolveOptions(product *catalog.Product, requested map[string]string) (map[string]string, error) {
	if !product.HasVariants() {
		return nil, nil
	}
	if len(requested) == 0 {
		return nil, nil
	}
	options := product.Options

	resolved := map[string]string{}
	for key, value := range requested {
		switch key {
		case "size":
			if !containsString(options.Sizes, value) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("size %q not offered for %s", value, product.Name))
			}
		case "color":
			if !containsString(options.Colors, value) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("color %q not offered for %s", value, product.Name))
			}
		default:
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown option %q", key))
		}
		resolved[key] = value
	}
	if len(options.Sizes) > 0 {
		if _, ok := resolved["size"]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("size selection required for %s", product.Name))
		}
	}
	if len(options.Colors) > 0 {
		if _, ok := resolved["color"]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("color selection required for %s", product.Name))
		}
	}
	return resolved, nil
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

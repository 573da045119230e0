package cart

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/premiumstore/premiumstore-backend/internal/catalog"
	"github.com/premiumstore/premiumstore-backend/internal/state"
	"github.com/premiumstore/premiumstore-backend/pkg/config"
	pkgerrors "github.com/premiumstore/premiumstore-backend/pkg/errors"
	"github.com/premiumstore/premiumstore-backend/pkg/logger"
	"github.com/premiumstore/premiumstore-backend/pkg/pubsub"
	"github.com/shopspring/decimal"
)

type memoryPromoKeeper struct {
	mu    sync.Mutex
	codes map[string]string
}

func newMemoryPromoKeeper() *memoryPromoKeeper {
	return &memoryPromoKeeper{codes: map[string]string{}}
}

func (m *memoryPromoKeeper) SavePromo(_ context.Context, sessionID, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[sessionID] = code
	return nil
}

func (m *memoryPromoKeeper) LoadPromo(_ context.Context, sessionID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.codes[sessionID]
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "no promo applied")
	}
	return code, nil
}

func (m *memoryPromoKeeper) ClearPromo(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.codes, sessionID)
	return nil
}

func testCatalog() *catalog.Store {
	return catalog.NewStore([]*catalog.Product{
		{ID: 1, Name: "Portable Bluetooth Speaker", Category: "Electronics", Price: 500, Stock: 10, Images: []string{"/images/product-1.jpg"}},
		{ID: 2, Name: "Mechanical RGB Keyboard", Category: "Electronics", Price: 1000, Stock: 3},
		{ID: 3, Name: "Classic Denim Jacket", Category: "Men's Clothing", Price: 800, Stock: 5,
			Options: &catalog.Options{Sizes: []string{"M", "L"}, Colors: []string{"Blue", "Black"}}},
		{ID: 4, Name: "256GB Flash Drive", Category: "Electronics", Price: 300, Stock: 0},
	})
}

type cartFixture struct {
	svc    Service
	bus    *pubsub.Bus
	promos *memoryPromoKeeper
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "cart-test", Output: io.Discard})
	bus := pubsub.NewBus(logg)
	promos := newMemoryPromoKeeper()

	svc, err := NewService(ServiceParams{
		Catalog:   testCatalog(),
		Snapshots: state.NewMemory(),
		Promos:    promos,
		Bus:       bus,
		Logger:    logg,
		Pricing: config.PricingConfig{
			TaxRate:               0.18,
			ShippingCost:          60,
			FreeShippingThreshold: 999,
			MockLatency:           0,
		},
		Sleep: func(context.Context, time.Duration) {},
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &cartFixture{svc: svc, bus: bus, promos: promos}
}

func TestAddItemNewLine(t *testing.T) {
	t.Parallel()

	f := newCartFixture(t)
	ctx := context.Background()

	view, err := f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 1, Quantity: 2})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if len(view.Cart.Items) != 1 {
		t.Fatalf("expected one line, got %d", len(view.Cart.Items))
	}
	line := view.Cart.Items[0]
	if line.Quantity != 2 || line.UnitPrice != 500 || line.Name != "Portable Bluetooth Speaker" {
		t.Fatalf("unexpected line: %+v", line)
	}
	if !view.Totals.Subtotal.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("subtotal = %s, want 1000", view.Totals.Subtotal)
	}
	if !view.Totals.Shipping.IsZero() {
		t.Fatalf("subtotal above threshold should ship free, got %s", view.Totals.Shipping)
	}
}

func TestAddItemMergesSameOptions(t *testing.T) {
	t.Parallel()

	f := newCartFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 1, Quantity: 1}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	view, err := f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 1, Quantity: 3})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if len(view.Cart.Items) != 1 {
		t.Fatalf("identical lines should merge, got %d lines", len(view.Cart.Items))
	}
	if view.Cart.Items[0].Quantity != 4 {
		t.Fatalf("merged quantity = %d, want 4", view.Cart.Items[0].Quantity)
	}
}

func TestAddItemDistinctOptionsAreSeparateLines(t *testing.T) {
	t.Parallel()

	f := newCartFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 3, Options: map[string]string{"size": "M", "color": "Blue"}}); err != nil {
		t.Fatalf("add M/Blue: %v", err)
	}
	view, err := f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 3, Options: map[string]string{"size": "L", "color": "Blue"}})
	if err != nil {
		t.Fatalf("add L/Blue: %v", err)
	}
	if len(view.Cart.Items) != 2 {
		t.Fatalf("different sizes must not merge, got %d lines", len(view.Cart.Items))
	}
}

func TestAddItemQuickAddWithoutOptions(t *testing.T) {
	t.Parallel()

	f := newCartFixture(t)
	ctx := context.Background()

	// Quick add carries no selection; the line is its own bucket.
	view, err := f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 3})
	if err != nil {
		t.Fatalf("quick add: %v", err)
	}
	if len(view.Cart.Items[0].Options) != 0 {
		t.Fatalf("quick add should carry no options, got %v", view.Cart.Items[0].Options)
	}

	// A second quick add merges into the unspecified line.
	view, err = f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 3})
	if err != nil {
		t.Fatalf("second quick add: %v", err)
	}
	if len(view.Cart.Items) != 1 || view.Cart.Items[0].Quantity != 2 {
		t.Fatalf("quick adds should merge, got %+v", view.Cart.Items)
	}

	// An explicit selection never merges with the unspecified line.
	view, err = f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 3, Options: map[string]string{"size": "M", "color": "Blue"}})
	if err != nil {
		t.Fatalf("explicit add: %v", err)
	}
	if len(view.Cart.Items) != 2 {
		t.Fatalf("explicit selection must stay a separate line, got %+v", view.Cart.Items)
	}
}

func TestAddItemRejectsBadOptions(t *testing.T) {
	t.Parallel()

	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 3, Options: map[string]string{"size": "XXL", "color": "Blue"}})
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for unoffered size, got %v", err)
	}

	// Picking one dimension but not the other is incomplete.
	_, err = f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 3, Options: map[string]string{"size": "M"}})
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for partial selection, got %v", err)
	}
}

func TestAddItemRejectsNegativeQuantity(t *testing.T) {
	t.Parallel()

	f := newCartFixture(t)

	_, err := f.svc.AddItem(context.Background(), "sess-1", AddItemInput{ProductID: 1, Quantity: -3})
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for negative quantity, got %v", err)
	}
}

func TestAddItemClampsToStock(t *testing.T) {
	t.Parallel()

	f := newCartFixture(t)
	ctx := context.Background()

	view, err := f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 2, Quantity: 5})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if view.Cart.Items[0].Quantity != 3 {
		t.Fatalf("quantity should clamp to stock 3, got %d", view.Cart.Items[0].Quantity)
	}
	if view.Message == "" {
		t.Fatal("clamped add should carry an advisory message")
	}
}

func TestAddItemAtStockIsHardError(t *testing.T) {
	t.Parallel()

	f := newCartFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 2, Quantity: 3}); err != nil {
		t.Fatalf("fill to stock: %v", err)
	}
	_, err := f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 2, Quantity: 1})
	if !pkgerrors.Is(err, pkgerrors.CodeOutOfStock) {
		t.Fatalf("expected out-of-stock error, got %v", err)
	}
}

func TestAddItemOutOfStockProduct(t *testing.T) {
	t.Parallel()

	f := newCartFixture(t)

	_, err := f.svc.AddItem(context.Background(), "sess-1", AddItemInput{ProductID: 4})
	if !pkgerrors.Is(err, pkgerrors.CodeOutOfStock) {
		t.Fatalf("expected out-of-stock error, got %v", err)
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	t.Parallel()

	f := newCartFixture(t)

	_, err := f.svc.AddItem(context.Background(), "sess-1", AddItemInput{ProductID: 999})
	if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestUpdateQuantity(t *testing.T) {
	t.Parallel()

	f := newCartFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 1, Quantity: 2}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	view, err := f.svc.UpdateQuantity(ctx, "sess-1", 1, nil, "5")
	if err != nil {
		t.Fatalf("UpdateQuantity: %v", err)
	}
	if view.Cart.Items[0].Quantity != 5 {
		t.Fatalf("quantity = %d, want 5", view.Cart.Items[0].Quantity)
	}

	// Unparseable input keeps the previous quantity.
	view, err = f.svc.UpdateQuantity(ctx, "sess-1", 1, nil, "abc")
	if err != nil {
		t.Fatalf("UpdateQuantity invalid: %v", err)
	}
	if view.Cart.Items[0].Quantity != 5 {
		t.Fatalf("invalid input should keep quantity 5, got %d", view.Cart.Items[0].Quantity)
	}

	// Negative input keeps the previous quantity, same as unparseable.
	view, err = f.svc.UpdateQuantity(ctx, "sess-1", 1, nil, "-3")
	if err != nil {
		t.Fatalf("UpdateQuantity negative: %v", err)
	}
	if len(view.Cart.Items) != 1 || view.Cart.Items[0].Quantity != 5 {
		t.Fatalf("negative input should keep quantity 5, got %+v", view.Cart.Items)
	}

	// Above stock clamps with a message.
	view, err = f.svc.UpdateQuantity(ctx, "sess-1", 1, nil, "99")
	if err != nil {
		t.Fatalf("UpdateQuantity clamp: %v", err)
	}
	if view.Cart.Items[0].Quantity != 10 || view.Message == "" {
		t.Fatalf("expected clamp to 10 with message, got qty=%d msg=%q", view.Cart.Items[0].Quantity, view.Message)
	}

	// Zero removes the line.
	view, err = f.svc.UpdateQuantity(ctx, "sess-1", 1, nil, "0")
	if err != nil {
		t.Fatalf("UpdateQuantity zero: %v", err)
	}
	if len(view.Cart.Items) != 0 {
		t.Fatalf("zero quantity should remove the line, got %d lines", len(view.Cart.Items))
	}
}

func TestUpdateQuantityMissingLine(t *testing.T) {
	t.Parallel()

	f := newCartFixture(t)

	_, err := f.svc.UpdateQuantity(context.Background(), "sess-1", 1, nil, "2")
	if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestRemoveItemAbsentIsNoOp(t *testing.T) {
	t.Parallel()

	f := newCartFixture(t)

	view, err := f.svc.RemoveItem(context.Background(), "sess-1", 1, nil)
	if err != nil {
		t.Fatalf("RemoveItem on empty cart: %v", err)
	}
	if len(view.Cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(view.Cart.Items))
	}
}

func TestApplyPromoPercentage(t *testing.T) {
	t.Parallel()

	f := newCartFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 2, Quantity: 1}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	view, err := f.svc.ApplyPromo(ctx, "sess-1", "  save10 ")
	if err != nil {
		t.Fatalf("ApplyPromo: %v", err)
	}
	if view.Totals.PromoCode != "SAVE10" {
		t.Fatalf("promo code = %q, want SAVE10", view.Totals.PromoCode)
	}
	assertDecimal(t, "discount", view.Totals.Discount, "100")
	assertDecimal(t, "tax", view.Totals.Tax, "162")
	assertDecimal(t, "total", view.Totals.Total, "1062")
}

func TestApplyPromoUnknownClearsExisting(t *testing.T) {
	t.Parallel()

	f := newCartFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 1, Quantity: 1}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	if _, err := f.svc.ApplyPromo(ctx, "sess-1", "SAVE10"); err != nil {
		t.Fatalf("apply valid promo: %v", err)
	}

	_, err := f.svc.ApplyPromo(ctx, "sess-1", "BOGUS")
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	view, err := f.svc.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if view.Totals.PromoCode != "" {
		t.Fatalf("invalid code should clear the applied promo, still have %q", view.Totals.PromoCode)
	}
}

func TestRemovePromo(t *testing.T) {
	t.Parallel()

	f := newCartFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 1, Quantity: 1}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	if _, err := f.svc.ApplyPromo(ctx, "sess-1", "FREESHIP"); err != nil {
		t.Fatalf("apply: %v", err)
	}

	view, err := f.svc.RemovePromo(ctx, "sess-1")
	if err != nil {
		t.Fatalf("RemovePromo: %v", err)
	}
	if view.Totals.PromoCode != "" {
		t.Fatalf("promo should be cleared, got %q", view.Totals.PromoCode)
	}
	assertDecimal(t, "shipping", view.Totals.Shipping, "60")
}

func TestClearWipesCartAndPromo(t *testing.T) {
	t.Parallel()

	f := newCartFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 1, Quantity: 2}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	if _, err := f.svc.ApplyPromo(ctx, "sess-1", "SAVE10"); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if err := f.svc.Clear(ctx, "sess-1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	view, err := f.svc.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(view.Cart.Items) != 0 || view.Totals.PromoCode != "" {
		t.Fatalf("clear should wipe items and promo: %+v", view)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	t.Parallel()

	f := newCartFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "sess-a", AddItemInput{ProductID: 1, Quantity: 1}); err != nil {
		t.Fatalf("sess-a add: %v", err)
	}

	view, err := f.svc.Get(ctx, "sess-b")
	if err != nil {
		t.Fatalf("sess-b get: %v", err)
	}
	if len(view.Cart.Items) != 0 {
		t.Fatalf("sess-b should start empty, has %d lines", len(view.Cart.Items))
	}
}

func TestMutationsPublishEvents(t *testing.T) {
	t.Parallel()

	f := newCartFixture(t)
	ctx := context.Background()

	events, cancel := f.bus.Subscribe(pubsub.TopicCartChanged)
	defer cancel()

	if _, err := f.svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 1, Quantity: 1}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	select {
	case event := <-events:
		if event.Topic != pubsub.TopicCartChanged || event.SessionID != "sess-1" {
			t.Fatalf("unexpected event: %+v", event)
		}
		totals, ok := event.Payload.(Totals)
		if !ok {
			t.Fatalf("payload should be the post-mutation totals, got %T", event.Payload)
		}
		assertDecimal(t, "event subtotal", totals.Subtotal, "500")
	case <-time.After(time.Second):
		t.Fatal("no cart event published")
	}
}

package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/premiumstore/premiumstore-backend/internal/cart"
	"github.com/premiumstore/premiumstore-backend/internal/catalog"
	"github.com/premiumstore/premiumstore-backend/internal/orders"
	"github.com/premiumstore/premiumstore-backend/internal/session"
	"github.com/premiumstore/premiumstore-backend/internal/state"
	"github.com/premiumstore/premiumstore-backend/internal/wishlist"
	"github.com/premiumstore/premiumstore-backend/pkg/config"
	"github.com/premiumstore/premiumstore-backend/pkg/logger"
	"github.com/premiumstore/premiumstore-backend/pkg/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testRouterConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		Session: config.SessionConfig{
			Secret:     "router-test-secret",
			Issuer:     "premiumstore",
			TTL:        time.Hour,
			CookieName: "X-PS-Session",
		},
		Pricing: config.PricingConfig{
			TaxRate:               0.18,
			ShippingCost:          60,
			FreeShippingThreshold: 999,
		},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := testRouterConfig()
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	bus := pubsub.NewBus(logg)
	snapshots := state.NewMemory()
	store := catalog.NewStore([]*catalog.Product{
		{ID: 1, Name: "Wireless Gaming Mouse", Category: "Electronics", Price: 1500, Stock: 7, Rating: 4.4, Tags: []string{"Gaming"}},
		{ID: 2, Name: "Canvas Slip-Ons", Category: "Footwear", Price: 650, Stock: 3, Rating: 4.0},
	})

	sessionState, err := session.NewState(session.NewMemoryKV(), cfg.Session.TTL)
	require.NoError(t, err)

	cartSvc, err := cart.NewService(cart.ServiceParams{
		Catalog:   store,
		Snapshots: snapshots,
		Promos:    sessionState,
		Bus:       bus,
		Logger:    logg,
		Pricing:   cfg.Pricing,
		Sleep:     func(context.Context, time.Duration) {},
	})
	require.NoError(t, err)

	wishlistSvc, err := wishlist.NewService(wishlist.ServiceParams{
		Catalog:   store,
		Snapshots: snapshots,
		Bus:       bus,
		Logger:    logg,
	})
	require.NoError(t, err)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec(`
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL,
  items TEXT,
  totals TEXT,
  shipping_info TEXT,
  payment_info TEXT,
  user_email TEXT,
  placed_at DATETIME NOT NULL,
  created_at DATETIME
);`).Error)

	orderSvc, err := orders.NewService(orders.ServiceParams{
		Repo:   orders.NewRepository(db),
		Cart:   cartSvc,
		Users:  sessionState,
		Logger: logg,
		Sleep:  func(context.Context, time.Duration) {},
	})
	require.NoError(t, err)

	return NewRouter(RouterParams{
		Config:       cfg,
		Logger:       logg,
		Catalog:      store,
		CartService:  cartSvc,
		Wishlist:     wishlistSvc,
		Orders:       orderSvc,
		SessionState: sessionState,
		Snapshots:    snapshots,
		Bus:          bus,
		ReadyChecks:  map[string]func() error{"db": func() error { return nil }},
	})
}

func doJSON(t *testing.T, router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("X-PS-Session", token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func mintSession(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/v1/session", "", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var envelope struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.Token)
	return envelope.Data.Token
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health/live", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCatalogIsPublic(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/products", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/products/1", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/products/999", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// limit caps the page but count reports every match.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/products?limit=1", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":2`)
	assert.NotContains(t, rec.Body.String(), "Canvas Slip-Ons")

	rec = doJSON(t, router, http.MethodGet, "/api/v1/products?limit=9999", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartRequiresSession(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/cart", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/cart", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFullStorefrontFlow(t *testing.T) {
	router := newTestRouter(t)
	token := mintSession(t, router)

	// Empty cart to start.
	rec := doJSON(t, router, http.MethodGet, "/api/v1/cart", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	// Add a product.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/cart/items", token, `{"product_id":1,"quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var cartEnvelope struct {
		Data struct {
			Totals struct {
				Subtotal string `json:"subtotal"`
				Shipping string `json:"shipping"`
				Total    string `json:"total"`
			} `json:"totals"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cartEnvelope))
	assert.Equal(t, "3000", cartEnvelope.Data.Totals.Subtotal)
	assert.Equal(t, "0", cartEnvelope.Data.Totals.Shipping)

	// Apply a promo.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/cart/promo", token, `{"code":"SAVE10"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Unknown promo is a 400 and clears the previous one.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/cart/promo", token, `{"code":"NOPE"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Wishlist toggle.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/wishlist/toggle", token, `{"product_id":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// Checkout.
	checkoutBody := `{
		"shipping": {"name":"Priya Sharma","email":"priya@example.com","phone":"9876543210","address":"12 MG Road","city":"Mumbai","postal_code":"400001","country":"India"},
		"card_number": "4111111111111111",
		"card_expiry": "12/28",
		"card_cvv": "123"
	}`
	rec = doJSON(t, router, http.MethodPost, "/api/v1/checkout", token, checkoutBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var orderEnvelope struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orderEnvelope))
	assert.Regexp(t, `^PS-\d+$`, orderEnvelope.Data.ID)

	// Order history has the order; the cart is empty again.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/orders", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/cart", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)
}

func TestThemePreferencePersists(t *testing.T) {
	router := newTestRouter(t)
	token := mintSession(t, router)

	rec := doJSON(t, router, http.MethodPut, "/api/v1/preferences/theme", token, `{"theme":"dark"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/v1/preferences/theme", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"theme":"dark"`)

	rec = doJSON(t, router, http.MethodPut, "/api/v1/preferences/theme", token, `{"theme":"neon"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignInAndOut(t *testing.T) {
	router := newTestRouter(t)
	token := mintSession(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/me", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user":null`)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/me/sign-in", token, `{"name":"Priya","email":"priya@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/v1/me", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `priya@example.com`)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/me/sign-out", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/me", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user":null`)
}

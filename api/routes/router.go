package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/premiumstore/premiumstore-backend/api/controllers"
	"github.com/premiumstore/premiumstore-backend/api/middleware"
	"github.com/premiumstore/premiumstore-backend/internal/cart"
	"github.com/premiumstore/premiumstore-backend/internal/catalog"
	"github.com/premiumstore/premiumstore-backend/internal/orders"
	"github.com/premiumstore/premiumstore-backend/internal/session"
	"github.com/premiumstore/premiumstore-backend/internal/state"
	"github.com/premiumstore/premiumstore-backend/internal/wishlist"
	"github.com/premiumstore/premiumstore-backend/pkg/config"
	"github.com/premiumstore/premiumstore-backend/pkg/logger"
	"github.com/premiumstore/premiumstore-backend/pkg/pubsub"
)

// RouterParams groups everything the HTTP surface depends on.
type RouterParams struct {
	Config       *config.Config
	Logger       *logger.Logger
	Catalog      *catalog.Store
	CartService  cart.Service
	Wishlist     wishlist.Service
	Orders       orders.Service
	SessionState *session.State
	Snapshots    state.SnapshotStore
	Bus          *pubsub.Bus
	Registry     *prometheus.Registry
	ReadyChecks  map[string]func() error
}

// NewRouter assembles the storefront API.
func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger, p.ReadyChecks))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Session bootstrap and the read-only catalog need no token.
		r.Post("/session", controllers.SessionCreate(p.Config.Session, p.Logger))
		r.Get("/products", controllers.CatalogList(p.Catalog, p.Logger))
		r.Get("/products/categories", controllers.CatalogCategories(p.Catalog, p.Logger))
		r.Get("/products/deal", controllers.CatalogDeal(p.Catalog, p.Logger))
		r.Get("/products/{productId}", controllers.CatalogDetail(p.Catalog, p.Logger))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(p.Config.Session, p.Logger))

			r.Post("/products/{productId}/reviews", controllers.CatalogAddReview(p.Catalog, p.Logger))
			r.Post("/products/{productId}/questions", controllers.CatalogAddQuestion(p.Catalog, p.Logger))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(p.CartService, p.Logger))
				r.Post("/items", controllers.CartAddItem(p.CartService, p.Logger))
				r.Put("/items", controllers.CartUpdateItem(p.CartService, p.Logger))
				r.Delete("/items", controllers.CartRemoveItem(p.CartService, p.Logger))
				r.Post("/promo", controllers.CartApplyPromo(p.CartService, p.Logger))
				r.Delete("/promo", controllers.CartRemovePromo(p.CartService, p.Logger))
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.WishlistList(p.Wishlist, p.Logger))
				r.Post("/items", controllers.WishlistAdd(p.Wishlist, p.Logger))
				r.Delete("/items", controllers.WishlistRemove(p.Wishlist, p.Logger))
				r.Post("/toggle", controllers.WishlistToggle(p.Wishlist, p.Logger))
			})

			r.Post("/checkout", controllers.Checkout(p.Orders, p.Logger))
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrderList(p.Orders, p.Logger))
				r.Get("/{orderId}", controllers.OrderDetail(p.Orders, p.Logger))
			})

			r.Route("/me", func(r chi.Router) {
				r.Get("/", controllers.CurrentUser(p.SessionState, p.Logger))
				r.Post("/sign-in", controllers.SignIn(p.SessionState, p.Logger))
				r.Post("/sign-out", controllers.SignOut(p.SessionState, p.Logger))
			})

			r.Route("/preferences", func(r chi.Router) {
				r.Get("/theme", controllers.ThemeGet(p.Snapshots, p.Logger))
				r.Put("/theme", controllers.ThemeSet(p.Snapshots, p.Logger))
				r.Get("/selected-product", controllers.SelectedProduct(p.SessionState, p.Logger))
				r.Put("/selected-product", controllers.SelectProduct(p.SessionState, p.Logger))
			})

			r.Get("/events", controllers.Events(p.Bus, p.Logger))
		})
	})

	return r
}

package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/premiumstore/premiumstore-backend/api/routes"
	"github.com/premiumstore/premiumstore-backend/internal/cart"
	"github.com/premiumstore/premiumstore-backend/internal/catalog"
	"github.com/premiumstore/premiumstore-backend/internal/orders"
	"github.com/premiumstore/premiumstore-backend/internal/session"
	"github.com/premiumstore/premiumstore-backend/internal/state"
	"github.com/premiumstore/premiumstore-backend/internal/wishlist"
	"github.com/premiumstore/premiumstore-backend/pkg/config"
	"github.com/premiumstore/premiumstore-backend/pkg/db"
	"github.com/premiumstore/premiumstore-backend/pkg/logger"
	"github.com/premiumstore/premiumstore-backend/pkg/metrics"
	"github.com/premiumstore/premiumstore-backend/pkg/migrate"
	"github.com/premiumstore/premiumstore-backend/pkg/pubsub"
	"github.com/premiumstore/premiumstore-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	storeMetrics := metrics.NewStoreMetrics(registry)

	bus := pubsub.NewBus(logg)

	catalogStore := catalog.NewStore(catalog.Generate(cfg.Catalog.Seed))
	snapshots := state.NewRepository(dbClient.DB(), storeMetrics)

	sessionState, err := session.NewState(redisClient, cfg.Session.TTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create session state", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cart.ServiceParams{
		Catalog:   catalogStore,
		Snapshots: snapshots,
		Promos:    sessionState,
		Bus:       bus,
		Logger:    logg,
		Metrics:   storeMetrics,
		Pricing:   cfg.Pricing,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		Catalog:   catalogStore,
		Snapshots: snapshots,
		Bus:       bus,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:   orders.NewRepository(dbClient.DB()),
		Cart:   cartService,
		Users:  sessionState,
		Logger: logg,
		Delay:  cfg.Pricing.MockLatency,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"products": catalogStore.Len(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:       cfg,
			Logger:       logg,
			Catalog:      catalogStore,
			CartService:  cartService,
			Wishlist:     wishlistService,
			Orders:       orderService,
			SessionState: sessionState,
			Snapshots:    snapshots,
			Bus:          bus,
			Registry:     registry,
			ReadyChecks: map[string]func() error{
				"db":    func() error { return dbClient.Ping(context.Background()) },
				"redis": func() error { return redisClient.Ping(context.Background()) },
			},
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

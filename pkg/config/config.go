package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Session      SessionConfig
	Catalog      CatalogConfig
	Pricing      PricingConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PREMIUMSTORE_APP_ENV" default:"dev"`
	Port         string `envconfig:"PREMIUMSTORE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"PREMIUMSTORE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PREMIUMSTORE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	Driver string `envconfig:"PREMIUMSTORE_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"PREMIUMSTORE_DB_DSN" default:"file:premiumstore.db?_fk=1"`

	MaxOpenConns    int           `envconfig:"PREMIUMSTORE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PREMIUMSTORE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PREMIUMSTORE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PREMIUMSTORE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db *DBConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(db.Driver)) {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported db driver %q", db.Driver)
	}
	if db.DSN == "" {
		return fmt.Errorf("database DSN is required")
	}
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"PREMIUMSTORE_REDIS_URL"`
	Address      string        `envconfig:"PREMIUMSTORE_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"PREMIUMSTORE_REDIS_PASSWORD"`
	DB           int           `envconfig:"PREMIUMSTORE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PREMIUMSTORE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PREMIUMSTORE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PREMIUMSTORE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PREMIUMSTORE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PREMIUMSTORE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SessionConfig controls session tokens and the lifetime of
// session-scoped state (applied promo, selected product, mock user).
type SessionConfig struct {
	Secret     string        `envconfig:"PREMIUMSTORE_SESSION_SECRET" default:"dev-session-secret"`
	Issuer     string        `envconfig:"PREMIUMSTORE_SESSION_ISSUER" default:"premiumstore"`
	TTL        time.Duration `envconfig:"PREMIUMSTORE_SESSION_TTL" default:"12h"`
	CookieName string        `envconfig:"PREMIUMSTORE_SESSION_HEADER" default:"X-PS-Session"`
}

type CatalogConfig struct {
	Seed int64 `envconfig:"PREMIUMSTORE_CATALOG_SEED" default:"0"`
}

// PricingConfig carries the storefront pricing constants. Defaults
// mirror the demo storefront: 18% tax, flat 60 shipping, free shipping
// above 999, and a simulated 150ms add-to-cart latency.
type PricingConfig struct {
	TaxRate               float64       `envconfig:"PREMIUMSTORE_TAX_RATE" default:"0.18"`
	ShippingCost          int64         `envconfig:"PREMIUMSTORE_SHIPPING_COST" default:"60"`
	FreeShippingThreshold int64         `envconfig:"PREMIUMSTORE_FREE_SHIPPING_THRESHOLD" default:"999"`
	MockLatency           time.Duration `envconfig:"PREMIUMSTORE_MOCK_LATENCY" default:"150ms"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PREMIUMSTORE_AUTO_MIGRATE" default:"true"`
}

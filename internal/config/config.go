// Package config loads the order workflow service configuration from the
// environment.
package config

import (
	"fmt"
	"net/url"

	pkgconfig "github.com/hivx/My-store/pkg/config"
)

// Config holds all configuration for the order workflow service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"ORDERFLOW_HTTP_PORT" envDefault:"8010"`

	// PostgreSQL (orders and invoices)
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"mystore"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"mystore_secret"`
	PostgresDB   string `env:"ORDERFLOW_DB_NAME" envDefault:"orderflow_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Redis (session carts)
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Gateways
	InventoryGatewayURL string `env:"INVENTORY_GATEWAY_URL" envDefault:"http://localhost:8007"`
	PaymentGatewayURL   string `env:"PAYMENT_GATEWAY_URL" envDefault:"http://localhost:8005"`
	PaymentGatewayKey   string `env:"PAYMENT_GATEWAY_API_KEY" envDefault:""`

	// UseSandboxPayment swaps the HTTP payment gateway for the in-process
	// sandbox. Development and CI only.
	UseSandboxPayment bool `env:"USE_SANDBOX_PAYMENT" envDefault:"false"`

	// Pricing
	Currency   string `env:"CURRENCY" envDefault:"VND"`
	VATPercent int64  `env:"VAT_PERCENT" envDefault:"10"`

	// Shipping fee rules (smallest currency unit)
	InnerCityProvinces    []string `env:"SHIPPING_INNER_CITY_PROVINCES" envDefault:"hanoi,ho chi minh" envSeparator:","`
	InnerCityBaseFee      int64    `env:"SHIPPING_INNER_CITY_BASE_FEE" envDefault:"22000"`
	OuterBaseFee          int64    `env:"SHIPPING_OUTER_BASE_FEE" envDefault:"30000"`
	PerItemFee            int64    `env:"SHIPPING_PER_ITEM_FEE" envDefault:"2500"`
	FreeShippingThreshold int64    `env:"SHIPPING_FREE_THRESHOLD" envDefault:"100000"`

	// Circuit breaker settings for gateway calls
	CBMaxRequests  uint32  `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBInterval     int     `env:"CB_INTERVAL_SECONDS" envDefault:"60"`
	CBTimeout      int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30"`
	CBFailureRatio float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// Per-call gateway timeouts (seconds). Each external call gets its own
	// context.WithTimeout so a slow gateway cannot block an advance forever.
	InventoryTimeout int `env:"INVENTORY_TIMEOUT_SECONDS" envDefault:"5"`
	PaymentTimeout   int `env:"PAYMENT_TIMEOUT_SECONDS" envDefault:"10"`

	// Rate limiting
	RateLimitRPS   int `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST" envDefault:"100"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load orderflow config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}
	if c.PostgresUser == "" {
		return fmt.Errorf("POSTGRES_USER is required")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	if c.VATPercent < 0 || c.VATPercent > 100 {
		return fmt.Errorf("VAT_PERCENT must be between 0 and 100, got %d", c.VATPercent)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	for name, rawURL := range map[string]string{
		"INVENTORY_GATEWAY_URL": c.InventoryGatewayURL,
		"PAYMENT_GATEWAY_URL":   c.PaymentGatewayURL,
	} {
		if rawURL == "" {
			return fmt.Errorf("%s is required", name)
		}
		if _, err := url.ParseRequestURI(rawURL); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, rawURL, err)
		}
	}
	return nil
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}

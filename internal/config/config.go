package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-storefront/internal/pricing"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	Pricing      pricing.Config
	CurrencyCode string

	CatalogCacheTTL  time.Duration
	CartTTL          time.Duration
	IdempotencyTTL   time.Duration
	OrderLockTTL     time.Duration
	PaymentIntentTTL time.Duration

	StripeSecretKey     string
	StripeAccountID     string
	StripeWebhookSecret string
	WebhookReplayTTL    time.Duration

	RateLimitCheckout string
	MaxBodyBytes      int64
	ShutdownTimeout   time.Duration
	DBMaxConns        int32
	WorkerConcurrency int

	LogFormat          string
	LogLevel           string
	MetricsEnabled     bool
	MetricsNamespace   string
	LatencyBucketsMS   []float64
	TracingEnabled     bool
	TracingSampleRatio float64
	OTLPEndpoint       string
	ServiceName        string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:              valueOrDefault(k.String("APP_ENV"), "development"),
		Port:                valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:         k.String("DATABASE_URL"),
		RedisURL:            k.String("REDIS_URL"),
		CORSAllowedOrigins:  splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		JWTSecret:           k.String("JWT_SECRET"),
		JWTIssuer:           valueOrDefault(k.String("JWT_ISSUER"), "storefront"),
		JWTAudience:         valueOrDefault(k.String("JWT_AUDIENCE"), "storefront-api"),
		CurrencyCode:        strings.ToUpper(valueOrDefault(k.String("CURRENCY_CODE"), "USD")),
		CatalogCacheTTL:     parseDuration(k.String("CATALOG_CACHE_TTL"), "5m"),
		CartTTL:             parseDuration(k.String("CART_TTL"), "720h"),
		IdempotencyTTL:      parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		OrderLockTTL:        parseDuration(k.String("ORDER_LOCK_TTL"), "10s"),
		PaymentIntentTTL:    parseDuration(k.String("PAYMENT_INTENT_TTL"), "30m"),
		StripeSecretKey:     k.String("STRIPE_SECRET_KEY"),
		StripeAccountID:     k.String("STRIPE_ACCOUNT_ID"),
		StripeWebhookSecret: k.String("STRIPE_WEBHOOK_SECRET"),
		WebhookReplayTTL:    parseDuration(k.String("WEBHOOK_REPLAY_TTL"), "72h"),
		RateLimitCheckout:   valueOrDefault(k.String("RATE_LIMIT_CHECKOUT"), "60-M"),
		MaxBodyBytes:        int64(parseInt(k.String("HTTP_MAX_BODY_BYTES"), 1<<20)),
		ShutdownTimeout:     parseDuration(k.String("SHUTDOWN_TIMEOUT"), "15s"),
		DBMaxConns:          int32(parseInt(k.String("DB_MAX_CONNS"), 0)),
		WorkerConcurrency:   parseInt(k.String("WORKER_CONCURRENCY"), 10),
		LogFormat:           valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
		LogLevel:            valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
		MetricsEnabled:      parseBool(k.String("OBS_ENABLE_PROMETHEUS"), true),
		MetricsNamespace:    valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "storefront"),
		LatencyBucketsMS:    parseBuckets(k.String("OBS_METRICS_BUCKETS_MS")),
		TracingEnabled:      parseBool(k.String("OBS_ENABLE_TRACING"), false),
		TracingSampleRatio:  parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1),
		OTLPEndpoint:        k.String("OTEL_EXPORTER_OTLP_ENDPOINT"),
		ServiceName:         valueOrDefault(k.String("OTEL_SERVICE_NAME"), "storefront-api"),
	}

	pc, err := loadPricing(k)
	if err != nil {
		return nil, err
	}
	cfg.Pricing = pc

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

func loadPricing(k *koanf.Koanf) (pricing.Config, error) {
	pc := pricing.DefaultConfig()
	fields := []struct {
		key string
		dst *decimal.Decimal
	}{
		{"PRICING_TAX_RATE", &pc.TaxRate},
		{"PRICING_FREE_SHIPPING_THRESHOLD", &pc.FreeShippingThreshold},
		{"PRICING_SHIPPING_RATE", &pc.ShippingRate},
	}
	for _, f := range fields {
		raw := strings.TrimSpace(k.String(f.key))
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return pricing.Config{}, fmt.Errorf("%s: %w", f.key, err)
		}
		if d.IsNegative() {
			return pricing.Config{}, fmt.Errorf("%s must not be negative", f.key)
		}
		*f.dst = d
	}
	if pc.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return pricing.Config{}, errors.New("PRICING_TAX_RATE must be a fraction between 0 and 1")
	}
	return pc, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func parseFloat(value string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || f < 0 {
		return fallback
	}
	return f
}

// parseBuckets reads ascending histogram bounds from a comma list, skipping
// entries that are not positive numbers. An empty result keeps the defaults.
func parseBuckets(value string) []float64 {
	var out []float64
	for _, part := range strings.Split(value, ",") {
		if b := parseFloat(part, 0); b > 0 {
			out = append(out, b)
		}
	}
	sort.Float64s(out)
	return out
}

func parseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "yes", "on":
		return true
	case "0", "f", "false", "no", "off":
		return false
	}
	return fallback
}

// MustLoad behaves like Load but panics on error. Useful for command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}

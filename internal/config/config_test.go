package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"DATABASE_URL": "postgres://localhost/storefront",
		"REDIS_URL":    "redis://localhost:6379/0",
		"JWT_SECRET":   "secret",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(baseEnv())
	require.NoError(t, err)
	require.Equal(t, "0.08", cfg.Pricing.TaxRate.String())
	require.Equal(t, "50", cfg.Pricing.FreeShippingThreshold.String())
	require.Equal(t, "5.99", cfg.Pricing.ShippingRate.String())
	require.Equal(t, "USD", cfg.CurrencyCode)
	require.Equal(t, 30*time.Minute, cfg.PaymentIntentTTL)
	require.Equal(t, ":8080", cfg.HTTPAddr())
}

func TestLoadPricingOverrides(t *testing.T) {
	env := baseEnv()
	env["PRICING_TAX_RATE"] = "0.11"
	env["PRICING_FREE_SHIPPING_THRESHOLD"] = "75"
	env["CURRENCY_CODE"] = "eur"
	cfg, err := LoadForTests(env)
	require.NoError(t, err)
	require.Equal(t, "0.11", cfg.Pricing.TaxRate.String())
	require.Equal(t, "75", cfg.Pricing.FreeShippingThreshold.String())
	require.Equal(t, "EUR", cfg.CurrencyCode)
}

func TestLoadRejectsInvalidPricing(t *testing.T) {
	env := baseEnv()
	env["PRICING_SHIPPING_RATE"] = "five"
	_, err := LoadForTests(env)
	require.ErrorContains(t, err, "PRICING_SHIPPING_RATE")

	env = baseEnv()
	env["PRICING_TAX_RATE"] = "8"
	_, err = LoadForTests(env)
	require.Error(t, err)
}

func TestLoadRequiresSecrets(t *testing.T) {
	env := baseEnv()
	env["JWT_SECRET"] = ""
	_, err := LoadForTests(env)
	require.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoadOperationalSettings(t *testing.T) {
	env := baseEnv()
	env["OBS_ENABLE_TRACING"] = "yes"
	env["OBS_TRACING_SAMPLING_RATIO"] = "0.25"
	env["WORKER_CONCURRENCY"] = "4"
	env["DB_MAX_CONNS"] = "bogus"
	env["STRIPE_WEBHOOK_SECRET"] = "whsec_1"
	env["OBS_METRICS_BUCKETS_MS"] = "250, 10,oops,-5,50"
	cfg, err := LoadForTests(env)
	require.NoError(t, err)
	require.True(t, cfg.TracingEnabled)
	require.True(t, cfg.MetricsEnabled)
	require.Equal(t, 0.25, cfg.TracingSampleRatio)
	require.Equal(t, 4, cfg.WorkerConcurrency)
	require.Equal(t, int32(0), cfg.DBMaxConns)
	require.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	require.Equal(t, "whsec_1", cfg.StripeWebhookSecret)
	require.Equal(t, 72*time.Hour, cfg.WebhookReplayTTL)
	require.Equal(t, []float64{10, 50, 250}, cfg.LatencyBucketsMS)
}

package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-storefront/internal/app"
	"github.com/noah-isme/backend-storefront/internal/auth"
	"github.com/noah-isme/backend-storefront/internal/cart"
	"github.com/noah-isme/backend-storefront/internal/catalog"
	"github.com/noah-isme/backend-storefront/internal/checkout"
	"github.com/noah-isme/backend-storefront/internal/common"
	"github.com/noah-isme/backend-storefront/internal/config"
	dbgen "github.com/noah-isme/backend-storefront/internal/db/gen"
	"github.com/noah-isme/backend-storefront/internal/health"
	"github.com/noah-isme/backend-storefront/internal/lock"
	"github.com/noah-isme/backend-storefront/internal/obs"
	"github.com/noah-isme/backend-storefront/internal/order"
	"github.com/noah-isme/backend-storefront/internal/payment"
	"github.com/noah-isme/backend-storefront/internal/ratelimit"
	"github.com/noah-isme/backend-storefront/internal/resilience"
	"github.com/noah-isme/backend-storefront/internal/security"
	"github.com/noah-isme/backend-storefront/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	// Money fields render as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)
	resilience.MustRegisterMetrics(cfg.MetricsNamespace, nil)

	tracingEnabled := cfg.TracingEnabled
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName: cfg.ServiceName,
			Environment: cfg.AppEnv,
			Endpoint:    cfg.OTLPEndpoint,
			SampleRatio: cfg.TracingSampleRatio,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := app.OpenPostgres(ctx, cfg, "storefront-api")
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	defer pool.Close()
	queries := dbgen.New(pool)

	redisClient, err := app.OpenRedis(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open redis")
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	asynqOpt, err := app.AsynqRedis(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("configure task queue")
	}
	tasks := asynq.NewClient(asynqOpt)
	defer func() {
		if err := tasks.Close(); err != nil {
			logger.Error().Err(err).Msg("close task client")
		}
	}()

	verifier, err := auth.NewVerifier(auth.Config{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise token verifier")
	}

	catalogService, err := catalog.NewService(catalog.ServiceConfig{
		Queries: queries,
		Cache:   catalog.NewCache(redisClient, cfg.CatalogCacheTTL),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise catalog service")
	}

	stripeCfg := payment.StripeConfig{
		APIKey:    cfg.StripeSecretKey,
		AccountID: cfg.StripeAccountID,
		Breaker:   resilience.NewBreaker("stripe", 10, 0.5, 30*time.Second),
	}
	var methodVerifier user.MethodVerifier
	var paymentProvider payment.Provider
	if strings.TrimSpace(cfg.StripeSecretKey) != "" {
		mv, err := payment.NewStripeMethodVerifier(stripeCfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("initialise stripe method verifier")
		}
		provider, err := payment.NewStripeProvider(stripeCfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("initialise stripe provider")
		}
		methodVerifier, paymentProvider = mv, provider
	} else {
		logger.Warn().Msg("STRIPE_SECRET_KEY not set; saved cards and payment intents are disabled")
	}

	cartSvc := &cart.Service{Q: queries, TTL: cfg.CartTTL}
	userSvc := user.NewService(user.NewPGStore(pool), methodVerifier)
	checkoutSvc := &checkout.Service{
		Carts:          cartSvc,
		Products:       catalogService,
		Addresses:      userSvc,
		PaymentMethods: userSvc,
		Profiles:       userSvc,
		Pricing:        cfg.Pricing,
	}
	orderSvc := &order.Service{
		Store:      order.NewPGStore(pool),
		Locker:     lock.Locker{R: redisClient},
		LockTTL:    cfg.OrderLockTTL,
		Catalog:    catalogService,
		Tasks:      tasks,
		Pricing:    cfg.Pricing,
		Currency:   cfg.CurrencyCode,
		PaymentTTL: cfg.PaymentIntentTTL,
	}
	paymentSvc := &payment.Service{
		Store:     payment.NewPGStore(pool),
		IntentTTL: cfg.PaymentIntentTTL,
	}
	if paymentProvider != nil {
		paymentSvc.Provider = paymentProvider
	}

	checkoutLimiter, err := ratelimit.New(redisClient, "rl:checkout", cfg.RateLimitCheckout)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise checkout rate limit")
	}
	checkoutLimit := ratelimit.Handler{
		Limiter: checkoutLimiter,
		Config:  ratelimit.Config{Key: ratelimit.ByUser("checkout")},
		OnError: func(err error) { logger.Warn().Err(err).Msg("checkout rate limit store") },
	}

	var httpMetrics *obs.HTTPMetrics
	if cfg.MetricsEnabled {
		httpMetrics = obs.NewHTTPMetrics(cfg.MetricsNamespace, cfg.LatencyBucketsMS, nil)
	}

	var pprofHandler http.Handler
	if envBool("OBS_ENABLE_PPROF", false) {
		pprofHandler = protectPprof(newPprofMux(), envOrDefault("SECURE_PPROF_BASIC_AUTH_USER", ""), envOrDefault("SECURE_PPROF_BASIC_AUTH_PASS", ""))
	}

	router := newRouter(routerConfig{
		Logger:        logger,
		Auth:          auth.Middleware{Verifier: verifier},
		Idem:          common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL},
		CheckoutLimit: checkoutLimit.Middleware,
		HTTPMetrics:   httpMetrics,
		Metrics:       cfg.MetricsEnabled,
		Tracing:       tracingEnabled,
		CORSOrigins:   cfg.CORSAllowedOrigins,
		MaxBodyBytes:  cfg.MaxBodyBytes,
		SecureHeaders: security.Headers{Enable: true, EnableHSTS: cfg.AppEnv == "production"},
		Pprof:         pprofHandler,
	}, handlers{
		Catalog:     catalog.NewHandler(catalog.HandlerConfig{Service: catalogService}),
		Cart:        &cart.Handler{Svc: cartSvc, Wishlist: &cart.Wishlist{Q: queries}},
		User:        &user.Handler{Service: userSvc},
		Checkout:    &checkout.Handler{Svc: checkoutSvc},
		Orders:      &order.Handler{Svc: orderSvc},
		OrdersAdmin: &order.AdminHandler{Svc: orderSvc},
		Payments:    &payment.Handler{Svc: paymentSvc},
		Webhook: payment.Webhook{
			Svc:       paymentSvc,
			Secret:    cfg.StripeWebhookSecret,
			Replay:    redisClient,
			ReplayTTL: cfg.WebhookReplayTTL,
		},
		Health: health.Handler{
			Checker:      health.Deps{Pool: pool, Redis: redisClient},
			DBTimeout:    envDurationMillis("HEALTH_READY_DB_TIMEOUT_MS", 500),
			RedisTimeout: envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300),
		},
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
		return
	case <-sigCtx.Done():
	}

	health.SetReady(false)
	logger.Info().Msg("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return time.Duration(parsed) * time.Millisecond
		}
	}
	return time.Duration(fallback) * time.Millisecond
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	for _, name := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
		mux.Handle("/"+name, pprof.Handler(name))
	}
	return mux
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorised", nil)
			return
		}
		handler.ServeHTTP(w, r)
	})
}

package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-storefront/internal/audit"
	"github.com/noah-isme/backend-storefront/internal/auth"
	"github.com/noah-isme/backend-storefront/internal/cart"
	"github.com/noah-isme/backend-storefront/internal/catalog"
	"github.com/noah-isme/backend-storefront/internal/checkout"
	"github.com/noah-isme/backend-storefront/internal/common"
	"github.com/noah-isme/backend-storefront/internal/health"
	"github.com/noah-isme/backend-storefront/internal/obs"
	"github.com/noah-isme/backend-storefront/internal/order"
	"github.com/noah-isme/backend-storefront/internal/payment"
	"github.com/noah-isme/backend-storefront/internal/security"
	"github.com/noah-isme/backend-storefront/internal/user"
)

// handlers groups the HTTP handlers mounted by newRouter.
type handlers struct {
	Catalog     *catalog.Handler
	Cart        *cart.Handler
	User        *user.Handler
	Checkout    *checkout.Handler
	Orders      *order.Handler
	OrdersAdmin *order.AdminHandler
	Payments    *payment.Handler
	Webhook     payment.Webhook
	Health      health.Handler
}

// routerConfig carries the cross-cutting middleware settings.
type routerConfig struct {
	Logger        zerolog.Logger
	Auth          auth.Middleware
	Audit         audit.Recorder
	Idem          common.Idem
	CheckoutLimit func(http.Handler) http.Handler
	HTTPMetrics   *obs.HTTPMetrics
	Metrics       bool
	Tracing       bool
	CORSOrigins   []string
	MaxBodyBytes  int64
	SecureHeaders security.Headers
	Pprof         http.Handler
}

func newRouter(cfg routerConfig, h handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Tracing {
		r.Use(obs.TracingMiddleware)
	}
	if cfg.HTTPMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: cfg.HTTPMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: cfg.Logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg.CORSOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: !wildcard(cfg.CORSOrigins),
		MaxAge:           300,
	}))
	r.Use(cfg.SecureHeaders.Middleware)
	r.Use(security.BodyLimit{Max: cfg.MaxBodyBytes}.Middleware)

	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}
	if cfg.Pprof != nil {
		r.Mount("/debug/pprof", cfg.Pprof)
	}
	r.Get("/health/live", h.Health.Live)
	r.Get("/health/ready", h.Health.Ready)

	checkoutLimit := cfg.CheckoutLimit
	if checkoutLimit == nil {
		checkoutLimit = func(next http.Handler) http.Handler { return next }
	}

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/products", h.Catalog.Products)
		v.Get("/products/{slug}", h.Catalog.ProductDetail)

		// Stripe signs the body; there is no bearer token on this route.
		v.Post("/payments/webhook/stripe", h.Webhook.Handle)

		v.Group(func(authR chi.Router) {
			authR.Use(cfg.Auth.RequireAuth)

			authR.With(checkoutLimit).Get("/checkout/summary", h.Checkout.Summary)

			authR.Route("/cart", func(c chi.Router) {
				c.Get("/", h.Cart.Get)
				c.Delete("/", h.Cart.Clear)
				c.Post("/items", h.Cart.AddItem)
				c.Patch("/items/{productID}", h.Cart.UpdateItem)
				c.Delete("/items/{productID}", h.Cart.RemoveItem)
			})
			authR.Route("/wishlist", func(wl chi.Router) {
				wl.Get("/", h.Cart.ListWishlist)
				wl.Post("/", h.Cart.AddWishlist)
				wl.Delete("/{productID}", h.Cart.RemoveWishlist)
			})

			authR.Route("/users/me", func(u chi.Router) {
				u.Get("/", h.User.Me)
				u.Get("/addresses", h.User.ListAddresses)
				u.Post("/addresses", h.User.CreateAddress)
				u.Put("/addresses/{addressID}", h.User.UpdateAddress)
				u.Delete("/addresses/{addressID}", h.User.DeleteAddress)
				u.Get("/payment-methods", h.User.ListPaymentMethods)
				u.Post("/payment-methods", h.User.AddPaymentMethod)
				u.Delete("/payment-methods/{methodID}", h.User.DeletePaymentMethod)
			})

			authR.Route("/orders", func(o chi.Router) {
				o.With(cfg.Idem.Middleware).Post("/", h.Orders.Create)
				o.Get("/", h.Orders.List)
				o.Get("/{orderID}", h.Orders.Get)
				o.Post("/{orderID}/cancel", h.Orders.Cancel)
			})

			authR.With(cfg.Idem.Middleware).Post("/payments/intent", h.Payments.Intent)
		})

		v.Route("/admin", func(admin chi.Router) {
			admin.Use(cfg.Auth.RequireAuth)
			admin.Use(cfg.Auth.RequireAdmin)
			admin.With(cfg.Audit.Middleware(audit.Action{Name: "deal.create", ResourceType: "deal"})).
				Post("/deals", h.Catalog.CreateDeal)
			admin.With(cfg.Audit.Middleware(audit.Action{Name: "deal.attach", ResourceType: "product", ResourceIDParam: "productID"})).
				Put("/products/{productID}/deals/{dealID}", h.Catalog.AttachDeal)
			admin.With(cfg.Audit.Middleware(audit.Action{Name: "deal.detach", ResourceType: "product", ResourceIDParam: "productID"})).
				Delete("/products/{productID}/deals/{dealID}", h.Catalog.DetachDeal)
			admin.With(cfg.Audit.Middleware(audit.Action{Name: "order.cancel", ResourceType: "order", ResourceIDParam: "orderID"})).
				Post("/orders/{orderID}/cancel", h.OrdersAdmin.Cancel)
		})
	})

	return r
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func wildcard(origins []string) bool {
	for _, o := range allowedOrigins(origins) {
		if o == "*" {
			return true
		}
	}
	return false
}

package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CheckoutSummaryTotal counts checkout summary assemblies by outcome.
	CheckoutSummaryTotal *prometheus.CounterVec
	// OrderCreateTotal counts order creation attempts by outcome.
	OrderCreateTotal *prometheus.CounterVec
	// OrderExpireTotal counts expiry task outcomes.
	OrderExpireTotal *prometheus.CounterVec
	// PaymentIntentTotal counts payment intent creation attempts.
	PaymentIntentTotal *prometheus.CounterVec
	// CatalogCacheTotal counts product snapshot cache lookups.
	CatalogCacheTotal *prometheus.CounterVec
	// AdminActionTotal counts audited admin actions by action and status class.
	AdminActionTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CheckoutSummaryTotal = newCounterVec(reg, namespace, "checkout_summary_total",
			"Count of checkout summary outcomes.", "result")
		OrderCreateTotal = newCounterVec(reg, namespace, "order_create_total",
			"Count of order creation outcomes.", "result")
		OrderExpireTotal = newCounterVec(reg, namespace, "order_expire_total",
			"Count of pending order expiry outcomes.", "result")
		PaymentIntentTotal = newCounterVec(reg, namespace, "payment_intent_total",
			"Count of payment intent processing outcomes.", "provider", "result")
		CatalogCacheTotal = newCounterVec(reg, namespace, "catalog_cache_total",
			"Count of product snapshot cache lookups by result.", "result")
		AdminActionTotal = newCounterVec(reg, namespace, "admin_action_total",
			"Count of audited admin actions.", "action", "outcome")
	})
}

func newCounterVec(reg prometheus.Registerer, namespace, name, help string, labels ...string) *prometheus.CounterVec {
	return register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, labels))
}

// Observe increments vec for the given labels when metrics are registered.
// Callers in tests may run without registration.
func Observe(vec *prometheus.CounterVec, labels ...string) {
	if vec == nil {
		return
	}
	vec.WithLabelValues(labels...).Inc()
}

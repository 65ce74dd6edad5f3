package pricing

import "github.com/shopspring/decimal"

// Default pricing rules.
var (
	DefaultTaxRate               = decimal.RequireFromString("0.08")
	DefaultFreeShippingThreshold = decimal.NewFromInt(50)
	DefaultShippingRate          = decimal.RequireFromString("5.99")
)

// Config holds the tax and shipping rules applied to a subtotal.
type Config struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	ShippingRate          decimal.Decimal
}

// DefaultConfig returns the storefront's standard rules: 8% tax, free shipping from 50,
// otherwise a flat 5.99.
func DefaultConfig() Config {
	return Config{
		TaxRate:               DefaultTaxRate,
		FreeShippingThreshold: DefaultFreeShippingThreshold,
		ShippingRate:          DefaultShippingRate,
	}
}

// OrderSummary is the monetary breakdown of an order. Every field is rounded to cents.
type OrderSummary struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	ShippingCost   decimal.Decimal `json:"shippingCost"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
}

// FreeShipping reports whether shipping was waived.
func (s OrderSummary) FreeShipping() bool {
	return s.ShippingCost.IsZero()
}

// Calculate turns a subtotal and discount into the full breakdown.
//
// Each component is rounded on its own, then the total is derived from the rounded
// components and rounded again, so displayed and charged totals always agree.
func (c Config) Calculate(subtotal, discount decimal.Decimal) OrderSummary {
	shipping := c.ShippingRate
	if subtotal.GreaterThanOrEqual(c.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	s := OrderSummary{
		Subtotal:       RoundCents(subtotal),
		TaxAmount:      RoundCents(subtotal.Mul(c.TaxRate)),
		ShippingCost:   RoundCents(shipping),
		DiscountAmount: RoundCents(discount),
	}
	s.TotalAmount = RoundCents(s.Subtotal.Add(s.TaxAmount).Add(s.ShippingCost).Sub(s.DiscountAmount))
	return s
}

// Option overrides one input of CalculateOrderSummary.
type Option func(*calculation)

type calculation struct {
	cfg      Config
	discount decimal.Decimal
}

// WithTaxRate overrides the tax rate.
func WithTaxRate(rate decimal.Decimal) Option {
	return func(c *calculation) { c.cfg.TaxRate = rate }
}

// WithFreeShippingThreshold overrides the subtotal at which shipping is waived.
func WithFreeShippingThreshold(threshold decimal.Decimal) Option {
	return func(c *calculation) { c.cfg.FreeShippingThreshold = threshold }
}

// WithShippingRate overrides the flat shipping rate.
func WithShippingRate(rate decimal.Decimal) Option {
	return func(c *calculation) { c.cfg.ShippingRate = rate }
}

// WithDiscount subtracts a cart-level discount from the total.
func WithDiscount(amount decimal.Decimal) Option {
	return func(c *calculation) { c.discount = amount }
}

// WithConfig replaces all tax and shipping rules at once.
func WithConfig(cfg Config) Option {
	return func(c *calculation) { c.cfg = cfg }
}

// CalculateOrderSummary computes tax, shipping and total for subtotal using the default
// rules unless overridden by opts.
func CalculateOrderSummary(subtotal decimal.Decimal, opts ...Option) OrderSummary {
	calc := calculation{cfg: DefaultConfig(), discount: decimal.Zero}
	for _, opt := range opts {
		if opt != nil {
			opt(&calc)
		}
	}
	return calc.cfg.Calculate(subtotal, calc.discount)
}

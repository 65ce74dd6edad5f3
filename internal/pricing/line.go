package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the read-only snapshot of a catalog product used for pricing.
type Product struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Slug            string          `json:"slug"`
	BasePrice       decimal.Decimal `json:"basePrice"`
	DiscountedPrice decimal.Decimal `json:"discountedPrice"`
	Stock           int             `json:"stock"`
	ImageURL        string          `json:"imageUrl"`
	Deals           []Deal          `json:"deals"`
}

// Line is a priced cart line.
type Line struct {
	Product        Product
	Quantity       int
	ActiveDeal     *Deal
	EffectivePrice decimal.Decimal
	Savings        decimal.Decimal
	LineTotal      decimal.Decimal
}

// PriceLine resolves the product's active deal at now, computes the effective unit price
// and returns the line with its total rounded to cents. Stock is not checked here.
func PriceLine(p Product, qty int, now time.Time) Line {
	deal := ResolveActiveDeal(p.Deals, now)
	effective, savings := EffectivePrice(p.BasePrice, p.DiscountedPrice, deal)
	return Line{
		Product:        p,
		Quantity:       qty,
		ActiveDeal:     deal,
		EffectivePrice: effective,
		Savings:        savings,
		LineTotal:      RoundCents(effective.Mul(decimal.NewFromInt(int64(qty)))),
	}
}

// Subtotal sums already-rounded line totals.
func Subtotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal)
	}
	return total
}

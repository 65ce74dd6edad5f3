package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// EffectivePrice computes the unit price actually charged and the per-unit savings
// against the base price.
//
// With an active deal the price is base - base*percent/100; otherwise the product's
// standing discounted price applies. Inputs are trusted: percent must lie in [0,100]
// and discounted must not exceed base, both enforced when the data is written.
func EffectivePrice(base, discounted decimal.Decimal, deal *Deal) (effective, savings decimal.Decimal) {
	effective = discounted
	if deal != nil {
		effective = base.Sub(base.Mul(deal.DiscountPercent).Div(hundred))
	}
	return effective, base.Sub(effective)
}

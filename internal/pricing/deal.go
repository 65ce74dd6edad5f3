package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Deal is a time-bounded percentage discount attachable to one or more products.
type Deal struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	StartsAt        time.Time       `json:"startsAt"`
	EndsAt          time.Time       `json:"endsAt"`
}

// ActiveAt reports whether now falls inside the deal window. Both bounds are inclusive.
func (d Deal) ActiveAt(now time.Time) bool {
	return !now.Before(d.StartsAt) && !now.After(d.EndsAt)
}

// ResolveActiveDeal returns the first deal, in iteration order, that is active at now.
// It returns nil when the list is empty or no deal covers now.
func ResolveActiveDeal(deals []Deal, now time.Time) *Deal {
	for i := range deals {
		if deals[i].ActiveAt(now) {
			active := deals[i]
			return &active
		}
	}
	return nil
}

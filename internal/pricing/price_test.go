package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestEffectivePriceWithoutDeal(t *testing.T) {
	effective, savings := EffectivePrice(dec("100"), dec("90"), nil)
	require.Equal(t, "90.00", effective.StringFixed(2))
	require.Equal(t, "10.00", savings.StringFixed(2))
}

func TestEffectivePriceDealIgnoresStandingDiscount(t *testing.T) {
	deal := &Deal{DiscountPercent: dec("20")}
	effective, savings := EffectivePrice(dec("100"), dec("90"), deal)
	require.Equal(t, "80.00", effective.StringFixed(2))
	require.Equal(t, "20.00", savings.StringFixed(2))
}

func TestEffectivePriceFractionalPercent(t *testing.T) {
	deal := &Deal{DiscountPercent: dec("15")}
	effective, savings := EffectivePrice(dec("19.99"), dec("19.99"), deal)
	require.True(t, effective.Equal(dec("16.9915")), effective.String())
	require.True(t, savings.Equal(dec("2.9985")), savings.String())
}

func TestEffectivePriceBoundaryPercents(t *testing.T) {
	free, _ := EffectivePrice(dec("42.50"), dec("40"), &Deal{DiscountPercent: dec("100")})
	require.True(t, free.IsZero())
	full, savings := EffectivePrice(dec("42.50"), dec("40"), &Deal{DiscountPercent: decimal.Zero})
	require.Equal(t, "42.50", full.StringFixed(2))
	require.True(t, savings.IsZero())
}

func TestPriceLineScenario(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	product := Product{
		ID:              "p1",
		Name:            "Trail Runner",
		BasePrice:       dec("100"),
		DiscountedPrice: dec("90"),
		Stock:           5,
		Deals: []Deal{{
			ID:              "spring",
			DiscountPercent: dec("20"),
			StartsAt:        now.Add(-24 * time.Hour),
			EndsAt:          now.Add(24 * time.Hour),
		}},
	}
	line := PriceLine(product, 2, now)
	require.NotNil(t, line.ActiveDeal)
	require.Equal(t, "spring", line.ActiveDeal.ID)
	require.Equal(t, "80.00", line.EffectivePrice.StringFixed(2))
	require.Equal(t, "20.00", line.Savings.StringFixed(2))
	require.Equal(t, "160.00", line.LineTotal.StringFixed(2))
}

func TestPriceLineRoundsLineTotal(t *testing.T) {
	product := Product{BasePrice: dec("19.99"), DiscountedPrice: dec("19.99"), Deals: []Deal{{
		DiscountPercent: dec("15"),
		StartsAt:        time.Unix(0, 0),
		EndsAt:          time.Unix(1<<40, 0),
	}}}
	line := PriceLine(product, 3, time.Unix(1000, 0))
	// 16.9915 * 3 = 50.9745
	require.True(t, line.LineTotal.Equal(dec("50.97")), line.LineTotal.String())

	lines := []Line{line, PriceLine(Product{DiscountedPrice: dec("0.015")}, 1, time.Now())}
	require.Equal(t, "50.99", Subtotal(lines).StringFixed(2))
}

package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculateOrderSummaryBelowThreshold(t *testing.T) {
	s := CalculateOrderSummary(dec("40"))
	require.Equal(t, "40.00", s.Subtotal.StringFixed(2))
	require.Equal(t, "3.20", s.TaxAmount.StringFixed(2))
	require.Equal(t, "5.99", s.ShippingCost.StringFixed(2))
	require.Equal(t, "0.00", s.DiscountAmount.StringFixed(2))
	require.Equal(t, "49.19", s.TotalAmount.StringFixed(2))
	require.False(t, s.FreeShipping())
}

func TestCalculateOrderSummaryAtThreshold(t *testing.T) {
	s := CalculateOrderSummary(dec("50"))
	require.True(t, s.ShippingCost.IsZero())
	require.True(t, s.FreeShipping())
	require.Equal(t, "54.00", s.TotalAmount.StringFixed(2))
}

func TestCalculateOrderSummaryTax(t *testing.T) {
	s := CalculateOrderSummary(dec("100"), WithTaxRate(dec("0.08")))
	require.Equal(t, "8.00", s.TaxAmount.StringFixed(2))
	require.Equal(t, "108.00", s.TotalAmount.StringFixed(2))
}

func TestCalculateOrderSummaryDiscountAndOverrides(t *testing.T) {
	s := CalculateOrderSummary(dec("30"),
		WithDiscount(dec("5")),
		WithTaxRate(dec("0.1")),
		WithShippingRate(dec("4.5")),
		WithFreeShippingThreshold(dec("100")),
	)
	require.Equal(t, "3.00", s.TaxAmount.StringFixed(2))
	require.Equal(t, "4.50", s.ShippingCost.StringFixed(2))
	require.Equal(t, "5.00", s.DiscountAmount.StringFixed(2))
	require.Equal(t, "32.50", s.TotalAmount.StringFixed(2))
}

func TestCalculateOrderSummaryRoundsComponentsBeforeTotal(t *testing.T) {
	// Unrounded parts sum to 6.04832; rounded parts (0.05 + 0.00 + 5.99) sum to 6.04.
	s := CalculateOrderSummary(dec("0.054"))
	require.Equal(t, "0.05", s.Subtotal.StringFixed(2))
	require.Equal(t, "0.00", s.TaxAmount.StringFixed(2))
	require.Equal(t, "6.04", s.TotalAmount.StringFixed(2))
	require.True(t, s.TotalAmount.Equal(s.Subtotal.Add(s.TaxAmount).Add(s.ShippingCost).Sub(s.DiscountAmount)))
}

func TestConfigCalculateMatchesOptions(t *testing.T) {
	cfg := Config{TaxRate: dec("0.11"), FreeShippingThreshold: dec("75"), ShippingRate: dec("7")}
	a := cfg.Calculate(dec("74.99"), dec("1"))
	b := CalculateOrderSummary(dec("74.99"), WithConfig(cfg), WithDiscount(dec("1")))
	require.Equal(t, a, b)
	require.Equal(t, "7.00", a.ShippingCost.StringFixed(2))
}

func TestRoundCents(t *testing.T) {
	cases := map[string]string{
		"1.005":  "1.01",
		"2.344":  "2.34",
		"2.345":  "2.35",
		"0.004":  "0.00",
		"-1.005": "-1.00",
		"10":     "10.00",
	}
	for in, want := range cases {
		got := RoundCents(dec(in)).StringFixed(2)
		if got != want {
			t.Fatalf("RoundCents(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestMinorUnitConversions(t *testing.T) {
	require.Equal(t, "12.34", FromMinor(1234).StringFixed(2))
	require.Equal(t, int64(10798), ToMinor(dec("107.975")))
	require.Equal(t, int64(0), ToMinor(dec("0.004")))
}

package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestResolveActiveDealBoundsInclusive(t *testing.T) {
	start := time.Date(2025, 11, 28, 0, 0, 0, 0, time.UTC)
	end := start.Add(72 * time.Hour)
	deals := []Deal{{ID: "bf", DiscountPercent: decimal.NewFromInt(30), StartsAt: start, EndsAt: end}}

	require.NotNil(t, ResolveActiveDeal(deals, start))
	require.NotNil(t, ResolveActiveDeal(deals, end))
	require.NotNil(t, ResolveActiveDeal(deals, start.Add(time.Hour)))
	require.Nil(t, ResolveActiveDeal(deals, start.Add(-time.Nanosecond)))
	require.Nil(t, ResolveActiveDeal(deals, end.Add(time.Nanosecond)))
}

func TestResolveActiveDealFirstMatchWins(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	deals := []Deal{
		{ID: "expired", StartsAt: now.Add(-48 * time.Hour), EndsAt: now.Add(-24 * time.Hour)},
		{ID: "small", DiscountPercent: decimal.NewFromInt(5), StartsAt: now.Add(-time.Hour), EndsAt: now.Add(time.Hour)},
		{ID: "large", DiscountPercent: decimal.NewFromInt(50), StartsAt: now.Add(-time.Hour), EndsAt: now.Add(time.Hour)},
	}
	got := ResolveActiveDeal(deals, now)
	require.NotNil(t, got)
	require.Equal(t, "small", got.ID)
}

func TestResolveActiveDealEmpty(t *testing.T) {
	if ResolveActiveDeal(nil, time.Now()) != nil {
		t.Fatal("expected nil for nil deal list")
	}
	if ResolveActiveDeal([]Deal{}, time.Now()) != nil {
		t.Fatal("expected nil for empty deal list")
	}
}

func TestResolveActiveDealReturnsCopy(t *testing.T) {
	now := time.Now()
	deals := []Deal{{ID: "d1", StartsAt: now.Add(-time.Minute), EndsAt: now.Add(time.Minute)}}
	got := ResolveActiveDeal(deals, now)
	got.Name = "mutated"
	require.Empty(t, deals[0].Name)
}

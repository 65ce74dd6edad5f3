package pgconv

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestUUIDRoundTrip(t *testing.T) {
	const raw = "6f1c2b3a-9d4e-4f60-8a7b-1c2d3e4f5a6b"
	id, err := ToUUID(raw)
	require.NoError(t, err)
	require.True(t, id.Valid)
	require.Equal(t, raw, UUIDString(id))

	_, err = ToUUID("not-a-uuid")
	require.ErrorIs(t, err, ErrInvalidID)

	empty, err := OptionalUUID("")
	require.NoError(t, err)
	require.False(t, empty.Valid)
	require.Nil(t, UUIDPtr(empty))
}

func TestNumericRoundTrip(t *testing.T) {
	d := decimal.RequireFromString("12.50")
	got, err := Decimal(Numeric(d))
	require.NoError(t, err)
	require.True(t, got.Equal(d))

	_, err = Decimal(pgtype.Numeric{})
	require.Error(t, err)
	_, err = Decimal(pgtype.Numeric{NaN: true, Valid: true})
	require.Error(t, err)
}

func TestNullableHelpers(t *testing.T) {
	require.False(t, Text("   ").Valid)
	require.Equal(t, "x", TextValue(Text(" x ")))
	require.Nil(t, TextPtr(pgtype.Text{}))
	require.False(t, Int4(0).Valid)
	require.Equal(t, 12, Int4Value(Int4(12)))
	require.False(t, Timestamptz(time.Time{}).Valid)
	now := time.Now()
	require.Equal(t, now, Time(Timestamptz(now)))
}

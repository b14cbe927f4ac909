package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testBrackets() []Bracket {
	return []Bracket{
		{UpTo: d(100), Rate: d(0.10)},
		{UpTo: d(200), Rate: d(0.20)},
		{Rate: d(0.30)},
	}
}

func TestBracketTax(t *testing.T) {
	cases := []struct {
		amount float64
		want   float64
	}{
		{0, 0},
		{-50, 0},
		{50, 5},
		{100, 10},
		{150, 20},
		{200, 30},
		{250, 45},
	}
	for _, tc := range cases {
		got := bracketTax(d(tc.amount), testBrackets())
		require.True(t, got.Equal(d(tc.want)), "bracketTax(%v) = %s, want %v", tc.amount, got, tc.want)
	}
}

func TestStackedCapitalTax(t *testing.T) {
	// Gains fill the brackets starting at the ordinary income level:
	// 100 of gains stacked on 100 of ordinary lands in the 20% band.
	got := stackedCapitalTax(d(100), d(100), testBrackets())
	require.True(t, got.Equal(d(20)))

	require.True(t, stackedCapitalTax(d(100), decimal.Zero, testBrackets()).IsZero())
	require.True(t, stackedCapitalTax(d(100), d(-10), testBrackets()).IsZero())
}

func TestSnapshot(t *testing.T) {
	snap := DefaultRateTable().Snapshot()
	require.True(t, snap.FederalStockCapPct.Equal(d(0.30)))
	require.True(t, snap.FederalCashCapPct.Equal(d(0.60)))
	require.True(t, snap.StateCapPct.Equal(d(0.50)))
	require.True(t, snap.LongTermRatePct.Equal(d(0.15)))
	require.True(t, snap.TopOrdinaryRatePct.Equal(d(0.37)))
}

package equity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestApplyCharitableCapAndCarryforward(t *testing.T) {
	// $400k stock donation against a 30% cap on $500k AGI: $150k used,
	// $250k carried forward.
	st := ApplyCharitable(NewCharitableState(), 2025, dec("150000"), dec("400000"))

	require.True(t, st.CurrentYearUsed.Equal(dec("150000")))
	require.True(t, st.TotalAvailable().Equal(dec("250000")))
	require.True(t, st.ExpiredThisYear.IsZero())
	require.True(t, st.Carryforward[2025].Equal(dec("250000")))

	// Next year, no new donations, same cap: another $150k consumed.
	st = ApplyCharitable(st, 2026, dec("150000"), decimal.Zero)
	require.True(t, st.CurrentYearUsed.Equal(dec("150000")))
	require.True(t, st.TotalAvailable().Equal(dec("100000")))

	// Year three drains the pool without hitting the cap.
	st = ApplyCharitable(st, 2027, dec("150000"), decimal.Zero)
	require.True(t, st.CurrentYearUsed.Equal(dec("100000")))
	require.True(t, st.TotalAvailable().IsZero())
	require.Empty(t, st.Carryforward)
}

func TestApplyCharitableFIFOAcrossBuckets(t *testing.T) {
	st := ApplyCharitable(NewCharitableState(), 2025, decimal.Zero, dec("100"))
	st = ApplyCharitable(st, 2026, decimal.Zero, dec("200"))

	// Usage drains the 2025 bucket before touching 2026.
	st = ApplyCharitable(st, 2027, dec("150"), decimal.Zero)
	require.True(t, st.CurrentYearUsed.Equal(dec("150")))
	require.NotContains(t, st.Carryforward, 2025)
	require.True(t, st.Carryforward[2026].Equal(dec("150")))
}

func TestApplyCharitableExpiry(t *testing.T) {
	st := ApplyCharitable(NewCharitableState(), 2025, decimal.Zero, dec("1000"))

	// The 2025 bucket survives through 2030 untouched.
	for year := 2026; year <= 2030; year++ {
		st = ApplyCharitable(st, year, decimal.Zero, decimal.Zero)
		if year < 2030 {
			require.True(t, st.TotalAvailable().Equal(dec("1000")), "year %d", year)
			require.True(t, st.ExpiredThisYear.IsZero(), "year %d", year)
		}
	}

	// End of the fifth carryforward year: the remainder expires, loudly.
	require.True(t, st.ExpiredThisYear.Equal(dec("1000")))
	require.True(t, st.TotalAvailable().IsZero())
}

func TestApplyCharitableUsableInFinalYear(t *testing.T) {
	st := ApplyCharitable(NewCharitableState(), 2025, decimal.Zero, dec("1000"))
	for year := 2026; year <= 2029; year++ {
		st = ApplyCharitable(st, year, decimal.Zero, decimal.Zero)
	}

	// 2030 is the last usable year for the 2025 bucket; usage happens
	// before expiry.
	st = ApplyCharitable(st, 2030, dec("600"), decimal.Zero)
	require.True(t, st.CurrentYearUsed.Equal(dec("600")))
	require.True(t, st.ExpiredThisYear.Equal(dec("400")))
	require.True(t, st.TotalAvailable().IsZero())
}

func TestApplyCharitableDoesNotMutatePrev(t *testing.T) {
	prev := ApplyCharitable(NewCharitableState(), 2025, decimal.Zero, dec("500"))
	_ = ApplyCharitable(prev, 2026, dec("500"), decimal.Zero)

	require.True(t, prev.Carryforward[2025].Equal(dec("500")))
}

func TestApplyCharitableNegativeLimitClamped(t *testing.T) {
	st := ApplyCharitable(NewCharitableState(), 2025, dec("-50"), dec("100"))
	require.True(t, st.CurrentYearUsed.IsZero())
	require.True(t, st.TotalAvailable().Equal(dec("100")))
}

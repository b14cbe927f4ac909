package equity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func vestedISO(id string, qty int64, strike string) ShareLot {
	exp := date(2032, 1, 1)
	return ShareLot{
		ID:             id,
		GrantID:        "G1",
		Instrument:     InstrumentISO,
		Quantity:       qty,
		Strike:         decimal.RequireFromString(strike),
		GrantDate:      date(2021, 1, 1),
		Lifecycle:      LifecycleVested,
		TaxClass:       TaxClassNotApplicable,
		ExpirationDate: &exp,
	}
}

func exercisedLot(id string, qty int64, strike string, exercised time.Time, fmv string) ShareLot {
	v := decimal.RequireFromString(fmv)
	return ShareLot{
		ID:            id,
		GrantID:       "G1",
		Instrument:    InstrumentISO,
		Quantity:      qty,
		Strike:        decimal.RequireFromString(strike),
		GrantDate:     date(2021, 1, 1),
		Lifecycle:     LifecycleExercised,
		TaxClass:      TaxClassNotApplicable,
		ExerciseDate:  &exercised,
		FMVAtExercise: &v,
	}
}

func TestShareLotValidate(t *testing.T) {
	lot := vestedISO("VEST_20250201_ISO", 1000, "10")
	require.NoError(t, lot.Validate())

	t.Run("empty id", func(t *testing.T) {
		bad := lot
		bad.ID = ""
		require.ErrorIs(t, bad.Validate(), ErrInvalidLot)
	})

	t.Run("unknown instrument", func(t *testing.T) {
		bad := lot
		bad.Instrument = "warrant"
		require.ErrorIs(t, bad.Validate(), ErrInvalidLot)
	})

	t.Run("negative quantity", func(t *testing.T) {
		bad := lot
		bad.Quantity = -1
		require.ErrorIs(t, bad.Validate(), ErrInvalidLot)
	})

	t.Run("unexercised option without expiration", func(t *testing.T) {
		bad := lot
		bad.ExpirationDate = nil
		require.ErrorIs(t, bad.Validate(), ErrInvalidLot)
	})

	t.Run("expiration before encoded vest date", func(t *testing.T) {
		bad := lot
		exp := date(2024, 1, 1)
		bad.ExpirationDate = &exp
		require.ErrorIs(t, bad.Validate(), ErrInvalidLot)
	})

	t.Run("rsu needs no expiration", func(t *testing.T) {
		rsu := lot
		rsu.Instrument = InstrumentRSU
		rsu.ExpirationDate = nil
		require.NoError(t, rsu.Validate())
	})

	t.Run("exercised lot without exercise metadata", func(t *testing.T) {
		bad := lot
		bad.Lifecycle = LifecycleExercised
		require.ErrorIs(t, bad.Validate(), ErrInvalidLot)
	})
}

func TestShareLotCloneDoesNotAlias(t *testing.T) {
	lot := exercisedLot("L1", 100, "5", date(2024, 3, 1), "20")
	cp := lot.Clone()

	*cp.ExerciseDate = date(2030, 1, 1)
	*cp.FMVAtExercise = decimal.NewFromInt(999)

	require.Equal(t, date(2024, 3, 1), *lot.ExerciseDate)
	require.True(t, lot.FMVAtExercise.Equal(decimal.NewFromInt(20)))
}

func TestVestDateFromID(t *testing.T) {
	d, ok := VestDateFromID("VEST_20250201_ISO")
	require.True(t, ok)
	require.Equal(t, date(2025, 2, 1), d)

	d, ok = VestDateFromID("VEST_20250201")
	require.True(t, ok)
	require.Equal(t, date(2025, 2, 1), d)

	_, ok = VestDateFromID("LOT_20250201")
	require.False(t, ok)

	_, ok = VestDateFromID("VEST_2025")
	require.False(t, ok)
}

func TestChildLotID(t *testing.T) {
	d := date(2026, 6, 15)
	require.Equal(t, "L1_ex20260615", ChildLotID("L1", ActionExercise, d))
	require.Equal(t, "L1_sell20260615", ChildLotID("L1", ActionSell, d))
	require.Equal(t, "L1_don20260615", ChildLotID("L1", ActionDonate, d))
}

func TestHoldingClassBoundary(t *testing.T) {
	lot := exercisedLot("L1", 100, "5", date(2023, 1, 1), "20")

	// Exactly 365 days is still short-term; one day past flips long.
	require.Equal(t, TaxClassShortTerm, lot.holdingClass(date(2023, 12, 31)))
	require.Equal(t, TaxClassShortTerm, lot.holdingClass(date(2024, 1, 1)))
	require.Equal(t, TaxClassLongTerm, lot.holdingClass(date(2024, 1, 2)))
}

func TestLotSetTotalQuantity(t *testing.T) {
	lots := LotSet{
		"A": vestedISO("A", 100, "1"),
		"B": vestedISO("B", 50, "1"),
	}
	granted := vestedISO("C", 25, "1")
	granted.Lifecycle = LifecycleGranted
	lots["C"] = granted

	require.Equal(t, int64(175), lots.TotalQuantity())
	require.Equal(t, int64(150), lots.TotalQuantity(LifecycleVested))
	require.Equal(t, int64(25), lots.TotalQuantity(LifecycleGranted))
	require.Equal(t, []string{"A", "B", "C"}, lots.SortedIDs())
}

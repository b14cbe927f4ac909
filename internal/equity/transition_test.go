package equity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func action(typ ActionType, lotID string, qty int64, on time.Time) PlannedAction {
	return PlannedAction{Date: on, Type: typ, LotID: lotID, Quantity: qty}
}

func TestApplyActionHoldIsNoOp(t *testing.T) {
	lots := LotSet{"A": vestedISO("A", 100, "10")}
	before := lots.Clone()

	effect, err := ApplyAction(lots, PlannedAction{Type: ActionHold}, dec("50"))
	require.NoError(t, err)
	require.Equal(t, ActionEffect{}, effect)
	require.Equal(t, before, lots)
}

func TestApplyActionUnknownLot(t *testing.T) {
	lots := LotSet{}
	_, err := ApplyAction(lots, action(ActionSell, "missing", 10, date(2025, 1, 1)), dec("50"))
	require.ErrorIs(t, err, ErrUnknownLot)
}

func TestApplyActionOverQuantity(t *testing.T) {
	lots := LotSet{"A": vestedISO("A", 100, "10")}
	_, err := ApplyAction(lots, action(ActionExercise, "A", 101, date(2025, 1, 1)), dec("50"))
	require.ErrorIs(t, err, ErrInsufficientShares)
}

func TestVestTransition(t *testing.T) {
	lot := vestedISO("A", 100, "10")
	lot.Lifecycle = LifecycleGranted
	lots := LotSet{"A": lot}

	effect, err := ApplyAction(lots, action(ActionVest, "A", 100, date(2025, 2, 1)), dec("50"))
	require.NoError(t, err)
	require.Equal(t, "A", effect.ResultLotID)
	require.Equal(t, LifecycleVested, lots["A"].Lifecycle)

	// Vesting an already-vested lot is a plan error.
	_, err = ApplyAction(lots, action(ActionVest, "A", 100, date(2025, 3, 1)), dec("50"))
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestExerciseISOFullLot(t *testing.T) {
	lots := LotSet{"A": vestedISO("A", 1000, "10")}
	when := date(2025, 6, 1)

	effect, err := ApplyAction(lots, action(ActionExercise, "A", 1000, when), dec("40"))
	require.NoError(t, err)

	// Full consume keeps the identity.
	require.Equal(t, "A", effect.ResultLotID)
	got := lots["A"]
	require.Equal(t, LifecycleExercised, got.Lifecycle)
	require.Equal(t, when, *got.ExerciseDate)
	require.True(t, got.FMVAtExercise.Equal(dec("40")))
	require.Nil(t, got.ExpirationDate)

	require.True(t, effect.ExerciseCost.Equal(dec("10000")))
	// ISO bargain element goes to AMT, never ordinary income.
	require.True(t, effect.AMTAdjustment.Equal(dec("30000")))
	require.True(t, effect.OrdinaryIncome.IsZero())
}

func TestExerciseISOAtStrikeHasNoAdjustment(t *testing.T) {
	lots := LotSet{"A": vestedISO("A", 1000, "10")}

	effect, err := ApplyAction(lots, action(ActionExercise, "A", 1000, date(2025, 6, 1)), dec("10"))
	require.NoError(t, err)
	require.True(t, effect.AMTAdjustment.IsZero())
	require.True(t, effect.ExerciseCost.Equal(dec("10000")))
}

func TestExerciseNSOOrdinaryIncome(t *testing.T) {
	lot := vestedISO("A", 500, "4")
	lot.Instrument = InstrumentNSO
	lots := LotSet{"A": lot}

	effect, err := ApplyAction(lots, action(ActionExercise, "A", 500, date(2025, 6, 1)), dec("14"))
	require.NoError(t, err)
	require.True(t, effect.OrdinaryIncome.Equal(dec("5000")))
	require.True(t, effect.AMTAdjustment.IsZero())
}

func TestExercisePartialSplits(t *testing.T) {
	lots := LotSet{"A": vestedISO("A", 1000, "10")}
	when := date(2025, 6, 1)

	effect, err := ApplyAction(lots, action(ActionExercise, "A", 400, when), dec("40"))
	require.NoError(t, err)

	require.Equal(t, "A_ex20250601", effect.ResultLotID)
	require.Len(t, lots, 2)

	residual := lots["A"]
	require.Equal(t, int64(600), residual.Quantity)
	require.Equal(t, LifecycleVested, residual.Lifecycle)
	require.NotNil(t, residual.ExpirationDate)

	child := lots["A_ex20250601"]
	require.Equal(t, int64(400), child.Quantity)
	require.Equal(t, LifecycleExercised, child.Lifecycle)

	// Shares are conserved across the split.
	require.Equal(t, int64(1000), lots.TotalQuantity())
}

func TestExerciseRejectsWrongState(t *testing.T) {
	t.Run("granted lot", func(t *testing.T) {
		lot := vestedISO("A", 100, "10")
		lot.Lifecycle = LifecycleGranted
		lots := LotSet{"A": lot}
		_, err := ApplyAction(lots, action(ActionExercise, "A", 100, date(2025, 1, 1)), dec("40"))
		require.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("rsu", func(t *testing.T) {
		lot := vestedISO("A", 100, "10")
		lot.Instrument = InstrumentRSU
		lot.ExpirationDate = nil
		lots := LotSet{"A": lot}
		_, err := ApplyAction(lots, action(ActionExercise, "A", 100, date(2025, 1, 1)), dec("40"))
		require.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("zero strike", func(t *testing.T) {
		lot := vestedISO("A", 100, "0")
		lots := LotSet{"A": lot}
		_, err := ApplyAction(lots, action(ActionExercise, "A", 100, date(2025, 1, 1)), dec("40"))
		require.ErrorIs(t, err, ErrMissingStrike)
	})
}

func TestSellLongAndShortTerm(t *testing.T) {
	lots := LotSet{
		"OLD": exercisedLot("OLD", 100, "10", date(2023, 1, 1), "15"),
		"NEW": exercisedLot("NEW", 100, "10", date(2025, 10, 1), "35"),
	}

	long, err := ApplyAction(lots, action(ActionSell, "OLD", 100, date(2025, 12, 1)), dec("40"))
	require.NoError(t, err)
	require.Equal(t, TaxClassLongTerm, long.Gain.Class)
	require.True(t, long.Gain.Proceeds.Equal(dec("4000")))
	require.True(t, long.Gain.Basis.Equal(dec("1000")))
	require.True(t, long.Gain.Gain().Equal(dec("3000")))
	require.True(t, long.Proceeds.Equal(dec("4000")))
	require.NotNil(t, long.Sale)
	require.Equal(t, int64(100), long.Sale.Quantity)

	short, err := ApplyAction(lots, action(ActionSell, "NEW", 100, date(2025, 12, 1)), dec("40"))
	require.NoError(t, err)
	require.Equal(t, TaxClassShortTerm, short.Gain.Class)

	// Disposed lots stay in the arena for reporting.
	require.Equal(t, LifecycleDisposed, lots["OLD"].Lifecycle)
	require.Equal(t, LifecycleDisposed, lots["NEW"].Lifecycle)
}

func TestSellRejectsUnexercised(t *testing.T) {
	lots := LotSet{"A": vestedISO("A", 100, "10")}
	_, err := ApplyAction(lots, action(ActionSell, "A", 100, date(2025, 1, 1)), dec("40"))
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDonateTransition(t *testing.T) {
	lots := LotSet{"A": exercisedLot("A", 200, "10", date(2023, 1, 1), "15")}

	effect, err := ApplyAction(lots, action(ActionDonate, "A", 150, date(2025, 12, 1)), dec("40"))
	require.NoError(t, err)

	require.NotNil(t, effect.Donation)
	require.True(t, effect.Donation.FairValue.Equal(dec("6000")))
	require.True(t, effect.Donation.CostBasis.Equal(dec("1500")))
	// Donations produce no proceeds and no capital gain.
	require.True(t, effect.Proceeds.IsZero())
	require.Nil(t, effect.Gain)
	require.NotNil(t, effect.Donated)

	donatedLot := lots[effect.ResultLotID]
	require.Equal(t, LifecycleDisposed, donatedLot.Lifecycle)
	require.Equal(t, TaxClassDonated, donatedLot.TaxClass)
	require.Equal(t, int64(50), lots["A"].Quantity)
}

func TestActionPriceOverride(t *testing.T) {
	lots := LotSet{"A": exercisedLot("A", 100, "10", date(2023, 1, 1), "15")}
	override := dec("55")
	a := PlannedAction{Date: date(2025, 6, 1), Type: ActionSell, LotID: "A", Quantity: 100, Price: &override}

	effect, err := ApplyAction(lots, a, dec("40"))
	require.NoError(t, err)
	require.True(t, effect.Proceeds.Equal(dec("5500")))
}

func TestExpireOptions(t *testing.T) {
	inMoney := vestedISO("A", 100, "10")
	expA := date(2025, 6, 30)
	inMoney.ExpirationDate = &expA

	underwater := vestedISO("B", 50, "100")
	expB := date(2025, 3, 31)
	underwater.ExpirationDate = &expB

	alive := vestedISO("C", 75, "10")

	exercised := exercisedLot("D", 10, "10", date(2024, 1, 1), "15")

	lots := LotSet{"A": inMoney, "B": underwater, "C": alive, "D": exercised}

	expired := ExpireOptions(lots, date(2025, 12, 31), dec("40"))
	require.Len(t, expired, 2)

	// Sorted by lot id.
	require.Equal(t, "A", expired[0].LotID)
	require.True(t, expired[0].ValueLost.Equal(dec("3000")))
	require.Equal(t, "B", expired[1].LotID)
	// Underwater options lose nothing.
	require.True(t, expired[1].ValueLost.IsZero())

	_, hasA := lots["A"]
	_, hasB := lots["B"]
	require.False(t, hasA)
	require.False(t, hasB)
	require.Contains(t, lots, "C")
	require.Contains(t, lots, "D")
}

package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ivyxu/EquityGo/internal/equity"
)

func newInput(year int, wages float64) equity.TaxInput {
	return equity.TaxInput{
		Year:           year,
		Wages:          d(wages),
		FederalCharity: equity.NewCharitableState(),
		StateCharity:   equity.NewCharitableState(),
		AMTCredit:      equity.NewAMTCreditState(),
	}
}

func TestComputeWagesOnly(t *testing.T) {
	calc := NewCalculator(DefaultRateTable())

	res, err := calc.Compute(newInput(2025, 100000))
	require.NoError(t, err)

	require.True(t, res.AGI.Equal(d(100000)))
	// Federal: (100000 - 15000) through the ordinary schedule = 13614.
	// State: (100000 - 5540) through the state schedule = 5326.212.
	require.True(t, res.RegularTax.Equal(d(18940.212)), "got %s", res.RegularTax)
	require.True(t, res.TotalTax.Equal(res.RegularTax))
	require.True(t, res.AMTTax.IsZero())
	require.True(t, res.AMTGenerated.IsZero())
	require.True(t, res.AMTUsed.IsZero())
}

func TestComputeShortGainsAreOrdinary(t *testing.T) {
	calc := NewCalculator(DefaultRateTable())

	base, err := calc.Compute(newInput(2025, 100000))
	require.NoError(t, err)

	in := newInput(2025, 100000)
	in.Gains = []equity.CapitalGain{{
		Quantity: 100, Proceeds: d(15000), Basis: d(5000), Class: equity.TaxClassShortTerm,
	}}
	withShort, err := calc.Compute(in)
	require.NoError(t, err)

	require.True(t, withShort.AGI.Equal(d(110000)))
	// The extra 10k lands in the 22% ordinary band, not a capital band.
	delta := withShort.RegularTax.Sub(base.RegularTax)
	require.True(t, delta.GreaterThan(d(2000)), "delta %s", delta)
}

func TestComputeLongGainsPreferential(t *testing.T) {
	calc := NewCalculator(DefaultRateTable())

	// Long-term gains alone, under the 0% capital threshold: no federal
	// ordinary tax and no capital tax.
	in := newInput(2025, 0)
	in.Gains = []equity.CapitalGain{{
		Quantity: 1000, Proceeds: d(50000), Basis: d(10000), Class: equity.TaxClassLongTerm,
	}}
	res, err := calc.Compute(in)
	require.NoError(t, err)

	require.True(t, res.AGI.Equal(d(40000)))
	// Only the state taxes this income.
	stateOnly := bracketTax(d(40000-5540), DefaultRateTable().StateBrackets)
	require.True(t, res.TotalTax.Equal(stateOnly), "got %s want %s", res.TotalTax, stateOnly)
}

func TestComputeISOExerciseGeneratesAMT(t *testing.T) {
	calc := NewCalculator(DefaultRateTable())

	in := newInput(2025, 200000)
	in.ISOAdjustment = d(1000000)
	res, err := calc.Compute(in)
	require.NoError(t, err)

	require.True(t, res.AMTTax.IsPositive())
	// With no other preference items the whole excess is ISO-generated
	// credit.
	require.True(t, res.AMTGenerated.Equal(res.AMTTax))
	require.True(t, res.AMTUsed.IsZero())
	require.True(t, res.TotalTax.Equal(res.RegularTax.Add(res.AMTTax)))
}

func TestComputeUsesAMTCreditWhenNoAMT(t *testing.T) {
	calc := NewCalculator(DefaultRateTable())

	in := newInput(2025, 300000)
	in.AMTCredit = equity.AMTCreditState{Balance: d(50000)}
	res, err := calc.Compute(in)
	require.NoError(t, err)

	require.True(t, res.AMTTax.IsZero())
	require.True(t, res.AMTUsed.IsPositive())
	require.True(t, res.AMTUsed.LessThanOrEqual(d(50000)))
	require.True(t, res.TotalTax.Equal(res.RegularTax.Sub(res.AMTUsed)))
}

func TestComputeAMTCreditLimitedByHeadroom(t *testing.T) {
	calc := NewCalculator(DefaultRateTable())

	// A small balance is consumed in full; a huge balance only down to
	// the tentative-minimum floor.
	small := newInput(2025, 300000)
	small.AMTCredit = equity.AMTCreditState{Balance: d(1000)}
	resSmall, err := calc.Compute(small)
	require.NoError(t, err)
	require.True(t, resSmall.AMTUsed.Equal(d(1000)))

	huge := newInput(2025, 300000)
	huge.AMTCredit = equity.AMTCreditState{Balance: d(10000000)}
	resHuge, err := calc.Compute(huge)
	require.NoError(t, err)
	require.True(t, resHuge.AMTUsed.LessThan(resHuge.RegularTax))
}

func TestComputeStockDonationCaps(t *testing.T) {
	calc := NewCalculator(DefaultRateTable())

	in := newInput(2025, 500000)
	in.Donations = []equity.Donation{{
		Quantity: 10000, FairValue: d(400000), CostBasis: d(100000),
	}}
	res, err := calc.Compute(in)
	require.NoError(t, err)

	// Federal stock cap: 30% of 500k AGI.
	require.True(t, res.Federal.DeductionUsed.Equal(d(150000)))
	require.True(t, res.Federal.Charity.TotalAvailable().Equal(d(250000)))
	// State cap: 50% of AGI.
	require.True(t, res.State.DeductionUsed.Equal(d(250000)))
	require.True(t, res.State.Charity.TotalAvailable().Equal(d(150000)))
}

func TestComputeCashDonationBypassesStockLedger(t *testing.T) {
	calc := NewCalculator(DefaultRateTable())

	in := newInput(2025, 500000)
	in.Donations = []equity.Donation{{CashAmount: d(100000)}}
	res, err := calc.Compute(in)
	require.NoError(t, err)

	// Cash under the 60% cap deducts immediately and leaves no
	// carryforward.
	require.True(t, res.Federal.DeductionUsed.Equal(d(100000)))
	require.True(t, res.Federal.Charity.TotalAvailable().IsZero())
}

func TestComputeCarryforwardConsumedNextYear(t *testing.T) {
	calc := NewCalculator(DefaultRateTable())

	in := newInput(2025, 500000)
	in.Donations = []equity.Donation{{FairValue: d(400000)}}
	first, err := calc.Compute(in)
	require.NoError(t, err)

	next := newInput(2026, 500000)
	next.FederalCharity = first.Federal.Charity
	next.StateCharity = first.State.Charity
	second, err := calc.Compute(next)
	require.NoError(t, err)

	// No new donations, yet the carried 250k keeps deducting at the cap.
	require.True(t, second.Federal.DeductionUsed.Equal(d(150000)))
	require.True(t, second.Federal.Charity.TotalAvailable().Equal(d(100000)))
	require.True(t, second.TotalTax.LessThan(first.TotalTax.Add(d(1))))
}

func TestComputeIsPure(t *testing.T) {
	calc := NewCalculator(DefaultRateTable())

	in := newInput(2025, 350000)
	in.ISOAdjustment = d(200000)
	in.Donations = []equity.Donation{{FairValue: d(50000)}}

	first, err := calc.Compute(in)
	require.NoError(t, err)
	second, err := calc.Compute(in)
	require.NoError(t, err)

	require.True(t, first.TotalTax.Equal(second.TotalTax))
	require.True(t, first.AMTGenerated.Equal(second.AMTGenerated))
	require.True(t, first.Federal.Charity.TotalAvailable().Equal(second.Federal.Charity.TotalAvailable()))
}

func TestComputeZeroIncome(t *testing.T) {
	calc := NewCalculator(DefaultRateTable())
	res, err := calc.Compute(newInput(2025, 0))
	require.NoError(t, err)
	require.True(t, res.TotalTax.IsZero())
	require.True(t, decimal.Zero.Equal(res.AGI))
}

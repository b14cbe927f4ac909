package tax

import (
	"github.com/shopspring/decimal"

	"github.com/ivyxu/EquityGo/internal/equity"
)

// Bracket is one marginal rate band. A zero ceiling means the band is
// unbounded.
type Bracket struct {
	UpTo decimal.Decimal
	Rate decimal.Decimal
}

// RateTable is an immutable single-filer rate configuration for one
// federal + one state regime.
type RateTable struct {
	StandardDeduction decimal.Decimal
	Ordinary          []Bracket
	LongTerm          []Bracket

	AMTRateLow       decimal.Decimal
	AMTRateHigh      decimal.Decimal
	AMTHighThreshold decimal.Decimal
	AMTExemption     decimal.Decimal
	AMTPhaseoutStart decimal.Decimal

	FederalStockCapPct decimal.Decimal
	FederalCashCapPct  decimal.Decimal

	StateStandardDeduction decimal.Decimal
	StateBrackets          []Bracket
	StateCapPct            decimal.Decimal
}

func d(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

// DefaultRateTable is the 2025 single-filer table: federal ordinary
// and long-term brackets, AMT parameters, and a California-style
// state schedule.
func DefaultRateTable() RateTable {
	return RateTable{
		StandardDeduction: d(15000),
		Ordinary: []Bracket{
			{UpTo: d(11925), Rate: d(0.10)},
			{UpTo: d(48475), Rate: d(0.12)},
			{UpTo: d(103350), Rate: d(0.22)},
			{UpTo: d(197300), Rate: d(0.24)},
			{UpTo: d(250525), Rate: d(0.32)},
			{UpTo: d(626350), Rate: d(0.35)},
			{Rate: d(0.37)},
		},
		LongTerm: []Bracket{
			{UpTo: d(48350), Rate: d(0)},
			{UpTo: d(533400), Rate: d(0.15)},
			{Rate: d(0.20)},
		},

		AMTRateLow:       d(0.26),
		AMTRateHigh:      d(0.28),
		AMTHighThreshold: d(239100),
		AMTExemption:     d(88100),
		AMTPhaseoutStart: d(626350),

		FederalStockCapPct: d(0.30),
		FederalCashCapPct:  d(0.60),

		StateStandardDeduction: d(5540),
		StateBrackets: []Bracket{
			{UpTo: d(10756), Rate: d(0.01)},
			{UpTo: d(25499), Rate: d(0.02)},
			{UpTo: d(40245), Rate: d(0.04)},
			{UpTo: d(55866), Rate: d(0.06)},
			{UpTo: d(70606), Rate: d(0.08)},
			{UpTo: d(360659), Rate: d(0.093)},
			{UpTo: d(432787), Rate: d(0.103)},
			{UpTo: d(721314), Rate: d(0.113)},
			{Rate: d(0.123)},
		},
		StateCapPct: d(0.50),
	}
}

// Snapshot extracts the rate slice reporting needs post-run.
func (t RateTable) Snapshot() equity.RateSnapshot {
	top := decimal.Zero
	if len(t.Ordinary) > 0 {
		top = t.Ordinary[len(t.Ordinary)-1].Rate
	}
	lt := decimal.Zero
	if len(t.LongTerm) > 1 {
		lt = t.LongTerm[1].Rate
	}
	return equity.RateSnapshot{
		FederalStockCapPct: t.FederalStockCapPct,
		FederalCashCapPct:  t.FederalCashCapPct,
		StateCapPct:        t.StateCapPct,
		LongTermRatePct:    lt,
		TopOrdinaryRatePct: top,
	}
}

// bracketTax computes tax on `amount` across marginal bands.
func bracketTax(amount decimal.Decimal, brackets []Bracket) decimal.Decimal {
	if !amount.IsPositive() {
		return decimal.Zero
	}
	tax := decimal.Zero
	lower := decimal.Zero
	for _, b := range brackets {
		upper := amount
		if !b.UpTo.IsZero() && b.UpTo.LessThan(amount) {
			upper = b.UpTo
		}
		if upper.GreaterThan(lower) {
			tax = tax.Add(upper.Sub(lower).Mul(b.Rate))
		}
		if b.UpTo.IsZero() || b.UpTo.GreaterThanOrEqual(amount) {
			break
		}
		lower = b.UpTo
	}
	return tax
}

// stackedCapitalTax taxes long-term gains stacked on top of ordinary
// taxable income, so the gains fill the capital brackets starting at
// the ordinary income level.
func stackedCapitalTax(ordinaryTaxable, gains decimal.Decimal, brackets []Bracket) decimal.Decimal {
	if !gains.IsPositive() {
		return decimal.Zero
	}
	total := ordinaryTaxable.Add(gains)
	return bracketTax(total, brackets).Sub(bracketTax(ordinaryTaxable, brackets))
}

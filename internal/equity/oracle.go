package equity

import "github.com/shopspring/decimal"

// TaxInput is everything the external tax oracle needs for one year:
// aggregated income components, the per-lot gain and donation detail,
// and the prior-year carryforward balances of all three ledgers.
type TaxInput struct {
	Year             int
	Wages            decimal.Decimal
	OtherIncome      decimal.Decimal
	ExerciseOrdinary decimal.Decimal // NSO bargain element
	ISOAdjustment    decimal.Decimal // ISO bargain element, AMT preference
	Gains            []CapitalGain
	Donations        []Donation
	FederalCharity   CharitableState
	StateCharity     CharitableState
	AMTCredit        AMTCreditState
}

// JurisdictionResult is one jurisdiction's charitable outcome for the
// year: deduction used, amount newly expired, and the folded ledger to
// carry into the next year.
type JurisdictionResult struct {
	DeductionUsed decimal.Decimal
	Expired       decimal.Decimal
	Charity       CharitableState
}

// TaxResult is the oracle's answer for one year.
type TaxResult struct {
	TotalTax   decimal.Decimal
	RegularTax decimal.Decimal
	AMTTax     decimal.Decimal
	AGI        decimal.Decimal

	Federal JurisdictionResult
	State   JurisdictionResult

	// AMTGenerated is the portion of this year's AMT attributable to
	// ISO adjustments; AMTUsed is credit consumed against the excess
	// of regular tax over AMT.
	AMTGenerated decimal.Decimal
	AMTUsed      decimal.Decimal
}

// TaxOracle is the single-year tax arithmetic collaborator. It must be
// pure: same input, same result, no side effects. Failures are fatal
// for the run; a wrong tax number is worse than a loud failure.
type TaxOracle interface {
	Compute(in TaxInput) (TaxResult, error)
}

// RateSnapshot is the immutable slice of rate configuration that
// reporting needs after a run, passed instead of the whole profile so
// the core never couples to profile loading.
type RateSnapshot struct {
	FederalStockCapPct decimal.Decimal `json:"federal_stock_cap_pct"`
	FederalCashCapPct  decimal.Decimal `json:"federal_cash_cap_pct"`
	StateCapPct        decimal.Decimal `json:"state_cap_pct"`
	LongTermRatePct    decimal.Decimal `json:"long_term_rate_pct"`
	TopOrdinaryRatePct decimal.Decimal `json:"top_ordinary_rate_pct"`
}

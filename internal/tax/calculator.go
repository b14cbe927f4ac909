package tax

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ivyxu/EquityGo/internal/equity"
)

// Calculator is the single-year tax oracle: it turns aggregated income,
// gain, and donation components into a tax bill plus the folded
// charitable and AMT ledgers. It is pure; every Compute call depends
// only on its input.
type Calculator struct {
	rates RateTable
}

// NewCalculator returns a calculator for the given rate table.
func NewCalculator(rates RateTable) *Calculator {
	return &Calculator{rates: rates}
}

// Rates exposes the immutable table, for report snapshots.
func (c *Calculator) Rates() RateTable {
	return c.rates
}

var _ equity.TaxOracle = (*Calculator)(nil)

// Compute implements the oracle contract for one tax year.
func (c *Calculator) Compute(in equity.TaxInput) (equity.TaxResult, error) {
	t := c.rates

	shortGains := decimal.Zero
	longGains := decimal.Zero
	for _, g := range in.Gains {
		switch g.Class {
		case equity.TaxClassLongTerm:
			longGains = longGains.Add(g.Gain())
		default:
			shortGains = shortGains.Add(g.Gain())
		}
	}

	stockDonated := decimal.Zero
	cashDonated := decimal.Zero
	for _, dn := range in.Donations {
		stockDonated = stockDonated.Add(dn.FairValue)
		cashDonated = cashDonated.Add(dn.CashAmount)
	}

	// Short-term gains are taxed as ordinary income.
	ordinary := in.Wages.Add(in.OtherIncome).Add(in.ExerciseOrdinary).Add(shortGains)
	agi := ordinary.Add(longGains)

	// Federal charitable: cash up to its own cap this year; stock (and
	// any cash overflow) runs through the carryforward ledger under
	// the appreciated-stock cap.
	cashUsed := decimal.Min(cashDonated, agi.Mul(t.FederalCashCapPct))
	cashOverflow := cashDonated.Sub(cashUsed)
	fed := equity.ApplyCharitable(in.FederalCharity, in.Year,
		agi.Mul(t.FederalStockCapPct), stockDonated.Add(cashOverflow))
	fedDeduction := fed.CurrentYearUsed.Add(cashUsed)

	// State applies one cap to both characters.
	st := equity.ApplyCharitable(in.StateCharity, in.Year,
		agi.Mul(t.StateCapPct), stockDonated.Add(cashDonated))
	stateDeduction := st.CurrentYearUsed

	taxableOrdinary := maxZero(ordinary.Sub(fedDeduction).Sub(t.StandardDeduction))
	fedRegular := bracketTax(taxableOrdinary, t.Ordinary).
		Add(stackedCapitalTax(taxableOrdinary, longGains, t.LongTerm))

	amtExcess, amtGenerated := c.amt(ordinary, longGains, fedDeduction, in.ISOAdjustment, fedRegular)

	// Credit is consumed only in years with no AMT, against the
	// excess of regular over tentative minimum tax.
	creditUsed := decimal.Zero
	if amtExcess.IsZero() {
		tentative := c.tentativeMinimum(ordinary, longGains, fedDeduction, decimal.Zero)
		headroom := maxZero(fedRegular.Sub(tentative))
		creditUsed = decimal.Min(in.AMTCredit.Balance, headroom)
	}

	stateTax := bracketTax(maxZero(agi.Sub(stateDeduction).Sub(t.StateStandardDeduction)), t.StateBrackets)

	regular := fedRegular.Add(stateTax)
	total := regular.Add(amtExcess).Sub(creditUsed)

	zap.L().Debug("tax year computed",
		zap.Int("year", in.Year),
		zap.String("agi", agi.StringFixed(2)),
		zap.String("total", total.StringFixed(2)),
		zap.String("amt_excess", amtExcess.StringFixed(2)),
	)

	return equity.TaxResult{
		TotalTax:   total,
		RegularTax: regular,
		AMTTax:     amtExcess,
		AGI:        agi,
		Federal: equity.JurisdictionResult{
			DeductionUsed: fedDeduction,
			Expired:       fed.ExpiredThisYear,
			Charity:       fed,
		},
		State: equity.JurisdictionResult{
			DeductionUsed: stateDeduction,
			Expired:       st.ExpiredThisYear,
			Charity:       st,
		},
		AMTGenerated: amtGenerated,
		AMTUsed:      creditUsed,
	}, nil
}

// amt returns the AMT owed on top of regular tax and the portion of it
// attributable to the ISO adjustment (the credit-generating slice).
func (c *Calculator) amt(ordinary, longGains, deduction, isoAdjustment, fedRegular decimal.Decimal) (excess, generated decimal.Decimal) {
	withISO := c.tentativeMinimum(ordinary, longGains, deduction, isoAdjustment)
	withoutISO := c.tentativeMinimum(ordinary, longGains, deduction, decimal.Zero)

	excess = maxZero(withISO.Sub(fedRegular))
	excessWithout := maxZero(withoutISO.Sub(fedRegular))
	generated = maxZero(excess.Sub(excessWithout))
	return excess, generated
}

// tentativeMinimum computes the tentative minimum tax. Charitable
// deductions survive for AMT; the standard deduction does not. Long
// term gains keep their preferential rates inside AMT.
func (c *Calculator) tentativeMinimum(ordinary, longGains, deduction, isoAdjustment decimal.Decimal) decimal.Decimal {
	t := c.rates
	amtiOrdinary := maxZero(ordinary.Sub(deduction)).Add(isoAdjustment)
	amti := amtiOrdinary.Add(longGains)

	exemption := maxZero(t.AMTExemption.Sub(
		maxZero(amti.Sub(t.AMTPhaseoutStart)).Mul(decimal.NewFromFloat(0.25))))

	base := maxZero(amtiOrdinary.Sub(exemption))
	var tax decimal.Decimal
	if base.GreaterThan(t.AMTHighThreshold) {
		tax = t.AMTHighThreshold.Mul(t.AMTRateLow).
			Add(base.Sub(t.AMTHighThreshold).Mul(t.AMTRateHigh))
	} else {
		tax = base.Mul(t.AMTRateLow)
	}
	return tax.Add(stackedCapitalTax(base, longGains, t.LongTerm))
}

func maxZero(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

package equity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Grant describes one equity grant: its total share count, strike, and
// the charitable program in effect for lots it produced.
type Grant struct {
	ID          string            `json:"id" yaml:"id"`
	TotalShares int64             `json:"total_shares" yaml:"total_shares"`
	Strike      decimal.Decimal   `json:"strike" yaml:"strike"`
	Program     CharitableProgram `json:"program" yaml:"program"`
}

// LiquidityEventType distinguishes IPO events (which trigger the
// pledge remainder) from tender offers (which do not).
type LiquidityEventType string

const (
	LiquidityIPO    LiquidityEventType = "ipo"
	LiquidityTender LiquidityEventType = "tender"
)

// LiquidityEvent is a dated company liquidity event from the profile.
type LiquidityEvent struct {
	ID   string             `json:"id" yaml:"id"`
	Type LiquidityEventType `json:"type" yaml:"type"`
	Date time.Time          `json:"date" yaml:"date"`
}

// PriceCurve supplies the projected share price for a year. Action
// price overrides win over the curve.
type PriceCurve interface {
	Price(year int) decimal.Decimal
}

// Plan is the assembled, validated input to a projection run: initial
// position, ordered actions, grants, liquidity events, and prices.
type Plan struct {
	Name        string
	StartYear   int
	EndYear     int
	InitialCash decimal.Decimal
	Wages       decimal.Decimal
	OtherIncome decimal.Decimal

	Lots    LotSet
	Actions []PlannedAction
	Grants  []Grant
	Events  []LiquidityEvent
	Prices  PriceCurve
	Rates   RateSnapshot
}

// ProgramForGrant resolves the charitable program for a grant id,
// falling back to the first grant's program, then to a zero program,
// when the grant is unknown or the lot carried no grant reference.
func (p Plan) ProgramForGrant(grantID string) CharitableProgram {
	for _, g := range p.Grants {
		if g.ID == grantID {
			return g.Program
		}
	}
	if len(p.Grants) > 0 {
		return p.Grants[0].Program
	}
	return CharitableProgram{PledgePct: decimal.Zero, MatchRatio: decimal.Zero}
}

// YearlyState is one simulated year's complete snapshot. Created once
// by the projector and never mutated afterwards; the next year reads
// it, reporting renders it.
type YearlyState struct {
	Year int `json:"year"`

	StartingCash decimal.Decimal `json:"starting_cash"`
	EndingCash   decimal.Decimal `json:"ending_cash"`

	Wages            decimal.Decimal `json:"wages"`
	OtherIncome      decimal.Decimal `json:"other_income"`
	ExerciseOrdinary decimal.Decimal `json:"exercise_ordinary"`
	ExerciseCosts    decimal.Decimal `json:"exercise_costs"`
	SaleProceeds     decimal.Decimal `json:"sale_proceeds"`

	RegularTax decimal.Decimal `json:"regular_tax"`
	AMTTax     decimal.Decimal `json:"amt_tax"`
	TaxPaid    decimal.Decimal `json:"tax_paid"`
	AGI        decimal.Decimal `json:"agi"`

	DonationValue     decimal.Decimal `json:"donation_value"`
	CompanyMatch      decimal.Decimal `json:"company_match"`
	ExpiredOptionLoss decimal.Decimal `json:"expired_option_loss"`

	SharePrice decimal.Decimal `json:"share_price"`

	Lots          LotSet           `json:"lots"`
	SharesSold    map[string]int64 `json:"shares_sold"`
	SharesDonated map[string]int64 `json:"shares_donated"`

	FederalCharity CharitableState `json:"federal_charity"`
	StateCharity   CharitableState `json:"state_charity"`
	AMTCredit      AMTCreditState  `json:"amt_credit"`
	Pledge         PledgeState     `json:"pledge"`

	PledgeExpiredShares int64 `json:"pledge_expired_shares"`

	EquityValue decimal.Decimal `json:"equity_value"`
	NetWorth    decimal.Decimal `json:"net_worth"`
}

// Summary holds plan-level metrics. Every field is derived from the
// yearly detail, never computed independently, so summary and detail
// cannot disagree.
type Summary struct {
	TotalTax        decimal.Decimal `json:"total_tax"`
	TotalDonated    decimal.Decimal `json:"total_donated"`
	TotalMatch      decimal.Decimal `json:"total_match"`
	TotalProceeds   decimal.Decimal `json:"total_proceeds"`
	FinalCash       decimal.Decimal `json:"final_cash"`
	FinalNetWorth   decimal.Decimal `json:"final_net_worth"`
	SharesSold      int64           `json:"shares_sold"`
	SharesDonated   int64           `json:"shares_donated"`
	PledgeObligated int64           `json:"pledge_obligated"`
	PledgeFulfilled int64           `json:"pledge_fulfilled"`
	PledgeExpired   int64           `json:"pledge_expired"`
}

// ProjectionResult is the ordered yearly sequence plus derived
// summary metrics and the rate snapshot reporting needs.
type ProjectionResult struct {
	PlanName string          `json:"plan_name"`
	Years    []YearlyState   `json:"years"`
	Rates    RateSnapshot    `json:"rates"`
	Summary  Summary         `json:"summary"`
}

// summarize derives the summary from the yearly detail.
func summarize(years []YearlyState) Summary {
	s := Summary{
		TotalTax:      decimal.Zero,
		TotalDonated:  decimal.Zero,
		TotalMatch:    decimal.Zero,
		TotalProceeds: decimal.Zero,
		FinalCash:     decimal.Zero,
		FinalNetWorth: decimal.Zero,
	}
	for _, y := range years {
		s.TotalTax = s.TotalTax.Add(y.TaxPaid)
		s.TotalDonated = s.TotalDonated.Add(y.DonationValue)
		s.TotalMatch = s.TotalMatch.Add(y.CompanyMatch)
		s.TotalProceeds = s.TotalProceeds.Add(y.SaleProceeds)
	}
	if len(years) > 0 {
		last := years[len(years)-1]
		s.FinalCash = last.EndingCash
		s.FinalNetWorth = last.NetWorth
		for _, n := range last.SharesSold {
			s.SharesSold += n
		}
		for _, n := range last.SharesDonated {
			s.SharesDonated += n
		}
		s.PledgeObligated = last.Pledge.TotalObligated()
		s.PledgeFulfilled = last.Pledge.TotalFulfilled()
		s.PledgeExpired = last.Pledge.ExpiredShares
	}
	return s
}

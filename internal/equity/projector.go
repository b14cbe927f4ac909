package equity

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Projector folds a plan's action list over its simulated years. It
// holds no mutable state between runs, so projecting the same plan
// twice yields identical results.
type Projector struct {
	oracle TaxOracle
}

// NewProjector returns a projector backed by the given tax oracle.
func NewProjector(oracle TaxOracle) *Projector {
	return &Projector{oracle: oracle}
}

// Validate rejects malformed plans before simulation begins: invalid
// lots, unknown action types, non-positive quantities, and actions
// dated outside the plan window are all detected up front.
func (p Plan) Validate() error {
	if p.StartYear > p.EndYear {
		return fmt.Errorf("%w: start year %d after end year %d", ErrInvalidPlan, p.StartYear, p.EndYear)
	}
	if p.Prices == nil {
		return fmt.Errorf("%w: no price curve", ErrInvalidPlan)
	}
	for _, id := range p.Lots.SortedIDs() {
		if err := p.Lots[id].Validate(); err != nil {
			return err
		}
	}
	for i, a := range p.Actions {
		if !a.Type.Valid() {
			return fmt.Errorf("%w: action %d: unknown type %q", ErrInvalidPlan, i, a.Type)
		}
		if a.Type != ActionHold && a.Quantity <= 0 {
			return fmt.Errorf("%w: action %d (%s %s): non-positive quantity %d",
				ErrInvalidPlan, i, a.Type, a.LotID, a.Quantity)
		}
		if y := a.Date.Year(); y < p.StartYear || y > p.EndYear {
			return fmt.Errorf("%w: action %d (%s %s) dated %s outside plan years %d-%d",
				ErrInvalidPlan, i, a.Type, a.LotID,
				a.Date.Format("2006-01-02"), p.StartYear, p.EndYear)
		}
	}
	return nil
}

// timeline interleaves planned actions and liquidity events for one
// year in ascending date order. Same-day actions keep their supplied
// order; a liquidity event on an action's date is processed after the
// actions, so "prior sales" means sales strictly before or on the
// event date.
type timelineItem struct {
	date   time.Time
	action *PlannedAction
	event  *LiquidityEvent
}

func yearTimeline(plan Plan, year int) []timelineItem {
	var items []timelineItem
	for i := range plan.Actions {
		if plan.Actions[i].Date.Year() == year {
			items = append(items, timelineItem{date: plan.Actions[i].Date, action: &plan.Actions[i]})
		}
	}
	for i := range plan.Events {
		if plan.Events[i].Date.Year() == year {
			items = append(items, timelineItem{date: plan.Events[i].Date, event: &plan.Events[i]})
		}
	}
	sort.SliceStable(items, func(a, b int) bool {
		if items[a].date.Equal(items[b].date) {
			// Events sort after actions on the same day.
			return items[a].action != nil && items[b].event != nil
		}
		return items[a].date.Before(items[b].date)
	})
	return items
}

// Project replays the plan year by year and returns the ordered yearly
// states plus derived summary metrics.
func (p *Projector) Project(plan Plan) (*ProjectionResult, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	lots := plan.Lots.Clone()
	cash := plan.InitialCash
	fedCharity := NewCharitableState()
	stateCharity := NewCharitableState()
	amtCredit := NewAMTCreditState()
	pledge := NewPledgeState()
	sold := map[string]int64{}
	donated := map[string]int64{}

	years := make([]YearlyState, 0, plan.EndYear-plan.StartYear+1)

	for year := plan.StartYear; year <= plan.EndYear; year++ {
		price := plan.Prices.Price(year)
		yearEnd := time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)

		ys := YearlyState{
			Year:         year,
			StartingCash: cash,
			Wages:        plan.Wages,
			OtherIncome:  plan.OtherIncome,
			SharePrice:   price,
		}
		in := TaxInput{
			Year:        year,
			Wages:       plan.Wages,
			OtherIncome: plan.OtherIncome,
		}

		for _, item := range yearTimeline(plan, year) {
			if item.event != nil {
				p.applyLiquidityEvent(&pledge, lots, plan, *item.event)
				continue
			}
			a := *item.action
			effect, err := ApplyAction(lots, a, price)
			if err != nil {
				return nil, fmt.Errorf("year %d: %w", year, err)
			}

			ys.ExerciseCosts = ys.ExerciseCosts.Add(effect.ExerciseCost)
			ys.SaleProceeds = ys.SaleProceeds.Add(effect.Proceeds)
			ys.ExerciseOrdinary = ys.ExerciseOrdinary.Add(effect.OrdinaryIncome)
			in.ExerciseOrdinary = in.ExerciseOrdinary.Add(effect.OrdinaryIncome)
			in.ISOAdjustment = in.ISOAdjustment.Add(effect.AMTAdjustment)
			if effect.Gain != nil {
				in.Gains = append(in.Gains, *effect.Gain)
			}
			if effect.Donation != nil {
				in.Donations = append(in.Donations, *effect.Donation)
				ys.DonationValue = ys.DonationValue.Add(effect.Donation.FairValue)
			}
			if effect.Sale != nil {
				sold[a.LotID] += effect.Sale.Quantity
				pledge.RecordSale(*effect.Sale, plan.ProgramForGrant(effect.Sale.GrantID))
			}
			if effect.Donated != nil {
				donated[a.LotID] += effect.Donated.Quantity
				res := pledge.Discharge(effect.Donated.Date, effect.Donated.Quantity, effect.Donated.Price)
				ys.CompanyMatch = ys.CompanyMatch.Add(res.CompanyMatch)
			}
		}

		for _, exp := range ExpireOptions(lots, yearEnd, price) {
			ys.ExpiredOptionLoss = ys.ExpiredOptionLoss.Add(exp.ValueLost)
		}
		ys.PledgeExpiredShares = pledge.ExpireWindows(yearEnd)

		in.FederalCharity = fedCharity.Clone()
		in.StateCharity = stateCharity.Clone()
		in.AMTCredit = amtCredit

		res, err := p.oracle.Compute(in)
		if err != nil {
			return nil, fmt.Errorf("year %d: tax oracle: %w", year, err)
		}

		fedCharity = res.Federal.Charity
		stateCharity = res.State.Charity
		amtCredit, err = amtCredit.Apply(res.AMTGenerated, res.AMTUsed)
		if err != nil {
			return nil, fmt.Errorf("year %d: %w", year, err)
		}

		cash = cash.
			Add(plan.Wages).
			Add(plan.OtherIncome).
			Add(ys.SaleProceeds).
			Sub(ys.ExerciseCosts).
			Sub(res.TotalTax)

		ys.EndingCash = cash
		ys.RegularTax = res.RegularTax
		ys.AMTTax = res.AMTTax
		ys.TaxPaid = res.TotalTax
		ys.AGI = res.AGI
		ys.Lots = lots.Clone()
		ys.SharesSold = cloneCounts(sold)
		ys.SharesDonated = cloneCounts(donated)
		ys.FederalCharity = fedCharity.Clone()
		ys.StateCharity = stateCharity.Clone()
		ys.AMTCredit = amtCredit
		ys.Pledge = pledge.Clone()
		ys.EquityValue = equityValue(lots, price)
		ys.NetWorth = cash.Add(ys.EquityValue)

		years = append(years, ys)

		zap.L().Debug("year projected",
			zap.Int("year", year),
			zap.String("tax", res.TotalTax.StringFixed(2)),
			zap.String("cash", cash.StringFixed(2)),
		)
	}

	return &ProjectionResult{
		PlanName: plan.Name,
		Years:    years,
		Rates:    plan.Rates,
		Summary:  summarize(years),
	}, nil
}

// applyLiquidityEvent handles a dated liquidity event. An IPO triggers
// the one-time pledge remainder sized on every share vested by the
// event date across all grants, not merely shares vesting inside the
// projection window.
func (p *Projector) applyLiquidityEvent(pledge *PledgeState, lots LotSet, plan Plan, ev LiquidityEvent) {
	if ev.Type != LiquidityIPO {
		return
	}
	target := pledgedVestedShares(lots, plan)
	prog := plan.ProgramForGrant("")
	pledge.RecordIPORemainder(ev.ID, ev.Date, target, prog)
}

// pledgedVestedShares computes the total pledge owed across all
// grants: for each grant, its pledge percentage times the shares of
// that grant that have vested (vested, exercised, or already
// disposed). Lots without a grant reference fall back to the first
// grant's program.
func pledgedVestedShares(lots LotSet, plan Plan) int64 {
	vestedByGrant := map[string]int64{}
	for _, id := range lots.SortedIDs() {
		lot := lots[id]
		switch lot.Lifecycle {
		case LifecycleVested, LifecycleExercised, LifecycleDisposed:
			vestedByGrant[lot.GrantID] += lot.Quantity
		}
	}

	var total int64
	for grantID, vested := range vestedByGrant {
		pct := plan.ProgramForGrant(grantID).PledgePct
		total += pct.Mul(decimal.NewFromInt(vested)).Floor().IntPart()
	}
	return total
}

func cloneCounts(m map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func equityValue(lots LotSet, price decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, lot := range lots {
		qty := decimal.NewFromInt(lot.Quantity)
		switch lot.Lifecycle {
		case LifecycleExercised:
			total = total.Add(price.Mul(qty))
		case LifecycleVested, LifecycleGranted:
			// Options count at intrinsic value only.
			intrinsic := price.Sub(lot.Strike)
			if intrinsic.IsPositive() {
				total = total.Add(intrinsic.Mul(qty))
			}
		}
	}
	return total
}

package equity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CapitalGain is the per-lot taxable component of a sale.
type CapitalGain struct {
	LotID    string          `json:"lot_id"`
	Quantity int64           `json:"quantity"`
	Proceeds decimal.Decimal `json:"proceeds"`
	Basis    decimal.Decimal `json:"basis"`
	Class    TaxClass        `json:"class"`
}

// Gain returns proceeds minus basis.
func (g CapitalGain) Gain() decimal.Decimal {
	return g.Proceeds.Sub(g.Basis)
}

// Donation is the per-lot component of a charitable donation.
type Donation struct {
	LotID      string          `json:"lot_id"`
	Quantity   int64           `json:"quantity"`
	FairValue  decimal.Decimal `json:"fair_value"`
	CostBasis  decimal.Decimal `json:"cost_basis"`
	CashAmount decimal.Decimal `json:"cash_amount"`
}

// SaleRecord carries what the pledge tracker needs to size an
// obligation from a sale.
type SaleRecord struct {
	LotID    string
	GrantID  string
	Date     time.Time
	Quantity int64
	Price    decimal.Decimal
}

// DonationRecord carries what the pledge tracker needs to discharge
// obligations from a donation.
type DonationRecord struct {
	LotID    string
	GrantID  string
	Date     time.Time
	Quantity int64
	Price    decimal.Decimal
}

// ActionEffect is the structured tax-relevant result of applying one
// action: everything the year accumulator and the oracle need, without
// exposing engine internals.
type ActionEffect struct {
	ExerciseCost   decimal.Decimal
	Proceeds       decimal.Decimal
	OrdinaryIncome decimal.Decimal
	AMTAdjustment  decimal.Decimal
	Gain           *CapitalGain
	Donation       *Donation
	Sale           *SaleRecord
	Donated        *DonationRecord
	ResultLotID    string
}

// ApplyAction applies one planned action to the lot arena at the given
// share price, mutating the arena in place and returning the effect.
// Plan-consistency failures are fatal for the run.
func ApplyAction(lots LotSet, a PlannedAction, price decimal.Decimal) (ActionEffect, error) {
	var effect ActionEffect

	if a.Type == ActionHold {
		return effect, nil
	}

	lot, ok := lots[a.LotID]
	if !ok {
		return effect, fmt.Errorf("%s action on %s: %w", a.Type, a.LotID, ErrUnknownLot)
	}
	if a.Quantity <= 0 || a.Quantity > lot.Quantity {
		return effect, fmt.Errorf("%s action on %s: requested %d of %d: %w",
			a.Type, a.LotID, a.Quantity, lot.Quantity, ErrInsufficientShares)
	}
	price = a.PriceOr(price)

	switch a.Type {
	case ActionVest:
		return applyVest(lots, lot, a)
	case ActionExercise:
		return applyExercise(lots, lot, a, price)
	case ActionSell:
		return applySell(lots, lot, a, price)
	case ActionDonate:
		return applyDonate(lots, lot, a, price)
	default:
		return effect, fmt.Errorf("%w: unsupported action type %q", ErrInvalidPlan, a.Type)
	}
}

func applyVest(lots LotSet, lot ShareLot, a PlannedAction) (ActionEffect, error) {
	if lot.Lifecycle != LifecycleGranted {
		return ActionEffect{}, fmt.Errorf("vest %s: lifecycle %s: %w",
			lot.ID, lot.Lifecycle, ErrInvalidTransition)
	}
	// Vesting lots are created at the exact vested quantity by the
	// loader, so vest never splits.
	lot.Lifecycle = LifecycleVested
	lots[lot.ID] = lot

	zap.L().Debug("lot vested",
		zap.String("lot", lot.ID),
		zap.Int64("quantity", lot.Quantity),
	)
	return ActionEffect{ResultLotID: lot.ID}, nil
}

func applyExercise(lots LotSet, lot ShareLot, a PlannedAction, price decimal.Decimal) (ActionEffect, error) {
	if lot.Lifecycle != LifecycleVested {
		return ActionEffect{}, fmt.Errorf("exercise %s: lifecycle %s: %w",
			lot.ID, lot.Lifecycle, ErrInvalidTransition)
	}
	if !lot.Instrument.IsOption() {
		return ActionEffect{}, fmt.Errorf("exercise %s: %s is not an option: %w",
			lot.ID, lot.Instrument, ErrInvalidTransition)
	}
	if lot.Strike.IsZero() {
		return ActionEffect{}, fmt.Errorf("exercise %s: %w", lot.ID, ErrMissingStrike)
	}

	exercised := splitOff(lots, lot, a)
	exDate := a.Date
	fmv := price
	exercised.Lifecycle = LifecycleExercised
	exercised.ExerciseDate = &exDate
	exercised.FMVAtExercise = &fmv
	exercised.ExpirationDate = nil
	lots[exercised.ID] = exercised

	qty := decimal.NewFromInt(a.Quantity)
	cost := lot.Strike.Mul(qty)
	bargain := price.Sub(lot.Strike).Mul(qty)
	if bargain.IsNegative() {
		bargain = decimal.Zero
	}

	effect := ActionEffect{
		ExerciseCost: cost,
		ResultLotID:  exercised.ID,
	}
	// ISO bargain element is an AMT preference item, not income; NSO
	// bargain element is ordinary income.
	switch lot.Instrument {
	case InstrumentISO:
		effect.AMTAdjustment = bargain
	case InstrumentNSO:
		effect.OrdinaryIncome = bargain
	}

	zap.L().Debug("lot exercised",
		zap.String("lot", exercised.ID),
		zap.Int64("quantity", a.Quantity),
		zap.String("cost", cost.StringFixed(2)),
	)
	return effect, nil
}

func applySell(lots LotSet, lot ShareLot, a PlannedAction, price decimal.Decimal) (ActionEffect, error) {
	if lot.Lifecycle != LifecycleExercised {
		return ActionEffect{}, fmt.Errorf("sell %s: lifecycle %s: %w",
			lot.ID, lot.Lifecycle, ErrInvalidTransition)
	}

	sold := splitOff(lots, lot, a)
	sold.Lifecycle = LifecycleDisposed
	sold.TaxClass = lot.holdingClass(a.Date)
	lots[sold.ID] = sold

	qty := decimal.NewFromInt(a.Quantity)
	gain := CapitalGain{
		LotID:    sold.ID,
		Quantity: a.Quantity,
		Proceeds: price.Mul(qty),
		Basis:    lot.Strike.Mul(qty),
		Class:    sold.TaxClass,
	}

	effect := ActionEffect{
		Proceeds:    gain.Proceeds,
		Gain:        &gain,
		ResultLotID: sold.ID,
		Sale: &SaleRecord{
			LotID:    sold.ID,
			GrantID:  lot.GrantID,
			Date:     a.Date,
			Quantity: a.Quantity,
			Price:    price,
		},
	}

	zap.L().Debug("lot sold",
		zap.String("lot", sold.ID),
		zap.Int64("quantity", a.Quantity),
		zap.String("class", string(sold.TaxClass)),
	)
	return effect, nil
}

func applyDonate(lots LotSet, lot ShareLot, a PlannedAction, price decimal.Decimal) (ActionEffect, error) {
	if lot.Lifecycle != LifecycleExercised {
		return ActionEffect{}, fmt.Errorf("donate %s: lifecycle %s: %w",
			lot.ID, lot.Lifecycle, ErrInvalidTransition)
	}

	donated := splitOff(lots, lot, a)
	donated.Lifecycle = LifecycleDisposed
	donated.TaxClass = TaxClassDonated
	lots[donated.ID] = donated

	qty := decimal.NewFromInt(a.Quantity)
	don := Donation{
		LotID:     donated.ID,
		Quantity:  a.Quantity,
		FairValue: price.Mul(qty),
		CostBasis: lot.Strike.Mul(qty),
	}

	effect := ActionEffect{
		Donation:    &don,
		ResultLotID: donated.ID,
		Donated: &DonationRecord{
			LotID:    donated.ID,
			GrantID:  lot.GrantID,
			Date:     a.Date,
			Quantity: a.Quantity,
			Price:    price,
		},
	}

	zap.L().Debug("lot donated",
		zap.String("lot", donated.ID),
		zap.Int64("quantity", a.Quantity),
		zap.String("fair_value", don.FairValue.StringFixed(2)),
	)
	return effect, nil
}

// splitOff consumes a.Quantity shares from lot. On a full consume the
// lot keeps its identity in its new state; on a partial consume the
// residual retains the original id and state while the affected shares
// move to a child lot with a derived id.
func splitOff(lots LotSet, lot ShareLot, a PlannedAction) ShareLot {
	if a.Quantity == lot.Quantity {
		return lot
	}
	residual := lot
	residual.Quantity = lot.Quantity - a.Quantity
	lots[residual.ID] = residual

	child := lot.Clone()
	child.ID = ChildLotID(lot.ID, a.Type, a.Date)
	child.Quantity = a.Quantity
	return child
}

// ExpiredOption describes an option lot removed from the arena because
// its expiration date passed unexercised.
type ExpiredOption struct {
	LotID     string
	Quantity  int64
	ValueLost decimal.Decimal
}

// ExpireOptions removes vested option lots whose expiration date is at
// or before asOf, recording the opportunity cost against the
// period-end price (clamped at zero). Deterministic: lots are visited
// in id order.
func ExpireOptions(lots LotSet, asOf time.Time, periodEndPrice decimal.Decimal) []ExpiredOption {
	var expired []ExpiredOption
	for _, id := range lots.SortedIDs() {
		lot := lots[id]
		if lot.Lifecycle != LifecycleVested || !lot.Instrument.IsOption() {
			continue
		}
		if lot.ExpirationDate == nil || lot.ExpirationDate.After(asOf) {
			continue
		}
		lost := periodEndPrice.Sub(lot.Strike).Mul(decimal.NewFromInt(lot.Quantity))
		if lost.IsNegative() {
			lost = decimal.Zero
		}
		expired = append(expired, ExpiredOption{
			LotID:     lot.ID,
			Quantity:  lot.Quantity,
			ValueLost: lost,
		})
		lot.Lifecycle = LifecycleExpired
		delete(lots, id)

		zap.L().Debug("option lot expired",
			zap.String("lot", id),
			zap.Int64("quantity", lot.Quantity),
			zap.String("value_lost", lost.StringFixed(2)),
		)
	}
	return expired
}

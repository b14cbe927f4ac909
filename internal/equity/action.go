package equity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ActionType is the kind of planned action applied to a lot.
type ActionType string

const (
	ActionVest     ActionType = "vest"
	ActionExercise ActionType = "exercise"
	ActionSell     ActionType = "sell"
	ActionDonate   ActionType = "donate"
	ActionHold     ActionType = "hold"
)

func (t ActionType) Valid() bool {
	switch t {
	case ActionVest, ActionExercise, ActionSell, ActionDonate, ActionHold:
		return true
	default:
		return false
	}
}

// PlannedAction is one dated instruction against a lot. Actions are
// immutable once created; the projector only ever mutates the lot set.
type PlannedAction struct {
	Date     time.Time        `json:"date"`
	Type     ActionType       `json:"type"`
	LotID    string           `json:"lot_id"`
	Quantity int64            `json:"quantity"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

// PriceOr returns the action's price override, or fallback when the
// action carries none.
func (a PlannedAction) PriceOr(fallback decimal.Decimal) decimal.Decimal {
	if a.Price != nil {
		return *a.Price
	}
	return fallback
}

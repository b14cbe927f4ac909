package plan

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ivyxu/EquityGo/internal/equity"
)

// Preflight dry-runs the plan's action list against a clone of the
// initial lot set, so unknown lot references, over-quantity requests,
// and invalid lifecycle transitions surface before a real projection
// starts rather than mid-run. Prices are irrelevant to consistency, so
// a unit price is used throughout.
func Preflight(p equity.Plan) error {
	if err := p.Validate(); err != nil {
		return err
	}

	lots := p.Lots.Clone()
	actions := make([]equity.PlannedAction, len(p.Actions))
	copy(actions, p.Actions)
	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].Date.Before(actions[j].Date)
	})

	unit := decimal.NewFromInt(1)
	for i, a := range actions {
		if _, err := equity.ApplyAction(lots, a, unit); err != nil {
			return fmt.Errorf("action %d (%s %s on %s): %w",
				i, a.Type, a.LotID, a.Date.Format(dateLayout), err)
		}
	}
	return nil
}

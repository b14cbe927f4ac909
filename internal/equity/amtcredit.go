package equity

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AMTCreditState tracks the alternative-minimum-tax credit generated
// by ISO exercises and consumed as regular tax exceeds AMT in later
// years. The balance carries forward indefinitely.
type AMTCreditState struct {
	GeneratedThisYear decimal.Decimal `json:"generated_this_year"`
	UsedThisYear      decimal.Decimal `json:"used_this_year"`
	Balance           decimal.Decimal `json:"balance"`
}

// NewAMTCreditState returns an empty ledger.
func NewAMTCreditState() AMTCreditState {
	return AMTCreditState{
		GeneratedThisYear: decimal.Zero,
		UsedThisYear:      decimal.Zero,
		Balance:           decimal.Zero,
	}
}

// Apply folds one year's generated and used amounts into a new state.
// The balance is prior + generated - used and must stay non-negative;
// a negative result means the oracle consumed credit it did not have,
// which is a contract violation, not a recoverable condition.
func (s AMTCreditState) Apply(generated, used decimal.Decimal) (AMTCreditState, error) {
	balance := s.Balance.Add(generated).Sub(used)
	if balance.IsNegative() {
		return AMTCreditState{}, fmt.Errorf(
			"amt credit balance would go negative: prior %s + generated %s - used %s",
			s.Balance.StringFixed(2), generated.StringFixed(2), used.StringFixed(2))
	}
	return AMTCreditState{
		GeneratedThisYear: generated,
		UsedThisYear:      used,
		Balance:           balance,
	}, nil
}

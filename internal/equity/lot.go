package equity

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// InstrumentType identifies the kind of equity grant a lot came from.
type InstrumentType string

const (
	InstrumentISO InstrumentType = "iso"
	InstrumentNSO InstrumentType = "nso"
	InstrumentRSU InstrumentType = "rsu"
)

// IsOption reports whether the instrument is an option type that can
// expire unexercised.
func (t InstrumentType) IsOption() bool {
	switch t {
	case InstrumentISO, InstrumentNSO:
		return true
	case InstrumentRSU:
		return false
	default:
		return false
	}
}

func (t InstrumentType) Valid() bool {
	switch t {
	case InstrumentISO, InstrumentNSO, InstrumentRSU:
		return true
	default:
		return false
	}
}

// Lifecycle is the lifecycle state of a share lot. Transitions are
// monotonic except for splits, which leave the residual lot in place.
type Lifecycle string

const (
	LifecycleGranted   Lifecycle = "granted_not_vested"
	LifecycleVested    Lifecycle = "vested_not_exercised"
	LifecycleExercised Lifecycle = "exercised_not_disposed"
	LifecycleDisposed  Lifecycle = "disposed"
	LifecycleExpired   Lifecycle = "expired"
)

func (l Lifecycle) Valid() bool {
	switch l {
	case LifecycleGranted, LifecycleVested, LifecycleExercised, LifecycleDisposed, LifecycleExpired:
		return true
	default:
		return false
	}
}

// TaxClass is the holding-period classification of a disposed lot.
type TaxClass string

const (
	TaxClassLongTerm      TaxClass = "long_term"
	TaxClassShortTerm     TaxClass = "short_term"
	TaxClassDonated       TaxClass = "donated"
	TaxClassNotApplicable TaxClass = "not_applicable"
)

// ShareLot is a quantity of shares sharing identity and tax history.
// Lots are stored by value in a LotSet and never aliased across years;
// child lots produced by splits embed the action date in their id.
type ShareLot struct {
	ID             string           `json:"id"`
	GrantID        string           `json:"grant_id,omitempty"`
	Instrument     InstrumentType   `json:"instrument"`
	Quantity       int64            `json:"quantity"`
	Strike         decimal.Decimal  `json:"strike"`
	GrantDate      time.Time        `json:"grant_date"`
	Lifecycle      Lifecycle        `json:"lifecycle"`
	TaxClass       TaxClass         `json:"tax_class"`
	ExerciseDate   *time.Time       `json:"exercise_date,omitempty"`
	FMVAtExercise  *decimal.Decimal `json:"fmv_at_exercise,omitempty"`
	ExpirationDate *time.Time       `json:"expiration_date,omitempty"`
}

// Validate checks the construction-time invariants. Violations are
// configuration errors: fatal, never silently defaulted.
func (l ShareLot) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("share lot: %w: empty id", ErrInvalidLot)
	}
	if !l.Instrument.Valid() {
		return fmt.Errorf("lot %s: %w: unknown instrument %q", l.ID, ErrInvalidLot, l.Instrument)
	}
	if !l.Lifecycle.Valid() {
		return fmt.Errorf("lot %s: %w: unknown lifecycle %q", l.ID, ErrInvalidLot, l.Lifecycle)
	}
	if l.Quantity < 0 {
		return fmt.Errorf("lot %s: %w: negative quantity %d", l.ID, ErrInvalidLot, l.Quantity)
	}
	if l.Instrument.IsOption() {
		switch l.Lifecycle {
		case LifecycleGranted, LifecycleVested:
			// Unexercised options cannot be unbounded-lived.
			if l.ExpirationDate == nil {
				return fmt.Errorf("lot %s: %w: unexercised %s lot has no expiration date",
					l.ID, ErrInvalidLot, l.Instrument)
			}
			if vested, ok := VestDateFromID(l.ID); ok && !l.ExpirationDate.After(vested) {
				return fmt.Errorf("lot %s: %w: expiration %s not after vesting date %s",
					l.ID, ErrInvalidLot,
					l.ExpirationDate.Format("2006-01-02"), vested.Format("2006-01-02"))
			}
		}
	}
	if l.Lifecycle == LifecycleExercised || l.Lifecycle == LifecycleDisposed {
		if l.ExerciseDate == nil {
			return fmt.Errorf("lot %s: %w: exercised lot has no exercise date", l.ID, ErrInvalidLot)
		}
		if l.FMVAtExercise == nil {
			return fmt.Errorf("lot %s: %w: exercised lot has no fair market value at exercise",
				l.ID, ErrInvalidLot)
		}
	}
	return nil
}

// Clone returns a deep copy; pointer fields are re-allocated so the
// copy never aliases the original across year snapshots.
func (l ShareLot) Clone() ShareLot {
	out := l
	if l.ExerciseDate != nil {
		d := *l.ExerciseDate
		out.ExerciseDate = &d
	}
	if l.FMVAtExercise != nil {
		v := *l.FMVAtExercise
		out.FMVAtExercise = &v
	}
	if l.ExpirationDate != nil {
		d := *l.ExpirationDate
		out.ExpirationDate = &d
	}
	return out
}

// HoldingPeriodDays returns whole days between exercise and the given
// disposition date. Zero if the lot has no exercise date.
func (l ShareLot) HoldingPeriodDays(on time.Time) int {
	if l.ExerciseDate == nil {
		return 0
	}
	return int(on.Sub(*l.ExerciseDate).Hours() / 24)
}

// holdingClass classifies a disposition: long-term strictly beyond 365
// days, short-term at or under (ties at exactly 365 break short).
func (l ShareLot) holdingClass(on time.Time) TaxClass {
	if l.HoldingPeriodDays(on) > 365 {
		return TaxClassLongTerm
	}
	return TaxClassShortTerm
}

const vestIDPrefix = "VEST_"

// VestDateFromID extracts the vesting date encoded in identifiers of
// the form VEST_YYYYMMDD (optionally with a suffix such as
// VEST_20250201_ISO).
func VestDateFromID(id string) (time.Time, bool) {
	if !strings.HasPrefix(id, vestIDPrefix) {
		return time.Time{}, false
	}
	digits := strings.TrimPrefix(id, vestIDPrefix)
	if len(digits) > 8 {
		digits = digits[:8]
	}
	d, err := time.Parse("20060102", digits)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// ChildLotID derives the identifier of a lot created by a partial
// action: parent id plus a verb tag and the action date. Deterministic
// so replays produce identical arenas.
func ChildLotID(parent string, action ActionType, date time.Time) string {
	var tag string
	switch action {
	case ActionExercise:
		tag = "ex"
	case ActionSell:
		tag = "sell"
	case ActionDonate:
		tag = "don"
	default:
		tag = string(action)
	}
	return fmt.Sprintf("%s_%s%s", parent, tag, date.Format("20060102"))
}

// LotSet is the arena of active lots keyed by identifier. Lots are
// held by value; callers mutate through the map, never through shared
// pointers.
type LotSet map[string]ShareLot

// Clone deep-copies the arena for year-end snapshots.
func (s LotSet) Clone() LotSet {
	out := make(LotSet, len(s))
	for id, lot := range s {
		out[id] = lot.Clone()
	}
	return out
}

// SortedIDs returns lot identifiers in lexical order, for
// deterministic iteration.
func (s LotSet) SortedIDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TotalQuantity sums share counts across lots in the given lifecycle
// states (all states when none given).
func (s LotSet) TotalQuantity(states ...Lifecycle) int64 {
	var total int64
	for _, lot := range s {
		if len(states) == 0 {
			total += lot.Quantity
			continue
		}
		for _, st := range states {
			if lot.Lifecycle == st {
				total += lot.Quantity
				break
			}
		}
	}
	return total
}

package equity

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CarryforwardYears is how long an unused charitable contribution
// remains deductible past its contribution year.
const CarryforwardYears = 5

// CharitableState is one jurisdiction's deduction ledger for one tax
// year: what was used this year, the unexpired carryforward by
// contribution year, and what expired this year. States are immutable
// once a year is finalized; ApplyCharitable folds one into the next.
type CharitableState struct {
	CurrentYearUsed decimal.Decimal         `json:"current_year_used"`
	Carryforward    map[int]decimal.Decimal `json:"carryforward"`
	ExpiredThisYear decimal.Decimal         `json:"expired_this_year"`
}

// NewCharitableState returns an empty ledger.
func NewCharitableState() CharitableState {
	return CharitableState{
		CurrentYearUsed: decimal.Zero,
		Carryforward:    map[int]decimal.Decimal{},
		ExpiredThisYear: decimal.Zero,
	}
}

// Clone deep-copies the ledger.
func (s CharitableState) Clone() CharitableState {
	out := s
	out.Carryforward = make(map[int]decimal.Decimal, len(s.Carryforward))
	for y, v := range s.Carryforward {
		out.Carryforward[y] = v
	}
	return out
}

// TotalAvailable is the sum of all unexpired carryforward buckets.
func (s CharitableState) TotalAvailable() decimal.Decimal {
	total := decimal.Zero
	for _, v := range s.Carryforward {
		total = total.Add(v)
	}
	return total
}

// bucketYears returns contribution years oldest first, so that dollars
// closest to expiration are consumed preferentially.
func (s CharitableState) bucketYears() []int {
	years := make([]int, 0, len(s.Carryforward))
	for y := range s.Carryforward {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// ApplyCharitable folds one jurisdiction's ledger through a tax year.
// New donations join the bucket for the current year; usage is capped
// at `limit` dollars and consumed oldest-contribution-year first; any
// bucket past its fifth carryforward year moves to expired, never
// silently vanishing. The previous state is not mutated.
func ApplyCharitable(prev CharitableState, year int, limit decimal.Decimal, newDonations decimal.Decimal) CharitableState {
	next := prev.Clone()
	next.CurrentYearUsed = decimal.Zero
	next.ExpiredThisYear = decimal.Zero

	if newDonations.IsPositive() {
		cur := next.Carryforward[year]
		next.Carryforward[year] = cur.Add(newDonations)
	}

	if limit.IsNegative() {
		limit = decimal.Zero
	}
	// Usable this year = min(limit, everything in the pool).
	usable := decimal.Min(limit, next.TotalAvailable())

	remaining := usable
	for _, y := range next.bucketYears() {
		if !remaining.IsPositive() {
			break
		}
		bucket := next.Carryforward[y]
		take := decimal.Min(bucket, remaining)
		remaining = remaining.Sub(take)
		next.CurrentYearUsed = next.CurrentYearUsed.Add(take)
		left := bucket.Sub(take)
		if left.IsZero() {
			delete(next.Carryforward, y)
		} else {
			next.Carryforward[y] = left
		}
	}

	// A bucket from contribution year Y is last usable in Y+5; what is
	// left after this year's usage expires now.
	for _, y := range next.bucketYears() {
		if y > year-CarryforwardYears {
			continue
		}
		next.ExpiredThisYear = next.ExpiredThisYear.Add(next.Carryforward[y])
		delete(next.Carryforward, y)
	}

	return next
}

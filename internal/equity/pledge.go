package equity

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CharitableProgram is the pledge terms attached to a grant: what
// fraction of liquidity is pledged, how the company matches donations,
// and how long the match window stays open after the source event.
type CharitableProgram struct {
	PledgePct         decimal.Decimal `json:"pledge_pct" yaml:"pledge_pct"`
	MatchRatio        decimal.Decimal `json:"match_ratio" yaml:"match_ratio"`
	MatchWindowMonths int             `json:"match_window_months" yaml:"match_window_months"`
}

// DefaultMatchWindowMonths applies when a program omits the window.
const DefaultMatchWindowMonths = 36

func (p CharitableProgram) windowMonths() int {
	if p.MatchWindowMonths <= 0 {
		return DefaultMatchWindowMonths
	}
	return p.MatchWindowMonths
}

// ObligationType distinguishes sale-triggered obligations from the
// one-time IPO remainder.
type ObligationType string

const (
	ObligationSale         ObligationType = "sale"
	ObligationIPORemainder ObligationType = "ipo_remainder"
)

// PledgeObligation is created when shares are sold (or by the IPO
// remainder trigger) and fulfilled incrementally by donations.
// Obligations are never deleted; they persist across years so FIFO
// discharge ordering holds over the whole projection.
type PledgeObligation struct {
	SourceID        string          `json:"source_id"`
	Type            ObligationType  `json:"type"`
	CreatedAt       time.Time       `json:"created_at"`
	WindowCloses    time.Time       `json:"window_closes"`
	SharesObligated int64           `json:"shares_obligated"`
	SharesFulfilled int64           `json:"shares_fulfilled"`
	PledgePct       decimal.Decimal `json:"pledge_pct"`
	MatchRatio      decimal.Decimal `json:"match_ratio"`
	GrantID         string          `json:"grant_id,omitempty"`
}

// Remaining is the unfulfilled share count.
func (o PledgeObligation) Remaining() int64 {
	return o.SharesObligated - o.SharesFulfilled
}

// IsFulfilled reports whether no shares remain.
func (o PledgeObligation) IsFulfilled() bool {
	return o.Remaining() <= 0
}

// FulfilledPct returns fulfilled/obligated, 1 for empty obligations.
func (o PledgeObligation) FulfilledPct() decimal.Decimal {
	if o.SharesObligated == 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(o.SharesFulfilled).Div(decimal.NewFromInt(o.SharesObligated))
}

// WindowOpen reports whether donations on the given date still count
// toward this obligation's company match.
func (o PledgeObligation) WindowOpen(on time.Time) bool {
	return !on.After(o.WindowCloses)
}

// PledgeState is the ordered collection of all obligations plus the
// running discharge accounting.
type PledgeState struct {
	Obligations      []PledgeObligation `json:"obligations"`
	UncreditedShares int64              `json:"uncredited_shares"`
	ExpiredShares    int64              `json:"expired_shares"`

	// expiredCounted marks obligation indexes already reported by
	// ExpireWindows, so a window is only counted once.
	expiredCounted map[int]bool
}

// NewPledgeState returns an empty tracker.
func NewPledgeState() PledgeState {
	return PledgeState{expiredCounted: map[int]bool{}}
}

// Clone deep-copies the tracker for year-end snapshots.
func (s PledgeState) Clone() PledgeState {
	out := s
	out.Obligations = make([]PledgeObligation, len(s.Obligations))
	copy(out.Obligations, s.Obligations)
	out.expiredCounted = make(map[int]bool, len(s.expiredCounted))
	for k, v := range s.expiredCounted {
		out.expiredCounted[k] = v
	}
	return out
}

// TotalObligated sums obligated shares across all obligations.
func (s PledgeState) TotalObligated() int64 {
	var total int64
	for _, o := range s.Obligations {
		total += o.SharesObligated
	}
	return total
}

// TotalFulfilled sums fulfilled shares across all obligations.
func (s PledgeState) TotalFulfilled() int64 {
	var total int64
	for _, o := range s.Obligations {
		total += o.SharesFulfilled
	}
	return total
}

// saleObligated sums obligated shares created by prior sales, used to
// size the IPO remainder.
func (s PledgeState) saleObligated() int64 {
	var total int64
	for _, o := range s.Obligations {
		if o.Type == ObligationSale {
			total += o.SharesObligated
		}
	}
	return total
}

// RecordSale creates the obligation for a sale under the grant's
// program. Obligated shares are sized so that donating them in full
// brings the donated fraction of (sold + donated) up to the pledge
// percentage: floor(p*qty/(1-p)).
func (s *PledgeState) RecordSale(sale SaleRecord, prog CharitableProgram) *PledgeObligation {
	p := prog.PledgePct
	if !p.IsPositive() || p.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil
	}
	qty := decimal.NewFromInt(sale.Quantity)
	obligated := p.Mul(qty).Div(decimal.NewFromInt(1).Sub(p)).Floor().IntPart()
	if obligated <= 0 {
		return nil
	}

	ob := PledgeObligation{
		SourceID:        sale.LotID,
		Type:            ObligationSale,
		CreatedAt:       sale.Date,
		WindowCloses:    sale.Date.AddDate(0, prog.windowMonths(), 0),
		SharesObligated: obligated,
		PledgePct:       p,
		MatchRatio:      prog.MatchRatio,
		GrantID:         sale.GrantID,
	}
	s.Obligations = append(s.Obligations, ob)

	zap.L().Debug("pledge obligation created",
		zap.String("source", ob.SourceID),
		zap.Int64("obligated", obligated),
	)
	return &s.Obligations[len(s.Obligations)-1]
}

// RecordIPORemainder creates the one-time obligation triggered by an
// IPO liquidity event. The target covers the pledge owed on all
// shares vested at the IPO, not just shares vesting inside the
// projection window; obligations already created by prior sales are
// netted out.
func (s *PledgeState) RecordIPORemainder(eventID string, date time.Time, pledgedVestedShares int64, prog CharitableProgram) *PledgeObligation {
	remainder := pledgedVestedShares - s.saleObligated()
	if remainder <= 0 {
		return nil
	}

	ob := PledgeObligation{
		SourceID:        eventID,
		Type:            ObligationIPORemainder,
		CreatedAt:       date,
		WindowCloses:    date.AddDate(0, prog.windowMonths(), 0),
		SharesObligated: remainder,
		PledgePct:       prog.PledgePct,
		MatchRatio:      prog.MatchRatio,
	}
	s.Obligations = append(s.Obligations, ob)

	zap.L().Debug("ipo remainder obligation created",
		zap.String("event", eventID),
		zap.Int64("obligated", remainder),
	)
	return &s.Obligations[len(s.Obligations)-1]
}

// DischargeResult summarizes one donation's effect on the tracker.
type DischargeResult struct {
	CreditedShares   int64
	UncreditedShares int64
	CompanyMatch     decimal.Decimal
}

// Discharge applies a donation of `shares` on `date` at `price` to
// open obligations, oldest creation date first. Obligations whose
// window has closed are skipped; leftovers are recorded as donated but
// uncredited (still deductible, never matched).
func (s *PledgeState) Discharge(date time.Time, shares int64, price decimal.Decimal) DischargeResult {
	res := DischargeResult{CompanyMatch: decimal.Zero}
	remaining := shares

	// Obligations are appended in creation order, so a forward scan is
	// already FIFO by creation date.
	for i := range s.Obligations {
		if remaining <= 0 {
			break
		}
		ob := &s.Obligations[i]
		if ob.IsFulfilled() || !ob.WindowOpen(date) {
			continue
		}
		credit := ob.Remaining()
		if credit > remaining {
			credit = remaining
		}
		ob.SharesFulfilled += credit
		remaining -= credit
		res.CreditedShares += credit
		match := decimal.NewFromInt(credit).Mul(price).Mul(ob.MatchRatio)
		res.CompanyMatch = res.CompanyMatch.Add(match)
	}

	if remaining > 0 {
		res.UncreditedShares = remaining
		s.UncreditedShares += remaining
		zap.L().Debug("donation not credited against any open pledge",
			zap.Int64("shares", remaining),
		)
	}
	return res
}

// ExpireWindows reports obligations whose match window closed at or
// before asOf with shares still unfulfilled. Newly expired share
// counts accumulate into ExpiredShares; each obligation is counted
// once.
func (s *PledgeState) ExpireWindows(asOf time.Time) int64 {
	if s.expiredCounted == nil {
		s.expiredCounted = map[int]bool{}
	}
	var newlyExpired int64
	for i := range s.Obligations {
		ob := s.Obligations[i]
		if s.expiredCounted[i] || ob.IsFulfilled() || ob.WindowOpen(asOf) {
			continue
		}
		newlyExpired += ob.Remaining()
		s.expiredCounted[i] = true
	}
	s.ExpiredShares += newlyExpired
	return newlyExpired
}

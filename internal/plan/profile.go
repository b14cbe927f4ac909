package plan

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/ivyxu/EquityGo/internal/equity"
)

const dateLayout = "2006-01-02"

// Profile is the user-level configuration shared by scenarios: income,
// starting cash, grants with their charitable programs, liquidity
// events, and price assumptions.
type Profile struct {
	Name         string           `yaml:"name"`
	StartingCash decimal.Decimal  `yaml:"starting_cash"`
	Wages        decimal.Decimal  `yaml:"wages"`
	OtherIncome  decimal.Decimal  `yaml:"other_income"`
	Price        PriceAssumptions `yaml:"price"`
	Grants       []GrantSpec      `yaml:"grants"`
	Events       []EventSpec      `yaml:"liquidity_events"`
}

// PriceAssumptions drives the projected price curve.
type PriceAssumptions struct {
	Base      decimal.Decimal         `yaml:"base"`
	Growth    decimal.Decimal         `yaml:"growth"`
	Overrides map[int]decimal.Decimal `yaml:"overrides"`
}

// GrantSpec is one grant as written in the profile file.
type GrantSpec struct {
	ID          string                    `yaml:"id"`
	TotalShares int64                     `yaml:"total_shares"`
	Strike      decimal.Decimal           `yaml:"strike"`
	Program     *equity.CharitableProgram `yaml:"program"`
}

// EventSpec is one liquidity event as written in the profile file.
type EventSpec struct {
	ID   string `yaml:"id"`
	Type string `yaml:"type"`
	Date string `yaml:"date"`
}

// LoadProfile reads and validates a profile YAML file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return &p, nil
}

func (p *Profile) validate() error {
	if len(p.Grants) == 0 {
		return fmt.Errorf("%w: no grants", equity.ErrInvalidPlan)
	}
	seen := map[string]bool{}
	for i, g := range p.Grants {
		if g.ID == "" {
			return fmt.Errorf("%w: grant %d has no id", equity.ErrInvalidPlan, i)
		}
		if seen[g.ID] {
			return fmt.Errorf("%w: duplicate grant id %q", equity.ErrInvalidPlan, g.ID)
		}
		seen[g.ID] = true
		if g.TotalShares <= 0 {
			return fmt.Errorf("%w: grant %s: non-positive total shares", equity.ErrInvalidPlan, g.ID)
		}
	}
	for i, ev := range p.Events {
		if _, err := time.Parse(dateLayout, ev.Date); err != nil {
			return fmt.Errorf("%w: liquidity event %d: bad date %q", equity.ErrInvalidPlan, i, ev.Date)
		}
		switch equity.LiquidityEventType(ev.Type) {
		case equity.LiquidityIPO, equity.LiquidityTender:
		default:
			return fmt.Errorf("%w: liquidity event %d: unknown type %q", equity.ErrInvalidPlan, i, ev.Type)
		}
	}
	return nil
}

// grants resolves grant specs into engine grants. A grant without an
// explicit program inherits the first grant's program; if no grant
// declares one, the pledge program is zero. The fallback is reported
// rather than silent.
func (p *Profile) grants() []equity.Grant {
	var first *equity.CharitableProgram
	for _, g := range p.Grants {
		if g.Program != nil {
			first = g.Program
			break
		}
	}

	out := make([]equity.Grant, 0, len(p.Grants))
	for _, g := range p.Grants {
		prog := equity.CharitableProgram{PledgePct: decimal.Zero, MatchRatio: decimal.Zero}
		switch {
		case g.Program != nil:
			prog = *g.Program
		case first != nil:
			prog = *first
		}
		out = append(out, equity.Grant{
			ID:          g.ID,
			TotalShares: g.TotalShares,
			Strike:      g.Strike,
			Program:     prog,
		})
	}
	return out
}

// events resolves event specs into engine events.
func (p *Profile) events() ([]equity.LiquidityEvent, error) {
	out := make([]equity.LiquidityEvent, 0, len(p.Events))
	for _, ev := range p.Events {
		date, err := time.Parse(dateLayout, ev.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: liquidity event %s: bad date %q", equity.ErrInvalidPlan, ev.ID, ev.Date)
		}
		out = append(out, equity.LiquidityEvent{
			ID:   ev.ID,
			Type: equity.LiquidityEventType(ev.Type),
			Date: date,
		})
	}
	return out, nil
}

package plan

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ivyxu/EquityGo/internal/equity"
	"github.com/ivyxu/EquityGo/internal/price"
)

// Scenario is one projection input file: the initial lot set and the
// ordered action list over a year range.
type Scenario struct {
	Name      string       `yaml:"name"`
	StartYear int          `yaml:"start_year"`
	EndYear   int          `yaml:"end_year"`
	Lots      []LotSpec    `yaml:"lots"`
	Actions   []ActionSpec `yaml:"actions"`
}

// LotSpec is one share lot as written in a scenario file.
type LotSpec struct {
	ID             string           `yaml:"id"`
	GrantID        string           `yaml:"grant_id"`
	Instrument     string           `yaml:"instrument"`
	Quantity       int64            `yaml:"quantity"`
	Strike         decimal.Decimal  `yaml:"strike"`
	GrantDate      string           `yaml:"grant_date"`
	Lifecycle      string           `yaml:"lifecycle"`
	ExerciseDate   string           `yaml:"exercise_date"`
	FMVAtExercise  *decimal.Decimal `yaml:"fmv_at_exercise"`
	ExpirationDate string           `yaml:"expiration_date"`
}

// ActionSpec is one planned action as written in a scenario file.
type ActionSpec struct {
	Date     string           `yaml:"date"`
	Type     string           `yaml:"type"`
	LotID    string           `yaml:"lot_id"`
	Quantity int64            `yaml:"quantity"`
	Price    *decimal.Decimal `yaml:"price"`
}

// LoadScenario reads a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	return &s, nil
}

// Build assembles a validated engine plan from a profile and a
// scenario. All malformed input is rejected here, before simulation
// begins; the projector never discovers bad input mid-run.
func Build(profile *Profile, scenario *Scenario, rates equity.RateSnapshot) (equity.Plan, error) {
	lots, err := buildLots(scenario.Lots)
	if err != nil {
		return equity.Plan{}, err
	}
	actions, err := buildActions(scenario.Actions)
	if err != nil {
		return equity.Plan{}, err
	}
	events, err := profile.events()
	if err != nil {
		return equity.Plan{}, err
	}

	curve, err := price.NewCurve(scenario.StartYear, profile.Price.Base, profile.Price.Growth, profile.Price.Overrides)
	if err != nil {
		return equity.Plan{}, err
	}

	for _, g := range profile.Grants {
		if g.Program == nil {
			zap.L().Warn("grant has no charitable program, falling back to first grant's program",
				zap.String("grant", g.ID),
			)
		}
	}

	p := equity.Plan{
		Name:        scenario.Name,
		StartYear:   scenario.StartYear,
		EndYear:     scenario.EndYear,
		InitialCash: profile.StartingCash,
		Wages:       profile.Wages,
		OtherIncome: profile.OtherIncome,
		Lots:        lots,
		Actions:     actions,
		Grants:      profile.grants(),
		Events:      events,
		Prices:      curve,
		Rates:       rates,
	}
	if err := p.Validate(); err != nil {
		return equity.Plan{}, err
	}
	return p, nil
}

func buildLots(specs []LotSpec) (equity.LotSet, error) {
	lots := make(equity.LotSet, len(specs))
	for i, spec := range specs {
		lot, err := buildLot(spec)
		if err != nil {
			return nil, fmt.Errorf("lot %d (%s): %w", i, spec.ID, err)
		}
		if _, dup := lots[lot.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate lot id %q", equity.ErrInvalidPlan, lot.ID)
		}
		lots[lot.ID] = lot
	}
	return lots, nil
}

func buildLot(spec LotSpec) (equity.ShareLot, error) {
	lot := equity.ShareLot{
		ID:         spec.ID,
		GrantID:    spec.GrantID,
		Instrument: equity.InstrumentType(spec.Instrument),
		Quantity:   spec.Quantity,
		Strike:     spec.Strike,
		Lifecycle:  equity.Lifecycle(spec.Lifecycle),
		TaxClass:   equity.TaxClassNotApplicable,
	}
	if spec.GrantDate != "" {
		d, err := time.Parse(dateLayout, spec.GrantDate)
		if err != nil {
			return equity.ShareLot{}, fmt.Errorf("bad grant date %q", spec.GrantDate)
		}
		lot.GrantDate = d
	}
	if spec.ExerciseDate != "" {
		d, err := time.Parse(dateLayout, spec.ExerciseDate)
		if err != nil {
			return equity.ShareLot{}, fmt.Errorf("bad exercise date %q", spec.ExerciseDate)
		}
		lot.ExerciseDate = &d
	}
	if spec.ExpirationDate != "" {
		d, err := time.Parse(dateLayout, spec.ExpirationDate)
		if err != nil {
			return equity.ShareLot{}, fmt.Errorf("bad expiration date %q", spec.ExpirationDate)
		}
		lot.ExpirationDate = &d
	}
	lot.FMVAtExercise = spec.FMVAtExercise

	if err := lot.Validate(); err != nil {
		return equity.ShareLot{}, err
	}
	return lot, nil
}

func buildActions(specs []ActionSpec) ([]equity.PlannedAction, error) {
	actions := make([]equity.PlannedAction, 0, len(specs))
	for i, spec := range specs {
		date, err := time.Parse(dateLayout, spec.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: action %d: bad date %q", equity.ErrInvalidPlan, i, spec.Date)
		}
		actions = append(actions, equity.PlannedAction{
			Date:     date,
			Type:     equity.ActionType(spec.Type),
			LotID:    spec.LotID,
			Quantity: spec.Quantity,
			Price:    spec.Price,
		})
	}
	return actions, nil
}

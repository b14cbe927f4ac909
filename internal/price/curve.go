package price

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Curve projects a share price per year: a base price compounded by an
// annual growth rate, with explicit per-year overrides winning over
// the compounded value. Curves are immutable after construction, so a
// projection replay sees identical prices.
type Curve struct {
	startYear int
	base      decimal.Decimal
	growth    decimal.Decimal
	overrides map[int]decimal.Decimal
}

// NewCurve builds a curve anchored at startYear.
func NewCurve(startYear int, base, growth decimal.Decimal, overrides map[int]decimal.Decimal) (*Curve, error) {
	if base.IsNegative() {
		return nil, fmt.Errorf("price curve: negative base price %s", base)
	}
	if growth.LessThanOrEqual(decimal.NewFromInt(-1)) {
		return nil, fmt.Errorf("price curve: growth rate %s below -100%%", growth)
	}
	copied := make(map[int]decimal.Decimal, len(overrides))
	for y, p := range overrides {
		if p.IsNegative() {
			return nil, fmt.Errorf("price curve: negative override %s for year %d", p, y)
		}
		copied[y] = p
	}
	return &Curve{
		startYear: startYear,
		base:      base,
		growth:    growth,
		overrides: copied,
	}, nil
}

// Price returns the projected price for the year. Years before the
// anchor return the base price.
func (c *Curve) Price(year int) decimal.Decimal {
	if p, ok := c.overrides[year]; ok {
		return p
	}
	if year <= c.startYear {
		return c.base
	}
	p := c.base
	factor := decimal.NewFromInt(1).Add(c.growth)
	for y := c.startYear; y < year; y++ {
		p = p.Mul(factor)
	}
	return p.Round(4)
}

package price

import (
	"fmt"
	"strings"

	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Spot fetches the current market price for a symbol from Yahoo
// Finance. Used only to seed a curve's base price from the command
// line; the simulation itself never touches the network.
func Spot(symbol string) (decimal.Decimal, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return decimal.Zero, fmt.Errorf("spot quote: empty symbol")
	}

	q, err := quote.Get(symbol)
	if err != nil {
		return decimal.Zero, fmt.Errorf("spot quote for %s: %w", symbol, err)
	}
	if q == nil {
		return decimal.Zero, fmt.Errorf("spot quote for %s: no data", symbol)
	}

	p := decimal.NewFromFloat(q.RegularMarketPrice)
	zap.L().Debug("spot quote fetched",
		zap.String("symbol", symbol),
		zap.String("price", p.StringFixed(2)),
	)
	return p, nil
}

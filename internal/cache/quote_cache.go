package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultQuoteTTL bounds how stale a served quote may be.
const DefaultQuoteTTL = 5 * time.Minute

type cachedQuote struct {
	price     decimal.Decimal
	fetchedAt time.Time
}

// QuoteCache memoizes spot quotes per symbol with a TTL, so repeated
// lookups inside one session don't hammer the quote provider.
type QuoteCache struct {
	mu      sync.RWMutex
	quotes  map[string]cachedQuote
	ttl     time.Duration
	fetch   func(symbol string) (decimal.Decimal, error)
	nowFunc func() time.Time
}

// NewQuoteCache wraps fetch with a TTL cache.
func NewQuoteCache(fetch func(symbol string) (decimal.Decimal, error), ttl time.Duration) *QuoteCache {
	if ttl <= 0 {
		ttl = DefaultQuoteTTL
	}
	return &QuoteCache{
		quotes:  map[string]cachedQuote{},
		ttl:     ttl,
		fetch:   fetch,
		nowFunc: time.Now,
	}
}

// Get returns the cached quote for symbol, fetching on miss or expiry.
func (c *QuoteCache) Get(symbol string) (decimal.Decimal, error) {
	key := strings.ToUpper(strings.TrimSpace(symbol))

	c.mu.RLock()
	q, ok := c.quotes[key]
	c.mu.RUnlock()
	if ok && c.nowFunc().Sub(q.fetchedAt) <= c.ttl {
		zap.L().Debug("quote served from cache", zap.String("symbol", key))
		return q.price, nil
	}

	price, err := c.fetch(key)
	if err != nil {
		return decimal.Decimal{}, err
	}

	c.mu.Lock()
	c.quotes[key] = cachedQuote{price: price, fetchedAt: c.nowFunc()}
	c.mu.Unlock()
	return price, nil
}

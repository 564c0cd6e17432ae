// Package price supplies current unit prices for open positions.
package price

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

// ErrUnavailable is returned when no current price exists for an asset.
var ErrUnavailable = errors.New("price unavailable")

// Source returns the current unit price of an asset in the settlement currency.
type Source interface {
	Price(ctx context.Context, assetID string) (decimal.Decimal, error)
}

// StaticSource serves prices from a fixed map.
type StaticSource struct {
	prices map[string]decimal.Decimal
}

// NewStaticSource copies prices into a new source. Non-positive prices are
// treated as unavailable.
func NewStaticSource(prices map[string]decimal.Decimal) *StaticSource {
	cp := make(map[string]decimal.Decimal, len(prices))
	for k, v := range prices {
		if v.IsPositive() {
			cp[k] = v
		}
	}
	return &StaticSource{prices: cp}
}

// Price implements Source.
func (s *StaticSource) Price(ctx context.Context, assetID string) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	p, ok := s.prices[assetID]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnavailable, assetID)
	}
	return p, nil
}

// Len returns the number of priced assets.
func (s *StaticSource) Len() int {
	return len(s.prices)
}

// LoadFile reads a JSON object mapping asset IDs to prices. Prices may be
// JSON numbers or strings.
func LoadFile(path string) (*StaticSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading price file: %w", err)
	}
	var raw map[string]json.Number
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing price file %s: %w", path, err)
	}
	prices := make(map[string]decimal.Decimal, len(raw))
	for assetID, n := range raw {
		p, err := decimal.NewFromString(n.String())
		if err != nil {
			return nil, fmt.Errorf("parsing price for %s: %w", assetID, err)
		}
		prices[assetID] = p
	}
	return NewStaticSource(prices), nil
}

// CachedSource memoizes another source's answers, including unavailability,
// for a fixed TTL.
type CachedSource struct {
	next  Source
	cache *cache.Cache
}

type cachedPrice struct {
	price decimal.Decimal
	err   error
}

// NewCachedSource wraps next with a TTL cache.
func NewCachedSource(next Source, ttl time.Duration) *CachedSource {
	return &CachedSource{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Price implements Source. Context errors are never cached.
func (c *CachedSource) Price(ctx context.Context, assetID string) (decimal.Decimal, error) {
	if v, ok := c.cache.Get(assetID); ok {
		cp := v.(cachedPrice)
		return cp.price, cp.err
	}

	p, err := c.next.Price(ctx, assetID)
	if err != nil && !errors.Is(err, ErrUnavailable) {
		return decimal.Zero, err
	}
	c.cache.SetDefault(assetID, cachedPrice{price: p, err: err})
	return p, err
}

var (
	_ Source = (*StaticSource)(nil)
	_ Source = (*CachedSource)(nil)
)

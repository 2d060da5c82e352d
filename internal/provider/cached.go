package provider

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/otori-vision/ovt-trader/internal/market"
)

// CachedProvider keeps TTL snapshots of the LP state and the rune descriptor,
// the two reads a trade screen repeats on every keystroke.
type CachedProvider struct {
	Provider

	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger

	mu     sync.RWMutex
	lp     *market.LPInfo
	lpAt   time.Time
	info   *market.RuneInfo
	infoAt time.Time

	// Statistics (accessed atomically)
	hits   uint64
	misses uint64
}

// NewCachedProvider wraps inner with a snapshot cache.
func NewCachedProvider(inner Provider, ttl time.Duration, logger *zap.Logger) *CachedProvider {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &CachedProvider{
		Provider: inner,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger.Named("provider_cache"),
	}
}

func (c *CachedProvider) Name() string {
	return c.Provider.Name() + "+cache"
}

func (c *CachedProvider) GetLPInfo(ctx context.Context) (*market.LPInfo, error) {
	c.mu.RLock()
	if c.lp != nil && c.now().Sub(c.lpAt) <= c.ttl {
		lp := copyLP(c.lp)
		c.mu.RUnlock()
		c.countHit()
		return lp, nil
	}
	c.mu.RUnlock()
	c.countMiss()

	lp, err := c.Provider.GetLPInfo(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.lp = copyLP(lp)
	c.lpAt = c.now()
	c.mu.Unlock()

	c.logger.Debug("LP snapshot refreshed",
		zap.Int64("rune_reserve", lp.RuneReserve),
		zap.Int64("btc_reserve_sats", lp.BTCReserveSats))
	return lp, nil
}

func (c *CachedProvider) GetRuneInfo(ctx context.Context) (*market.RuneInfo, error) {
	c.mu.RLock()
	if c.info != nil && c.now().Sub(c.infoAt) <= c.ttl {
		info := *c.info
		c.mu.RUnlock()
		c.countHit()
		return &info, nil
	}
	c.mu.RUnlock()
	c.countMiss()

	info, err := c.Provider.GetRuneInfo(ctx)
	if err != nil {
		return nil, err
	}

	cached := *info
	c.mu.Lock()
	c.info = &cached
	c.infoAt = c.now()
	c.mu.Unlock()
	return info, nil
}

// EstimatePriceImpact goes through the cached LP snapshot.
func (c *CachedProvider) EstimatePriceImpact(ctx context.Context, amount float64, isBuy bool) float64 {
	lp, err := c.GetLPInfo(ctx)
	if err != nil {
		c.logger.Warn("Using fallback price, LP info unavailable", zap.Error(err))
		return market.FallbackPrice(isBuy)
	}
	return market.EstimatePriceImpact(lp.RuneReserve, lp.BTCReserveSats, amount, isBuy)
}

// Invalidate drops every snapshot.
func (c *CachedProvider) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lp = nil
	c.info = nil
}

// GetStats returns cache hit and miss counters.
func (c *CachedProvider) GetStats() (hits, misses uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses)
}

func (c *CachedProvider) countHit() {
	atomic.AddUint64(&c.hits, 1)
}

func (c *CachedProvider) countMiss() {
	atomic.AddUint64(&c.misses, 1)
}

func copyLP(lp *market.LPInfo) *market.LPInfo {
	out := *lp
	out.Providers = append([]market.LPProvider(nil), lp.Providers...)
	return &out
}

package market

import (
	"context"
	"sync"
	"time"

	"cryptoedu/internal/clock"
	"cryptoedu/internal/metrics"
	"cryptoedu/internal/models"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// DefaultPriceTTL is how long a price snapshot is served before refresh.
const DefaultPriceTTL = time.Minute

// PriceSource fetches USD quotes for a set of coin ids.
type PriceSource interface {
	FetchSimplePrices(ctx context.Context, ids []string) (models.PriceSnapshot, error)
}

type priceEntry struct {
	snapshot  models.PriceSnapshot
	fetchedAt time.Time
}

// PriceCache memoizes the basket snapshot for a fixed TTL.
//
// An expired entry is never served: if the refresh fails the error is
// returned and the old entry is kept only so the next successful fetch
// can replace it. Concurrent refreshes share one upstream call.
type PriceCache struct {
	source PriceSource
	ids    []string
	ttl    time.Duration
	clock  clock.Clock
	logger *log.Entry

	mu    sync.RWMutex
	entry priceEntry
	group singleflight.Group
}

type PriceCacheOption func(*PriceCache)

func WithPriceTTL(ttl time.Duration) PriceCacheOption {
	return func(c *PriceCache) { c.ttl = ttl }
}

func WithBasket(basket []models.Coin) PriceCacheOption {
	return func(c *PriceCache) { c.ids = models.BasketIDs(basket) }
}

func WithPriceClock(clk clock.Clock) PriceCacheOption {
	return func(c *PriceCache) { c.clock = clk }
}

func WithPriceLogger(logger *log.Entry) PriceCacheOption {
	return func(c *PriceCache) { c.logger = logger }
}

func NewPriceCache(source PriceSource, opts ...PriceCacheOption) *PriceCache {
	c := &PriceCache{
		source: source,
		ids:    models.BasketIDs(models.DefaultBasket),
		ttl:    DefaultPriceTTL,
		clock:  clock.System{},
		logger: log.NewEntry(log.StandardLogger()),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithField("component", "price-cache")
	return c
}

// Basket returns the tracked coin ids.
func (c *PriceCache) Basket() []string {
	return append([]string(nil), c.ids...)
}

// GetPrices returns the current snapshot, fetching it when the cached one
// is missing or older than the TTL. The returned map is a private copy.
func (c *PriceCache) GetPrices(ctx context.Context) (models.PriceSnapshot, error) {
	if snap, ok := c.fresh(); ok {
		metrics.RecordCacheHit("prices")
		return snap.Clone(), nil
	}
	metrics.RecordCacheMiss("prices")

	v, err, shared := c.group.Do("prices", func() (any, error) {
		// Another caller may have refreshed while we waited for the group.
		if snap, ok := c.fresh(); ok {
			return snap, nil
		}

		snap, err := c.source.FetchSimplePrices(ctx, c.ids)
		if err != nil {
			c.logger.WithField("error", err).Warn("price refresh failed")
			return nil, &UpstreamFetchError{Op: "prices", Err: err}
		}

		c.mu.Lock()
		c.entry = priceEntry{snapshot: snap, fetchedAt: c.clock.Now()}
		c.mu.Unlock()

		c.logger.WithField("coins", len(snap)).Debug("price snapshot refreshed")
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("price refresh shared with concurrent caller")
	}
	return v.(models.PriceSnapshot).Clone(), nil
}

func (c *PriceCache) fresh() (models.PriceSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entry.snapshot == nil {
		return nil, false
	}
	if c.clock.Now().Sub(c.entry.fetchedAt) >= c.ttl {
		return nil, false
	}
	return c.entry.snapshot, true
}

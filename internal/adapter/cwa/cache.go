package cwa

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/quake-risk-etl/internal/domain"
	"github.com/couchcryptid/quake-risk-etl/internal/observability"
)

// CachedSource wraps a CatalogSource with a cache keyed by feed. Both the
// current and historical feeds are cached under the same TTL, so a TTL
// longer than the run interval also reuses a stale current-year report.
type CachedSource struct {
	inner   domain.CatalogSource
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics

	mu      sync.Mutex
	entries map[domain.Feed]cacheEntry
}

type cacheEntry struct {
	catalog   domain.RawCatalog
	fetchedAt time.Time
}

// NewCachedSource creates a cache decorator around a catalog source.
func NewCachedSource(inner domain.CatalogSource, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
		entries: make(map[domain.Feed]cacheEntry),
	}
}

func (c *CachedSource) FetchCatalog(ctx context.Context, feed domain.Feed) (domain.RawCatalog, error) {
	if catalog, ok := c.get(feed); ok {
		c.metrics.CatalogCache.WithLabelValues(string(feed), "hit").Inc()
		return catalog, nil
	}
	c.metrics.CatalogCache.WithLabelValues(string(feed), "miss").Inc()

	catalog, err := c.inner.FetchCatalog(ctx, feed)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[feed] = cacheEntry{catalog: catalog, fetchedAt: c.clock.Now()}
	c.mu.Unlock()
	return catalog, nil
}

func (c *CachedSource) get(feed domain.Feed) (domain.RawCatalog, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[feed]
	if !ok {
		return nil, false
	}
	if c.clock.Since(e.fetchedAt) >= c.ttl {
		delete(c.entries, feed)
		return nil, false
	}
	return e.catalog, true
}

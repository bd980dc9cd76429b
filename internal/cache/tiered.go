package cache

import (
	"context"
	"log/slog"
	"time"

	"go-matchmaking-backend/internal/domain"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// ComputeFunc produces a fresh cache entry when both tiers miss.
type ComputeFunc func(ctx context.Context) (*domain.CacheEntry, error)

// TieredCache coordinates a process-local LRU tier and a cross-instance
// tier in front of the matching pipeline. Lookups go local -> remote ->
// recompute, with the remote tier populated into the local tier on hit.
// Concurrent callers for one key share a single in-flight computation.
//
// Tier failures are absorbed: a broken tier degrades to direct computation,
// never to a failed request.
type TieredCache struct {
	local  *expirable.LRU[string, *domain.CacheEntry]
	remote RemoteTier // nil when the cross-instance tier is not configured
	ttl    time.Duration
	group  singleflight.Group
	log    *slog.Logger
}

// NewTieredCache builds the coordinator. The local tier evicts by recency
// under capacity pressure and ages entries out by ttl; in-flight
// computations live in the single-flight group, not in the LRU, so eviction
// can never interrupt them.
func NewTieredCache(capacity int, ttl time.Duration, remote RemoteTier, log *slog.Logger) *TieredCache {
	return &TieredCache{
		local:  expirable.NewLRU[string, *domain.CacheEntry](capacity, nil, ttl),
		remote: remote,
		ttl:    ttl,
		log:    log,
	}
}

// TTL returns the freshness window enforced on both tiers.
func (c *TieredCache) TTL() time.Duration {
	return c.ttl
}

// GetOrCompute returns the entry for key, recomputing at most once across
// all concurrent callers for that key. The second return value reports
// whether the entry came from a cache tier.
//
// A caller's context cancels only its own wait: the shared computation runs
// detached so other waiters still receive its result. A failed computation
// releases every waiter with the error and leaves the key clean for the
// next attempt.
func (c *TieredCache) GetOrCompute(ctx context.Context, key string, compute ComputeFunc) (*domain.CacheEntry, bool, error) {
	now := time.Now()

	if entry, ok := c.local.Get(key); ok && !entry.Expired(c.ttl, now) {
		return entry, true, nil
	}

	if c.remote != nil {
		entry, ok, err := c.remote.Get(ctx, key)
		if err != nil {
			c.log.Warn("remote cache tier read failed", "key", key, "error", err)
		} else if ok && !entry.Expired(c.ttl, now) {
			// Write-through on read so same-instance requests skip the hop.
			c.local.Add(key, entry)
			return entry, true, nil
		}
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		// Detached from the caller: one caller timing out must not cancel a
		// flight other callers are waiting on.
		flightCtx := context.WithoutCancel(ctx)

		entry, err := compute(flightCtx)
		if err != nil {
			return nil, err
		}

		c.store(flightCtx, key, entry)
		return entry, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.(*domain.CacheEntry), false, nil
	}
}

// store writes a freshly computed entry into both tiers. Write failures on
// the remote tier are non-fatal; the result is served uncached.
func (c *TieredCache) store(ctx context.Context, key string, entry *domain.CacheEntry) {
	c.local.Add(key, entry)

	if c.remote == nil {
		return
	}
	if err := c.remote.Set(ctx, key, entry, c.ttl); err != nil {
		c.log.Warn("remote cache tier write failed", "key", key, "error", err)
	}
}

// Purge drops every entry in the local tier. Used at shutdown.
func (c *TieredCache) Purge() {
	c.local.Purge()
}

// Len reports the local tier's entry count.
func (c *TieredCache) Len() int {
	return c.local.Len()
}

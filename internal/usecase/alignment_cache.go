package usecase

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/emergent-company/taskvision-mcp/internal/domain"
)

// alignmentCache memoizes vision.Rank results per task for Config.AlignmentCacheTTL.
// Cached data is read-mostly; writers use copy-on-write rather than mutating a
// live entry. Invalidation is by mutation: callers call Invalidate when a
// Task, its branch, or the objective hierarchy changes. A singleflight group
// coalesces concurrent recomputation for the same task id so a cache miss
// under load triggers one vision.Rank call, not N.
type alignmentCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]alignmentCacheEntry
	group   singleflight.Group
}

type alignmentCacheEntry struct {
	alignments []domain.Alignment
	computedAt time.Time
}

func newAlignmentCache(ttl time.Duration) *alignmentCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &alignmentCache{ttl: ttl, entries: make(map[string]alignmentCacheEntry)}
}

// Get returns a cached alignment slice for taskID if it exists and has not
// expired relative to now. The returned slice is a copy — callers can never
// observe a partially-updated cache entry.
func (c *alignmentCache) Get(taskID string, now time.Time) ([]domain.Alignment, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[taskID]
	if !ok || now.Sub(entry.computedAt) > c.ttl {
		return nil, false
	}
	return append([]domain.Alignment(nil), entry.alignments...), true
}

// Set stores a freshly computed alignment slice, replacing any prior entry
// wholesale (copy-on-write — no in-place mutation of a live entry).
func (c *alignmentCache) Set(taskID string, alignments []domain.Alignment, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[taskID] = alignmentCacheEntry{
		alignments: append([]domain.Alignment(nil), alignments...),
		computedAt: now,
	}
}

// Invalidate drops the cached entry for taskID, forcing recomputation on the
// next read.
func (c *alignmentCache) Invalidate(taskID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, taskID)
}

// GetOrCompute returns the cached alignments for taskID, or runs compute once
// per concurrent wave of callers and caches the result. Concurrent calls for
// the same taskID block on the same singleflight call rather than each
// recomputing independently.
func (c *alignmentCache) GetOrCompute(taskID string, now time.Time, compute func() ([]domain.Alignment, error)) ([]domain.Alignment, error) {
	if cached, ok := c.Get(taskID, now); ok {
		return cached, nil
	}
	v, err, _ := c.group.Do(taskID, func() (any, error) {
		if cached, ok := c.Get(taskID, now); ok {
			return cached, nil
		}
		result, err := compute()
		if err != nil {
			return nil, err
		}
		c.Set(taskID, result, now)
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Alignment), nil
}

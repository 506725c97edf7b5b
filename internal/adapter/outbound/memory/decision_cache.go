package memory

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ranger-acl/rangeracl/internal/domain/decision"
)

// DecisionKey fingerprints a Request deterministically: same tuple, same
// key, regardless of group/role ordering on the inbound request.
func DecisionKey(req decision.Request) uint64 {
	// encoding/json writes map keys in sorted order, so this is the
	// canonical sorted-key JSON of the tuple.
	canonical, _ := json.Marshal(map[string]string{
		"service":     req.Service,
		"user":        req.User,
		"bucket":      req.Bucket,
		"object":      req.Object,
		"access_type": string(req.AccessType),
	})
	return xxhash.Sum64(canonical)
}

type decisionEntry struct {
	decision  decision.Decision
	expiresAt time.Time
}

// DecisionCache (C5) is a size-bounded, TTL-bounded cache of decisions,
// keyed by DecisionKey. Eviction at capacity is handled by an underlying
// hashicorp/golang-lru cache; TTL expiry is a lazy check layered on top of
// it, since golang-lru has no expiry concept of its own.
type DecisionCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	cache *lru.Cache[uint64, decisionEntry]
}

// NewDecisionCache creates a cache bounded to capacity entries, each valid
// for ttl after insertion.
func NewDecisionCache(capacity int, ttl time.Duration) *DecisionCache {
	if capacity <= 0 {
		capacity = 1
	}
	c, _ := lru.New[uint64, decisionEntry](capacity)
	return &DecisionCache{ttl: ttl, cache: c}
}

// Get returns the cached decision for key, if present and not expired.
func (c *DecisionCache) Get(key uint64, now time.Time) (decision.Decision, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.cache.Get(key)
	if !ok {
		return decision.Decision{}, false
	}
	if now.After(e.expiresAt) {
		c.cache.Remove(key)
		return decision.Decision{}, false
	}
	return e.decision, true
}

// Put inserts or refreshes the cached decision for key.
func (c *DecisionCache) Put(key uint64, d decision.Decision, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(key, decisionEntry{decision: d, expiresAt: now.Add(c.ttl)})
}

// Clear empties the cache. Called after a snapshot reload, since cached
// decisions were computed against a policy set that may no longer exist.
func (c *DecisionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Purge()
}

// Size returns the current entry count, for health/metrics reporting.
func (c *DecisionCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}

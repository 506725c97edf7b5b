package memory

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ranger-acl/rangeracl/internal/domain/subject"
)

type subjectEntry struct {
	attrs     subject.Attributes
	expiresAt time.Time
}

// SubjectCache (C4) is a size-bounded, TTL-bounded cache of username ->
// subject.Attributes, including negative results (unknown users resolve to
// a zero-value Attributes, which caches exactly like any other result —
// this is what keeps a flood of requests for a nonexistent user from
// hammering the policy source). Built the same way as DecisionCache: a
// hashicorp/golang-lru cache handles capacity-bounded eviction, with a
// lazy TTL check layered on top of it.
type SubjectCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	cache *lru.Cache[string, subjectEntry]
}

// NewSubjectCache creates a cache bounded to capacity entries, each valid
// for ttl after insertion.
func NewSubjectCache(capacity int, ttl time.Duration) *SubjectCache {
	if capacity <= 0 {
		capacity = 1
	}
	c, _ := lru.New[string, subjectEntry](capacity)
	return &SubjectCache{ttl: ttl, cache: c}
}

func (c *SubjectCache) Get(username string, now time.Time) (subject.Attributes, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.cache.Get(username)
	if !ok {
		return subject.Attributes{}, false
	}
	if now.After(e.expiresAt) {
		c.cache.Remove(username)
		return subject.Attributes{}, false
	}
	return e.attrs, true
}

func (c *SubjectCache) Put(username string, attrs subject.Attributes, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(username, subjectEntry{attrs: attrs, expiresAt: now.Add(c.ttl)})
}

func (c *SubjectCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}

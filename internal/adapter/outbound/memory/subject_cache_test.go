package memory

import (
	"testing"
	"time"

	"github.com/ranger-acl/rangeracl/internal/domain/subject"
)

func TestSubjectCache_PutGet(t *testing.T) {
	c := NewSubjectCache(10, time.Minute)
	now := time.Now()
	attrs := subject.Attributes{Groups: []string{"eng"}, Roles: []string{"ROLE_USER"}}

	c.Put("alice", attrs, now)
	got, ok := c.Get("alice", now)
	if !ok || len(got.Groups) != 1 || got.Groups[0] != "eng" {
		t.Errorf("Get() = %+v, %v, want %+v, true", got, ok, attrs)
	}
}

func TestSubjectCache_CachesNegativeResult(t *testing.T) {
	c := NewSubjectCache(10, time.Minute)
	now := time.Now()

	c.Put("ghost", subject.Attributes{}, now)
	got, ok := c.Get("ghost", now)
	if !ok {
		t.Fatal("Get() ok=false, want the negative result to be cached")
	}
	if len(got.Groups) != 0 || len(got.Roles) != 0 {
		t.Errorf("got = %+v, want zero-value Attributes", got)
	}
}

func TestSubjectCache_ExpiresAfterTTL(t *testing.T) {
	c := NewSubjectCache(10, time.Minute)
	now := time.Now()
	c.Put("alice", subject.Attributes{}, now)

	if _, ok := c.Get("alice", now.Add(2*time.Minute)); ok {
		t.Error("Get() returned ok=true for an expired entry")
	}
}

func TestSubjectCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewSubjectCache(1, time.Minute)
	now := time.Now()

	c.Put("alice", subject.Attributes{}, now)
	c.Put("bob", subject.Attributes{}, now)

	if _, ok := c.Get("alice", now); ok {
		t.Error("alice should have been evicted when bob was inserted over capacity 1")
	}
	if _, ok := c.Get("bob", now); !ok {
		t.Error("bob should still be cached")
	}
}

func TestSubjectCache_Size(t *testing.T) {
	c := NewSubjectCache(10, time.Minute)
	now := time.Now()
	c.Put("alice", subject.Attributes{}, now)
	c.Put("bob", subject.Attributes{}, now)

	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

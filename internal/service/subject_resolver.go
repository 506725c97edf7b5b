package service

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ranger-acl/rangeracl/internal/adapter/outbound/memory"
	"github.com/ranger-acl/rangeracl/internal/domain/subject"
)

// SubjectResolver (C4) resolves a username to its group/role attributes
// through a TTL cache, collapsing concurrent cache misses for the same
// username into a single call to the policy source via singleflight.
type SubjectResolver struct {
	source subject.Source
	cache  *memory.SubjectCache
	group  singleflight.Group
	now    func() time.Time
}

// NewSubjectResolver creates a SubjectResolver backed by source and cache.
func NewSubjectResolver(source subject.Source, cache *memory.SubjectCache) *SubjectResolver {
	return &SubjectResolver{source: source, cache: cache, now: time.Now}
}

// Resolve implements subject.Resolver.
func (r *SubjectResolver) Resolve(ctx context.Context, username string) (subject.Attributes, error) {
	now := r.now()
	if attrs, ok := r.cache.Get(username, now); ok {
		return attrs, nil
	}

	v, err, _ := r.group.Do(username, func() (interface{}, error) {
		attrs, err := r.source.GetUserAttributes(ctx, username)
		if err != nil {
			return subject.Attributes{}, err
		}
		r.cache.Put(username, attrs, r.now())
		return attrs, nil
	})
	if err != nil {
		return subject.Attributes{}, err
	}
	return v.(subject.Attributes), nil
}

var _ subject.Resolver = (*SubjectResolver)(nil)

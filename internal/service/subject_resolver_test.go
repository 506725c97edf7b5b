package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ranger-acl/rangeracl/internal/adapter/outbound/memory"
	"github.com/ranger-acl/rangeracl/internal/domain/subject"
)

type fakeSource struct {
	calls atomic.Int64
	attrs subject.Attributes
	err   error
	delay time.Duration
}

func (f *fakeSource) GetUserAttributes(ctx context.Context, username string) (subject.Attributes, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.attrs, f.err
}

func TestSubjectResolver_CacheMissFetchesFromSource(t *testing.T) {
	src := &fakeSource{attrs: subject.Attributes{Groups: []string{"eng"}}}
	r := NewSubjectResolver(src, memory.NewSubjectCache(10, time.Minute))

	attrs, err := r.Resolve(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(attrs.Groups) != 1 || attrs.Groups[0] != "eng" {
		t.Errorf("attrs = %+v, want Groups=[eng]", attrs)
	}
	if src.calls.Load() != 1 {
		t.Errorf("source calls = %d, want 1", src.calls.Load())
	}
}

func TestSubjectResolver_CacheHitSkipsSource(t *testing.T) {
	src := &fakeSource{attrs: subject.Attributes{Groups: []string{"eng"}}}
	r := NewSubjectResolver(src, memory.NewSubjectCache(10, time.Minute))

	r.Resolve(context.Background(), "alice")
	r.Resolve(context.Background(), "alice")

	if src.calls.Load() != 1 {
		t.Errorf("source calls = %d, want 1 (second call should hit cache)", src.calls.Load())
	}
}

func TestSubjectResolver_PropagatesSourceError(t *testing.T) {
	src := &fakeSource{err: errors.New("boom")}
	r := NewSubjectResolver(src, memory.NewSubjectCache(10, time.Minute))

	_, err := r.Resolve(context.Background(), "alice")
	if err == nil {
		t.Fatal("Resolve() expected error, got nil")
	}
}

func TestSubjectResolver_CollapsesConcurrentMisses(t *testing.T) {
	src := &fakeSource{attrs: subject.Attributes{Groups: []string{"eng"}}, delay: 20 * time.Millisecond}
	r := NewSubjectResolver(src, memory.NewSubjectCache(10, time.Minute))

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			r.Resolve(context.Background(), "alice")
			done <- struct{}{}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	if src.calls.Load() != 1 {
		t.Errorf("source calls = %d, want 1 (singleflight should collapse concurrent misses)", src.calls.Load())
	}
}

package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ranger-acl/rangeracl/internal/domain/policy"
)

// SnapshotStore implements policy.SnapshotStore (C1): one atomic.Value per
// service, swapped wholesale by the refresher. The outer mutex guards the
// service-to-slot map: reads and writes take its read lock to find the
// slot, and only first-time creation of a slot takes the write lock. The
// snapshot itself is loaded and stored atomically.
type SnapshotStore struct {
	mu   sync.RWMutex
	slot map[string]*atomic.Value
}

// NewSnapshotStore creates an empty SnapshotStore.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{slot: make(map[string]*atomic.Value)}
}

// Get returns the current snapshot for service, or false if none has ever
// been installed — there is no default snapshot, by design.
func (s *SnapshotStore) Get(service string) (policy.Snapshot, bool) {
	s.mu.RLock()
	av, ok := s.slot[service]
	s.mu.RUnlock()
	if !ok {
		return policy.Snapshot{}, false
	}
	v := av.Load()
	if v == nil {
		return policy.Snapshot{}, false
	}
	snap, ok := v.(policy.Snapshot)
	return snap, ok
}

// Put installs snap as the new current snapshot for snap.Service.
func (s *SnapshotStore) Put(_ context.Context, snap policy.Snapshot) {
	av := s.slotFor(snap.Service)
	av.Store(snap)
}

func (s *SnapshotStore) slotFor(service string) *atomic.Value {
	s.mu.RLock()
	av, ok := s.slot[service]
	s.mu.RUnlock()
	if ok {
		return av
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if av, ok := s.slot[service]; ok {
		return av
	}
	av = &atomic.Value{}
	s.slot[service] = av
	return av
}

var _ policy.SnapshotStore = (*SnapshotStore)(nil)

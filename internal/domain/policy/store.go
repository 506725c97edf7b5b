package policy

import "context"

// SnapshotStore (C1) holds the latest Snapshot per service, replaced
// wholesale on each Put. The refresher (C3) is the only writer; the
// evaluator (C6) and request pipeline (C9) are the readers.
type SnapshotStore interface {
	// Get returns the current snapshot for service. ok is false until the
	// first successful Put for that service — there is no implicit
	// default snapshot, per the closed-by-default requirement.
	Get(service string) (Snapshot, bool)
	// Put installs snap as the new current snapshot for its Service.
	Put(ctx context.Context, snap Snapshot)
}

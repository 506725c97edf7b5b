package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/ranger-acl/rangeracl/internal/domain/policy"
)

// PolicySource is the subset of the ranger outbound client the refresher
// needs: fetching policies and resolving the service-definition id.
type PolicySource interface {
	FetchPolicies(ctx context.Context, serviceName string) ([]policy.Policy, error)
	FetchServiceDefID(ctx context.Context, name string) (id int64, ok bool, err error)
}

// PolicyRefresher (C3) loads a service's policies synchronously once on
// Start, then refreshes on a fixed interval until Stop is called. A failed
// refresh is logged and the previous snapshot is left in place — the store
// degrades gracefully rather than ever serving an empty or partial one.
type PolicyRefresher struct {
	source        PolicySource
	store         policy.SnapshotStore
	onInstall     func()
	service       string
	serviceDefID  int64
	interval      time.Duration
	logger        *slog.Logger
	done          chan struct{}
	stopped       chan struct{}
}

// NewPolicyRefresher creates a refresher for service. The service
// definition id starts at fallbackServiceDefID; Start resolves the name it
// is given and keeps the fallback when the source has no such service
// definition, matching the reference implementation's "repoType defaults
// to 1" behavior. The serviceDefName argument here is not stored.
func NewPolicyRefresher(source PolicySource, store policy.SnapshotStore, service, serviceDefName string, fallbackServiceDefID int64, interval time.Duration, logger *slog.Logger, onInstall func()) *PolicyRefresher {
	return &PolicyRefresher{
		source:       source,
		store:        store,
		onInstall:    onInstall,
		service:      service,
		serviceDefID: fallbackServiceDefID,
		interval:     interval,
		logger:       logger,
		done:         make(chan struct{}),
		stopped:      make(chan struct{}),
	}
}

// Start performs the initial synchronous load, then launches the
// background refresh loop. The caller should treat a non-nil error from
// the initial load as fatal: every decision would otherwise deny for lack
// of a snapshot, which is the correct but unhelpful behavior to discover
// only after the server is already accepting traffic.
func (r *PolicyRefresher) Start(ctx context.Context, serviceDefName string) error {
	if err := r.resolveServiceDefID(ctx, serviceDefName); err != nil {
		r.logger.Warn("service definition lookup failed, using fallback id", "error", err, "fallback", r.serviceDefID)
	}
	if err := r.load(ctx); err != nil {
		return err
	}
	go r.loop(ctx)
	return nil
}

func (r *PolicyRefresher) resolveServiceDefID(ctx context.Context, name string) error {
	id, ok, err := r.source.FetchServiceDefID(ctx, name)
	if err != nil {
		return err
	}
	if ok {
		r.serviceDefID = id
	}
	return nil
}

func (r *PolicyRefresher) load(ctx context.Context) error {
	policies, err := r.source.FetchPolicies(ctx, r.service)
	if err != nil {
		return err
	}
	snap := policy.Snapshot{
		Service:       r.service,
		ServiceDefID:  r.serviceDefID,
		Policies:      policies,
		FetchedAtUnix: time.Now().Unix(),
	}
	r.store.Put(ctx, snap)
	if r.onInstall != nil {
		r.onInstall()
	}
	r.logger.Info("policy snapshot installed", "service", r.service, "policies", len(policies))
	return nil
}

func (r *PolicyRefresher) loop(ctx context.Context) {
	defer close(r.stopped)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.done:
			return
		case <-ticker.C:
			if err := r.load(ctx); err != nil {
				r.logger.Error("policy refresh failed, keeping previous snapshot", "service", r.service, "error", err)
			}
		}
	}
}

// Stop signals the refresh loop to exit and waits for it to do so.
func (r *PolicyRefresher) Stop() {
	close(r.done)
	<-r.stopped
}

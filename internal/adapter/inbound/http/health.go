package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"

	"github.com/ranger-acl/rangeracl/internal/adapter/outbound/memory"
	"github.com/ranger-acl/rangeracl/internal/domain/policy"
	"github.com/ranger-acl/rangeracl/internal/service"
)

// HealthResponse is the JSON response from the health endpoint.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version,omitempty"`
}

// HealthChecker verifies component health: that a policy snapshot exists
// for the configured service, and that the audit emitter isn't backed up.
type HealthChecker struct {
	store         policy.SnapshotStore
	service       string
	decisionCache *memory.DecisionCache
	subjectCache  *memory.SubjectCache
	emitter       *service.AuditEmitter
	version       string
}

// NewHealthChecker creates a HealthChecker. Pass nil for components that
// aren't wired (e.g. emitter in a component test).
func NewHealthChecker(store policy.SnapshotStore, service_ string, decisionCache *memory.DecisionCache, subjectCache *memory.SubjectCache, emitter *service.AuditEmitter, version string) *HealthChecker {
	return &HealthChecker{
		store:         store,
		service:       service_,
		decisionCache: decisionCache,
		subjectCache:  subjectCache,
		emitter:       emitter,
		version:       version,
	}
}

// Check performs health checks on all components.
func (h *HealthChecker) Check() HealthResponse {
	checks := make(map[string]string)
	healthy := true

	if h.store == nil {
		checks["policy_snapshot"] = "not configured"
	} else if _, ok := h.store.Get(h.service); ok {
		checks["policy_snapshot"] = "ok"
	} else {
		checks["policy_snapshot"] = "missing"
		healthy = false
	}

	if h.decisionCache != nil {
		checks["decision_cache"] = fmt.Sprintf("%d entries", h.decisionCache.Size())
	}
	if h.subjectCache != nil {
		checks["subject_cache"] = fmt.Sprintf("%d entries", h.subjectCache.Size())
	}

	if h.emitter != nil {
		depth := h.emitter.ChannelDepth()
		capacity := h.emitter.ChannelCapacity()
		percentFull := 0
		if capacity > 0 {
			percentFull = depth * 100 / capacity
		}
		if percentFull > 90 {
			checks["audit"] = fmt.Sprintf("degraded: %d/%d (%d%%)", depth, capacity, percentFull)
			healthy = false
		} else {
			checks["audit"] = fmt.Sprintf("ok: %d/%d (%d%%)", depth, capacity, percentFull)
		}
		if drops := h.emitter.DroppedRecords(); drops > 0 {
			checks["audit_drops"] = fmt.Sprintf("%d dropped", drops)
		}
	} else {
		checks["audit"] = "not configured"
	}

	checks["goroutines"] = fmt.Sprintf("%d", runtime.NumGoroutine())

	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}
	return HealthResponse{Status: status, Checks: checks, Version: h.version}
}

// Handler returns an http.Handler for the health endpoint.
func (h *HealthChecker) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		health := h.Check()
		w.Header().Set("Content-Type", "application/json")
		if health.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		_ = json.NewEncoder(w).Encode(health)
	})
}

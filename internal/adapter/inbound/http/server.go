package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewMux wires the decision endpoint, health check, and metrics exposition
// into one http.Handler, with the metrics middleware and (if whitelist is
// non-nil) the IP allowlist applied at the top.
func NewMux(check *CheckHandler, health *HealthChecker, metrics *Metrics, whitelist *IPWhitelist) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/check", check.Handler())
	mux.Handle("/utils/health-check/", health.Handler())
	mux.Handle("/metrics", promhttp.Handler())

	var handler http.Handler = mux
	handler = MetricsMiddleware(metrics)(handler)
	if whitelist != nil {
		handler = whitelist.Middleware(handler)
	}
	return handler
}

package http

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ranger-acl/rangeracl/internal/service"
)

// checkConditions carries the identity claims the gateway forwards inline
// with the resource request, mirroring the reference implementation's
// OPA-style input envelope.
type checkConditions struct {
	Username []string `json:"username"`
}

type checkInput struct {
	Bucket     string          `json:"bucket"`
	Object     string          `json:"object"`
	Action     string          `json:"action"`
	Conditions checkConditions `json:"conditions"`
}

type checkRequestBody struct {
	Input checkInput `json:"input"`
}

// checkResponse's Result is a bare boolean on the wire — spec.md §6 fixes
// this shape at `{"result": true}`; PolicyID lives only in the structured
// 403 body, not the 200 response.
type checkResponse struct {
	Result    bool             `json:"result"`
	TimingsMS map[string]int64 `json:"timings_ms,omitempty"`
}

type checkErrorResponse struct {
	Error     string           `json:"error"`
	User      string           `json:"user,omitempty"`
	Resource  string           `json:"resource,omitempty"`
	Action    string           `json:"action,omitempty"`
	PolicyID  *int64           `json:"policy_id,omitempty"`
	TimingsMS map[string]int64 `json:"timings_ms,omitempty"`
}

// CheckHandler serves the decision endpoint (C9's HTTP façade).
type CheckHandler struct {
	pipeline *service.Pipeline
	service  string
	metrics  *Metrics
}

// NewCheckHandler creates a CheckHandler for the given Ranger service name.
func NewCheckHandler(pipeline *service.Pipeline, serviceName string, metrics *Metrics) *CheckHandler {
	return &CheckHandler{pipeline: pipeline, service: serviceName, metrics: metrics}
}

func (h *CheckHandler) Handler() http.Handler {
	return http.HandlerFunc(h.serve)
}

func (h *CheckHandler) serve(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	timings := map[string]int64{}

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body checkRequestBody
	decodeStart := time.Now()
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, checkErrorResponse{Error: "invalid request body"})
		return
	}
	timings["decode"] = time.Since(decodeStart).Milliseconds()

	in := service.Input{
		Service:    h.service,
		Usernames:  body.Input.Conditions.Username,
		Bucket:     body.Input.Bucket,
		Object:     body.Input.Object,
		ActionVerb: body.Input.Action,
		ClientIP:   clientIP(r),
		SessionID:  r.Header.Get("X-Session-Id"),
	}

	evalStart := time.Now()
	d, err := h.pipeline.Evaluate(r.Context(), in)
	timings["evaluate"] = time.Since(evalStart).Milliseconds()
	timings["total"] = time.Since(start).Milliseconds()

	if err != nil {
		switch {
		case errors.Is(err, service.ErrBadRequest):
			writeError(w, http.StatusBadRequest, checkErrorResponse{Error: err.Error(), TimingsMS: timings})
		default:
			writeError(w, http.StatusInternalServerError, checkErrorResponse{Error: "internal error", TimingsMS: timings})
		}
		h.record("error")
		return
	}

	if !d.Allowed {
		resource := in.Bucket
		if in.Object != "" {
			resource = in.Bucket + "/" + in.Object
		}
		writeError(w, http.StatusForbidden, checkErrorResponse{
			Error:     "Access denied",
			User:      firstOrEmpty(in.Usernames),
			Resource:  resource,
			Action:    in.ActionVerb,
			PolicyID:  &d.PolicyID,
			TimingsMS: timings,
		})
		h.record("deny")
		return
	}

	writeJSON(w, http.StatusOK, checkResponse{
		Result:    true,
		TimingsMS: timings,
	})
	h.record("allow")
}

func (h *CheckHandler) record(result string) {
	if h.metrics != nil {
		h.metrics.DecisionsTotal.WithLabelValues(result).Inc()
	}
}

func firstOrEmpty(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// clientIP derives the caller's address the same way the reference gateway
// does: the first hop in X-Forwarded-For, falling back to RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}
	return "0.0.0.0"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, v checkErrorResponse) {
	writeJSON(w, status, v)
}

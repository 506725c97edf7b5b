package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIPWhitelist_Allowed_ExactMatch(t *testing.T) {
	wl := NewIPWhitelist([]string{"10.0.0.5"})
	if !wl.Allowed("10.0.0.5") {
		t.Error("Allowed(10.0.0.5) = false, want true")
	}
	if wl.Allowed("10.0.0.6") {
		t.Error("Allowed(10.0.0.6) = true, want false")
	}
}

func TestIPWhitelist_Allowed_CIDRMatch(t *testing.T) {
	wl := NewIPWhitelist([]string{"192.168.1.0/24"})
	if !wl.Allowed("192.168.1.42") {
		t.Error("Allowed(192.168.1.42) = false, want true")
	}
	if wl.Allowed("192.168.2.1") {
		t.Error("Allowed(192.168.2.1) = true, want false")
	}
}

func TestIPWhitelist_Allowed_InvalidIPRejected(t *testing.T) {
	wl := NewIPWhitelist([]string{"10.0.0.0/8"})
	if wl.Allowed("not-an-ip") {
		t.Error("Allowed(not-an-ip) = true, want false")
	}
}

func TestIPWhitelist_Allowed_MalformedEntrySkipped(t *testing.T) {
	wl := NewIPWhitelist([]string{"not-valid", "10.0.0.1"})
	if !wl.Allowed("10.0.0.1") {
		t.Error("Allowed(10.0.0.1) = false, want true despite a malformed sibling entry")
	}
}

func TestIPWhitelist_Middleware_EmptyListAllowsAll(t *testing.T) {
	wl := NewIPWhitelist(nil)
	handler := wl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 when whitelist is empty", rec.Code)
	}
}

func TestIPWhitelist_Middleware_RejectsUnlistedClient(t *testing.T) {
	wl := NewIPWhitelist([]string{"10.0.0.1"})
	handler := wl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for a client outside the whitelist", rec.Code)
	}
}

func TestIPWhitelist_Middleware_AllowsListedClient(t *testing.T) {
	wl := NewIPWhitelist([]string{"10.0.0.1"})
	handler := wl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:12345"
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for a whitelisted client", rec.Code)
	}
}

func TestIPWhitelist_Middleware_HonorsForwardedFor(t *testing.T) {
	wl := NewIPWhitelist([]string{"203.0.113.9"})
	handler := wl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:12345"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 when X-Forwarded-For's first hop is whitelisted", rec.Code)
	}
}

package http

import (
	"net"
	"net/http"
)

// IPWhitelist rejects requests whose client IP isn't covered by any of the
// configured CIDR ranges or exact addresses. An empty list disables the
// check entirely (the default — this middleware is opt-in).
type IPWhitelist struct {
	nets []*net.IPNet
	ips  map[string]bool
}

// NewIPWhitelist parses entries as either a bare IP or a CIDR range.
// Malformed entries are skipped; the caller should validate them up front
// (internal/config does, via validator) so this never needs to error out.
func NewIPWhitelist(entries []string) *IPWhitelist {
	wl := &IPWhitelist{ips: make(map[string]bool)}
	for _, e := range entries {
		if _, network, err := net.ParseCIDR(e); err == nil {
			wl.nets = append(wl.nets, network)
			continue
		}
		if ip := net.ParseIP(e); ip != nil {
			wl.ips[ip.String()] = true
		}
	}
	return wl
}

// Allowed reports whether clientIP is permitted. An invalid clientIP is
// always rejected.
func (wl *IPWhitelist) Allowed(clientIP string) bool {
	ip := net.ParseIP(clientIP)
	if ip == nil {
		return false
	}
	if wl.ips[ip.String()] {
		return true
	}
	for _, n := range wl.nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// Middleware enforces the whitelist on every request, using the same
// client-IP derivation as the decision handler.
func (wl *IPWhitelist) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(wl.nets) == 0 && len(wl.ips) == 0 {
			next.ServeHTTP(w, r)
			return
		}
		if !wl.Allowed(clientIP(r)) {
			http.Error(w, "client not permitted", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

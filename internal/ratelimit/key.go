package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// KeyFunc extracts the client identifier a request is limited by.
type KeyFunc func(r *http.Request) string

// ClientKeyFunc keys requests by network origin. With trustXFF the first
// X-Forwarded-For hop is used, as set by a fronting proxy.
func ClientKeyFunc(trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if trustXFF {
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
		}

		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}

package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientKeyFunc(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		trustXFF   bool
		want       string
	}{
		{name: "remote addr", remoteAddr: "10.0.0.1:1234", want: "10.0.0.1"},
		{name: "xff ignored when untrusted", remoteAddr: "10.0.0.1:1234", xff: "1.1.1.1", want: "10.0.0.1"},
		{name: "first xff hop when trusted", remoteAddr: "10.0.0.1:1234", xff: " 1.1.1.1 , 2.2.2.2", trustXFF: true, want: "1.1.1.1"},
		{name: "empty xff falls back", remoteAddr: "10.0.0.1:1234", xff: " ,2.2.2.2", trustXFF: true, want: "10.0.0.1"},
		{name: "addr without port", remoteAddr: "10.0.0.9", want: "10.0.0.9"},
		{name: "nothing", remoteAddr: "", want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			assert.Equal(t, tt.want, ClientKeyFunc(tt.trustXFF)(r))
		})
	}
}

package httpapi

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name      string
		forwarded string
		realIP    string
		remote    string
		want      string
	}{
		{name: "forwarded chain", forwarded: "203.0.113.9, 10.0.0.1", remote: "10.0.0.1:5000", want: "203.0.113.9"},
		{name: "real ip", realIP: "198.51.100.4", remote: "10.0.0.1:5000", want: "198.51.100.4"},
		{name: "garbage header falls through", forwarded: "unknown", remote: "192.0.2.7:443", want: "192.0.2.7"},
		{name: "ipv6 peer", remote: "[2001:db8::1]:8080", want: "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/match", nil)
			req.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := clientIP(req); got != tt.want {
				t.Fatalf("clientIP()=%q want=%q", got, tt.want)
			}
		})
	}
}

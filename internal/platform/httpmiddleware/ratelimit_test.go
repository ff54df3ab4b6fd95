package httpmiddleware

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	cases := []struct {
		name       string
		remoteAddr string
		xff        string
		xRealIP    string
		want       string
	}{
		{
			name:       "direct connection uses remote addr",
			remoteAddr: "203.0.113.7:50123",
			want:       "203.0.113.7",
		},
		{
			name:       "untrusted remote ignores forwarded header",
			remoteAddr: "203.0.113.7:50123",
			xff:        "198.51.100.1",
			want:       "203.0.113.7",
		},
		{
			name:       "trusted proxy uses first forwarded ip",
			remoteAddr: "10.0.0.5:443",
			xff:        "198.51.100.1, 10.0.0.5",
			want:       "198.51.100.1",
		},
		{
			name:       "loopback proxy uses x-real-ip when no xff",
			remoteAddr: "127.0.0.1:8080",
			xRealIP:    "198.51.100.9",
			want:       "198.51.100.9",
		},
		{
			name:       "garbage forwarded value falls back to remote",
			remoteAddr: "10.0.0.5:443",
			xff:        "not-an-ip",
			want:       "10.0.0.5",
		},
		{
			name:       "remote without port",
			remoteAddr: "203.0.113.7",
			want:       "203.0.113.7",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.xRealIP != "" {
				req.Header.Set("X-Real-IP", tc.xRealIP)
			}
			if got := ClientIP(req); got != tc.want {
				t.Fatalf("ClientIP: got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIsTrustedProxy(t *testing.T) {
	trusted := []string{"127.0.0.1", "10.1.2.3", "192.168.0.1", "172.16.5.5"}
	for _, ip := range trusted {
		if !isTrustedProxy(ip) {
			t.Errorf("isTrustedProxy(%q): want true", ip)
		}
	}
	untrusted := []string{"203.0.113.7", "8.8.8.8", "", "bogus"}
	for _, ip := range untrusted {
		if isTrustedProxy(ip) {
			t.Errorf("isTrustedProxy(%q): want false", ip)
		}
	}
}

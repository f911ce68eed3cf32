package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIPResolverResolve(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "mobile client direct",
			remoteAddr: "203.0.113.7:43210",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.5", "X-Real-IP": "198.51.100.6"},
			want:       "203.0.113.7",
		},
		{
			name:       "untrusted peer cannot spoof",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "203.0.113.7:43210",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.5"},
			want:       "203.0.113.7",
		},
		{
			name:       "load balancer forwards client",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.2.3:8080",
			headers:    map[string]string{"X-Forwarded-For": " junk , 198.51.100.8, 10.1.2.3"},
			want:       "198.51.100.8",
		},
		{
			name:       "bare proxy address",
			trusted:    []string{"10.1.2.3"},
			remoteAddr: "10.1.2.3:8080",
			headers:    map[string]string{"X-Real-IP": "198.51.100.10"},
			want:       "198.51.100.10",
		},
		{
			name:       "mapped ipv4 peer",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "[::ffff:10.0.0.5]:8080",
			headers:    map[string]string{"X-Forwarded-For": "[2001:db8::1]:443"},
			want:       "2001:db8::1",
		},
		{
			name:       "proxy without headers",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.0.0.5:8080",
			want:       "10.0.0.5",
		},
		{
			name:       "unparseable peer",
			remoteAddr: "pipe",
			want:       "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver, err := NewClientIPResolver(tt.trusted)
			if err != nil {
				t.Fatalf("NewClientIPResolver() error = %v", err)
			}

			req := httptest.NewRequest(http.MethodPost, "/register_user", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			if got := resolver.Resolve(req); got != tt.want {
				t.Fatalf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewClientIPResolverRejectsInvalidProxy(t *testing.T) {
	if _, err := NewClientIPResolver([]string{"", "10.0.0.0/33"}); err == nil {
		t.Fatal("NewClientIPResolver() error = nil, want error")
	}
	if _, err := NewClientIPResolver([]string{" ", "fd00::/8"}); err != nil {
		t.Fatalf("NewClientIPResolver() error = %v", err)
	}
}

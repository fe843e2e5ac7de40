package security

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDetectSuspiciousRequest(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		agent  string
		want   bool
	}{
		{"normal page view", "GET", "/dashboard", "Mozilla/5.0", false},
		{"path traversal", "GET", "/../etc/passwd", "Mozilla/5.0", true},
		{"env probe", "GET", "/.env", "Mozilla/5.0", true},
		{"wordpress probe", "GET", "/wp-admin/setup.php", "Mozilla/5.0", true},
		{"code injection in query", "GET", "/expenses?q=eval(1)", "Mozilla/5.0", true},
		{"scanner user agent", "GET", "/login", "sqlmap/1.7", true},
		{"crawler user agent", "GET", "/", "googlebot/2.1", true},
		{"curl is allowed", "GET", "/healthz", "curl/8.0", false},
		{"trace method", "TRACE", "/", "Mozilla/5.0", true},
		{"overlong url", "GET", "/x?pad=" + strings.Repeat("a", 3000), "Mozilla/5.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector()
			r := httptest.NewRequest(tt.method, tt.target, nil)
			r.Header.Set("User-Agent", tt.agent)
			if got := d.DetectSuspiciousRequest(r); got != tt.want {
				t.Errorf("DetectSuspiciousRequest() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetMetricsCountsSuspicious(t *testing.T) {
	d := NewDetector()

	for i := 0; i < 3; i++ {
		r := httptest.NewRequest("GET", "/.env", nil)
		d.DetectSuspiciousRequest(r)
	}
	r := httptest.NewRequest("GET", "/dashboard", nil)
	d.DetectSuspiciousRequest(r)

	if got := d.GetMetrics().SuspiciousRequests; got != 3 {
		t.Errorf("SuspiciousRequests = %d, want 3", got)
	}
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{"direct connection", "203.0.113.9:1234", "", "203.0.113.9"},
		{"forwarded via trusted proxy", "127.0.0.1:1234", "203.0.113.9", "203.0.113.9"},
		{"forwarded chain takes first", "10.1.2.3:1234", "203.0.113.9, 10.0.0.1", "203.0.113.9"},
		{"untrusted source ignores header", "203.0.113.9:1234", "198.51.100.7", "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector()
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := d.ExtractClientIP(r); got != tt.want {
				t.Errorf("ExtractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAddTrustedProxy(t *testing.T) {
	d := NewDetector()

	if err := d.AddTrustedProxy("not-a-cidr"); err == nil {
		t.Error("AddTrustedProxy(invalid) error = nil")
	}

	if err := d.AddTrustedProxy("198.51.100.0/24"); err != nil {
		t.Fatalf("AddTrustedProxy() error = %v", err)
	}
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "198.51.100.7:1234"
	r.Header.Set("X-Forwarded-For", "203.0.113.9")
	if got := d.ExtractClientIP(r); got != "203.0.113.9" {
		t.Errorf("ExtractClientIP() via added proxy = %q, want 203.0.113.9", got)
	}
}

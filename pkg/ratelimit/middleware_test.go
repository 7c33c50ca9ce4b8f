package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(handler http.Handler, method, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = ip + ":12345"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_EndpointLimit(t *testing.T) {
	m := NewMiddleware(&Config{
		EndpointLimits: map[string]EndpointLimit{
			"POST /login": {Capacity: 2, RefillRate: 0.1},
		},
		BucketTTL: time.Minute,
	})
	handler := m.Handler(okHandler())

	for i := 0; i < 2; i++ {
		rec := doRequest(handler, http.MethodPost, "/login", "10.0.0.1")
		if rec.Code != http.StatusOK {
			t.Errorf("Request %d should pass, got %d", i+1, rec.Code)
		}
	}

	rec := doRequest(handler, http.MethodPost, "/login", "10.0.0.1")
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Expected Retry-After header, got %q", rec.Header().Get("Retry-After"))
	}

	// A different IP has its own bucket
	rec = doRequest(handler, http.MethodPost, "/login", "10.0.0.2")
	if rec.Code != http.StatusOK {
		t.Errorf("Different IP should pass, got %d", rec.Code)
	}

	// Other endpoints are not limited
	rec = doRequest(handler, http.MethodGet, "/", "10.0.0.1")
	if rec.Code != http.StatusOK {
		t.Errorf("Unlimited endpoint should pass, got %d", rec.Code)
	}
}

func TestMiddleware_PerIPLimit(t *testing.T) {
	m := NewMiddleware(&Config{
		PerIPCapacity:   3,
		PerIPRefillRate: 0.1,
		BucketTTL:       time.Minute,
	})
	handler := m.Handler(okHandler())

	for i := 0; i < 3; i++ {
		rec := doRequest(handler, http.MethodGet, "/", "10.0.0.1")
		if rec.Code != http.StatusOK {
			t.Errorf("Request %d should pass, got %d", i+1, rec.Code)
		}
	}

	rec := doRequest(handler, http.MethodGet, "/", "10.0.0.1")
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", rec.Code)
	}

	m.Reset("10.0.0.1")

	rec = doRequest(handler, http.MethodGet, "/", "10.0.0.1")
	if rec.Code != http.StatusOK {
		t.Errorf("Request after reset should pass, got %d", rec.Code)
	}
}

func TestMiddleware_ResetClearsEndpointLimit(t *testing.T) {
	m := NewMiddleware(&Config{
		EndpointLimits: map[string]EndpointLimit{
			"POST /login": {Capacity: 1, RefillRate: 0.01},
		},
		BucketTTL: time.Minute,
	})
	handler := m.Handler(okHandler())

	doRequest(handler, http.MethodPost, "/login", "10.0.0.1")
	rec := doRequest(handler, http.MethodPost, "/login", "10.0.0.1")
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", rec.Code)
	}

	// A successful login resets the client's endpoint budget too.
	m.Reset("10.0.0.1")

	rec = doRequest(handler, http.MethodPost, "/login", "10.0.0.1")
	if rec.Code != http.StatusOK {
		t.Errorf("Request after reset should pass, got %d", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:4567"
	if ip := ClientIP(req); ip != "192.168.1.5" {
		t.Errorf("Expected RemoteAddr IP, got %q", ip)
	}

	req.Header.Set("X-Real-IP", "203.0.113.9")
	if ip := ClientIP(req); ip != "203.0.113.9" {
		t.Errorf("Expected X-Real-IP, got %q", ip)
	}

	req.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.1")
	if ip := ClientIP(req); ip != "198.51.100.1" {
		t.Errorf("Expected first X-Forwarded-For entry, got %q", ip)
	}
}

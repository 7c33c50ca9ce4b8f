package ratelimit

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Config holds rate limiting configuration
type Config struct {
	// Per-IP rate limiting across all guarded routes
	PerIPCapacity   int
	PerIPRefillRate float64 // requests per second

	// Endpoint-specific limits keyed as "METHOD /path"
	EndpointLimits map[string]EndpointLimit

	// How long to keep inactive buckets in memory
	BucketTTL time.Duration
}

// EndpointLimit defines rate limits for a specific endpoint
type EndpointLimit struct {
	Capacity   int
	RefillRate float64
}

// DefaultConfig allows 60 requests per minute per IP, with tighter limits
// on the credential and code endpoints.
func DefaultConfig() *Config {
	return &Config{
		PerIPCapacity:   60,
		PerIPRefillRate: 1.0,

		EndpointLimits: map[string]EndpointLimit{
			"POST /login": {
				Capacity:   10,
				RefillRate: 10.0 / 60.0,
			},
			"POST /verify-otp": {
				Capacity:   10,
				RefillRate: 10.0 / 60.0,
			},
			"POST /setup-2fa": {
				Capacity:   10,
				RefillRate: 10.0 / 60.0,
			},
			"POST /api/contact": {
				Capacity:   5,
				RefillRate: 5.0 / 60.0,
			},
		},

		BucketTTL: 1 * time.Hour,
	}
}

// Middleware holds the rate limiting middleware state
type Middleware struct {
	config           *Config
	ipLimiter        *RateLimiter
	endpointLimiters map[string]*RateLimiter
}

// NewMiddleware creates a new rate limiting middleware
func NewMiddleware(config *Config) *Middleware {
	if config == nil {
		config = DefaultConfig()
	}

	m := &Middleware{
		config:           config,
		endpointLimiters: make(map[string]*RateLimiter),
	}

	if config.PerIPCapacity > 0 {
		m.ipLimiter = NewRateLimiter(config.PerIPCapacity, config.PerIPRefillRate, config.BucketTTL)
	}

	for endpoint, limit := range config.EndpointLimits {
		m.endpointLimiters[endpoint] = NewRateLimiter(limit.Capacity, limit.RefillRate, config.BucketTTL)
	}

	return m
}

// Handler returns the rate limiting middleware handler
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r)

		if m.ipLimiter != nil && ip != "" && !m.ipLimiter.Allow(ip) {
			m.rateLimitExceeded(w, r, "ip")
			return
		}

		endpointKey := r.Method + " " + r.URL.Path
		if limiter, exists := m.endpointLimiters[endpointKey]; exists {
			if !limiter.Allow(ip + ":" + endpointKey) {
				m.rateLimitExceeded(w, r, "endpoint")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) rateLimitExceeded(w http.ResponseWriter, r *http.Request, limitType string) {
	slog.Warn("Rate limit exceeded",
		"type", limitType,
		"ip", ClientIP(r),
		"path", r.URL.Path,
		"method", r.Method,
	)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "60")
	w.WriteHeader(http.StatusTooManyRequests)

	fmt.Fprintf(w, `{"error":"rate_limit_exceeded","message":"Too many requests. Please try again later.","type":%q}`, limitType)
}

// Reset clears the per-IP and per-endpoint limits for a client key, used
// after a successful login so a legitimate user is not locked out by
// earlier failures.
func (m *Middleware) Reset(key string) {
	if m.ipLimiter != nil {
		m.ipLimiter.Reset(key)
	}
	for endpoint, limiter := range m.endpointLimiters {
		limiter.Reset(key + ":" + endpoint)
	}
}

// ClientIP extracts the client IP address from the request
func ClientIP(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs, take the first one
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr is "IP:port"
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}

	return addr
}

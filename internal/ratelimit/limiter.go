// Package ratelimit throttles outbound requests per target host so agent
// runs stay polite against the listing sites they extract from.
package ratelimit

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter is the throttle the runner and collectors consult before
// touching a page. Implementations limit per host, not globally, so one slow
// site never starves the others.
type RateLimiter interface {
	// Wait blocks until a request for the given URL can proceed, or the
	// context is cancelled.
	Wait(ctx context.Context, urlStr string) error

	// Allow reports whether a request for the given URL can proceed right
	// now without blocking.
	Allow(urlStr string) bool

	// Reserve reserves a token for the given URL.
	Reserve(urlStr string) *rate.Reservation
}

// DomainLimiter keeps one token bucket per host. Listing sites rate-limit
// and ban aggressively, so navigations, static fetches and overlay probes
// all go through the same per-host budget.
type DomainLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	perHost  rate.Limit
	burst    int
}

// NewDomainLimiter creates a limiter granting requestsPerSecond with the
// given burst to every host. Non-positive arguments fall back to defaults.
func NewDomainLimiter(requestsPerSecond float64, burst int) *DomainLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5.0
	}
	if burst <= 0 {
		burst = 10
	}

	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		perHost:  rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

// Wait blocks until the host's bucket grants a token. An unparsable URL
// proceeds immediately; it will fail at the request site with a better error.
func (dl *DomainLimiter) Wait(ctx context.Context, urlStr string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	domain := extractDomain(urlStr)
	if domain == "" {
		return nil
	}
	return dl.getLimiter(domain).Wait(ctx)
}

// Allow reports whether a token is available right now.
func (dl *DomainLimiter) Allow(urlStr string) bool {
	domain := extractDomain(urlStr)
	if domain == "" {
		return true
	}
	return dl.getLimiter(domain).Allow()
}

// Reserve takes a token reservation for the URL's host.
func (dl *DomainLimiter) Reserve(urlStr string) *rate.Reservation {
	domain := extractDomain(urlStr)
	if domain == "" {
		return &rate.Reservation{}
	}
	return dl.getLimiter(domain).Reserve()
}

// getLimiter returns the host's bucket, creating it on first sight.
func (dl *DomainLimiter) getLimiter(domain string) *rate.Limiter {
	dl.mu.RLock()
	limiter, exists := dl.limiters[domain]
	dl.mu.RUnlock()
	if exists {
		return limiter
	}

	dl.mu.Lock()
	defer dl.mu.Unlock()
	if limiter, exists := dl.limiters[domain]; exists {
		return limiter
	}
	limiter = rate.NewLimiter(dl.perHost, dl.burst)
	dl.limiters[domain] = limiter
	return limiter
}

// SetLimit overrides the rate for one host, for sites known to be stricter
// than the global default.
func (dl *DomainLimiter) SetLimit(domain string, requestsPerSecond float64, burst int) {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	if limiter, exists := dl.limiters[domain]; exists {
		limiter.SetLimit(rate.Limit(requestsPerSecond))
		limiter.SetBurst(burst)
	} else {
		dl.limiters[domain] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

func extractDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Host
}

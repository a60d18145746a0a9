package httpcache

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// globalRateLimiter spaces requests to the same host even when callers fan
// out across goroutines.
var globalRateLimiter = NewDomainRateLimiter(250*time.Millisecond, 2)

// DomainRateLimiter enforces a per-host token bucket.
// It is safe for concurrent use from multiple goroutines.
type DomainRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	overrides map[string]rate.Limit
	every     time.Duration
	burst     int
}

// NewDomainRateLimiter creates a limiter allowing one request per host every
// interval, with the given burst.
func NewDomainRateLimiter(every time.Duration, burst int) *DomainRateLimiter {
	return &DomainRateLimiter{
		limiters:  make(map[string]*rate.Limiter),
		overrides: make(map[string]rate.Limit),
		every:     every,
		burst:     burst,
	}
}

// SetDomainInterval overrides the interval for domain and all of its
// subdomains. Each host still gets its own bucket.
func (r *DomainRateLimiter) SetDomainInterval(domain string, every time.Duration) {
	domain = strings.ToLower(domain)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides[domain] = rate.Every(every)
	for host, l := range r.limiters {
		if o, ok := r.override(host); ok {
			l.SetLimit(o)
		}
	}
}

// SetDomainInterval overrides the shared limiter's interval for domain and
// its subdomains.
func SetDomainInterval(domain string, every time.Duration) {
	globalRateLimiter.SetDomainInterval(domain, every)
}

// override returns the limit for the most specific overridden domain that
// host falls under. Callers hold r.mu.
func (r *DomainRateLimiter) override(host string) (rate.Limit, bool) {
	var (
		best  string
		limit rate.Limit
	)
	for d, l := range r.overrides {
		if (host == d || strings.HasSuffix(host, "."+d)) && len(d) > len(best) {
			best, limit = d, l
		}
	}
	return limit, best != ""
}

// Wait blocks until a request to rawURL's host is allowed or ctx is done.
// URLs without a host are never delayed.
func (r *DomainRateLimiter) Wait(ctx context.Context, rawURL string, logger *slog.Logger) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil
	}

	l := r.limiter(strings.ToLower(u.Hostname()))
	if logger != nil && l.Tokens() < 1 {
		logger.Debug("rate limit pause", "domain", u.Host)
	}
	return l.Wait(ctx)
}

func (r *DomainRateLimiter) limiter(host string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.limiters[host]; ok {
		return l
	}
	limit := rate.Every(r.every)
	if o, ok := r.override(host); ok {
		limit = o
	}
	l := rate.NewLimiter(limit, r.burst)
	r.limiters[host] = l
	return l
}

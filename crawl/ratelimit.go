package crawl

import (
	"context"
	"strings"
	"sync"

	"github.com/fwojciec/ragdoc"
	"golang.org/x/time/rate"
)

var _ ragdoc.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter throttles requests with one token bucket per host. Host
// names are compared case-insensitively and a leading "www." is ignored,
// so a site and its www mirror share a bucket.
type DomainLimiter struct {
	limit rate.Limit

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewDomainLimiter returns a DomainLimiter allowing rps requests per second
// per host with a burst of one. rps <= 0 disables throttling.
func NewDomainLimiter(rps float64) *DomainLimiter {
	l := &DomainLimiter{limit: rate.Inf, buckets: map[string]*rate.Limiter{}}
	if rps > 0 {
		l.limit = rate.Limit(rps)
	}
	return l
}

// Wait implements ragdoc.DomainLimiter.
func (l *DomainLimiter) Wait(ctx context.Context, host string) error {
	return l.bucket(host).Wait(ctx)
}

func (l *DomainLimiter) bucket(host string) *rate.Limiter {
	key := strings.TrimPrefix(strings.ToLower(host), "www.")

	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		b = rate.NewLimiter(l.limit, 1)
		l.buckets[key] = b
	}
	return b
}

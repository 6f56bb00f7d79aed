// Package ratelimit provides a per-client token bucket limiter used to
// protect the generate endpoint from bursty callers.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// staleAfter is how long an idle client entry survives before a sweep
// removes it.
const staleAfter = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// PerClient hands out an independent token bucket per client key
// (typically the remote IP).
type PerClient struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int

	lastSweep time.Time
}

// New creates a limiter allowing rps requests per second with the given
// burst per client key.
func New(rps float64, burst int) *PerClient {
	return &PerClient{
		clients:   make(map[string]*clientLimiter),
		limit:     rate.Limit(rps),
		burst:     burst,
		lastSweep: time.Now(),
	}
}

// Allow reports whether a request for key may proceed now.
func (p *PerClient) Allow(key string) bool {
	return p.get(key).Allow()
}

// Wait blocks until a request for key may proceed or ctx is done.
func (p *PerClient) Wait(ctx context.Context, key string) error {
	return p.get(key).Wait(ctx)
}

func (p *PerClient) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	cl, ok := p.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(p.limit, p.burst)}
		p.clients[key] = cl
	}
	cl.lastSeen = now

	// Sweep stale entries opportunistically so the map does not grow
	// without bound under churning client keys.
	if now.Sub(p.lastSweep) > staleAfter {
		for k, c := range p.clients {
			if now.Sub(c.lastSeen) > staleAfter {
				delete(p.clients, k)
			}
		}
		p.lastSweep = now
	}

	return cl.limiter
}

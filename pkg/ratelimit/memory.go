package ratelimit

import (
	"context"
	"sync"
	"time"
)

const sweepEvery = 1024

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is the single-process fallback used when Redis is not
// configured. Counters are not shared across replicas.
type MemoryLimiter struct {
	mu    sync.Mutex
	now   func() time.Time
	keys  map[string]*window
	calls int
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{now: time.Now, keys: make(map[string]*window)}
}

func (l *MemoryLimiter) Allow(_ context.Context, rules ...Rule) (Decision, error) {
	rules = validRules(rules)
	if len(rules) == 0 {
		return Decision{Allowed: true}, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.calls++
	if l.calls%sweepEvery == 0 {
		l.sweep(now)
	}

	d := Decision{Allowed: true, Remaining: -1}
	for _, r := range rules {
		w, ok := l.keys[r.Key]
		if !ok || !now.Before(w.resetAt) {
			w = &window{resetAt: now.Add(r.Window)}
			l.keys[r.Key] = w
		}
		w.count++

		left := max(r.Limit-w.count, 0)
		if d.Remaining < 0 || left < d.Remaining {
			d.Remaining = left
		}
		if w.count > r.Limit {
			if d.Allowed {
				d.Allowed = false
				d.Denied = r.Key
			}
			if wait := w.resetAt.Sub(now); wait > d.RetryAfter {
				d.RetryAfter = wait
			}
		}
	}
	return d, nil
}

func (l *MemoryLimiter) sweep(now time.Time) {
	for k, w := range l.keys {
		if !now.Before(w.resetAt) {
			delete(l.keys, k)
		}
	}
}

var _ Limiter = (*MemoryLimiter)(nil)

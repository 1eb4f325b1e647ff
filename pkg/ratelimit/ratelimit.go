// Package ratelimit implements fixed-window counters shared by every request
// that presents the same key.
package ratelimit

import (
	"context"
	"time"
)

// Rule is one counter: Key may be consumed Limit times per Window.
type Rule struct {
	Key    string
	Limit  int
	Window time.Duration
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed bool
	// Denied is the key of the first rule over its ceiling.
	Denied string
	// Remaining is the smallest headroom left across all rules.
	Remaining int
	// RetryAfter is the time until the slowest denied key resets.
	RetryAfter time.Duration
}

// Limiter increments every rule's counter in one atomic step and reports
// whether all of them are still within their ceilings.
type Limiter interface {
	Allow(ctx context.Context, rules ...Rule) (Decision, error)
}

func validRules(rules []Rule) []Rule {
	out := rules[:0:0]
	for _, r := range rules {
		if r.Key == "" || r.Limit <= 0 || r.Window <= 0 {
			continue
		}
		out = append(out, r)
	}
	return out
}

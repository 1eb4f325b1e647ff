package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KEYS are the counters, ARGV holds (limit, window ms) pairs in the same
// order. Returns {first denied index or 0, retry ms, min remaining}.
var allowScript = redis.NewScript(`
local denied = 0
local retry = 0
local remaining = -1
for i, key in ipairs(KEYS) do
  local limit = tonumber(ARGV[2 * i - 1])
  local window = tonumber(ARGV[2 * i])
  local current = redis.call("INCR", key)
  if current == 1 or redis.call("PTTL", key) < 0 then
    redis.call("PEXPIRE", key, window)
  end
  local left = limit - current
  if left < 0 then left = 0 end
  if remaining < 0 or left < remaining then remaining = left end
  if current > limit then
    if denied == 0 then denied = i end
    local ttl = redis.call("PTTL", key)
    if ttl > retry then retry = ttl end
  end
end
return {denied, retry, remaining}
`)

// RedisLimiter keeps counters in Redis so every replica shares them.
type RedisLimiter struct {
	rdb    redis.Scripter
	prefix string
}

func NewRedisLimiter(rdb redis.Scripter, prefix string) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, prefix: prefix}
}

func (l *RedisLimiter) Allow(ctx context.Context, rules ...Rule) (Decision, error) {
	rules = validRules(rules)
	if len(rules) == 0 {
		return Decision{Allowed: true}, nil
	}

	keys := make([]string, len(rules))
	args := make([]any, 0, 2*len(rules))
	for i, r := range rules {
		keys[i] = l.prefix + r.Key
		args = append(args, r.Limit, r.Window.Milliseconds())
	}

	res, err := allowScript.Run(ctx, l.rdb, keys, args...).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}

	d := Decision{Allowed: res[0] == 0, Remaining: int(res[2])}
	if !d.Allowed {
		d.Denied = rules[res[0]-1].Key
		d.RetryAfter = time.Duration(res[1]) * time.Millisecond
	}
	return d, nil
}

var _ Limiter = (*RedisLimiter)(nil)

package application

import (
	"context"
	"time"
)

const sideEffectTimeout = 10 * time.Second

// runner executes fire-and-forget work. Tests swap in a synchronous one.
type runner func(fn func(ctx context.Context))

func goRunner(fn func(ctx context.Context)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		fn(ctx)
	}()
}

package background

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Runner tracks fire-and-forget work so shutdown can wait for it.
type Runner struct {
	log *zap.Logger
	wg  sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func New(log *zap.Logger) *Runner {
	return &Runner{log: log}
}

// Go runs fn on its own goroutine. Panics are recovered and logged.
// It returns false once Shutdown has begun.
func (r *Runner) Go(name string, fn func()) bool {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.log.Warn("background task dropped after shutdown", zap.String("task", name))
		return false
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Error("background task panicked",
					zap.String("task", name),
					zap.String("panic", fmt.Sprint(rec)),
				)
			}
		}()
		fn()
	}()
	return true
}

// Shutdown stops accepting tasks and waits for running ones or ctx.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Package guard bounds the wall-clock time of a conversion.
package guard

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/speakmath/internal/core/domain"
	"github.com/custodia-labs/speakmath/internal/notation/engine"
)

// Func is guarded work. It must call publish with its latest buffer so a
// timeout can return partial output, and should stop once ctx is done.
type Func func(ctx context.Context, publish func(string)) engine.Result

// Guard runs work under a budget derived from the input length.
type Guard struct {
	settings domain.TimeoutSettings
}

// New creates a Guard.
func New(settings domain.TimeoutSettings) *Guard {
	return &Guard{settings: settings}
}

// Budget returns the time allowed for an input of length runes.
func (g *Guard) Budget(length int) time.Duration {
	return g.settings.Budget(length)
}

// partial is the last buffer published by the worker.
type partial struct {
	mu  sync.Mutex
	buf string
}

func (p *partial) set(s string) {
	p.mu.Lock()
	p.buf = s
	p.mu.Unlock()
}

func (p *partial) get() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf
}

// Run executes fn on a worker goroutine. If the budget expires first the
// caller gets the last published buffer with StatusTimedOut at once; the
// worker observes the cancelled context and exits on its own.
func (g *Guard) Run(ctx context.Context, input string, fn Func) engine.Result {
	ctx, cancel := context.WithTimeout(ctx, g.Budget(utf8.RuneCountInString(input)))
	defer cancel()

	last := &partial{buf: input}
	done := make(chan engine.Result, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				err := domain.NewStructureError(0, "worker", fmt.Errorf("conversion panicked: %v", p))
				done <- engine.Result{
					Output: engine.Tidy(last.get()),
					State:  engine.Scanning,
					Status: domain.StatusStructureError,
					Errors: []error{err},
				}
			}
		}()
		done <- fn(ctx, last.set)
	}()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		select {
		case res := <-done:
			return res
		default:
		}
		return engine.Result{
			Output: engine.Tidy(last.get()),
			State:  engine.TimedOut,
			Status: domain.StatusTimedOut,
		}
	}
}

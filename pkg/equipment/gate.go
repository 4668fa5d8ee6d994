package equipment

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Gate is a memoized one-shot build. Any number of callers may Wait
// concurrently; the build function runs at most once and every waiter
// observes the same result, including a failure. A started build is never
// cancelled: a waiter whose context ends stops waiting, the build does not.
type Gate[T any] struct {
	build func() (T, error)
	sf    singleflight.Group

	mu   sync.Mutex
	done bool
	val  T
	err  error
}

// NewGate returns a gate around build. Nothing runs until the first Wait.
func NewGate[T any](build func() (T, error)) *Gate[T] {
	return &Gate[T]{build: build}
}

// Wait starts the build if needed and blocks until it finishes or ctx
// ends.
func (g *Gate[T]) Wait(ctx context.Context) (T, error) {
	if v, ok, err := g.Result(); ok {
		return v, err
	}

	ch := g.sf.DoChan("build", func() (any, error) {
		// A flight that finished just before this one began has already
		// recorded the result.
		if v, ok, err := g.Result(); ok {
			return v, err
		}
		v, err := g.run()
		g.mu.Lock()
		g.done, g.val, g.err = true, v, err
		g.mu.Unlock()
		return v, err
	})

	select {
	case <-ch:
		v, _, err := g.Result()
		return v, err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result returns the memoized outcome. ok is false until a build has
// finished.
func (g *Gate[T]) Result() (v T, ok bool, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.val, g.done, g.err
}

// Done reports whether the build has finished.
func (g *Gate[T]) Done() bool {
	_, ok, _ := g.Result()
	return ok
}

// run invokes build, turning a panic into an error so that it reaches
// every waiter instead of crashing the flight goroutine.
func (g *Gate[T]) run() (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("equipment: panic during build: %v", r)
		}
	}()
	return g.build()
}

package equipment

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateSharesOneBuild(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	g := NewGate(func() (*int, error) {
		calls.Add(1)
		<-release
		v := 42
		return &v, nil
	})
	assert.False(t, g.Done())

	const waiters = 32
	results := make([]*int, waiters)
	var wg sync.WaitGroup
	for i := range waiters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := g.Wait(context.Background())
			assert.NoError(t, err)
			results[i] = v
		}()
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, g.Done())
	for i := 1; i < waiters; i++ {
		assert.Same(t, results[0], results[i])
	}

	// Later callers get the memoized value without another build.
	v, err := g.Wait(context.Background())
	require.NoError(t, err)
	assert.Same(t, results[0], v)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGateFailureReachesEveryWaiter(t *testing.T) {
	boom := errors.New("boom")
	var calls atomic.Int32
	g := NewGate(func() (string, error) {
		calls.Add(1)
		return "", boom
	})

	for range 3 {
		_, err := g.Wait(context.Background())
		assert.ErrorIs(t, err, boom)
	}
	assert.Equal(t, int32(1), calls.Load())

	_, ok, err := g.Result()
	assert.True(t, ok)
	assert.ErrorIs(t, err, boom)
}

func TestGatePanicBecomesError(t *testing.T) {
	g := NewGate(func() (int, error) {
		panic("bad geometry")
	})
	_, err := g.Wait(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad geometry")
	assert.True(t, g.Done())
}

func TestGateWaiterContextDoesNotCancelBuild(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	g := NewGate(func() (string, error) {
		calls.Add(1)
		<-release
		return "built", nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	v, err := g.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "built", v)
	assert.Equal(t, int32(1), calls.Load())
}

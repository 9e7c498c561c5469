package conc

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_SubmitReturnsResult(t *testing.T) {
	pool := NewPool[int](2)
	defer pool.Release()

	f := pool.Submit(func() (int, error) { return 42, nil })
	v, err := f.Await()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestPool_BoundsConcurrency(t *testing.T) {
	pool := NewPool[struct{}](2)
	defer pool.Release()

	var running, peak atomic.Int32
	futures := make([]*Future[struct{}], 0, 10)
	for i := 0; i < 10; i++ {
		futures = append(futures, pool.Submit(func() (struct{}, error) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
			return struct{}{}, nil
		}))
	}

	require.NoError(t, AwaitAll(futures...))
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestFuture_PanicBecomesError(t *testing.T) {
	f := Go(func() (int, error) { panic("boom") })

	_, err := f.Await()
	var pe *PanicError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "boom", pe.Value)
}

func TestPool_SubmitAfterRelease(t *testing.T) {
	pool := NewPool[int](1)
	pool.Release()

	_, err := pool.Submit(func() (int, error) { return 1, nil }).Await()
	assert.Error(t, err)
}

func TestAwaitAll_FirstError(t *testing.T) {
	errBoom := errors.New("boom")
	err := AwaitAll(
		Go(func() (int, error) { return 1, nil }),
		Go(func() (int, error) { return 0, errBoom }),
	)
	assert.ErrorIs(t, err, errBoom)
}

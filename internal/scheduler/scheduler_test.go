package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsPeriodically(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	var runs atomic.Int32
	id, err := s.Every("rebuild", 50*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return runs.Load() >= 2 }, 3*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestScheduler_SingletonSkipsOverlap(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	var active, maxActive atomic.Int32
	_, err = s.Every("slow", 10*time.Millisecond, func(ctx context.Context) error {
		n := active.Add(1)
		defer active.Add(-1)
		if n > maxActive.Load() {
			maxActive.Store(n)
		}
		select {
		case <-time.After(80 * time.Millisecond):
		case <-ctx.Done():
		}
		return errors.New("slow run")
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	require.NoError(t, s.Run(ctx))
	assert.Equal(t, int32(1), maxActive.Load())
}

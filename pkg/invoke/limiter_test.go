package invoke

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLimiter_Unlimited(t *testing.T) {
	l := NewLimiter(Rate{Times: 1, Per: 0})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for i := 0; i < 100; i++ {
		require.NoError(t, l.Acquire(ctx))
	}
}

func TestLimiter_ZeroRateBlocks(t *testing.T) {
	l := NewLimiter(Rate{Times: 0, Per: time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	require.ErrorIs(t, l.Acquire(ctx), context.DeadlineExceeded)
}

func TestLimiter_SetRateWakesWaiters(t *testing.T) {
	l := NewLimiter(Rate{Times: 0, Per: time.Second})

	errCh := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		errCh <- l.Acquire(ctx)
	}()

	time.Sleep(10 * time.Millisecond)
	l.SetRate(Rate{Times: 100, Per: time.Second})

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter was not woken up by SetRate")
	}

	require.Equal(t, Rate{Times: 100, Per: time.Second}, l.Rate())
}

func TestLimiter_Throttles(t *testing.T) {
	l := NewLimiter(Rate{Times: 20, Per: time.Second})

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Acquire(context.Background()))
	}

	// first token is the burst, the other two are 50ms apart
	require.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

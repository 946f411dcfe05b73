package invoke

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Rate struct {
	Times uint64        `json:"times" yaml:"times"`
	Per   time.Duration `json:"per" yaml:"per"`
}

// Limiter throttles invocations to Rate.Times per Rate.Per. A zero Times blocks
// every Acquire until the rate is changed, a zero Per disables throttling.
type Limiter struct {
	mu      sync.Mutex
	rate    Rate
	limiter *rate.Limiter
	changed chan struct{}
}

func NewLimiter(r Rate) *Limiter {
	return &Limiter{
		rate:    r,
		limiter: rate.NewLimiter(limitOf(r), 1),
		changed: make(chan struct{}),
	}
}

func limitOf(r Rate) rate.Limit {
	switch {
	case r.Times == 0:
		return 0
	case r.Per == 0:
		return rate.Inf
	default:
		return rate.Limit(float64(r.Times) / r.Per.Seconds())
	}
}

func (l *Limiter) Rate() Rate {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.rate
}

func (l *Limiter) SetRate(r Rate) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if r == l.rate {
		return
	}

	l.rate = r
	l.limiter.SetLimit(limitOf(r))

	// wake up waiters blocked on the zero rate
	close(l.changed)
	l.changed = make(chan struct{})
}

// Acquire blocks until an invocation is allowed or ctx is done.
func (l *Limiter) Acquire(ctx context.Context) error {
	for {
		l.mu.Lock()
		blocked := l.rate.Times == 0
		changed := l.changed
		l.mu.Unlock()

		if !blocked {
			return l.limiter.Wait(ctx)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}

package database

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Pinger is anything that can report whether its backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// WaitReady pings p with exponential backoff until it answers, maxWait
// elapses or ctx ends. Each attempt gets its own 5s deadline.
func WaitReady(ctx context.Context, p Pinger, maxWait time.Duration, notify func(err error, next time.Duration)) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = maxWait

	op := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return p.Ping(attemptCtx)
	}
	return backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify)
}

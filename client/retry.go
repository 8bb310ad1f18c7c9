package apiclient

import (
	"context"
	"math/rand"
	"time"
)

// retryPolicy bounds the backoff applied to transient GET failures.
// Only network-classified errors on GET requests are ever retried.
type retryPolicy struct {
	baseDelay  time.Duration
	maxDelay   time.Duration
	maxRetries int
	timeout    time.Duration // per-attempt timeout, grows with each retry
	maxTimeout time.Duration
}

// backoff returns the delay before retry attempt (1-based): exponential on the
// base delay, capped, plus random jitter in a window widening per attempt.
func (p retryPolicy) backoff(attempt int) time.Duration {
	delay := p.baseDelay << uint(attempt-1)
	if delay > p.maxDelay {
		delay = p.maxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(p.baseDelay) * int64(attempt)))
	if delay+jitter > p.maxDelay {
		return p.maxDelay
	}
	return delay + jitter
}

// attemptTimeout grows the request timeout with each attempt (0-based) to
// tolerate slow backends, capped at maxTimeout.
func (p retryPolicy) attemptTimeout(attempt int) time.Duration {
	timeout := p.timeout * time.Duration(attempt+1)
	if timeout > p.maxTimeout {
		return p.maxTimeout
	}
	return timeout
}

// sleep waits for d or until ctx is done, so caller cancellation aborts
// pending retries.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

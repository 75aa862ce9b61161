package retry

import (
	"context"
	"errors"
	"net"
	"syscall"
	"time"

	backoff "github.com/sethvargo/go-retry"
)

// Config controls the backoff schedule applied to transient network errors.
type Config struct {
	// InitialDelay is the first backoff interval.
	InitialDelay time.Duration
	// MaxDelay caps the backoff interval.
	MaxDelay time.Duration
	// MaxAttempts bounds the total number of attempts (including the first).
	MaxAttempts uint64
}

// DefaultConfig returns the schedule used for calls to the external APIs:
// exponential from 1s with jitter, capped at 32s, at most 5 attempts.
func DefaultConfig() Config {
	return Config{
		InitialDelay: 1 * time.Second,
		MaxDelay:     32 * time.Second,
		MaxAttempts:  5,
	}
}

// Transient marks err as retryable for Do. Errors not marked this way are
// returned immediately, so non-transient HTTP failures never retry.
func Transient(err error) error {
	return backoff.RetryableError(err)
}

// IsTransient reports whether err looks like a transient network failure
// (timeout, connection refused/reset, DNS hiccup).
func IsTransient(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET)
}

// Do runs fn under the configured backoff schedule. Only errors wrapped with
// Transient are retried; the context cancels the whole schedule.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	if cfg.InitialDelay <= 0 {
		cfg = DefaultConfig()
	}

	b := backoff.NewExponential(cfg.InitialDelay)
	b = backoff.WithJitter(cfg.InitialDelay/2, b)
	b = backoff.WithCappedDuration(cfg.MaxDelay, b)
	if cfg.MaxAttempts > 0 {
		b = backoff.WithMaxRetries(cfg.MaxAttempts-1, b)
	}

	return backoff.Do(ctx, b, fn)
}

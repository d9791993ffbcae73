package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNetwork is returned when a remote backend cannot be reached.
	ErrNetwork = errors.New("network error")

	// ErrCorrupt is returned by [GetJSON] for an entry that does not decode.
	ErrCorrupt = errors.New("corrupt cache entry")
)

type transient struct{ err error }

func (t transient) Error() string { return t.err.Error() }
func (t transient) Unwrap() error { return t.err }

// Transient marks err as worth retrying. It returns nil for nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return transient{err}
}

// IsTransient reports whether err or an error it wraps was marked by
// [Transient].
func IsTransient(err error) bool {
	var t transient
	return errors.As(err, &t)
}

// Backoff retries transient failures with a doubling delay.
type Backoff struct {
	Attempts int           // total calls, at least one
	Delay    time.Duration // wait before the second call
}

// DefaultBackoff is used when connecting to a remote backend.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second}

// Retry calls fn until it succeeds, fails with an error not marked
// [Transient], runs out of attempts or ctx is done.
func (b Backoff) Retry(ctx context.Context, fn func() error) error {
	delay := b.Delay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !IsTransient(err) || attempt >= b.Attempts {
			return err
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}

package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy bounds a retry loop by attempt count.
//
// Unlike WithExponentialBackoff, MaxAttempts counts every attempt including
// the first one, and the delay stays constant unless Multiplier is above 1.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	// Multiplier grows the delay after every failed attempt. Values <= 1 keep it fixed.
	Multiplier float64
	// MaxDelay caps a growing delay. Zero means no cap.
	MaxDelay time.Duration
	Clock    Clock
}

// ExhaustedError is returned when every attempt of a Policy failed.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// Do runs op until it succeeds, returns a Fatal error, the context ends, or
// MaxAttempts is reached. op receives the 1-based attempt number. Do reports
// how many attempts were made.
//
// There is no sleep after the final attempt.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context, attempt int) error) (int, error) {
	if p.MaxAttempts < 1 {
		return 0, Fatal(fmt.Errorf("max attempts must be at least 1, got %d", p.MaxAttempts))
	}
	clock := p.Clock
	if clock == nil {
		clock = RealClock{}
	}

	delay := p.Delay
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, fmt.Errorf("context done before attempt %d: %w", attempt, err)
		}

		err := op(ctx, attempt)
		if err == nil {
			return attempt, nil
		}
		lastErr = err

		if IsFatal(err) {
			return attempt, err
		}

		if attempt == p.MaxAttempts {
			break
		}
		if err := clock.Sleep(ctx, delay); err != nil {
			return attempt, fmt.Errorf("context done after %d attempts: %w", attempt, err)
		}
		delay = p.next(delay)
	}

	return p.MaxAttempts, &ExhaustedError{Attempts: p.MaxAttempts, Last: lastErr}
}

func (p Policy) next(delay time.Duration) time.Duration {
	if p.Multiplier <= 1 {
		return delay
	}
	delay = time.Duration(float64(delay) * p.Multiplier)
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

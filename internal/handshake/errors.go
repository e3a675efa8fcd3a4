package handshake

import (
	"fmt"
)

// TimeoutError is returned when the attempt budget is spent, the context
// ends, or the request cannot be attempted at all (Attempts is then zero).
type TimeoutError struct {
	Address  string
	Attempts int
	Last     error
}

func (e *TimeoutError) Error() string {
	if e.Attempts == 0 {
		return fmt.Sprintf("handshake with %q not attempted: %v", e.Address, e.Last)
	}
	return fmt.Sprintf("handshake with %s gave up after %d attempts: %v", e.Address, e.Attempts, e.Last)
}

func (e *TimeoutError) Unwrap() error {
	return e.Last
}

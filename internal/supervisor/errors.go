package supervisor

import (
	"errors"
	"fmt"
)

// ErrAttemptsExhausted is wrapped by the error [Supervisor.Run] returns once every
// permitted attempt has been made.
var ErrAttemptsExhausted = errors.New("exceeded maximum number of attempts")

// AttemptFailure records an ssh client that exited with a non-zero status.
type AttemptFailure struct {
	Attempt  int
	ExitCode int
}

func (e *AttemptFailure) Error() string {
	return fmt.Sprintf("attempt %d: tunnel client exited with status %d", e.Attempt, e.ExitCode)
}

// AttemptError records an ssh client that could not be started or did not exit normally.
type AttemptError struct {
	Attempt int
	Err     error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("attempt %d: %v", e.Attempt, e.Err)
}

func (e *AttemptError) Unwrap() error {
	return e.Err
}

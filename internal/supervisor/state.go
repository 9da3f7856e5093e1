package supervisor

import "time"

// State is a position in the attempt loop.
type State int

// Supervisor states. Succeeded, Failed and Errored are the three outcomes of one attempt.
const (
	StateIdle State = iota
	StateAttempting
	StateSucceeded
	StateFailed
	StateErrored
	StateDelaying
	StateExhausted
)

var stateNames = map[State]string{
	StateIdle:       "idle",
	StateAttempting: "attempting",
	StateSucceeded:  "succeeded",
	StateFailed:     "failed",
	StateErrored:    "errored",
	StateDelaying:   "delaying",
	StateExhausted:  "exhausted",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsOutcome reports whether s is the result of a finished attempt.
func (s State) IsOutcome() bool {
	return s == StateSucceeded || s == StateFailed || s == StateErrored
}

// Status is the supervisor's state together with its attempt counter.
type Status struct {
	State State
	// Attempt is the number of attempts started so far.
	Attempt     int
	MaxAttempts int
}

// NewStatus returns the initial status for a run bounded by maxAttempts.
func NewStatus(maxAttempts int) Status {
	return Status{State: StateIdle, MaxAttempts: maxAttempts}
}

// Next returns the status that follows s.
//
// outcome is only consulted while attempting and must be one of the outcome
// states. delay is the configured pause between attempts; a non-positive delay
// goes straight from an outcome to the next attempt. After the final permitted
// attempt the status is Exhausted regardless of outcome or delay.
func (s Status) Next(outcome State, delay time.Duration) Status {
	switch s.State {
	case StateIdle, StateDelaying:
		return s.startAttempt()
	case StateAttempting:
		if !outcome.IsOutcome() {
			outcome = StateErrored
		}
		s.State = outcome
		return s
	case StateSucceeded, StateFailed, StateErrored:
		if s.Attempt >= s.MaxAttempts {
			s.State = StateExhausted
			return s
		}
		if delay > 0 {
			s.State = StateDelaying
			return s
		}
		return s.startAttempt()
	default:
		s.State = StateExhausted
		return s
	}
}

// Terminal reports whether the run is over.
func (s Status) Terminal() bool {
	return s.State == StateExhausted
}

func (s Status) startAttempt() Status {
	s.State = StateAttempting
	s.Attempt++
	return s
}

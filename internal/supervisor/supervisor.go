// Package supervisor keeps a reverse ssh tunnel alive by running the ssh client
// repeatedly until a bounded number of attempts has been used up.
//
// Attempts are strictly sequential. A clean exit of the client is logged as a
// normal termination and, like a failure, leads to another attempt: the job of the
// supervisor is to keep reconnecting, so [Supervisor.Run] only ever returns an error.
package supervisor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/juju/clock"

	"github.com/imamik/revtunnel/internal/tunnel"
)

// Result is the outcome of one ssh client invocation.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	// Err is set when the client could not be started or was terminated abnormally.
	Err error
}

// Classify maps an invocation result to its outcome state.
func Classify(r Result) State {
	switch {
	case r.Err != nil:
		return StateErrored
	case r.ExitCode == 0:
		return StateSucceeded
	default:
		return StateFailed
	}
}

// Invoker runs one ssh client invocation to completion.
// A non-zero exit is reported in the Result, never as a panic or a separate error.
type Invoker interface {
	Invoke(ctx context.Context, argv []string) Result
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, argv []string) Result

// Invoke calls f.
func (f InvokerFunc) Invoke(ctx context.Context, argv []string) Result {
	return f(ctx, argv)
}

// Recorder receives attempt-loop events, typically to update metrics.
type Recorder interface {
	AttemptStarted(attempt int)
	AttemptFinished(outcome string, duration time.Duration)
	Delayed(delay time.Duration)
	Exhausted()
}

type nopRecorder struct{}

func (nopRecorder) AttemptStarted(int) {}
func (nopRecorder) AttemptFinished(string, time.Duration) {}
func (nopRecorder) Delayed(time.Duration) {}
func (nopRecorder) Exhausted() {}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithClock replaces the wall clock used for delays and attempt timing.
func WithClock(c clock.Clock) Option {
	return func(s *Supervisor) {
		s.clock = c
	}
}

// WithRecorder registers a recorder for attempt-loop events.
func WithRecorder(r Recorder) Option {
	return func(s *Supervisor) {
		if r != nil {
			s.recorder = r
		}
	}
}

// Supervisor owns the retry loop for one tunnel.
type Supervisor struct {
	cfg         tunnel.Config
	argv        []string
	commandLine string

	invoker  Invoker
	log      logr.Logger
	clock    clock.Clock
	recorder Recorder
}

// New creates a Supervisor for cfg. cfg must already be validated; the ssh
// argument vector is built here once and reused for every attempt.
func New(cfg tunnel.Config, invoker Invoker, log logr.Logger, opts ...Option) *Supervisor {
	argv := tunnel.BuildCommand(cfg)
	s := &Supervisor{
		cfg:         cfg,
		argv:        argv,
		commandLine: tunnel.CommandLine(argv),
		invoker:     invoker,
		log:         log,
		clock:       clock.WallClock,
		recorder:    nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Command returns a copy of the argument vector passed to the ssh client.
func (s *Supervisor) Command() []string {
	return append([]string(nil), s.argv...)
}

// Run makes up to cfg.Attempts sequential attempts and always returns a non-nil error.
//
// The error wraps [ErrAttemptsExhausted] once the bound is reached, or ctx.Err()
// when ctx is cancelled first. Cancellation interrupts the inter-attempt delay;
// stopping a running client is up to the Invoker.
func (s *Supervisor) Run(ctx context.Context) error {
	s.log.Info("Tunnel command", "command", s.commandLine)

	status := NewStatus(s.cfg.Attempts)
	for !status.Terminal() {
		if err := ctx.Err(); err != nil {
			return s.stopped(status, err)
		}

		var outcome State
		switch status.State {
		case StateAttempting:
			outcome = s.attempt(ctx, status)
		case StateDelaying:
			if err := s.sleep(ctx); err != nil {
				return s.stopped(status, err)
			}
		}
		status = status.Next(outcome, s.cfg.Delay)
	}

	s.recorder.Exhausted()
	s.log.Error(ErrAttemptsExhausted, "Exceeded maximum number of attempts", "attempts", status.MaxAttempts)
	return fmt.Errorf("%w, %d", ErrAttemptsExhausted, status.MaxAttempts)
}

func (s *Supervisor) attempt(ctx context.Context, status Status) State {
	s.log.Info("Starting attempt", "attempt", status.Attempt, "of", status.MaxAttempts)
	s.recorder.AttemptStarted(status.Attempt)

	start := s.clock.Now()
	res := s.invoker.Invoke(ctx, s.argv)
	outcome := Classify(res)
	s.recorder.AttemptFinished(outcome.String(), s.clock.Now().Sub(start))

	if ctx.Err() != nil {
		// The client was stopped on shutdown; its exit is not a tunnel failure.
		s.log.Info("SSH client stopped", "attempt", status.Attempt, "outcome", outcome.String(),
			"exitCode", res.ExitCode, "reason", context.Cause(ctx).Error())
		return outcome
	}

	switch outcome {
	case StateSucceeded:
		s.log.Info("SSH connection terminated normally", "attempt", status.Attempt)
	case StateFailed:
		s.log.Error(&AttemptFailure{Attempt: status.Attempt, ExitCode: res.ExitCode}, "SSH tunnel failed",
			"exitCode", res.ExitCode,
			"stdout", DecodeOutput(res.Stdout),
			"stderr", DecodeOutput(res.Stderr))
	case StateErrored:
		s.log.Error(&AttemptError{Attempt: status.Attempt, Err: res.Err}, "Error running tunnel command",
			"command", s.commandLine,
			"stdout", DecodeOutput(res.Stdout),
			"stderr", DecodeOutput(res.Stderr))
	}
	return outcome
}

func (s *Supervisor) sleep(ctx context.Context) error {
	s.log.Info("Sleeping before the next connection attempt", "delay", s.cfg.Delay.String())
	s.recorder.Delayed(s.cfg.Delay)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.clock.After(s.cfg.Delay):
		return nil
	}
}

func (s *Supervisor) stopped(status Status, err error) error {
	s.log.Info("Supervisor stopped", "attempts", status.Attempt, "reason", err.Error())
	return fmt.Errorf("supervisor stopped after %d of %d attempts: %w", status.Attempt, status.MaxAttempts, err)
}

// DecodeOutput returns captured client output as text. Invalid UTF-8 is replaced
// rather than rejected and surrounding whitespace is trimmed.
func DecodeOutput(b []byte) string {
	return strings.TrimSpace(strings.ToValidUTF8(string(b), "\uFFFD"))
}

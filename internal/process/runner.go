// Package process runs the ssh client as a child process for the supervisor.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/imamik/revtunnel/internal/supervisor"
)

// DefaultWaitDelay is how long a cancelled child gets to exit after the
// interrupt before it is killed.
const DefaultWaitDelay = 10 * time.Second

// Runner starts argv[0] directly, without a shell, and captures its output.
type Runner struct {
	// WaitDelay overrides DefaultWaitDelay when positive.
	WaitDelay time.Duration
	// Env is the child's environment. Nil inherits the current process environment.
	Env []string
}

var _ supervisor.Invoker = (*Runner)(nil)

// Invoke runs argv to completion. A non-zero exit status is returned as data in
// the Result; Result.Err is only set when the process could not be started or did
// not exit on its own (signal, cancellation).
//
// Cancelling ctx sends the child an interrupt so ssh can tear the forward down.
func (r *Runner) Invoke(ctx context.Context, argv []string) supervisor.Result {
	if len(argv) == 0 {
		return supervisor.Result{ExitCode: -1, Err: errors.New("empty command")}
	}

	// #nosec G204 - argv is built from validated configuration, no shell involved
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = r.Env
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = DefaultWaitDelay
	if r.WaitDelay > 0 {
		cmd.WaitDelay = r.WaitDelay
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := supervisor.Result{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}
	if err == nil {
		return res
	}

	// The child ran. err is an *exec.ExitError, the context error, or
	// exec.ErrWaitDelay when a grandchild held the output pipes after a clean exit.
	if state := cmd.ProcessState; state != nil {
		res.ExitCode = state.ExitCode()
		switch {
		case ctx.Err() != nil:
			res.Err = fmt.Errorf("tunnel client stopped: %w", ctx.Err())
		case res.ExitCode < 0:
			// ExitCode is -1 when the process was terminated by a signal.
			res.Err = fmt.Errorf("tunnel client terminated abnormally: %w", err)
		}
		return res
	}

	res.ExitCode = -1
	res.Err = fmt.Errorf("failed to run tunnel client: %w", err)
	return res
}

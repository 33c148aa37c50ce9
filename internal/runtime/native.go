// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// DefaultGracePeriod is how long a cancelled process may take to shut down
// before it is killed.
const DefaultGracePeriod = 30 * time.Second

// NativeRunner executes invocations as host processes.
type NativeRunner struct {
	// Environ returns the inherited host environment. Defaults to os.Environ.
	Environ func() []string
	// Logger receives launch and exit records. Defaults to slog.Default().
	Logger *slog.Logger
	// GracePeriod bounds the shutdown after cancellation. Defaults to
	// DefaultGracePeriod.
	GracePeriod time.Duration
}

// NewNativeRunner creates a runner that inherits the host environment.
func NewNativeRunner(logger *slog.Logger) *NativeRunner {
	return &NativeRunner{Environ: os.Environ, Logger: logger}
}

// Run starts the process, waits for it to exit and returns its Result.
// Cancelling ctx asks the process to terminate so Nextflow can stop its tasks
// and flush its log; it is killed if still running after the grace period.
func (r *NativeRunner) Run(ctx context.Context, inv *Invocation) *Result {
	if err := inv.Validate(); err != nil {
		return NewErrorResult(1, err)
	}
	logger := r.logger()

	//nolint:gosec // the argument vector is assembled from declared parameters
	cmd := exec.CommandContext(ctx, inv.Program(), inv.Args()...)
	if inv.WorkDir != "" {
		cmd.Dir = inv.WorkDir
	}
	cmd.Env = OverlayEnv(r.environ(), inv.Env)
	cmd.Stdout = writerOrDiscard(inv.Stdout)
	cmd.Stderr = writerOrDiscard(inv.Stderr)
	cmd.Cancel = func() error { return terminate(cmd.Process) }
	cmd.WaitDelay = r.gracePeriod()

	logger.Debug("starting process", "program", inv.Program(), "args", len(inv.Args()), "dir", inv.WorkDir)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitCodeOf(exitErr)
			logger.Debug("process exited", "exit_code", int(code), "reason", code.Reason())
			return NewExitCodeResult(code)
		}
		return NewErrorResult(1, fmt.Errorf("failed to execute %s: %w", inv.Program(), err))
	}

	logger.Debug("process exited", "exit_code", 0)
	return NewSuccessResult()
}

// exitCodeOf maps a signal-terminated process to 128+N, matching what the
// pipeline's own wrapper scripts observe.
func exitCodeOf(exitErr *exec.ExitError) ExitCode {
	if code := exitErr.ExitCode(); code >= 0 {
		return ExitCode(code)
	}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return SignalExitCode(ws.Signal())
	}
	return 1
}

func (r *NativeRunner) environ() []string {
	if r.Environ == nil {
		return os.Environ()
	}
	return r.Environ()
}

func (r *NativeRunner) gracePeriod() time.Duration {
	if r.GracePeriod <= 0 {
		return DefaultGracePeriod
	}
	return r.GracePeriod
}

func (r *NativeRunner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func writerOrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}

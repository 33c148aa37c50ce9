// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
	"strconv"
	"syscall"
)

// signalBase is added to a signal number to form the exit status of a process
// terminated by that signal, as POSIX shells report it.
const signalBase = 128

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode is the status a pipeline process exited with. Zero is success.
	ExitCode int

	// InvalidExitCodeError reports an ExitCode that cannot be passed to
	// os.Exit portably.
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d is outside 0-255", e.Value)
}

func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// SignalExitCode returns the exit status a shell reports for a process killed
// by sig.
func SignalExitCode(sig syscall.Signal) ExitCode {
	return ExitCode(signalBase + int(sig))
}

// IsValid reports whether the code fits in a process exit status.
func (c ExitCode) IsValid() (bool, []error) {
	if c < 0 || c > 255 {
		return false, []error{&InvalidExitCodeError{Value: c}}
	}
	return true, nil
}

// IsSuccess reports whether the pipeline exited zero.
func (c ExitCode) IsSuccess() bool { return c == 0 }

// Signal returns the terminating signal for codes above 128.
func (c ExitCode) Signal() (syscall.Signal, bool) {
	if c <= signalBase || c > 255 {
		return 0, false
	}
	return syscall.Signal(int(c) - signalBase), true
}

// Reason is a short human description used in failure logs.
func (c ExitCode) Reason() string {
	switch {
	case c == 0:
		return "success"
	case c == 126:
		return "runtime is not executable"
	case c == 127:
		return "runtime not found"
	}
	if sig, ok := c.Signal(); ok {
		return "terminated by " + sig.String()
	}
	return "exited with status " + c.String()
}

func (c ExitCode) String() string { return strconv.Itoa(int(c)) }

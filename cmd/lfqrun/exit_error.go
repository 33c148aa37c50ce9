// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/lfqrun/lfqrun/internal/runtime"
)

// ExitError carries the status lfqrun should exit with back to Execute, so
// RunE handlers never call os.Exit themselves.
type ExitError struct {
	Code runtime.ExitCode
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("lfqrun exited with status %s", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

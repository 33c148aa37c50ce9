// SPDX-License-Identifier: MPL-2.0

package execute

import (
	"errors"
	"fmt"

	"github.com/lfqrun/lfqrun/internal/runtime"
)

var (
	// ErrConfiguration is the sentinel error wrapped by ConfigurationError.
	ErrConfiguration = errors.New("invalid execution configuration")
	// ErrUnknownParameter is returned for a value whose name the registry does not declare.
	ErrUnknownParameter = errors.New("unknown parameter")
	// ErrMissingParameter is returned when a mandatory parameter resolves to no value.
	ErrMissingParameter = errors.New("mandatory parameter is missing")
	// ErrSubprocessFailure is the sentinel error wrapped by SubprocessFailure.
	ErrSubprocessFailure = errors.New("pipeline subprocess failed")
	// ErrLogUpload is the sentinel error wrapped by LogUploadError.
	ErrLogUpload = errors.New("log upload failed")
)

type (
	// ConfigurationError reports a parameter or setting that prevents the
	// execution from starting. No side effect has happened when it is returned.
	ConfigurationError struct {
		// Param is the offending parameter name, or "" for builder settings.
		Param string
		Err   error
	}

	// SubprocessFailure reports a pipeline run that could not be started or
	// exited non-zero. The pipeline's own output is the diagnostic context.
	SubprocessFailure struct {
		Command  []string
		ExitCode runtime.ExitCode
		// Err is set when the process could not be started or waited on.
		Err error
	}

	// LogUploadError reports a failed log upload. It never changes the
	// outcome of an execution.
	LogUploadError struct {
		Path     string
		Location string
		Err      error
	}
)

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
	return fmt.Sprintf("configuration error: parameter %q: %v", e.Param, e.Err)
}

// Unwrap returns ErrConfiguration and the underlying cause.
func (e *ConfigurationError) Unwrap() []error { return []error{ErrConfiguration, e.Err} }

// Error implements the error interface.
func (e *SubprocessFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pipeline subprocess failed: %v", e.Err)
	}
	return fmt.Sprintf("pipeline subprocess exited with code %d", e.ExitCode)
}

// Unwrap returns ErrSubprocessFailure and the underlying cause, if any.
func (e *SubprocessFailure) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrSubprocessFailure}
	}
	return []error{ErrSubprocessFailure, e.Err}
}

// Error implements the error interface.
func (e *LogUploadError) Error() string {
	return fmt.Sprintf("uploading %s to %s: %v", e.Path, e.Location, e.Err)
}

// Unwrap returns ErrLogUpload and the underlying cause.
func (e *LogUploadError) Unwrap() []error { return []error{ErrLogUpload, e.Err} }

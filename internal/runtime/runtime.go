// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"io"
	"strings"
)

var (
	// ErrEmptyCommand is returned when an Invocation has no argument vector.
	ErrEmptyCommand = errors.New("invocation has no command")
	// ErrInvalidEnvName is returned when an environment entry name is empty
	// or contains '='.
	ErrInvalidEnvName = errors.New("invalid environment variable name")
)

type (
	// Invocation describes one pipeline launch. It is built fresh per
	// execution and not reused.
	Invocation struct {
		// Command is the argument vector; Command[0] is the program.
		Command []string
		// WorkDir is the working directory of the process.
		WorkDir string
		// Env holds entries layered over the inherited host environment.
		Env map[string]string
		// Stdout receives the process's standard output. Nil discards it.
		Stdout io.Writer
		// Stderr receives the process's standard error. Nil discards it.
		Stderr io.Writer
	}

	// Result contains the outcome of a process execution.
	Result struct {
		// ExitCode is the process exit status.
		ExitCode ExitCode
		// Error is set when the process could not be started or waited on.
		// A process that ran and exited non-zero has a nil Error.
		Error error
	}

	// Runner executes invocations.
	Runner interface {
		Run(ctx context.Context, inv *Invocation) *Result
	}
)

// Program returns the executable path, or "" for an empty invocation.
func (inv *Invocation) Program() string {
	if inv == nil || len(inv.Command) == 0 {
		return ""
	}
	return inv.Command[0]
}

// Args returns the arguments after the program.
func (inv *Invocation) Args() []string {
	if inv == nil || len(inv.Command) < 2 {
		return nil
	}
	return inv.Command[1:]
}

// Validate checks that the invocation can be launched.
func (inv *Invocation) Validate() error {
	if inv.Program() == "" {
		return ErrEmptyCommand
	}
	for name := range inv.Env {
		if name == "" || strings.ContainsRune(name, '=') {
			return &InvalidEnvNameError{Name: name}
		}
	}
	return nil
}

// Success reports whether the process ran and exited zero.
func (r *Result) Success() bool {
	return r != nil && r.Error == nil && r.ExitCode.IsSuccess()
}

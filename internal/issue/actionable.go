// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError is a user-facing error naming the step that failed, the
	// file, endpoint or directory involved, and what the user can do about it.
	//
	//	err := issue.NewErrorContext().
	//		WithOperation("provision storage").
	//		WithResource(endpoint).
	//		WithSuggestion("Set FLYTE_INTERNAL_EXECUTION_ID to the execution token").
	//		Wrap(cause).
	//		BuildError()
	ActionableError struct {
		// Operation is a verb phrase such as "load params file".
		Operation string
		// Resource is the path, URL or name involved (optional).
		Resource string
		// Suggestions are remediation hints (optional).
		Suggestions []string
		// Cause is the underlying error (optional).
		Cause error
	}

	// ErrorContext accumulates the fields of an ActionableError.
	ErrorContext struct {
		operation   string
		resource    string
		suggestions []string
		cause       error
	}
)

// NewErrorContext creates a new ErrorContext builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// Error renders "failed to <operation>: <resource>: <cause>", omitting empty
// parts.
func (e *ActionableError) Error() string {
	parts := []string{"failed to " + e.Operation}
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

// Unwrap returns the cause so sentinel checks see through the context.
func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format renders the message followed by one bulleted line per suggestion.
// Verbose output also walks the cause chain, one numbered line per level.
func (e *ActionableError) Format(verbose bool) string {
	var msg strings.Builder
	msg.WriteString(e.Error())

	if len(e.Suggestions) > 0 {
		msg.WriteString("\n")
		for _, s := range e.Suggestions {
			msg.WriteString("\n  • ")
			msg.WriteString(s)
		}
	}

	if verbose && e.Cause != nil {
		msg.WriteString("\n\nError chain:")
		depth := 1
		for err := e.Cause; err != nil; err = errors.Unwrap(err) {
			fmt.Fprintf(&msg, "\n  %d. %s", depth, err.Error())
			depth++
		}
	}

	return msg.String()
}

// WithOperation sets the failed step.
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.operation = op
	return c
}

// WithResource sets the path, URL or name involved.
func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.resource = res
	return c
}

// WithSuggestion appends a remediation hint. Empty hints are ignored.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	if sug != "" {
		c.suggestions = append(c.suggestions, sug)
	}
	return c
}

// Wrap sets the underlying cause.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.cause = err
	return c
}

// BuildError returns the ActionableError, or nil when no operation was set.
func (c *ErrorContext) BuildError() error {
	if c.operation == "" {
		return nil
	}
	return &ActionableError{
		Operation:   c.operation,
		Resource:    c.resource,
		Suggestions: c.suggestions,
		Cause:       c.cause,
	}
}

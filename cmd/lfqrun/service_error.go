// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/lfqrun/lfqrun/internal/config"
	"github.com/lfqrun/lfqrun/internal/issue"
)

// ServiceError pairs a failed run with what the CLI prints for it: the styled
// headline and, in verbose mode, the catalog help for IssueID.
// Construct with newServiceError; Err is never nil.
type ServiceError struct {
	Err           error
	IssueID       issue.Id
	StyledMessage string
}

func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{Err: err, IssueID: issueID, StyledMessage: styledMessage}
}

func (e *ServiceError) Error() string { return e.Err.Error() }

func (e *ServiceError) Unwrap() error { return e.Err }

// renderServiceError writes the headline, then the catalog entry when
// withIssue is set and the error maps to one, styled for scheme. A catalog
// entry that fails to render is logged and skipped.
func renderServiceError(w io.Writer, svcErr *ServiceError, withIssue bool, scheme config.ColorScheme, logger *slog.Logger) {
	if svcErr == nil {
		return
	}
	fmt.Fprint(w, svcErr.StyledMessage)

	if !withIssue || svcErr.IssueID == 0 {
		return
	}
	entry := issue.Get(svcErr.IssueID)
	if entry == nil {
		return
	}
	help, err := entry.Render(glamourStyle(scheme))
	if err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("cannot render troubleshooting entry", "issue", svcErr.IssueID, "error", err)
		return
	}
	fmt.Fprint(w, help)
}

// glamourStyle maps a color scheme to a glamour standard style name.
func glamourStyle(scheme config.ColorScheme) string {
	if scheme == "" {
		return config.ColorSchemeAuto.String()
	}
	return scheme.String()
}

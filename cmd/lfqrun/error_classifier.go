// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"

	"github.com/lfqrun/lfqrun/internal/config"
	"github.com/lfqrun/lfqrun/internal/execute"
	"github.com/lfqrun/lfqrun/internal/issue"
	"github.com/lfqrun/lfqrun/internal/provision"
	"github.com/lfqrun/lfqrun/internal/runtime"
	"github.com/lfqrun/lfqrun/internal/workspace"
	"github.com/lfqrun/lfqrun/pkg/params"
)

// classifyExecutionError maps a failed execution to an issue catalog ID and a
// styled message for CLI rendering. Actionable error details are preserved.
func classifyExecutionError(err error, verbose bool) (issueID issue.Id, styledMsg string) {
	var sf *execute.SubprocessFailure

	switch {
	case errors.Is(err, params.ErrParamsFile):
		issueID = issue.ParamsFileInvalidId
	case errors.Is(err, execute.ErrMissingParameter):
		issueID = issue.MissingParameterId
	case errors.Is(err, execute.ErrUnknownParameter), errors.Is(err, params.ErrInvalidValue):
		issueID = issue.InvalidParameterId
	case errors.Is(err, config.ErrInvalidConfig), isConfigLoadError(err),
		errors.Is(err, provision.ErrInvalidConfig), errors.Is(err, execute.ErrConfiguration):
		issueID = issue.ConfigLoadFailedId
	case errors.Is(err, provision.ErrMissingToken):
		issueID = issue.ExecutionTokenMissingId
	case errors.Is(err, provision.ErrProvisioning):
		issueID = issue.ProvisioningFailedId
	case errors.As(err, &sf) && pipelineNotFound(sf):
		issueID = issue.PipelineNotFoundId
	case errors.Is(err, os.ErrPermission):
		issueID = issue.PermissionDeniedId
	case errors.Is(err, workspace.ErrMaterialization):
		issueID = issue.WorkspaceFailedId
	case errors.Is(err, execute.ErrSubprocessFailure):
		issueID = issue.PipelineFailedId
	}

	return issueID, fmt.Sprintf("\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))
}

func isConfigLoadError(err error) bool {
	var ae *issue.ActionableError
	return errors.As(err, &ae) && (ae.Operation == "load configuration" || ae.Operation == "validate configuration")
}

// pipelineNotFound reports a runtime binary that could not be started. Exit
// codes 126 and 127 returned by a running pipeline are ordinary failures.
func pipelineNotFound(sf *execute.SubprocessFailure) bool {
	return sf.Err != nil && (errors.Is(sf.Err, exec.ErrNotFound) || errors.Is(sf.Err, fs.ErrNotExist))
}

// exitCodeFor returns the process exit code for a failed execution: the
// pipeline's own code for subprocess failures, 1 for everything else.
func exitCodeFor(err error) runtime.ExitCode {
	var sf *execute.SubprocessFailure
	if errors.As(err, &sf) && !sf.ExitCode.IsSuccess() {
		return sf.ExitCode
	}
	return 1
}

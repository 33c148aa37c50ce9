// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/lfqrun/lfqrun/internal/config"
	"github.com/lfqrun/lfqrun/internal/execute"
	"github.com/lfqrun/lfqrun/internal/issue"
	"github.com/lfqrun/lfqrun/internal/provision"
	"github.com/lfqrun/lfqrun/internal/runtime"
	"github.com/lfqrun/lfqrun/internal/workspace"
	"github.com/lfqrun/lfqrun/pkg/params"
)

func TestClassifyExecutionError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		verbose     bool
		wantIssueID issue.Id
		wantInStyle []string
	}{
		{
			name:        "params file maps to params file issue",
			err:         &params.ParamsFileError{Path: "p.yaml", Err: errors.New("yaml: line 3")},
			wantIssueID: issue.ParamsFileInvalidId,
			wantInStyle: []string{"Error:", "p.yaml"},
		},
		{
			name:        "missing parameter",
			err:         &execute.ConfigurationError{Param: "input", Err: execute.ErrMissingParameter},
			wantIssueID: issue.MissingParameterId,
			wantInStyle: []string{"input"},
		},
		{
			name: "joined parameter errors report the first match",
			err: errors.Join(
				&execute.ConfigurationError{Param: "input", Err: execute.ErrMissingParameter},
				&execute.ConfigurationError{Param: "database", Err: execute.ErrMissingParameter},
			),
			wantIssueID: issue.MissingParameterId,
			wantInStyle: []string{"input", "database"},
		},
		{
			name:        "unknown parameter",
			err:         &execute.ConfigurationError{Param: "inptu", Err: execute.ErrUnknownParameter},
			wantIssueID: issue.InvalidParameterId,
		},
		{
			name:        "invalid value",
			err:         &execute.ConfigurationError{Param: "min_precursor_charge", Err: &params.InvalidValueError{Name: "min_precursor_charge", Kind: params.KindInt, Input: "two", Reason: "must be a valid integer"}},
			wantIssueID: issue.InvalidParameterId,
			wantInStyle: []string{"two"},
		},
		{
			name:        "invalid config",
			err:         &config.InvalidConfigError{FieldErrors: []error{errors.New("pipeline.binary must not be empty")}},
			wantIssueID: issue.ConfigLoadFailedId,
		},
		{
			name: "config load actionable error",
			err: issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource("/etc/lfqrun/config.cue").
				WithSuggestion("Run 'lfqrun config init'").
				Wrap(errors.New("syntax error")).
				BuildError(),
			wantIssueID: issue.ConfigLoadFailedId,
			wantInStyle: []string{"failed to load configuration", "lfqrun config init"},
		},
		{
			name:        "builder configuration",
			err:         &execute.ConfigurationError{Err: errors.New("builder is missing runner")},
			wantIssueID: issue.ConfigLoadFailedId,
		},
		{
			name:        "missing token",
			err:         &provision.ProvisioningError{Err: provision.ErrMissingToken},
			wantIssueID: issue.ExecutionTokenMissingId,
		},
		{
			name:        "provisioning status",
			err:         &provision.ProvisioningError{Endpoint: "http://dispatcher", StatusCode: 503, Body: "busy"},
			wantIssueID: issue.ProvisioningFailedId,
			wantInStyle: []string{"503", "busy"},
		},
		{
			name:        "pipeline binary missing",
			err:         &execute.SubprocessFailure{Command: []string{"nextflow"}, ExitCode: 1, Err: exec.ErrNotFound},
			wantIssueID: issue.PipelineNotFoundId,
		},
		{
			name:        "exit 127 from a running pipeline is an ordinary failure",
			err:         &execute.SubprocessFailure{Command: []string{"nextflow"}, ExitCode: 127},
			wantIssueID: issue.PipelineFailedId,
			wantInStyle: []string{"127"},
		},
		{
			name:        "permission denied",
			err:         &workspace.MaterializationError{Path: "/mnt/shared/main.nf", Err: os.ErrPermission},
			wantIssueID: issue.PermissionDeniedId,
		},
		{
			name:        "materialization",
			err:         &workspace.MaterializationError{Path: "/mnt/shared", Err: errors.New("disk full")},
			wantIssueID: issue.WorkspaceFailedId,
			wantInStyle: []string{"disk full"},
		},
		{
			name:        "unknown error has no issue",
			err:         fmt.Errorf("unexpected boom"),
			wantIssueID: 0,
			wantInStyle: []string{"unexpected boom"},
		},
		{
			name: "verbose actionable error includes chain",
			err: issue.NewErrorContext().
				WithOperation("run pipeline").
				Wrap(&execute.SubprocessFailure{ExitCode: 2}).
				BuildError(),
			verbose:     true,
			wantIssueID: issue.PipelineFailedId,
			wantInStyle: []string{"Error chain:", "exited with code 2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gotID, gotStyle := classifyExecutionError(tt.err, tt.verbose)
			if gotID != tt.wantIssueID {
				t.Errorf("issue ID = %d, want %d", gotID, tt.wantIssueID)
			}
			for _, want := range tt.wantInStyle {
				if !strings.Contains(gotStyle, want) {
					t.Errorf("styled message %q does not contain %q", gotStyle, want)
				}
			}
		})
	}
}

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want runtime.ExitCode
	}{
		{"subprocess failure keeps its code", &execute.SubprocessFailure{ExitCode: 3}, 3},
		{"wrapped subprocess failure", fmt.Errorf("run: %w", &execute.SubprocessFailure{ExitCode: 42}), 42},
		{"start failure without code", &execute.SubprocessFailure{ExitCode: 0, Err: exec.ErrNotFound}, 1},
		{"provisioning failure", &provision.ProvisioningError{Err: provision.ErrMissingToken}, 1},
		{"configuration failure", &execute.ConfigurationError{Param: "input", Err: execute.ErrMissingParameter}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

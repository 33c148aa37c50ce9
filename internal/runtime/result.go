// SPDX-License-Identifier: MPL-2.0

package runtime

// NewErrorResult is the Result of a process that could not be run or waited
// on. code is what the caller should exit with.
func NewErrorResult(code ExitCode, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}

// NewSuccessResult is the Result of a pipeline that exited zero.
func NewSuccessResult() *Result { return &Result{} }

// NewExitCodeResult is the Result of a pipeline that ran to completion and
// exited with code, which may be non-zero.
func NewExitCodeResult(code ExitCode) *Result { return &Result{ExitCode: code} }

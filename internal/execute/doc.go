// SPDX-License-Identifier: MPL-2.0

// Package execute builds and runs one pipeline execution: it translates
// runtime parameter values into pipeline flags, provisions shared storage,
// materializes the workspace, runs the pipeline runtime as a subprocess and
// uploads the pipeline log afterwards.
//
// Every step runs once, in order, with no retries. Failures before and
// during the subprocess are fatal; the log upload is best effort.
package execute

// SPDX-License-Identifier: MPL-2.0

// Package runtime launches the pipeline process on the host.
//
// An Invocation describes one launch: the argument vector, the working
// directory, and the environment entries layered over the host environment.
// NativeRunner executes it with os/exec, streams stdout and stderr to the
// configured writers, blocks until the process exits and reports the outcome
// as a Result. A non-zero exit is a normal Result, not an error: callers
// decide how to surface it. Nothing is retried.
package runtime

// SPDX-License-Identifier: MPL-2.0

// Package params declares the parameter schema of the wrapped pipeline.
//
// A Registry is an ordered, immutable list of Spec descriptors (name, kind,
// default, section label and help text). It is built once at process start,
// checked for duplicate names and ill-typed defaults, and then shared by
// reference with every consumer: the CLI (one flag per parameter), the input
// schema renderer (OpenAPISchema) and the invocation builder (flag translation).
//
// Runtime values are carried as Value, a small tagged union whose zero value
// means "absent". Absent values are never translated into pipeline flags.
package params

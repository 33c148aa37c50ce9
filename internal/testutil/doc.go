// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that fail the test on
// error instead of returning it: working directory and environment changes
// with restore functions, and directory and file creation.
package testutil

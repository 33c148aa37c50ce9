// SPDX-License-Identifier: MPL-2.0

// Package issue holds the user-facing side of lfqrun errors: ActionableError,
// which names the failed step and how to fix it, and a catalog of Markdown
// help entries keyed by Id that the CLI renders in verbose mode.
package issue

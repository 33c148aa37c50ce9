// SPDX-License-Identifier: MPL-2.0

// Package workspace copies the pipeline's working directory onto the shared
// volume so every pipeline task sees the same files.
//
// Materializer walks the source tree and merges it into the destination:
// existing directories are reused and files overwritten. Entries whose base
// name matches an exclude pattern are skipped at every depth, which keeps
// tool installations, caches and previous results off the shared volume.
// Symbolic links are followed and their targets copied; dangling links and
// links that loop back to an ancestor directory are skipped.
package workspace

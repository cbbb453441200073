// SPDX-License-Identifier: MPL-2.0

// Package vcs defines the version-control capabilities that change detection
// consumes: symbolic reference resolution, the current head, the tag set and a
// path-level diff between two commits. Commit identifiers are opaque to callers
// beyond equality.
package vcs

// SPDX-License-Identifier: MPL-2.0

// Package detect decides which modules of a tree changed.
//
// A ChangeSource yields the changed paths, or reports that they could not be
// determined. The Propagator then walks the tree parent-first: a module is
// changed when its parent is, or when a changed path matches the patterns of
// the module or of any module in its runtime dependency closure. When the
// change set is undetermined every module is changed, so a failed detection
// never skips a build.
package detect

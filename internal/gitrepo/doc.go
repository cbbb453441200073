// SPDX-License-Identifier: MPL-2.0

// Package gitrepo implements the vcs capabilities on top of go-git, reading the
// repository directly from its .git directory without shelling out.
package gitrepo

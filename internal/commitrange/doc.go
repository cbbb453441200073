// SPDX-License-Identifier: MPL-2.0

// Package commitrange resolves the pair of commits a change set is computed
// between. Four strategies are supported:
//
//   - last-successful-build: the commit recorded by CI for the previous
//     successful build (GIT_PREVIOUS_SUCCESSFUL_COMMIT by default) against HEAD
//   - previous-tag: the preceding release tag against HEAD's release tag, or the
//     latest release tag against an untagged HEAD
//   - previous-commit: HEAD~1 against HEAD
//   - explicit-commit: a caller supplied reference against HEAD
//
// Every strategy except explicit-commit degrades to "undetermined" (ok=false)
// when a safe range cannot be established; callers must then treat every
// module as changed. explicit-commit expresses user intent, so its failures are
// configuration errors instead.
package commitrange

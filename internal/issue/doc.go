// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation suggestions. Well-known failures also reference an Issue from the
// catalog, whose Markdown guidance is rendered with glamour by the CLI.
package issue

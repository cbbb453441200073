// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for blastradius.
//
// This package implements the Cobra command hierarchy: the root command with
// its global flags, the detection commands (changed, module, range), the
// inspection commands (tags, deps, validate) and config management.
package cmd

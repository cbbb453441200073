// SPDX-License-Identifier: MPL-2.0

// Package manifest reads the module tree declaration.
//
// The manifest is a CUE document (blastradius.cue) validated against an
// embedded schema, or the equivalent TOML document (blastradius.toml):
//
//	root: {
//		path: ":"
//		modules: [
//			{path: ":api", depends_on: [":core"]},
//			{path: ":core", patterns: ["/src/main/.*", "/schema/.*"]},
//			{path: ":docs", patterns: []},
//		]
//	}
//
// An absent patterns field means the configured defaults apply; an empty
// list means the module never matches on its own.
package manifest

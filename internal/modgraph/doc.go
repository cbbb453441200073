// SPDX-License-Identifier: MPL-2.0

// Package modgraph holds the module tree and its runtime dependency relation.
//
// Modules live in a flat slice owned by the Tree and refer to each other by
// ModuleID, so a child knows its parent only as an index. The dependency
// closure of a module is computed by a depth-first walk that tracks visited
// modules and therefore terminates on cyclic dependency declarations.
package modgraph

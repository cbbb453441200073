// SPDX-License-Identifier: MPL-2.0

package modgraph

import (
	"log/slog"

	"github.com/blastradius/blastradius/internal/dag"
	"github.com/blastradius/blastradius/internal/pattern"
)

// Provider is the read-only view of a module tree the change detector works on.
type Provider interface {
	Root() ModuleID
	Children(id ModuleID) []ModuleID
	RuntimeDependencies(id ModuleID) []ModuleID
	// DeclaredPatterns returns the module's own patterns and whether it
	// declares any. A declared empty list is distinct from no declaration.
	DeclaredPatterns(id ModuleID) ([]pattern.FilePattern, bool)
	Path(id ModuleID) string
	Dir(id ModuleID) string
}

var _ Provider = (*Tree)(nil)

// Closure returns id followed by every module reachable through runtime
// dependencies, in depth-first discovery order. Each module appears once even
// when dependencies form a cycle.
func Closure(p Provider, id ModuleID) []ModuleID {
	visited := make(map[ModuleID]bool)
	var order []ModuleID

	var visit func(ModuleID)
	visit = func(m ModuleID) {
		if visited[m] {
			return
		}
		visited[m] = true
		order = append(order, m)
		for _, dep := range p.RuntimeDependencies(m) {
			visit(dep)
		}
	}
	visit(id)
	return order
}

// RelevantPaths returns the directories of the module and of its dependency
// closure, relative to the repository root.
func RelevantPaths(p Provider, id ModuleID) []string {
	closure := Closure(p, id)
	paths := make([]string, 0, len(closure))
	for _, m := range closure {
		paths = append(paths, p.Dir(m))
	}
	slog.Debug("relevant paths", "module", p.Path(id), "paths", paths)
	return paths
}

// Walk visits every module parent-first, children in declaration order. fn
// receives the module and its parent (NoModule for the root).
func Walk(p Provider, fn func(id, parent ModuleID)) {
	var visit func(id, parent ModuleID)
	visit = func(id, parent ModuleID) {
		fn(id, parent)
		for _, child := range p.Children(id) {
			visit(child, id)
		}
	}
	visit(p.Root(), NoModule)
}

// DependencyGraph builds the runtime dependency graph keyed by module path.
// Edges point from a dependency to its dependents.
func DependencyGraph(p Provider) *dag.Graph {
	g := dag.New()
	Walk(p, func(id, _ ModuleID) {
		g.AddNode(p.Path(id))
	})
	Walk(p, func(id, _ ModuleID) {
		for _, dep := range p.RuntimeDependencies(id) {
			g.AddEdge(p.Path(dep), p.Path(id))
		}
	})
	return g
}

// BuildOrder returns module paths so that every module follows its runtime
// dependencies. It fails with a *dag.CycleError when dependencies are cyclic.
func BuildOrder(p Provider) ([]string, error) {
	return DependencyGraph(p).TopologicalSort()
}

// SPDX-License-Identifier: MPL-2.0

// Package dag orders the module dependency graph and reports dependency
// cycles. An edge from A to B means A must be built before B, so dependencies
// point at their dependents.
package dag

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrCycle is the sentinel error wrapped by CycleError.
var ErrCycle = errors.New("dependency cycle")

type (
	// CycleError reports the nodes left unordered because they sit on, or
	// downstream of, a dependency cycle.
	CycleError struct {
		Nodes []string
	}

	// Graph is a directed graph keyed by module path. Nodes and edges keep
	// insertion order so that every ordering is deterministic.
	Graph struct {
		out   map[string][]string
		nodes []string
		seen  map[string]bool
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle between modules: %s", strings.Join(e.Nodes, ", "))
}

// Unwrap returns ErrCycle so callers can use errors.Is for programmatic detection.
func (e *CycleError) Unwrap() error { return ErrCycle }

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		out:  make(map[string][]string),
		seen: make(map[string]bool),
	}
}

// AddNode adds a node. Adding an existing node is a no-op.
func (g *Graph) AddNode(name string) {
	if g.seen[name] {
		return
	}
	g.seen[name] = true
	g.nodes = append(g.nodes, name)
}

// AddEdge records that from must precede to. Missing nodes are added and
// duplicate edges are ignored.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	if slices.Contains(g.out[from], to) {
		return
	}
	g.out[from] = append(g.out[from], to)
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []string {
	return slices.Clone(g.nodes)
}

// Successors returns the nodes that must come after name, in insertion order.
func (g *Graph) Successors(name string) []string {
	return slices.Clone(g.out[name])
}

// TopologicalSort returns an order in which every node precedes its
// successors (Kahn's algorithm). Ties keep insertion order. A graph with a
// cycle yields a *CycleError.
func (g *Graph) TopologicalSort() ([]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	inDegree := make(map[string]int, len(g.nodes))
	for _, succ := range g.out {
		for _, n := range succ {
			inDegree[n]++
		}
	}

	var ready []string
	for _, n := range g.nodes {
		if inDegree[n] == 0 {
			ready = append(ready, n)
		}
	}

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		for _, succ := range g.out[n] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				ready = append(ready, succ)
			}
		}
	}

	if len(order) == len(g.nodes) {
		return order, nil
	}
	var stuck []string
	for _, n := range g.nodes {
		if inDegree[n] > 0 {
			stuck = append(stuck, n)
		}
	}
	return nil, &CycleError{Nodes: stuck}
}

// SPDX-License-Identifier: MPL-2.0

package detect

import (
	"log/slog"
	"slices"

	"github.com/blastradius/blastradius/internal/modgraph"
	"github.com/blastradius/blastradius/internal/pattern"
)

// Propagator assigns a verdict to every module of a tree.
type Propagator struct {
	tree     modgraph.Provider
	defaults []pattern.FilePattern
}

// NewPropagator creates a Propagator. defaults apply to modules that declare
// no patterns of their own.
func NewPropagator(tree modgraph.Provider, defaults []pattern.FilePattern) *Propagator {
	return &Propagator{tree: tree, defaults: slices.Clone(defaults)}
}

// Propagate returns the verdict of every module keyed by path. An
// undetermined change set marks every module changed without evaluating any
// pattern. Pattern compilation errors are returned as *pattern.InvalidPatternError.
func (p *Propagator) Propagate(changes ChangeSet) (map[string]bool, error) {
	verdicts := make(map[string]bool)

	if !changes.Determined {
		modgraph.Walk(p.tree, func(id, _ modgraph.ModuleID) {
			verdicts[p.tree.Path(id)] = true
		})
		return verdicts, nil
	}

	byID := make(map[modgraph.ModuleID]bool)
	cache := make(map[modgraph.ModuleID][]pattern.Matcher)
	var firstErr error

	modgraph.Walk(p.tree, func(id, parent modgraph.ModuleID) {
		if firstErr != nil {
			return
		}
		changed := parent != modgraph.NoModule && byID[parent]
		if !changed {
			affected, err := p.affected(id, changes.Paths, cache)
			if err != nil {
				firstErr = err
				return
			}
			changed = affected
		}
		byID[id] = changed
		verdicts[p.tree.Path(id)] = changed
		slog.Debug("module verdict", "module", p.tree.Path(id), "changed", changed)
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return verdicts, nil
}

// Affected reports whether a changed path matches the module or its
// dependency closure, ignoring ancestors.
func (p *Propagator) Affected(id modgraph.ModuleID, paths []string) (bool, error) {
	return p.affected(id, paths, make(map[modgraph.ModuleID][]pattern.Matcher))
}

func (p *Propagator) affected(id modgraph.ModuleID, paths []string, cache map[modgraph.ModuleID][]pattern.Matcher) (bool, error) {
	for _, m := range modgraph.Closure(p.tree, id) {
		matchers, ok := cache[m]
		if !ok {
			var err error
			matchers, err = p.matchersFor(m)
			if err != nil {
				return false, err
			}
			cache[m] = matchers
		}
		if pattern.MatchesAny(paths, matchers) {
			if m != id {
				slog.Debug("changed through dependency", "module", p.tree.Path(id), "dependency", p.tree.Path(m))
			}
			return true, nil
		}
	}
	return false, nil
}

// matchersFor compiles a module's own patterns, or the defaults when it
// declares none, against the module's directory.
func (p *Propagator) matchersFor(id modgraph.ModuleID) ([]pattern.Matcher, error) {
	patterns, declared := p.tree.DeclaredPatterns(id)
	if !declared {
		patterns = p.defaults
	}
	return pattern.Build(p.tree.Dir(id), patterns)
}

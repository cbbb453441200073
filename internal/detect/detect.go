// SPDX-License-Identifier: MPL-2.0

package detect

import (
	"cmp"
	"slices"

	"github.com/blastradius/blastradius/internal/modgraph"
	"github.com/blastradius/blastradius/internal/pattern"
)

type (
	// Detector answers change queries over one module tree.
	Detector struct {
		tree       modgraph.Provider
		propagator *Propagator
	}

	// Result holds the verdict of every module of a tree.
	Result struct {
		Changes  ChangeSet
		Verdicts map[string]bool
	}

	// Verdict is one module's entry of a Result.
	Verdict struct {
		Path    string `json:"path" yaml:"path"`
		Changed bool   `json:"changed" yaml:"changed"`
	}
)

// New creates a Detector. defaults are the patterns of modules that declare none.
func New(tree modgraph.Provider, defaults []pattern.FilePattern) *Detector {
	return &Detector{tree: tree, propagator: NewPropagator(tree, defaults)}
}

// Changed computes the verdict of every module.
func (d *Detector) Changed(source ChangeSource) (*Result, error) {
	changes, err := source.Changes()
	if err != nil {
		return nil, err
	}
	verdicts, err := d.propagator.Propagate(changes)
	if err != nil {
		return nil, err
	}
	return &Result{Changes: changes, Verdicts: verdicts}, nil
}

// ModuleChanged answers the single-module query: whether the module at path
// or its dependency closure matches a changed path. Ancestors are not
// consulted, and an undetermined change set answers true.
func (d *Detector) ModuleChanged(source ChangeSource, path string) (bool, ChangeSet, error) {
	id, err := d.lookup(path)
	if err != nil {
		return false, ChangeSet{}, err
	}
	changes, err := source.Changes()
	if err != nil {
		return false, ChangeSet{}, err
	}
	if !changes.Determined {
		return true, changes, nil
	}
	changed, err := d.propagator.Affected(id, changes.Paths)
	return changed, changes, err
}

func (d *Detector) lookup(path string) (modgraph.ModuleID, error) {
	want := pattern.NormalizeModuleDir(path)
	found := modgraph.NoModule
	modgraph.Walk(d.tree, func(id, _ modgraph.ModuleID) {
		if found == modgraph.NoModule && pattern.NormalizeModuleDir(d.tree.Path(id)) == want {
			found = id
		}
	})
	if found == modgraph.NoModule {
		return found, &modgraph.ModuleError{Path: path, Err: modgraph.ErrUnknownModule}
	}
	return found, nil
}

// Sorted returns the verdicts ordered by module path.
func (r *Result) Sorted() []Verdict {
	out := make([]Verdict, 0, len(r.Verdicts))
	for path, changed := range r.Verdicts {
		out = append(out, Verdict{Path: path, Changed: changed})
	}
	slices.SortFunc(out, func(a, b Verdict) int { return cmp.Compare(a.Path, b.Path) })
	return out
}

// ChangedModules returns the paths of changed modules, sorted.
func (r *Result) ChangedModules() []string {
	var paths []string
	for _, v := range r.Sorted() {
		if v.Changed {
			paths = append(paths, v.Path)
		}
	}
	return paths
}

// SPDX-License-Identifier: MPL-2.0

package modgraph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blastradius/blastradius/internal/pattern"
)

// NoModule is the parent of the root module.
const NoModule ModuleID = -1

var (
	// ErrDuplicateModule is returned when two modules share a path.
	ErrDuplicateModule = errors.New("duplicate module path")
	// ErrUnknownDependency is returned when a module depends on a path that is
	// not part of the tree.
	ErrUnknownDependency = errors.New("unknown dependency")
	// ErrUnknownModule is returned when a lookup names no module.
	ErrUnknownModule = errors.New("unknown module")
	// ErrEmptyPath is returned when a non-root module has no path.
	ErrEmptyPath = errors.New("module path is empty")
)

type (
	// ModuleID indexes a module inside its Tree.
	ModuleID int

	// Spec declares one module and its submodules. It is the input form of a
	// Tree, decoded from a manifest or built by hand in tests.
	Spec struct {
		// Path identifies the module ("app", "services/api" or ":services:api").
		Path string
		// Dir is the module directory relative to the repository root. Empty
		// means the root for the root module and the normalized Path otherwise.
		Dir string
		// Patterns are the module's own file patterns. nil means undeclared
		// (defaults apply); an empty non-nil slice matches nothing.
		Patterns []pattern.FilePattern
		// DependsOn lists the paths of runtime dependencies.
		DependsOn []string
		// Aggregate marks a module that is not a buildable unit and so has no
		// dependency relation of its own.
		Aggregate bool
		// Modules are the direct submodules, in declaration order.
		Modules []Spec
	}

	// Module is one node of a Tree.
	Module struct {
		ID           ModuleID
		Path         string
		Dir          string
		Parent       ModuleID
		Children     []ModuleID
		Dependencies []ModuleID
		Patterns     []pattern.FilePattern
		Aggregate    bool
	}

	// Tree is an immutable module tree rooted at module 0.
	Tree struct {
		modules []Module
		byKey   map[string]ModuleID
	}

	// ModuleError reports a problem with one module declaration.
	ModuleError struct {
		Path   string
		Detail string
		Err    error
	}
)

// Error implements the error interface.
func (e *ModuleError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("module %q: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("module %q: %v: %s", e.Path, e.Err, e.Detail)
}

// Unwrap returns the sentinel error for errors.Is.
func (e *ModuleError) Unwrap() error { return e.Err }

// key is the lookup key of a module path, so "B", "/B" and ":B" name the same module.
func key(path string) string {
	return pattern.NormalizeModuleDir(strings.TrimSpace(path))
}

// Build validates spec and creates the Tree it describes. Dependencies may
// point anywhere in the tree, including at ancestors or themselves.
func Build(root Spec) (*Tree, error) {
	t := &Tree{byKey: make(map[string]ModuleID)}
	deps := make(map[ModuleID][]string)

	var add func(spec Spec, parent ModuleID) error
	add = func(spec Spec, parent ModuleID) error {
		if parent != NoModule && key(spec.Path) == "" {
			return &ModuleError{Path: spec.Path, Err: ErrEmptyPath}
		}
		k := key(spec.Path)
		if _, dup := t.byKey[k]; dup {
			return &ModuleError{Path: spec.Path, Err: ErrDuplicateModule}
		}

		id := ModuleID(len(t.modules))
		dir := spec.Dir
		if dir == "" && parent != NoModule {
			dir = spec.Path
		}
		t.modules = append(t.modules, Module{
			ID:        id,
			Path:      spec.Path,
			Dir:       pattern.NormalizeModuleDir(dir),
			Parent:    parent,
			Patterns:  spec.Patterns,
			Aggregate: spec.Aggregate,
		})
		t.byKey[k] = id
		deps[id] = spec.DependsOn
		if parent != NoModule {
			t.modules[parent].Children = append(t.modules[parent].Children, id)
		}

		for _, child := range spec.Modules {
			if err := add(child, id); err != nil {
				return err
			}
		}
		return nil
	}
	if err := add(root, NoModule); err != nil {
		return nil, err
	}

	for i := range t.modules {
		id := ModuleID(i)
		for _, dep := range deps[id] {
			target, ok := t.byKey[key(dep)]
			if !ok {
				return nil, &ModuleError{Path: t.modules[i].Path, Detail: dep, Err: ErrUnknownDependency}
			}
			t.modules[i].Dependencies = append(t.modules[i].Dependencies, target)
		}
	}
	return t, nil
}

// Root returns the root module's id.
func (t *Tree) Root() ModuleID { return 0 }

// Len returns the number of modules.
func (t *Tree) Len() int { return len(t.modules) }

// Module returns the module with the given id. It panics on an id that does
// not belong to the tree.
func (t *Tree) Module(id ModuleID) Module { return t.modules[id] }

// Lookup finds a module by path. Separators are normalized, so ":a:b" finds "a/b".
func (t *Tree) Lookup(path string) (ModuleID, error) {
	if id, ok := t.byKey[key(path)]; ok {
		return id, nil
	}
	return NoModule, &ModuleError{Path: path, Err: ErrUnknownModule}
}

// Children implements Provider.
func (t *Tree) Children(id ModuleID) []ModuleID { return t.modules[id].Children }

// RuntimeDependencies implements Provider. Aggregate modules have none.
func (t *Tree) RuntimeDependencies(id ModuleID) []ModuleID {
	if t.modules[id].Aggregate {
		return nil
	}
	return t.modules[id].Dependencies
}

// DeclaredPatterns implements Provider.
func (t *Tree) DeclaredPatterns(id ModuleID) ([]pattern.FilePattern, bool) {
	p := t.modules[id].Patterns
	return p, p != nil
}

// Path implements Provider.
func (t *Tree) Path(id ModuleID) string { return t.modules[id].Path }

// Dir implements Provider.
func (t *Tree) Dir(id ModuleID) string { return t.modules[id].Dir }

// Paths returns every module path in parent-first order.
func (t *Tree) Paths() []string {
	var paths []string
	Walk(t, func(id, _ ModuleID) {
		paths = append(paths, t.Path(id))
	})
	return paths
}

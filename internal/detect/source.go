// SPDX-License-Identifier: MPL-2.0

package detect

import (
	"log/slog"
	"slices"

	"github.com/blastradius/blastradius/internal/commitrange"
	"github.com/blastradius/blastradius/internal/patchdiff"
	"github.com/blastradius/blastradius/internal/pattern"
	"github.com/blastradius/blastradius/internal/vcs"
)

type (
	// ChangeSet is the outcome of a ChangeSource. When Determined is false the
	// paths are unknown and every module must be treated as changed.
	ChangeSet struct {
		Determined bool
		// Range is set when the paths come from a commit range.
		Range commitrange.Range
		// Paths are "/"-prefixed repository-relative paths, sorted.
		Paths []string
	}

	// ChangeSource yields the changed paths of one invocation. Only
	// configuration errors are returned as errors; collaborator failures
	// produce an undetermined ChangeSet.
	ChangeSource interface {
		Changes() (ChangeSet, error)
	}

	// CommitSource diffs the commit range a strategy resolves to.
	CommitSource struct {
		Resolver    *commitrange.Resolver
		Diff        vcs.DiffProvider
		Strategy    commitrange.Strategy
		ExplicitRef string
	}

	// PatchSource reads the changed paths from a unified diff file.
	PatchSource struct {
		Path string
	}

	// StaticSource is a fixed change set, mostly useful in tests.
	StaticSource ChangeSet
)

// Undetermined is the change set of a failed or impossible detection.
func Undetermined() ChangeSet { return ChangeSet{} }

// Determined builds a determined change set over paths.
func Determined(paths ...string) ChangeSet {
	return ChangeSet{Determined: true, Paths: normalizePaths(paths)}
}

func normalizePaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, pattern.NormalizePath(p))
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Changes implements ChangeSource.
func (s *CommitSource) Changes() (ChangeSet, error) {
	rng, ok, err := s.Resolver.Resolve(s.Strategy, s.ExplicitRef)
	if err != nil {
		return ChangeSet{}, err
	}
	if !ok {
		return Undetermined(), nil
	}

	paths, err := s.Diff.DiffPaths(rng.Previous, rng.Current)
	if err != nil {
		slog.Warn("failed to compute changed paths; every module counts as changed", "range", rng.String(), "error", err)
		return Undetermined(), nil
	}
	changes := Determined(paths...)
	changes.Range = rng
	return changes, nil
}

// Changes implements ChangeSource.
func (s *PatchSource) Changes() (ChangeSet, error) {
	paths, err := patchdiff.ParseFile(s.Path)
	if err != nil {
		slog.Warn("failed to read changed paths from patch; every module counts as changed", "patch", s.Path, "error", err)
		return Undetermined(), nil
	}
	return Determined(paths...), nil
}

// Changes implements ChangeSource.
func (s StaticSource) Changes() (ChangeSet, error) {
	return ChangeSet(s), nil
}

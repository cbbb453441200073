// SPDX-License-Identifier: MPL-2.0

package commitrange

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/blastradius/blastradius/internal/tagindex"
	"github.com/blastradius/blastradius/internal/vcs"
)

// DefaultPreviousBuildVar is the environment variable CI servers (the Jenkins
// git plugin among them) use to expose the last successfully built commit.
const DefaultPreviousBuildVar = "GIT_PREVIOUS_SUCCESSFUL_COMMIT"

// previousCommitRef is the revision resolved by the previous-commit strategy.
const previousCommitRef = vcs.HeadRef + "~1"

var (
	// ErrExplicitRefRequired is returned when explicit-commit is selected
	// without a reference.
	ErrExplicitRefRequired = fmt.Errorf("%w: a previous commit reference is required by the %s strategy", ErrConfiguration, ExplicitCommit)

	// ErrUnresolvedExplicitRef is the sentinel error wrapped by UnresolvedRefError.
	ErrUnresolvedExplicitRef = fmt.Errorf("%w: explicit reference does not resolve", ErrConfiguration)
)

type (
	// Range is the immutable (previous, current) pair a diff is computed over.
	// Both ids are resolved commits, never symbolic references.
	Range struct {
		Previous vcs.CommitID
		Current  vcs.CommitID
	}

	// Source is the repository view the resolver reads from.
	Source interface {
		vcs.ReferenceResolver
		vcs.TagLister
	}

	// EnvLookup reads one environment value, reporting whether it was set.
	EnvLookup func(key string) (string, bool)

	// Options configures a Resolver. Zero values select defaults.
	Options struct {
		// LookupEnv reads the previous-build variable. Defaults to os.LookupEnv.
		LookupEnv EnvLookup
		// PreviousBuildVar names the variable holding the previous successful
		// build's commit. Defaults to DefaultPreviousBuildVar.
		PreviousBuildVar string
	}

	// Resolver turns a Strategy into a Range for one invocation. Construct a new
	// Resolver per invocation; it memoizes the head version through its tag index.
	Resolver struct {
		source           Source
		tags             *tagindex.Index
		lookupEnv        EnvLookup
		previousBuildVar string
	}

	// UnresolvedRefError is returned when an explicit reference cannot be resolved.
	UnresolvedRefError struct {
		Ref   string
		Cause error
	}
)

// Error implements the error interface.
func (e *UnresolvedRefError) Error() string {
	return fmt.Sprintf("explicit reference %q does not resolve to a commit: %v", e.Ref, e.Cause)
}

// Unwrap returns ErrUnresolvedExplicitRef and the cause so callers can use errors.Is.
func (e *UnresolvedRefError) Unwrap() []error { return []error{ErrUnresolvedExplicitRef, e.Cause} }

// String renders the range as "previous..current" with abbreviated ids.
func (r Range) String() string {
	return r.Previous.Short() + ".." + r.Current.Short()
}

// NewResolver creates a Resolver over source.
func NewResolver(source Source, opts Options) *Resolver {
	if opts.LookupEnv == nil {
		opts.LookupEnv = os.LookupEnv
	}
	if opts.PreviousBuildVar == "" {
		opts.PreviousBuildVar = DefaultPreviousBuildVar
	}
	return &Resolver{
		source:           source,
		tags:             tagindex.New(source),
		lookupEnv:        opts.LookupEnv,
		previousBuildVar: opts.PreviousBuildVar,
	}
}

// Tags exposes the resolver's tag index so callers share its memoized head version.
func (r *Resolver) Tags() *tagindex.Index {
	return r.tags
}

// Resolve produces the commit range for strategy. ok is false when the range is
// undetermined, in which case every module must be treated as changed. A non-nil
// error is always a configuration error (errors.Is(err, ErrConfiguration)) or a
// failure of the explicit-commit strategy.
func (r *Resolver) Resolve(strategy Strategy, explicitRef string) (Range, bool, error) {
	var (
		rng Range
		ok  bool
		err error
	)

	switch strategy {
	case LastSuccessfulBuild:
		rng, ok = r.fromPreviousBuild()
	case PreviousTag:
		rng, ok = r.fromPreviousTag()
	case PreviousCommit:
		rng, ok = r.fromPreviousCommit()
	case ExplicitCommit:
		rng, err = r.fromExplicitRef(explicitRef)
		ok = err == nil
	default:
		return Range{}, false, &InvalidStrategyError{Value: strategy}
	}
	if err != nil {
		return Range{}, false, err
	}

	if ok {
		slog.Info("resolved commit range", "strategy", strategy.String(), "previous", rng.Previous.String(), "current", rng.Current.String())
	} else {
		slog.Info("commit range undetermined; every module counts as changed", "strategy", strategy.String())
	}
	return rng, ok, nil
}

func (r *Resolver) fromPreviousBuild() (Range, bool) {
	ref, set := r.lookupEnv(r.previousBuildVar)
	ref = strings.TrimSpace(ref)
	if !set || ref == "" {
		slog.Info("previous successful build is unknown", "variable", r.previousBuildVar)
		return Range{}, false
	}

	previous, err := r.source.ResolveReference(ref)
	if err != nil {
		// Happens when history was rewritten since the last successful build.
		slog.Warn("previous successful build commit does not resolve", "ref", ref, "error", err)
		return Range{}, false
	}
	return r.withHead(previous)
}

func (r *Resolver) fromPreviousCommit() (Range, bool) {
	slog.Info("comparing to previous commit")
	previous, err := r.source.ResolveReference(previousCommitRef)
	if err != nil {
		slog.Info("head has no parent commit", "error", err)
		return Range{}, false
	}
	return r.withHead(previous)
}

func (r *Resolver) fromPreviousTag() (Range, bool) {
	versions, err := r.tags.AllVersions()
	if err != nil {
		slog.Warn("failed to list versions", "error", err)
		return Range{}, false
	}
	headVersion, tagged, err := r.tags.HeadVersion()
	if err != nil {
		slog.Warn("failed to determine head version", "error", err)
		return Range{}, false
	}

	if tagged {
		slog.Debug("current version", "version", headVersion.String())
		idx := tagindex.IndexOf(versions, headVersion)
		if idx <= 0 {
			slog.Info("head is the first tagged release", "version", headVersion.String())
			return Range{}, false
		}
		prevVersion := versions[idx-1]
		slog.Info("previous version", "version", prevVersion.String())

		previous, ok := r.tagTarget(prevVersion.Original)
		if !ok {
			return Range{}, false
		}
		current, ok := r.tagTarget(headVersion.Original)
		if !ok {
			return Range{}, false
		}
		return Range{Previous: previous, Current: current}, true
	}

	if len(versions) == 0 {
		slog.Info("repository has no version tags")
		return Range{}, false
	}
	latest := versions[len(versions)-1]
	slog.Info("previous version", "version", latest.String())
	previous, ok := r.tagTarget(latest.Original)
	if !ok {
		return Range{}, false
	}
	current, err := r.tags.Head()
	if err != nil {
		slog.Warn("failed to resolve head", "error", err)
		return Range{}, false
	}
	return Range{Previous: previous, Current: current}, true
}

func (r *Resolver) fromExplicitRef(ref string) (Range, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Range{}, ErrExplicitRefRequired
	}
	previous, err := r.source.ResolveReference(ref)
	if err != nil {
		return Range{}, &UnresolvedRefError{Ref: ref, Cause: err}
	}
	current, err := r.source.CurrentHead()
	if err != nil {
		return Range{}, &UnresolvedRefError{Ref: vcs.HeadRef, Cause: err}
	}
	return Range{Previous: previous, Current: current}, nil
}

func (r *Resolver) withHead(previous vcs.CommitID) (Range, bool) {
	current, err := r.source.CurrentHead()
	if err != nil {
		slog.Warn("failed to resolve head", "error", err)
		return Range{}, false
	}
	return Range{Previous: previous, Current: current}, true
}

// tagTarget returns the commit a tag peels to.
func (r *Resolver) tagTarget(name string) (vcs.CommitID, bool) {
	tag, found, err := r.tags.Tag(name)
	if err != nil || !found {
		slog.Warn("version tag disappeared while resolving range", "tag", name, "error", err)
		return "", false
	}
	target := tag.Target()
	if target.IsZero() {
		slog.Warn("version tag does not point at a commit", "tag", name)
		return "", false
	}
	return target, true
}

// IsConfigurationError reports whether err must be surfaced to the caller
// rather than treated as an undetermined change set.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

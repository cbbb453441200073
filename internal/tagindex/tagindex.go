// SPDX-License-Identifier: MPL-2.0

// Package tagindex orders repository tags by semantic version and identifies
// the version (if any) that HEAD is tagged with.
package tagindex

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"github.com/blastradius/blastradius/internal/vcs"
	"github.com/blastradius/blastradius/pkg/semver"
)

type (
	// Source is the repository view the index reads from.
	Source interface {
		vcs.TagLister
		CurrentHead() (vcs.CommitID, error)
	}

	// Index answers version questions about one repository state. It is meant
	// to live for a single invocation: tags and HEAD are read once, on first
	// use, and every answer comes from that snapshot.
	Index struct {
		source Source

		snapOnce sync.Once
		snap     snapshot
		snapErr  error

		headOnce    sync.Once
		headVersion semver.Version
		headFound   bool
		headErr     error
	}

	snapshot struct {
		head     vcs.CommitID
		tags     map[string]vcs.Tag
		versions []semver.Version
	}
)

// New creates an Index over source.
func New(source Source) *Index {
	return &Index{source: source}
}

func (x *Index) snapshot() (snapshot, error) {
	x.snapOnce.Do(func() {
		x.snap, x.snapErr = x.takeSnapshot()
	})
	return x.snap, x.snapErr
}

func (x *Index) takeSnapshot() (snapshot, error) {
	head, err := x.source.CurrentHead()
	if err != nil {
		return snapshot{}, fmt.Errorf("failed to resolve head: %w", err)
	}
	slog.Info("head commit", "commit", head.String())

	tags, err := x.source.ListTags()
	if err != nil {
		return snapshot{}, fmt.Errorf("failed to list tags: %w", err)
	}

	versions := make([]semver.Version, 0, len(tags))
	for name := range tags {
		v, parseErr := semver.Parse(name)
		if parseErr != nil {
			continue
		}
		versions = append(versions, v)
	}
	semver.Sort(versions)
	// Equal precedence ("1.0.0" and "v1.0.0") keeps the lowest tag name.
	versions = slices.CompactFunc(versions, semver.Version.Equal)

	return snapshot{head: head, tags: tags, versions: versions}, nil
}

// Head returns the head commit of the snapshot.
func (x *Index) Head() (vcs.CommitID, error) {
	snap, err := x.snapshot()
	if err != nil {
		return "", err
	}
	return snap.head, nil
}

// AllVersions returns every tag name that parses as a semantic version, sorted
// strictly ascending by precedence. Tags that are not versions are dropped, and
// of several tags with equal precedence only the lowest name is listed.
func (x *Index) AllVersions() ([]semver.Version, error) {
	snap, err := x.snapshot()
	if err != nil {
		return nil, err
	}
	return slices.Clone(snap.versions), nil
}

// TagsOnHead returns, sorted by name, every tag whose peeled commit equals the
// head commit.
func (x *Index) TagsOnHead() ([]string, error) {
	snap, err := x.snapshot()
	if err != nil {
		return nil, err
	}

	var onHead []string
	for name, tag := range snap.tags {
		match := tag.PointsAt(snap.head)
		slog.Debug("comparing tag to head", "tag", name, "peeled", tag.Peeled.String(), "head", snap.head.String(), "match", match)
		if match {
			onHead = append(onHead, name)
		}
	}
	sort.Strings(onHead)
	return onHead, nil
}

// HeadVersion returns the first tag on head (in name order) that parses as a
// semantic version. The lookup runs once per Index; later calls, including
// concurrent ones, observe the same result.
func (x *Index) HeadVersion() (semver.Version, bool, error) {
	x.headOnce.Do(func() {
		x.headVersion, x.headFound, x.headErr = x.lookupHeadVersion()
	})
	return x.headVersion, x.headFound, x.headErr
}

func (x *Index) lookupHeadVersion() (semver.Version, bool, error) {
	onHead, err := x.TagsOnHead()
	if err != nil {
		return semver.Version{}, false, err
	}
	slog.Debug("tags on head", "count", len(onHead), "tags", onHead)

	for _, name := range onHead {
		v, parseErr := semver.Parse(name)
		if parseErr != nil {
			slog.Debug("tag on head is not a version", "tag", name, "error", parseErr)
			continue
		}
		return v, true, nil
	}
	return semver.Version{}, false, nil
}

// Tag returns the named tag.
func (x *Index) Tag(name string) (vcs.Tag, bool, error) {
	snap, err := x.snapshot()
	if err != nil {
		return vcs.Tag{}, false, err
	}
	tag, ok := snap.tags[name]
	return tag, ok, nil
}

// IndexOf returns the position of the version with the same precedence as v,
// or -1.
func IndexOf(versions []semver.Version, v semver.Version) int {
	return slices.IndexFunc(versions, v.Equal)
}

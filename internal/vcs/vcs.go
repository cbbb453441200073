// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"errors"
	"fmt"
	"regexp"
)

// HeadRef is the symbolic reference for the checked-out commit.
const HeadRef = "HEAD"

var (
	// ErrInvalidCommitID is the sentinel error wrapped by InvalidCommitIDError.
	ErrInvalidCommitID = errors.New("invalid commit id")

	// ErrReferenceNotFound is returned when a symbolic reference does not resolve
	// to a commit in the repository.
	ErrReferenceNotFound = errors.New("reference not found")

	// commitIDPattern validates a 40-character lowercase hex SHA.
	commitIDPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)
)

type (
	// CommitID identifies one snapshot of the source tree. The zero value means
	// "no commit".
	CommitID string

	// InvalidCommitIDError is returned when a CommitID is not a 40-character
	// lowercase hex SHA.
	InvalidCommitIDError struct {
		Value CommitID
	}

	// Tag is a named pointer to a commit. Commit is the object the tag reference
	// points at (the tag object itself for annotated tags); Peeled is the commit
	// the tag ultimately resolves to, or zero when it does not resolve to one.
	Tag struct {
		Name   string
		Commit CommitID
		Peeled CommitID
	}

	// ReferenceResolver resolves symbolic references ("HEAD~1", a branch, a SHA).
	ReferenceResolver interface {
		// ResolveReference returns the commit ref points at. Unknown or
		// unresolvable references yield an error wrapping ErrReferenceNotFound.
		ResolveReference(ref string) (CommitID, error)
		// CurrentHead returns the commit HEAD points at.
		CurrentHead() (CommitID, error)
	}

	// TagLister enumerates tags keyed by name.
	TagLister interface {
		ListTags() (map[string]Tag, error)
	}

	// DiffProvider lists the paths that differ between two commits. Paths are
	// repository-relative with a leading "/".
	DiffProvider interface {
		DiffPaths(previous, current CommitID) ([]string, error)
	}

	// Repository is the full set of capabilities change detection needs.
	Repository interface {
		ReferenceResolver
		TagLister
		DiffProvider
	}
)

// Error implements the error interface.
func (e *InvalidCommitIDError) Error() string {
	return fmt.Sprintf("invalid commit id %q (must be a 40-character lowercase hex SHA)", e.Value)
}

// Unwrap returns ErrInvalidCommitID so callers can use errors.Is for programmatic detection.
func (e *InvalidCommitIDError) Unwrap() error { return ErrInvalidCommitID }

// Validate returns nil if the CommitID is a 40-character lowercase hex SHA.
func (c CommitID) Validate() error {
	if !commitIDPattern.MatchString(string(c)) {
		return &InvalidCommitIDError{Value: c}
	}
	return nil
}

// IsZero reports whether c is the zero CommitID.
func (c CommitID) IsZero() bool { return c == "" }

// String returns the string representation of the CommitID.
func (c CommitID) String() string { return string(c) }

// Short returns the first seven characters, the conventional abbreviated form.
func (c CommitID) Short() string {
	if len(c) <= 7 {
		return string(c)
	}
	return string(c[:7])
}

// Target returns the commit the tag resolves to: the peeled commit when the
// tag was peeled, zero otherwise.
func (t Tag) Target() CommitID { return t.Peeled }

// PointsAt reports whether the tag resolves to commit. A tag without a peeled
// commit never points at anything.
func (t Tag) PointsAt(commit CommitID) bool {
	return !t.Peeled.IsZero() && t.Peeled == commit
}

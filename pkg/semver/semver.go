// SPDX-License-Identifier: MPL-2.0

// Package semver parses repository tag names into semantic versions and orders
// them by SemVer 2.0.0 precedence.
//
// Only full major.minor.patch versions are accepted, optionally preceded by a
// single "v" and followed by pre-release and build metadata. Shorthands such as
// "1.2" or "v1" are rejected so that arbitrary tags never masquerade as releases.
package semver

import (
	"cmp"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	xsemver "golang.org/x/mod/semver"
)

// ErrInvalidVersion is the sentinel error wrapped by InvalidVersionError.
var ErrInvalidVersion = errors.New("invalid semantic version")

// versionRegex is the SemVer 2.0.0 grammar with an optional leading "v".
var versionRegex = regexp.MustCompile(
	`^v?(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)` +
		`(?:-((?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(?:\.(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*))*))?` +
		`(?:\+([0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?$`)

type (
	// Version is a parsed semantic version. Original keeps the exact string the
	// version was parsed from (usually a tag name) so callers can map back to it.
	Version struct {
		Major      int
		Minor      int
		Patch      int
		Prerelease string
		Build      string
		Original   string
	}

	// InvalidVersionError is returned when a string is not a semantic version.
	InvalidVersionError struct {
		Value string
	}
)

// Error implements the error interface.
func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid semantic version %q", e.Value)
}

// Unwrap returns ErrInvalidVersion so callers can use errors.Is for programmatic detection.
func (e *InvalidVersionError) Unwrap() error { return ErrInvalidVersion }

// Parse parses s into a Version.
func Parse(s string) (Version, error) {
	m := versionRegex.FindStringSubmatch(s)
	if m == nil {
		return Version{}, &InvalidVersionError{Value: s}
	}

	v := Version{Prerelease: m[4], Build: m[5], Original: s}
	var err error
	if v.Major, err = strconv.Atoi(m[1]); err != nil {
		return Version{}, &InvalidVersionError{Value: s}
	}
	if v.Minor, err = strconv.Atoi(m[2]); err != nil {
		return Version{}, &InvalidVersionError{Value: s}
	}
	if v.Patch, err = strconv.Atoi(m[3]); err != nil {
		return Version{}, &InvalidVersionError{Value: s}
	}
	return v, nil
}

// IsValid reports whether s parses as a semantic version.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// String returns the string the version was parsed from.
func (v Version) String() string {
	if v.Original != "" {
		return v.Original
	}
	return strings.TrimPrefix(v.canonical(), "v")
}

// canonical renders the version in the "vMAJOR.MINOR.PATCH[-PRE][+BUILD]" form
// understood by golang.org/x/mod/semver.
func (v Version) canonical() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "v%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		sb.WriteString("-")
		sb.WriteString(v.Prerelease)
	}
	if v.Build != "" {
		sb.WriteString("+")
		sb.WriteString(v.Build)
	}
	return sb.String()
}

// Compare returns -1, 0 or +1 depending on whether v has lower, equal or higher
// precedence than other. Build metadata does not affect precedence.
func (v Version) Compare(other Version) int {
	return xsemver.Compare(v.canonical(), other.canonical())
}

// Equal reports whether v and other have the same precedence.
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

// Sort orders versions ascending by precedence. Versions of equal precedence
// (for example "1.0.0" and "v1.0.0") are ordered by their original string so
// the result never depends on input order.
func Sort(versions []Version) {
	slices.SortStableFunc(versions, func(a, b Version) int {
		if c := a.Compare(b); c != 0 {
			return c
		}
		return cmp.Compare(a.Original, b.Original)
	})
}

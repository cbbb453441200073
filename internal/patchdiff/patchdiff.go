// SPDX-License-Identifier: MPL-2.0

// Package patchdiff extracts changed paths from a unified diff, as produced by
// "git diff" or "git format-patch". It lets a pipeline that already holds a
// patch skip commit range resolution.
package patchdiff

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

const devNull = "/dev/null"

// ErrEmptyPatch is returned for a non-empty input that contains no file diffs.
var ErrEmptyPatch = errors.New("patch contains no file diffs")

// Parse reads a unified diff and returns the "/"-prefixed repository-relative
// paths it touches, sorted and without duplicates. A rename contributes both
// names, an added file its new name and a deleted file its old name.
func Parse(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read patch: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return []string{}, nil
	}

	fileDiffs, err := diff.ParseMultiFileDiff(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse patch: %w", err)
	}
	if len(fileDiffs) == 0 {
		return nil, ErrEmptyPatch
	}

	paths := make([]string, 0, len(fileDiffs))
	for _, fd := range fileDiffs {
		if p, ok := repoPath(fd.OrigName, "a/"); ok {
			paths = append(paths, p)
		}
		if p, ok := repoPath(fd.NewName, "b/"); ok {
			paths = append(paths, p)
		}
	}
	slices.Sort(paths)
	return slices.Compact(paths), nil
}

// ParseFile is Parse over the file at path.
func ParseFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open patch: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// repoPath strips git's side prefix: a/ on the old name, b/ on the new one.
// Only that one prefix is removed, so a top-level a/ or b/ directory survives.
func repoPath(name, sidePrefix string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" || name == devNull {
		return "", false
	}
	name = strings.TrimPrefix(name, sidePrefix)
	return "/" + strings.TrimPrefix(name, "/"), true
}

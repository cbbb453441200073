// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

// ErrFileTooLarge is the sentinel error wrapped by FileTooLargeError.
var ErrFileTooLarge = errors.New("file too large")

type (
	// Issue is one failing field of a document.
	Issue struct {
		// Path is the field in JSON-path notation ("root.modules[1].path").
		Path    string
		Message string
	}

	// ValidationError reports every issue CUE found in a document.
	ValidationError struct {
		FilePath string
		Issues   []Issue
		cause    error
	}

	// FileTooLargeError is returned when a document exceeds the size limit.
	FileTooLargeError struct {
		FilePath string
		Size     int64
		Max      int64
	}
)

// Error implements the error interface.
func (e *ValidationError) Error() string {
	lines := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Path == "" {
			lines = append(lines, issue.Message)
			continue
		}
		lines = append(lines, issue.Path+": "+issue.Message)
	}
	if len(lines) == 1 {
		return fmt.Sprintf("%s: %s", e.FilePath, lines[0])
	}
	return fmt.Sprintf("%s: validation failed:\n  %s", e.FilePath, strings.Join(lines, "\n  "))
}

// Unwrap returns the underlying CUE error.
func (e *ValidationError) Unwrap() error { return e.cause }

// Error implements the error interface.
func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("%s: file size %d bytes exceeds maximum %d bytes", e.FilePath, e.Size, e.Max)
}

// Unwrap returns ErrFileTooLarge so callers can use errors.Is for programmatic detection.
func (e *FileTooLargeError) Unwrap() error { return ErrFileTooLarge }

// FormatError converts a CUE error into a *ValidationError naming the path of
// each failing field. Errors that carry no CUE detail are wrapped with the
// file path only.
//
//	blastradius.cue: root.modules[0].path: incomplete value string
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	cueErrs := cueerrors.Errors(err)
	if len(cueErrs) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	issues := make([]Issue, 0, len(cueErrs))
	for _, e := range cueErrs {
		path := formatPath(cueerrors.Path(e))
		msg := e.Error()
		// CUE sometimes repeats the path at the start of the message.
		if path != "" && strings.HasPrefix(msg, path) {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, path), ":"))
		}
		issues = append(issues, Issue{Path: path, Message: msg})
	}
	return &ValidationError{FilePath: filePath, Issues: issues, cause: err}
}

// formatPath turns CUE's ["root", "modules", "0", "path"] into "root.modules[0].path".
func formatPath(path []string) string {
	var b strings.Builder
	for i, part := range path {
		if i > 0 && isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckFileSize returns a *FileTooLargeError when data exceeds maxSize.
func CheckFileSize(data []byte, maxSize int64, filePath string) error {
	if size := int64(len(data)); size > maxSize {
		return &FileTooLargeError{FilePath: filePath, Size: size, Max: maxSize}
	}
	return nil
}

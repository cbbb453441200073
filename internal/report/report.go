// SPDX-License-Identifier: MPL-2.0

// Package report serializes change detection results.
//
// The lines format is one "<module path>,<true|false>" line per module,
// sorted by path, which shell pipelines read with a plain loop. The json and
// yaml formats add whether the change set was undetermined and the commit
// range it was computed from.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/blastradius/blastradius/internal/detect"
)

const (
	// FormatLines writes "path,bool" lines.
	FormatLines Format = "lines"
	// FormatJSON writes a JSON document.
	FormatJSON Format = "json"
	// FormatYAML writes a YAML document.
	FormatYAML Format = "yaml"

	// DefaultFileName is the report file written by the changed command.
	DefaultFileName = "changedFiles"
)

// ErrInvalidFormat is the sentinel error wrapped by InvalidFormatError.
var ErrInvalidFormat = errors.New("invalid report format")

type (
	// Format selects the report serialization.
	Format string

	// InvalidFormatError is returned for an unknown Format.
	InvalidFormatError struct {
		Value Format
	}

	document struct {
		Undetermined bool             `json:"undetermined" yaml:"undetermined"`
		Range        *rangeDoc        `json:"range,omitempty" yaml:"range,omitempty"`
		Modules      []detect.Verdict `json:"modules" yaml:"modules"`
	}

	rangeDoc struct {
		Previous string `json:"previous" yaml:"previous"`
		Current  string `json:"current" yaml:"current"`
	}
)

// Error implements the error interface.
func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid report format %q (valid: lines, json, yaml)", e.Value)
}

// Unwrap returns ErrInvalidFormat so callers can use errors.Is for programmatic detection.
func (e *InvalidFormatError) Unwrap() error { return ErrInvalidFormat }

// Validate returns nil if the Format is known.
func (f Format) Validate() error {
	switch f {
	case FormatLines, FormatJSON, FormatYAML:
		return nil
	default:
		return &InvalidFormatError{Value: f}
	}
}

// ParseFormat parses a format name case-insensitively. Empty selects FormatLines.
func ParseFormat(s string) (Format, error) {
	if strings.TrimSpace(s) == "" {
		return FormatLines, nil
	}
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if err := f.Validate(); err != nil {
		return "", err
	}
	return f, nil
}

// Write serializes result to w.
func Write(w io.Writer, result *detect.Result, format Format) error {
	switch format {
	case FormatLines:
		var b strings.Builder
		for _, v := range result.Sorted() {
			b.WriteString(v.Path)
			b.WriteByte(',')
			b.WriteString(strconv.FormatBool(v.Changed))
			b.WriteByte('\n')
		}
		_, err := io.WriteString(w, b.String())
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newDocument(result))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newDocument(result)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return &InvalidFormatError{Value: format}
	}
}

// WriteFile writes the report to path, creating parent directories.
func WriteFile(path string, result *detect.Result, format Format) (err error) {
	if err := format.Validate(); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return Write(f, result, format)
}

func newDocument(result *detect.Result) document {
	doc := document{
		Undetermined: !result.Changes.Determined,
		Modules:      result.Sorted(),
	}
	if r := result.Changes.Range; !r.Previous.IsZero() {
		doc.Range = &rangeDoc{Previous: r.Previous.String(), Current: r.Current.String()}
	}
	return doc
}

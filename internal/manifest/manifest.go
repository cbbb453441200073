// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/blastradius/blastradius/internal/modgraph"
	"github.com/blastradius/blastradius/internal/pattern"
	"github.com/blastradius/blastradius/pkg/cueutil"
)

const (
	// DefaultFileName is the manifest looked up when none is configured.
	DefaultFileName = "blastradius.cue"

	// FormatCUE selects the CUE manifest syntax.
	FormatCUE Format = "cue"
	// FormatTOML selects the TOML manifest syntax.
	FormatTOML Format = "toml"
)

var (
	//go:embed manifest_schema.cue
	schema []byte

	// ErrNotFound is returned when the manifest file does not exist.
	ErrNotFound = errors.New("manifest not found")
	// ErrUnsupportedFormat is returned for a manifest extension other than .cue or .toml.
	ErrUnsupportedFormat = errors.New("unsupported manifest format")
)

type (
	// Format is the manifest syntax.
	Format string

	document struct {
		Root moduleDoc `json:"root" toml:"root"`
	}

	moduleDoc struct {
		Path      string      `json:"path" toml:"path"`
		Dir       string      `json:"dir,omitempty" toml:"dir"`
		Patterns  *[]string   `json:"patterns,omitempty" toml:"patterns"`
		DependsOn []string    `json:"depends_on,omitempty" toml:"depends_on"`
		Aggregate bool        `json:"aggregate,omitempty" toml:"aggregate"`
		Modules   []moduleDoc `json:"modules,omitempty" toml:"modules"`
	}
)

// FormatOf picks the Format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return FormatCUE, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q (use .cue or .toml)", ErrUnsupportedFormat, path)
	}
}

// Load reads and parses the manifest at path.
func Load(path string) (modgraph.Spec, error) {
	format, err := FormatOf(path)
	if err != nil {
		return modgraph.Spec{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return modgraph.Spec{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return modgraph.Spec{}, fmt.Errorf("failed to read manifest: %w", err)
	}
	slog.Debug("loading manifest", "path", path, "format", string(format))
	return Parse(data, filepath.Base(path), format)
}

// Parse decodes manifest data. filename only labels error messages.
func Parse(data []byte, filename string, format Format) (modgraph.Spec, error) {
	var doc document
	switch format {
	case FormatCUE:
		result, err := cueutil.ParseAndDecode[document](schema, data, "#Manifest", cueutil.WithFilename(filename))
		if err != nil {
			return modgraph.Spec{}, err
		}
		doc = *result.Value
	case FormatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return modgraph.Spec{}, fmt.Errorf("%s: %w", filename, err)
		}
		if strings.TrimSpace(doc.Root.Path) == "" {
			doc.Root.Path = ":"
		}
	default:
		return modgraph.Spec{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return doc.Root.spec(), nil
}

func (m moduleDoc) spec() modgraph.Spec {
	s := modgraph.Spec{
		Path:      m.Path,
		Dir:       m.Dir,
		DependsOn: m.DependsOn,
		Aggregate: m.Aggregate,
	}
	if m.Patterns != nil {
		s.Patterns = make([]pattern.FilePattern, 0, len(*m.Patterns))
		for _, p := range *m.Patterns {
			s.Patterns = append(s.Patterns, pattern.FilePattern(p))
		}
	}
	for _, child := range m.Modules {
		s.Modules = append(s.Modules, child.spec())
	}
	return s
}

// ApplyPatterns fills in patterns for modules that declare none, keyed by
// module path. Declarations in the manifest win over overrides.
func ApplyPatterns(spec *modgraph.Spec, overrides map[string][]pattern.FilePattern) {
	if len(overrides) == 0 {
		return
	}
	byKey := make(map[string][]pattern.FilePattern, len(overrides))
	for path, patterns := range overrides {
		byKey[pattern.NormalizeModuleDir(path)] = patterns
	}

	var apply func(s *modgraph.Spec)
	apply = func(s *modgraph.Spec) {
		if s.Patterns == nil {
			if patterns, ok := byKey[pattern.NormalizeModuleDir(s.Path)]; ok {
				s.Patterns = append([]pattern.FilePattern{}, patterns...)
			}
		}
		for i := range s.Modules {
			apply(&s.Modules[i])
		}
	}
	apply(spec)
}

// SingleModule is the tree used when a repository has no manifest: one root
// module covering the whole repository.
func SingleModule() modgraph.Spec {
	return modgraph.Spec{Path: ":"}
}

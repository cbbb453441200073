// SPDX-License-Identifier: MPL-2.0

// Package pattern compiles per-module file patterns into matchers over
// repository-relative changed paths.
//
// A pattern is appended to the module's directory and must match a changed
// path in full. Plain patterns are regular expressions ("/src/main/.*");
// patterns prefixed with "glob:" are doublestar globs ("glob:/src/**/*.go").
package pattern

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// GlobPrefix marks a pattern as a doublestar glob instead of a regular expression.
const GlobPrefix = "glob:"

var (
	// ErrInvalidPattern is the sentinel error wrapped by InvalidPatternError.
	ErrInvalidPattern = errors.New("invalid file pattern")

	defaultPatterns = []FilePattern{"/[^.]*.gradle", "/src/main/.*"}
	deployPatterns  = []FilePattern{"/deploy/.*"}
)

type (
	// FilePattern is one pattern string as declared in configuration.
	FilePattern string

	// Matcher is a compiled pattern anchored at a module directory.
	// The zero value matches nothing.
	Matcher struct {
		expr string
		re   *regexp.Regexp
		glob bool
	}

	// InvalidPatternError is returned when a pattern does not compile.
	InvalidPatternError struct {
		Module  string
		Pattern FilePattern
		Cause   error
	}
)

// Error implements the error interface.
func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid file pattern %q for module %q: %v", e.Pattern, e.Module, e.Cause)
}

// Unwrap returns ErrInvalidPattern so callers can use errors.Is for programmatic detection.
func (e *InvalidPatternError) Unwrap() error { return ErrInvalidPattern }

// DefaultPatterns returns a copy of the tree-wide default patterns: build
// scripts and main sources.
func DefaultPatterns() []FilePattern {
	return append([]FilePattern(nil), defaultPatterns...)
}

// ModuleDefaultPatterns returns a copy of the defaults for the single-module
// query, which also counts deployment descriptors.
func ModuleDefaultPatterns() []FilePattern {
	return append(DefaultPatterns(), deployPatterns...)
}

// IsGlob reports whether the pattern uses glob syntax.
func (p FilePattern) IsGlob() bool { return strings.HasPrefix(string(p), GlobPrefix) }

// String returns the string representation of the FilePattern.
func (p FilePattern) String() string { return string(p) }

// NormalizeModuleDir turns a module path or directory ("A/B", ":A:B",
// `A\B`) into the "/A/B" form used as a matcher prefix. The root is "".
func NormalizeModuleDir(dir string) string {
	dir = strings.NewReplacer(`\`, "/", ":", "/").Replace(dir)
	dir = collapseSlashes(dir)
	dir = strings.TrimSuffix(dir, "/")
	if dir != "" && !strings.HasPrefix(dir, "/") {
		dir = "/" + dir
	}
	return dir
}

// NormalizePath turns a changed path into the "/"-prefixed forward-slash form
// matchers are evaluated against.
func NormalizePath(path string) string {
	path = collapseSlashes(strings.ReplaceAll(path, `\`, "/"))
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

func collapseSlashes(s string) string {
	for strings.Contains(s, "//") {
		s = strings.ReplaceAll(s, "//", "/")
	}
	return s
}

// Build compiles patterns against the module directory moduleDir. The module
// directory is taken literally; only the pattern carries expression syntax.
// Patterns without a leading "/" are treated as if they had one.
// A nil or empty patterns slice yields no matchers.
func Build(moduleDir string, patterns []FilePattern) ([]Matcher, error) {
	prefix := NormalizeModuleDir(moduleDir)
	matchers := make([]Matcher, 0, len(patterns))
	for _, p := range patterns {
		m, err := compile(prefix, p)
		if err != nil {
			return nil, &InvalidPatternError{Module: moduleDir, Pattern: p, Cause: err}
		}
		slog.Debug("compiled file pattern", "module", moduleDir, "pattern", p.String(), "matcher", m.expr)
		matchers = append(matchers, m)
	}
	return matchers, nil
}

// Validate compiles a pattern without a module prefix and reports whether it is valid.
func Validate(p FilePattern) error {
	if _, err := compile("", p); err != nil {
		return &InvalidPatternError{Pattern: p, Cause: err}
	}
	return nil
}

func compile(prefix string, p FilePattern) (Matcher, error) {
	if p.IsGlob() {
		body := withLeadingSlash(strings.TrimPrefix(string(p), GlobPrefix))
		expr := collapseSlashes(escapeGlob(prefix) + body)
		if !doublestar.ValidatePattern(expr) {
			return Matcher{}, fmt.Errorf("malformed glob %q", body)
		}
		return Matcher{expr: expr, glob: true}, nil
	}

	if p == "" {
		return Matcher{}, errors.New("empty pattern")
	}
	body := withLeadingSlash(string(p))
	// Paths are matched in collapsed form, so "//" in an expression could never match.
	expr := collapseSlashes(regexp.QuoteMeta(prefix) + body)
	re, err := regexp.Compile(`^(?:` + expr + `)$`)
	if err != nil {
		return Matcher{}, err
	}
	return Matcher{expr: expr, re: re}, nil
}

func withLeadingSlash(s string) string {
	if strings.HasPrefix(s, "/") {
		return s
	}
	return "/" + s
}

// escapeGlob escapes doublestar meta characters in a literal path.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '{', '}', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Match reports whether the normalized path fully matches.
func (m Matcher) Match(path string) bool {
	path = NormalizePath(path)
	switch {
	case m.glob:
		matched, err := doublestar.Match(m.expr, path)
		return err == nil && matched
	case m.re != nil:
		return m.re.MatchString(path)
	default:
		return false
	}
}

// String returns the anchored expression the matcher evaluates.
func (m Matcher) String() string {
	if m.glob {
		return GlobPrefix + m.expr
	}
	return m.expr
}

// MatchesAny reports whether at least one changed path fully matches at least
// one matcher.
func MatchesAny(paths []string, matchers []Matcher) bool {
	for _, path := range paths {
		for _, m := range matchers {
			if m.Match(path) {
				slog.Debug("changed path matched", "path", path, "matcher", m.String())
				return true
			}
		}
	}
	return false
}

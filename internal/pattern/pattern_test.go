// SPDX-License-Identifier: MPL-2.0

package pattern

import (
	"errors"
	"testing"
)

func TestNormalizeModuleDir(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":          "",
		"/":         "",
		":":         "",
		"A":         "/A",
		"/A/B/":     "/A/B",
		":A:B":      "/A/B",
		`A\B`:       "/A/B",
		"//A//B":    "/A/B",
		"my.module": "/my.module",
	}
	for in, want := range tests {
		if got := NormalizeModuleDir(in); got != want {
			t.Errorf("NormalizeModuleDir(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizePath(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"C/src/main/Foo.txt":    "/C/src/main/Foo.txt",
		"/C/src/main/Foo.txt":   "/C/src/main/Foo.txt",
		`C\src\main\Foo.txt`:    "/C/src/main/Foo.txt",
		"//C//src/main/Foo.txt": "/C/src/main/Foo.txt",
	}
	for in, want := range tests {
		if got := NormalizePath(in); got != want {
			t.Errorf("NormalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMatchesAny(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		dir      string
		patterns []FilePattern
		paths    []string
		want     bool
	}{
		{"root main source", "", []FilePattern{"/src/main/.*"}, []string{"/src/main/App.java"}, true},
		{"root does not match nested module", "", []FilePattern{"/src/main/.*"}, []string{"/C/src/main/Foo.txt"}, false},
		{"module main source", "C", []FilePattern{"/src/main/.*"}, []string{"/C/src/main/Foo.txt"}, true},
		{"gradle path", ":A:C", []FilePattern{"/src/main/.*"}, []string{"/A/C/src/main/Foo.txt"}, true},
		{"test sources ignored", "C", []FilePattern{"/src/main/.*"}, []string{"/C/src/test/FooTest.txt"}, false},
		{"full match required", "C", []FilePattern{"/src"}, []string{"/C/src/main/Foo.txt"}, false},
		{"build script", "B", DefaultPatterns(), []string{"/B/build.gradle"}, true},
		{"build script of any depth", "", DefaultPatterns(), []string{"/B/build.gradle"}, true},
		{"readme is not a build script", "", DefaultPatterns(), []string{"/README.md"}, false},
		{"deploy descriptor", "B", ModuleDefaultPatterns(), []string{"/B/deploy/app.yaml"}, true},
		{"pattern without leading slash", "C", []FilePattern{"src/main/.*"}, []string{"/C/src/main/Foo.txt"}, true},
		{"dir is literal", "my.module", []FilePattern{"/src/.*"}, []string{"/myxmodule/src/A.java"}, false},
		{"backslash changed path", "C", []FilePattern{"/src/main/.*"}, []string{`C\src\main\Foo.txt`}, true},
		{"double leading slash", "B", []FilePattern{"//src/main/.*"}, []string{"/B/src/main/X.java"}, true},
		{"double slash inside pattern", "B", []FilePattern{"/src//main/.*"}, []string{"/B/src/main/X.java"}, true},
		{"double slash at root", "", []FilePattern{"//src/main/.*"}, []string{"/src/main/X.java"}, true},
		{"glob", "C", []FilePattern{"glob:/src/**/*.go"}, []string{"/C/src/pkg/a.go"}, true},
		{"glob double leading slash", "C", []FilePattern{"glob://src/*.go"}, []string{"/C/src/a.go"}, true},
		{"glob full match", "C", []FilePattern{"glob:/src/*.go"}, []string{"/C/src/pkg/a.go"}, false},
		{"empty pattern list", "C", []FilePattern{}, []string{"/C/src/main/Foo.txt"}, false},
		{"no paths", "C", []FilePattern{"/.*"}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			matchers, err := Build(tt.dir, tt.patterns)
			if err != nil {
				t.Fatalf("Build(%q, %v) error: %v", tt.dir, tt.patterns, err)
			}
			if got := MatchesAny(tt.paths, matchers); got != tt.want {
				t.Errorf("MatchesAny(%v) = %v, want %v (matchers %v)", tt.paths, got, tt.want, matchers)
			}
		})
	}
}

func TestMatchesAny_Pure(t *testing.T) {
	t.Parallel()

	paths := []string{"/C/src/main/Foo.txt", "/B/README.md"}
	first, err := Build("C", DefaultPatterns())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	other, err := Build("B", DefaultPatterns())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	want := MatchesAny(paths, first)
	for range 10 {
		_ = MatchesAny(paths, other)
		again, err := Build("C", DefaultPatterns())
		if err != nil {
			t.Fatalf("Build() error: %v", err)
		}
		if got := MatchesAny(paths, again); got != want {
			t.Fatalf("MatchesAny() = %v after interleaved calls, want %v", got, want)
		}
	}
}

func TestBuild_InvalidPattern(t *testing.T) {
	t.Parallel()

	for _, p := range []FilePattern{"/src/(main", "", "glob:/src/[a"} {
		_, err := Build("C", []FilePattern{"/ok/.*", p})
		if !errors.Is(err, ErrInvalidPattern) {
			t.Errorf("Build(%q) error = %v, want ErrInvalidPattern", p, err)
			continue
		}
		var ipe *InvalidPatternError
		if !errors.As(err, &ipe) || ipe.Pattern != p || ipe.Module != "C" {
			t.Errorf("Build(%q) error = %#v, want InvalidPatternError for module C", p, err)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := Validate("/src/main/.*"); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
	if err := Validate("/src/("); !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("Validate() error = %v, want ErrInvalidPattern", err)
	}
}

func TestDefaultPatterns_ReturnsCopy(t *testing.T) {
	t.Parallel()

	got := DefaultPatterns()
	got[0] = "mutated"
	if DefaultPatterns()[0] == "mutated" {
		t.Error("DefaultPatterns() exposes package state")
	}
	if n := len(ModuleDefaultPatterns()); n != 3 {
		t.Errorf("len(ModuleDefaultPatterns()) = %d, want 3", n)
	}
}

func TestMatcher_ZeroValue(t *testing.T) {
	t.Parallel()

	var m Matcher
	if m.Match("/anything") {
		t.Error("zero Matcher matched")
	}
}

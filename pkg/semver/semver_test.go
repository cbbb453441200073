// SPDX-License-Identifier: MPL-2.0

package semver

import (
	"errors"
	"slices"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Version
		wantErr bool
	}{
		{input: "1.0.0", want: Version{Major: 1, Original: "1.0.0"}},
		{input: "v2.3.4", want: Version{Major: 2, Minor: 3, Patch: 4, Original: "v2.3.4"}},
		{input: "1.0.0-alpha.1", want: Version{Major: 1, Prerelease: "alpha.1", Original: "1.0.0-alpha.1"}},
		{input: "1.0.0-rc.1+build.5", want: Version{Major: 1, Prerelease: "rc.1", Build: "build.5", Original: "1.0.0-rc.1+build.5"}},
		{input: "0.0.1+20171013", want: Version{Patch: 1, Build: "20171013", Original: "0.0.1+20171013"}},
		{input: "nonsense", wantErr: true},
		{input: "1.0", wantErr: true},
		{input: "v1", wantErr: true},
		{input: "01.0.0", wantErr: true},
		{input: "1.0.0-", wantErr: true},
		{input: "1.0.0-01", wantErr: true},
		{input: "release-1.0.0", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) = %+v, want error", tt.input, got)
				}
				if !errors.Is(err, ErrInvalidVersion) {
					t.Errorf("errors.Is(err, ErrInvalidVersion) = false for %v", err)
				}
				var ive *InvalidVersionError
				if !errors.As(err, &ive) || ive.Value != tt.input {
					t.Errorf("expected InvalidVersionError for %q, got %v", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCompare_Precedence(t *testing.T) {
	t.Parallel()

	ordered := []string{
		"0.0.1",
		"0.1.0",
		"1.0.0-alpha",
		"1.0.0-alpha.1",
		"1.0.0-alpha.beta",
		"1.0.0-beta",
		"1.0.0-beta.2",
		"1.0.0-beta.11",
		"1.0.0-rc.1",
		"1.0.0",
		"1.0.1",
		"1.10.0",
		"2.0.0",
	}

	for i := 0; i < len(ordered)-1; i++ {
		lo := mustParse(t, ordered[i])
		hi := mustParse(t, ordered[i+1])
		if lo.Compare(hi) >= 0 {
			t.Errorf("expected %s < %s", lo, hi)
		}
		if hi.Compare(lo) <= 0 {
			t.Errorf("expected %s > %s", hi, lo)
		}
	}
}

func TestCompare_BuildMetadataIgnored(t *testing.T) {
	t.Parallel()

	a := mustParse(t, "1.0.0+one")
	b := mustParse(t, "1.0.0+two")
	if !a.Equal(b) {
		t.Errorf("expected %s and %s to have equal precedence", a, b)
	}
}

func TestSort_Deterministic(t *testing.T) {
	t.Parallel()

	inputs := [][]string{
		{"1.0.1", "0.0.1", "1.0.0", "v1.0.0"},
		{"v1.0.0", "1.0.0", "1.0.1", "0.0.1"},
		{"0.0.1", "v1.0.0", "1.0.1", "1.0.0"},
	}
	want := []string{"0.0.1", "1.0.0", "v1.0.0", "1.0.1"}

	for _, in := range inputs {
		versions := make([]Version, 0, len(in))
		for _, s := range in {
			versions = append(versions, mustParse(t, s))
		}
		Sort(versions)

		got := make([]string, 0, len(versions))
		for _, v := range versions {
			got = append(got, v.String())
		}
		if !slices.Equal(got, want) {
			t.Errorf("Sort(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestString_WithoutOriginal(t *testing.T) {
	t.Parallel()

	v := Version{Major: 3, Minor: 1, Patch: 4, Prerelease: "rc.1"}
	if got := v.String(); got != "3.1.4-rc.1" {
		t.Errorf("String() = %q, want %q", got, "3.1.4-rc.1")
	}
}

func mustParse(t *testing.T, s string) Version {
	t.Helper()
	v, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return v
}

// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

const testSchema = `
#Doc: close({
	name:      string & !=""
	count?:    int & >=0
	patterns?: [...string]
})
`

type testDoc struct {
	Name     string    `json:"name"`
	Count    int       `json:"count"`
	Patterns *[]string `json:"patterns"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	t.Run("valid document", func(t *testing.T) {
		t.Parallel()
		result, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`name: "app", count: 2`), "#Doc")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Value.Name != "app" || result.Value.Count != 2 {
			t.Errorf("unexpected value: %+v", result.Value)
		}
		if result.Value.Patterns != nil {
			t.Errorf("absent list decoded as %v, want nil", *result.Value.Patterns)
		}
		if !result.Unified.Exists() {
			t.Error("expected unified value")
		}
	})

	t.Run("empty list stays distinct from absent", func(t *testing.T) {
		t.Parallel()
		result, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`name: "app", patterns: []`), "#Doc")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Value.Patterns == nil || len(*result.Value.Patterns) != 0 {
			t.Errorf("expected an empty non-nil list, got %v", result.Value.Patterns)
		}
	})

	t.Run("schema violation names the field", func(t *testing.T) {
		t.Parallel()
		_, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`name: "app", count: -1`), "#Doc",
			WithFilename("doc.cue"))
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected *ValidationError, got %T: %v", err, err)
		}
		if !strings.Contains(err.Error(), "doc.cue") || !strings.Contains(err.Error(), "count") {
			t.Errorf("error should name file and field, got: %v", err)
		}
	})

	t.Run("unknown field rejected by closed schema", func(t *testing.T) {
		t.Parallel()
		_, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`name: "app", extra: true`), "#Doc")
		if err == nil {
			t.Fatal("expected error for unknown field")
		}
	})

	t.Run("syntax error", func(t *testing.T) {
		t.Parallel()
		_, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`name: "app`), "#Doc")
		if err == nil {
			t.Fatal("expected syntax error")
		}
	})

	t.Run("incomplete value when concrete", func(t *testing.T) {
		t.Parallel()
		_, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`count: 1`), "#Doc")
		if err == nil {
			t.Fatal("expected error for missing name")
		}
	})

	t.Run("missing definition", func(t *testing.T) {
		t.Parallel()
		_, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`name: "app"`), "#Missing")
		if err == nil || !strings.Contains(err.Error(), "#Missing") {
			t.Fatalf("expected missing definition error, got %v", err)
		}
	})

	t.Run("size limit", func(t *testing.T) {
		t.Parallel()
		data := []byte(`name: "` + strings.Repeat("x", 64) + `"`)
		_, err := ParseAndDecode[testDoc]([]byte(testSchema), data, "#Doc", WithMaxFileSize(16))
		if !errors.Is(err, ErrFileTooLarge) {
			t.Fatalf("expected ErrFileTooLarge, got %v", err)
		}
	})
}

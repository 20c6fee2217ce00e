// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Task: {
	name?:   string
	format?: "esm" | "cjs" | "iife"
	input?: [...string]
}
`

type testTask struct {
	Name   string   `json:"name,omitempty"`
	Format string   `json:"format,omitempty"`
	Input  []string `json:"input,omitempty"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	t.Run("CUE source decodes", func(t *testing.T) {
		t.Parallel()
		data := []byte(`name: "lib", format: "esm", input: ["src/index.ts"]`)
		result, err := ParseAndDecode[testTask]([]byte(testSchema), data, "#Task", WithFilename("forge.cue"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Value.Format != "esm" || len(result.Value.Input) != 1 {
			t.Errorf("unexpected value: %+v", result.Value)
		}
	})

	t.Run("JSON source decodes", func(t *testing.T) {
		t.Parallel()
		data := []byte(`{"format": "cjs"}`)
		result, err := ParseAndDecode[testTask]([]byte(testSchema), data, "#Task", WithFilename("forge.json"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Value.Format != "cjs" {
			t.Errorf("Format = %q, want cjs", result.Value.Format)
		}
	})

	t.Run("schema violation names the field", func(t *testing.T) {
		t.Parallel()
		data := []byte(`format: "umd"`)
		_, err := ParseAndDecode[testTask]([]byte(testSchema), data, "#Task", WithFilename("forge.cue"))
		if err == nil {
			t.Fatal("expected validation error")
		}
		if !strings.Contains(err.Error(), "forge.cue") || !strings.Contains(err.Error(), "format") {
			t.Errorf("error should mention file and field, got: %v", err)
		}
	})

	t.Run("oversized input rejected", func(t *testing.T) {
		t.Parallel()
		_, err := ParseAndDecode[testTask]([]byte(testSchema), []byte(`name: "x"`), "#Task", WithMaxFileSize(2))
		if err == nil {
			t.Fatal("expected size error")
		}
	})
}

func TestValidateAndDecode(t *testing.T) {
	t.Parallel()

	value := map[string]any{"format": "iife", "input": []any{"a.ts", "b.ts"}}
	result, err := ValidateAndDecode[testTask]([]byte(testSchema), value, "#Task", WithFilename("forge.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Value.Format != "iife" || len(result.Value.Input) != 2 {
		t.Errorf("unexpected value: %+v", result.Value)
	}

	_, err = ValidateAndDecode[testTask]([]byte(testSchema), map[string]any{"format": 3}, "#Task", WithFilename("forge.yaml"))
	if err == nil || !strings.Contains(err.Error(), "forge.yaml") {
		t.Errorf("expected validation error naming forge.yaml, got %v", err)
	}
}

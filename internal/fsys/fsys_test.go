// SPDX-License-Identifier: MPL-2.0

package fsys

import (
	"path/filepath"
	"slices"
	"testing"
)

func TestMemory_WriteReadRoundTrip(t *testing.T) {
	t.Parallel()

	m := Memory()
	path := filepath.Join(string(filepath.Separator), "root", "dist", "index.js")

	if err := m.MkdirAll(filepath.Dir(path)); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	want := []byte("export const π = 3.14;\n")
	if err := m.WriteFile(path, want); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := m.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("ReadFile() = %q, want %q", got, want)
	}
	if !IsFile(m, path) || IsDir(m, path) {
		t.Error("path should be a regular file")
	}
}

func TestMemory_RemoveAllMissing(t *testing.T) {
	t.Parallel()

	if err := Memory().RemoveAll("/does/not/exist"); err != nil {
		t.Errorf("RemoveAll() on missing path error = %v", err)
	}
}

func TestMemory_ReadDir(t *testing.T) {
	t.Parallel()

	m := Memory()
	for _, p := range []string{"/pkg/a.ts", "/pkg/b.ts"} {
		if err := m.WriteFile(p, []byte("x")); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.MkdirAll("/pkg/sub"); err != nil {
		t.Fatal(err)
	}

	entries, err := m.ReadDir("/pkg")
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	dirs := 0
	for _, e := range entries {
		if e.IsDir() {
			dirs++
		}
	}
	if dirs != 1 {
		t.Errorf("dirs = %d, want 1", dirs)
	}
}

func TestOS_Realpath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	o := OS()
	file := filepath.Join(dir, "a.txt")
	if err := o.WriteFile(file, []byte("a")); err != nil {
		t.Fatal(err)
	}

	resolved, err := o.Realpath(file)
	if err != nil {
		t.Fatalf("Realpath() error = %v", err)
	}
	if !filepath.IsAbs(resolved) {
		t.Errorf("Realpath() = %q, want absolute", resolved)
	}
	if _, err := o.Realpath(filepath.Join(dir, "missing")); err == nil {
		t.Error("Realpath() on missing file should fail")
	}
}

func TestGlob(t *testing.T) {
	t.Parallel()

	m := Memory()
	root := filepath.Join(string(filepath.Separator), "proj")
	for _, rel := range []string{
		"src/index.ts",
		"src/util/a.ts",
		"src/util/b.js",
		"src/util/deep/c.ts",
		"src/node_modules/dep/index.ts",
		"README.md",
	} {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := m.MkdirAll(filepath.Dir(p)); err != nil {
			t.Fatal(err)
		}
		if err := m.WriteFile(p, nil); err != nil {
			t.Fatal(err)
		}
	}
	abs := func(rels ...string) []string {
		out := make([]string, len(rels))
		for i, r := range rels {
			out[i] = filepath.Join(root, filepath.FromSlash(r))
		}
		return out
	}

	tests := []struct {
		pattern string
		want    []string
	}{
		{"src/**/*.ts", abs("src/index.ts", "src/util/a.ts", "src/util/deep/c.ts")},
		{"src/util/*", abs("src/util/a.ts", "src/util/b.js")},
		{"src/util/*.{js,ts}", abs("src/util/a.ts", "src/util/b.js")},
		{"src/missing.ts", abs("src/missing.ts")},
		{"lib/**/*.ts", nil},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			t.Parallel()
			got, err := Glob(m, root, tt.pattern)
			if err != nil {
				t.Fatalf("Glob() error = %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Glob(%q) = %v, want %v", tt.pattern, got, tt.want)
			}
		})
	}

	if _, err := Glob(m, root, "src/[.ts"); err == nil {
		t.Error("Glob() with bad pattern expected error")
	}
}

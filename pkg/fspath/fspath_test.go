// SPDX-License-Identifier: MPL-2.0

package fspath_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/invowk/forge/pkg/fspath"
	"github.com/invowk/forge/pkg/types"
)

func TestRel(t *testing.T) {
	t.Parallel()

	base := types.FilesystemPath(filepath.Join(string(os.PathSeparator), "work", "dist"))
	target := types.FilesystemPath(filepath.Join(string(base), "nested", "index.js"))
	got, err := fspath.Rel(base, target)
	if err != nil {
		t.Fatalf("Rel() error = %v", err)
	}
	if got != "nested/index.js" {
		t.Errorf("Rel() = %q, want %q", got, "nested/index.js")
	}
}

func TestRoot(t *testing.T) {
	t.Parallel()

	sep := string(os.PathSeparator)
	cwd := types.FilesystemPath(filepath.Join(sep, "work"))

	tests := []struct {
		name string
		in   types.FilesystemPath
		want types.FilesystemPath
	}{
		{"empty uses cwd", "", types.FilesystemPath(filepath.Join(sep, "work") + sep)},
		{"relative joins cwd", "pkg", types.FilesystemPath(filepath.Join(sep, "work", "pkg") + sep)},
		{"absolute kept", types.FilesystemPath(filepath.Join(sep, "other")), types.FilesystemPath(filepath.Join(sep, "other") + sep)},
		{"trailing separator not doubled", types.FilesystemPath(filepath.Join(sep, "other") + sep), types.FilesystemPath(filepath.Join(sep, "other") + sep)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := fspath.Root(tt.in, cwd)
			if got != tt.want {
				t.Errorf("Root(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if !got.HasTrailingSeparator() || !got.IsAbs() {
				t.Errorf("Root(%q) = %q violates root invariant", tt.in, got)
			}
		})
	}
}

func TestTrimSeparator(t *testing.T) {
	t.Parallel()

	sep := string(os.PathSeparator)
	if got := fspath.TrimSeparator(types.FilesystemPath("a" + sep)); got != "a" {
		t.Errorf("TrimSeparator() = %q, want %q", got, "a")
	}
	if got := fspath.TrimSeparator(types.FilesystemPath(sep)); got != types.FilesystemPath(sep) {
		t.Errorf("TrimSeparator(root) = %q, want %q", got, sep)
	}
}

// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/invowk/forge/internal/fsys"
)

// MustWriteFile writes content to path on the host filesystem, creating
// parent directories. The test fails immediately if the operation fails.
func MustWriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// WriteFiles stores every path → content pair in files, creating parent
// directories. The test fails immediately on the first error.
func WriteFiles(t testing.TB, files fsys.FileSystem, contents map[string]string) {
	t.Helper()
	for p, c := range contents {
		if err := files.MkdirAll(filepath.Dir(p)); err != nil {
			t.Fatalf("MkdirAll(%s) error = %v", p, err)
		}
		if err := files.WriteFile(p, []byte(c)); err != nil {
			t.Fatalf("WriteFile(%s) error = %v", p, err)
		}
	}
}

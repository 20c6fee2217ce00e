// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/invowk/forge/internal/fsys"
)

func TestMustWriteFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a", "b", "index.js")
	MustWriteFile(t, path, "export default 1;\n")

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "export default 1;\n" {
		t.Errorf("content = %q", got)
	}
}

func TestWriteFiles(t *testing.T) {
	t.Parallel()

	mem := fsys.Memory()
	WriteFiles(t, mem, map[string]string{
		"/proj/src/index.ts": "export {};\n",
		"/proj/package.json": "{}",
	})

	for _, p := range []string{"/proj/src/index.ts", "/proj/package.json"} {
		if _, err := mem.ReadFile(p); err != nil {
			t.Errorf("ReadFile(%s) error = %v", p, err)
		}
	}
}

// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"testing"

	"github.com/invowk/forge/internal/fsys"
)

type countingFS struct {
	fsys.FileSystem
	reads int
}

func (c *countingFS) ReadFile(path string) ([]byte, error) {
	c.reads++
	return c.FileSystem.ReadFile(path)
}

func TestCache_NearestAndMemoizes(t *testing.T) {
	t.Parallel()

	mem := fsys.Memory()
	if err := mem.WriteFile("/proj/package.json", []byte(`{"name":"app","type":"module","browser":"./b.js"}`)); err != nil {
		t.Fatal(err)
	}
	if err := mem.MkdirAll("/proj/src/deep"); err != nil {
		t.Fatal(err)
	}
	cfs := &countingFS{FileSystem: mem}
	cache := NewCache()

	pkg, err := cache.Nearest(cfs, "/proj/src/deep")
	if err != nil {
		t.Fatalf("Nearest() error = %v", err)
	}
	if pkg == nil || pkg.Name != "app" || !pkg.IsModule() || pkg.Dir() != "/proj" {
		t.Fatalf("Nearest() = %+v", pkg)
	}
	if v, ok := pkg.StringField("browser"); !ok || v != "./b.js" {
		t.Errorf("StringField(browser) = %q, %v", v, ok)
	}

	readsAfterFirst := cfs.reads
	if _, err := cache.Nearest(cfs, "/proj/src/deep"); err != nil {
		t.Fatal(err)
	}
	if cfs.reads != readsAfterFirst {
		t.Errorf("second lookup read %d more files, want 0", cfs.reads-readsAfterFirst)
	}

	cache.Reset()
	if cache.Len() != 0 {
		t.Errorf("Len() after Reset = %d", cache.Len())
	}
}

func TestCache_NoManifest(t *testing.T) {
	t.Parallel()

	pkg, err := NewCache().Nearest(fsys.Memory(), "/nowhere")
	if err != nil || pkg != nil {
		t.Errorf("Nearest() = %v, %v, want nil, nil", pkg, err)
	}
}

func TestCache_ParseError(t *testing.T) {
	t.Parallel()

	mem := fsys.Memory()
	if err := mem.WriteFile("/bad/package.json", []byte(`{"name":`)); err != nil {
		t.Fatal(err)
	}
	_, err := NewCache().LoadDir(mem, "/bad")
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Path != "/bad/package.json" {
		t.Errorf("LoadDir() error = %v, want *ParseError", err)
	}
}

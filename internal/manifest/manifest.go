// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/invowk/forge/internal/fsys"
)

// FileName is the manifest file looked up in package directories.
const FileName = "package.json"

type (
	// PackageJSON is the subset of package.json the resolver reads.
	// Fields keeps every top-level value so arbitrary main fields can be
	// looked up by name.
	PackageJSON struct {
		// Path is the absolute path of the manifest file.
		Path string `json:"-"`

		Name    string          `json:"name"`
		Version string          `json:"version"`
		Type    string          `json:"type"`
		Main    string          `json:"main"`
		Module  string          `json:"module"`
		Exports json.RawMessage `json:"exports"`

		Fields map[string]json.RawMessage `json:"-"`
	}

	// Cache memoizes parsed manifests by absolute path, including misses.
	// A Cache is owned by one invocation and is not safe for concurrent use.
	Cache struct {
		entries map[string]*PackageJSON
	}

	// ParseError reports a manifest that exists but is not valid JSON.
	ParseError struct {
		Path string
		Err  error
	}
)

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*PackageJSON)}
}

// Dir returns the package directory containing the manifest.
func (p *PackageJSON) Dir() string {
	return filepath.Dir(p.Path)
}

// IsModule reports whether the package declares "type": "module".
func (p *PackageJSON) IsModule() bool {
	return p.Type == "module"
}

// StringField returns the top-level field name when it is a string.
func (p *PackageJSON) StringField(name string) (string, bool) {
	raw, ok := p.Fields[name]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

// Parse decodes manifest data read from path.
func Parse(path string, data []byte) (*PackageJSON, error) {
	var pkg PackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if err := json.Unmarshal(data, &pkg.Fields); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	pkg.Path = path
	return &pkg, nil
}

// Load returns the manifest at path, reading it from files at most once.
// A missing file yields (nil, nil).
func (c *Cache) Load(files fsys.FileSystem, path string) (*PackageJSON, error) {
	if pkg, ok := c.entries[path]; ok {
		return pkg, nil
	}
	data, err := files.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.entries[path] = nil
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	pkg, err := Parse(path, data)
	if err != nil {
		return nil, err
	}
	c.entries[path] = pkg
	return pkg, nil
}

// LoadDir returns the manifest directly inside dir, if any.
func (c *Cache) LoadDir(files fsys.FileSystem, dir string) (*PackageJSON, error) {
	return c.Load(files, filepath.Join(dir, FileName))
}

// Nearest walks from dir up to the filesystem root and returns the first
// manifest found, or nil.
func (c *Cache) Nearest(files fsys.FileSystem, dir string) (*PackageJSON, error) {
	dir = filepath.Clean(dir)
	for {
		pkg, err := c.LoadDir(files, dir)
		if err != nil || pkg != nil {
			return pkg, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Len returns the number of cached lookups, hits and misses alike.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Reset drops every cached entry.
func (c *Cache) Reset() {
	clear(c.entries)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

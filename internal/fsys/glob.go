// SPDX-License-Identifier: MPL-2.0

package fsys

import (
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// HasMeta reports whether pattern contains glob syntax.
func HasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// Glob expands pattern, relative to root unless absolute, into the sorted
// absolute paths of the regular files it matches. A pattern without glob
// syntax is returned as a single path whether or not it exists.
func Glob(files FileSystem, root, pattern string) ([]string, error) {
	if !filepath.IsAbs(pattern) {
		pattern = filepath.Join(root, pattern)
	}
	if !HasMeta(pattern) {
		return []string{filepath.Clean(pattern)}, nil
	}

	slashed := filepath.ToSlash(pattern)
	if !doublestar.ValidatePattern(slashed) {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}
	base, rest := doublestar.SplitPattern(slashed)

	var matches []string
	var walk func(dir, rel string) error
	walk = func(dir, rel string) error {
		entries, err := files.ReadDir(filepath.FromSlash(dir))
		if err != nil {
			return err
		}
		for _, e := range entries {
			childRel := path.Join(rel, e.Name())
			child := path.Join(dir, e.Name())
			if e.IsDir() {
				if e.Name() == "node_modules" && !strings.Contains(rest, "node_modules") {
					continue
				}
				if err := walk(child, childRel); err != nil {
					return err
				}
				continue
			}
			ok, err := doublestar.Match(rest, childRel)
			if err != nil {
				return err
			}
			if ok {
				matches = append(matches, filepath.FromSlash(child))
			}
		}
		return nil
	}

	if !IsDir(files, filepath.FromSlash(base)) {
		return nil, nil
	}
	if err := walk(base, ""); err != nil {
		return nil, err
	}
	slices.Sort(matches)
	return matches, nil
}

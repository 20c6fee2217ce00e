// SPDX-License-Identifier: MPL-2.0

// Package fspath holds the types.FilesystemPath helpers used by build tasks:
// root normalization and slash-separated relative output names.
package fspath

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/invowk/forge/pkg/types"
)

// Rel wraps filepath.Rel and always returns a slash-separated path, which is
// the form output file names use regardless of host OS.
func Rel(base, target types.FilesystemPath) (string, error) {
	rel, err := filepath.Rel(string(base), string(target))
	if err != nil {
		return "", fmt.Errorf("relativizing %s against %s: %w", target, base, err)
	}
	return filepath.ToSlash(rel), nil
}

// Root normalizes a task root: relative values are resolved against cwd, the
// result is cleaned, and exactly one trailing separator is appended.
func Root(p types.FilesystemPath, cwd types.FilesystemPath) types.FilesystemPath {
	switch {
	case p == "":
		p = cwd
	case !p.IsAbs():
		p = types.FilesystemPath(filepath.Join(string(cwd), string(p)))
	}
	cleaned := types.FilesystemPath(filepath.Clean(string(p)))
	if cleaned.HasTrailingSeparator() {
		return cleaned
	}
	return cleaned + types.FilesystemPath(string(os.PathSeparator))
}

// TrimSeparator removes a trailing separator unless the path is the
// filesystem root.
func TrimSeparator(p types.FilesystemPath) types.FilesystemPath {
	if len(p) > 1 && p.HasTrailingSeparator() {
		return p[:len(p)-1]
	}
	return p
}

// SPDX-License-Identifier: MPL-2.0

package backend

import (
	"path/filepath"
	"strings"
)

var extensionLoaders = map[string]string{
	".js":   "js",
	".mjs":  "js",
	".cjs":  "js",
	".jsx":  "jsx",
	".ts":   "ts",
	".mts":  "ts",
	".cts":  "ts",
	".tsx":  "tsx",
	".json": "json",
	".css":  "css",
	".txt":  "text",
}

// LoaderName returns the loader name for a file path from its extension,
// honoring task overrides keyed by extension.
func LoaderName(path string, overrides map[string]string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if name, ok := overrides[ext]; ok {
		return name
	}
	if name, ok := extensionLoaders[ext]; ok {
		return name
	}
	return "file"
}

// IsScript reports whether a loader produces JavaScript that the
// transpiler should process.
func IsScript(loader string) bool {
	switch loader {
	case "js", "jsx", "ts", "tsx":
		return true
	default:
		return false
	}
}

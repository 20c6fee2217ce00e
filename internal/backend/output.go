// SPDX-License-Identifier: MPL-2.0

package backend

import (
	"path"
	"strings"
)

const (
	// KindChunk is generated code.
	KindChunk OutputKind = "chunk"
	// KindAsset is opaque content such as a source map or a declaration file.
	KindAsset OutputKind = "asset"
)

type (
	// OutputKind distinguishes chunks from assets.
	OutputKind string

	// Output is one artifact of a build. FileName is slash-separated and
	// relative to the task output directory. Fields are declared in key order
	// so JSON encoding is canonical.
	Output struct {
		Bytes    int        `json:"bytes"`
		Code     string     `json:"code,omitempty"`
		Exports  []string   `json:"exports,omitempty"`
		FileName string     `json:"file_name"`
		Imports  []string   `json:"imports,omitempty"`
		IsEntry  bool       `json:"is_entry,omitempty"`
		Kind     OutputKind `json:"kind"`
		Module   string     `json:"module,omitempty"`
		Source   []byte     `json:"source,omitempty"`

		// Written is set when the bundler's native writer already stored
		// the artifact.
		Written bool `json:"-"`
	}

	// Input is a module that took part in a bundle.
	Input struct {
		Path    string
		IsEntry bool
	}
)

// NewChunk returns a chunk artifact.
func NewChunk(fileName, code string) *Output {
	return &Output{Kind: KindChunk, FileName: fileName, Code: code}
}

// NewAsset returns an asset artifact.
func NewAsset(fileName string, source []byte) *Output {
	return &Output{Kind: KindAsset, FileName: fileName, Source: source}
}

// Content returns the bytes that are written for the artifact: the UTF-8
// code of a chunk or the raw source of an asset.
func (o *Output) Content() []byte {
	if o.Kind == KindChunk {
		return []byte(o.Code)
	}
	return o.Source
}

// IsTypeScript reports whether p names a TypeScript source file that can
// produce a declaration. Declaration files themselves are excluded.
func IsTypeScript(p string) bool {
	base := path.Base(strings.ReplaceAll(p, `\`, "/"))
	for _, ext := range []string{".d.ts", ".d.mts", ".d.cts"} {
		if strings.HasSuffix(base, ext) {
			return false
		}
	}
	switch path.Ext(base) {
	case ".ts", ".tsx", ".mts", ".cts":
		return true
	default:
		return false
	}
}

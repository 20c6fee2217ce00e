// SPDX-License-Identifier: MPL-2.0

package build

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/invowk/forge/internal/backend"
	"github.com/invowk/forge/internal/diag"
)

const testRoot = "/proj"

var importPattern = regexp.MustCompile(`(?m)^import (?:.* from )?['"]([^'"]+)['"]`)

type (
	// fakeTranspiler strips ": string" annotations and turns markers in
	// the source into messages.
	fakeTranspiler struct {
		calls map[string]int
	}

	// fakeBundler walks import statements through the resolve and load
	// callbacks and emits one chunk per entry.
	fakeBundler struct {
		panicOnBuild bool
		logs         []diag.BundlerLog
		handles      []*fakeHandle
	}

	fakeHandle struct {
		req         backend.BundleRequest
		logs        []diag.BundlerLog
		seen        map[string]bool
		inputs      []backend.Input
		outputs     []*backend.Output
		resolutions map[string]backend.Resolution
		closed      bool
	}
)

func newFakeTranspiler() *fakeTranspiler {
	return &fakeTranspiler{calls: map[string]int{}}
}

func (f *fakeTranspiler) Transform(_ context.Context, req backend.TransformRequest) (*backend.TransformResult, error) {
	f.calls[req.Path]++
	res := &backend.TransformResult{Code: strings.ReplaceAll(req.Source, ": string", "")}
	if i := strings.Index(req.Source, "@@warn"); i >= 0 {
		res.Warnings = append(res.Warnings, diag.TranspilerMessage{
			ID:       "fake-warning",
			Text:     "suspicious marker",
			Location: &diag.TranspilerLocation{File: req.Path, Line: 1, Column: i},
		})
	}
	if i := strings.Index(req.Source, "@@error"); i >= 0 {
		res.Errors = append(res.Errors, diag.TranspilerMessage{
			Text:     "Unexpected marker",
			Location: &diag.TranspilerLocation{File: req.Path, Line: 1, Column: i},
		})
	}
	return res, nil
}

func (b *fakeBundler) Build(ctx context.Context, req backend.BundleRequest) (backend.Handle, error) {
	if b.panicOnBuild {
		panic("bundler exploded")
	}
	h := &fakeHandle{
		req:         req,
		logs:        b.logs,
		seen:        map[string]bool{},
		resolutions: map[string]backend.Resolution{},
	}
	b.handles = append(b.handles, h)
	for _, e := range req.Entries {
		res, err := req.Resolve(ctx, e, "", true)
		if err != nil {
			return h, err
		}
		if err := h.visit(ctx, res.ID, true); err != nil {
			return h, err
		}
	}
	return h, nil
}

func (h *fakeHandle) visit(ctx context.Context, path string, entry bool) error {
	if h.seen[path] {
		return nil
	}
	h.seen[path] = true

	lr, err := h.req.Load(ctx, path)
	if err != nil {
		return err
	}
	h.inputs = append(h.inputs, backend.Input{Path: path, IsEntry: entry})
	if entry {
		base := filepath.Base(path)
		name := strings.TrimSuffix(base, filepath.Ext(base)) + ".js"
		out := backend.NewChunk(name, lr.Contents)
		out.IsEntry = true
		out.Module = path
		out.Written = h.req.NativeWrite
		h.outputs = append(h.outputs, out)
	}

	for _, m := range importPattern.FindAllStringSubmatch(lr.Contents, -1) {
		res, err := h.req.Resolve(ctx, m[1], path, false)
		if err != nil {
			return err
		}
		if res == nil {
			continue
		}
		h.resolutions[m[1]] = *res
		if res.External {
			continue
		}
		if err := h.visit(ctx, res.ID, false); err != nil {
			return err
		}
	}
	return nil
}

func (h *fakeHandle) Inputs() []backend.Input { return h.inputs }

func (h *fakeHandle) Logs() []diag.BundlerLog { return h.logs }

func (h *fakeHandle) Generate(context.Context) ([]*backend.Output, error) {
	return h.outputs, nil
}

func (h *fakeHandle) Close() { h.closed = true }

func fakeOptions(tr *fakeTranspiler, b *fakeBundler) Options {
	return Options{Cwd: testRoot, Transpiler: tr, Bundler: b}
}

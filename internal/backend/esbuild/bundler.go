// SPDX-License-Identifier: MPL-2.0

package esbuild

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/invowk/forge/internal/backend"
	"github.com/invowk/forge/internal/diag"
	"github.com/invowk/forge/pkg/fspath"
	"github.com/invowk/forge/pkg/types"
)

// PluginName identifies the bridge plugin in esbuild messages.
const PluginName = "forge"

type (
	// Bundler implements backend.Bundler with an esbuild build context.
	Bundler struct{}

	handle struct {
		ctx     api.BuildContext
		req     backend.BundleRequest
		workDir string

		// mu serializes plugin callbacks. Resolve and load hooks share the
		// invocation caches, which are not safe for concurrent use.
		mu         sync.Mutex
		callbackErr error

		result *api.BuildResult
		logs   []diag.BundlerLog
		meta   *metafile
	}

	metafile struct {
		Inputs  map[string]metaInput  `json:"inputs"`
		Outputs map[string]metaOutput `json:"outputs"`
	}

	metaInput struct {
		Bytes int `json:"bytes"`
	}

	metaOutput struct {
		Bytes      int          `json:"bytes"`
		EntryPoint string       `json:"entryPoint"`
		Exports    []string     `json:"exports"`
		Imports    []metaImport `json:"imports"`
	}

	metaImport struct {
		Path     string `json:"path"`
		Kind     string `json:"kind"`
		External bool   `json:"external"`
	}

	// BuildError reports a bundle that finished with errors.
	BuildError struct {
		Messages []api.Message
	}
)

// NewBundler returns a Bundler.
func NewBundler() *Bundler {
	return &Bundler{}
}

// Build creates the esbuild context and, unless the bundler writes its own
// outputs, builds the module graph immediately. Rendering to disk with the
// native writer is deferred to Generate so that output directories can be
// cleaned first.
func (*Bundler) Build(ctx context.Context, req backend.BundleRequest) (backend.Handle, error) {
	target, engineList, err := toTargets(req.Target)
	if err != nil {
		return nil, err
	}

	h := &handle{req: req, workDir: filepath.Clean(req.Root)}
	opts := api.BuildOptions{
		EntryPoints: req.Entries,
		// Imports reach the plugin only while bundling. Without
		// req.Bundle the plugin keeps script imports external instead.
		Bundle:            true,
		Write:             req.NativeWrite,
		Metafile:          true,
		Outdir:            req.Outdir,
		AbsWorkingDir:     h.workDir,
		Format:            toFormat(req.Format),
		Platform:          toPlatform(req.Platform),
		Target:            target,
		Engines:           engineList,
		Define:            req.Define,
		External:          req.External,
		MinifyWhitespace:  req.Minify,
		MinifyIdentifiers: req.Minify,
		MinifySyntax:      req.Minify,
		LogLevel:          api.LogLevelSilent,
		Plugins:           []api.Plugin{h.plugin(ctx)},
	}
	if req.Sourcemap {
		opts.Sourcemap = api.SourceMapLinked
	}

	bctx, cerr := api.Context(opts)
	if cerr != nil {
		h.logs = toBundlerLogs(cerr.Errors, diag.BundlerError)
		return nil, &BuildError{Messages: cerr.Errors}
	}
	h.ctx = bctx

	if !req.NativeWrite {
		if err := h.rebuild(ctx); err != nil {
			return h, err
		}
	}
	return h, nil
}

func (h *handle) plugin(ctx context.Context) api.Plugin {
	return api.Plugin{
		Name: PluginName,
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: `.*`}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
				h.mu.Lock()
				defer h.mu.Unlock()

				isEntry := args.Kind == api.ResolveEntryPoint
				res, err := h.req.Resolve(ctx, args.Path, args.Importer, isEntry)
				if err != nil {
					h.recordErr(err)
					return api.OnResolveResult{}, err
				}
				switch {
				case res == nil:
					return api.OnResolveResult{}, nil
				case res.External:
					return api.OnResolveResult{Path: res.ID, External: true}, nil
				case !h.req.Bundle && !isEntry && isScriptModule(res.ID) && filepath.IsAbs(args.Importer):
					return api.OnResolveResult{Path: outputSpecifier(args.Importer, res.ID), External: true}, nil
				default:
					return api.OnResolveResult{Path: res.ID, Namespace: "file"}, nil
				}
			})

			build.OnLoad(api.OnLoadOptions{Filter: `.*`, Namespace: "file"}, func(args api.OnLoadArgs) (api.OnLoadResult, error) {
				h.mu.Lock()
				defer h.mu.Unlock()

				loaded, err := h.req.Load(ctx, args.Path)
				if err != nil {
					h.recordErr(err)
					return api.OnLoadResult{}, err
				}
				contents := loaded.Contents
				return api.OnLoadResult{
					Contents:   &contents,
					Loader:     toLoader(loaded.Loader),
					ResolveDir: filepath.Dir(args.Path),
				}, nil
			})
		},
	}
}

// isScriptModule reports whether p is a module file rendered to its own
// chunk when not bundling.
func isScriptModule(p string) bool {
	return filepath.IsAbs(p) && backend.IsScript(backend.LoaderName(p, nil))
}

// outputSpecifier returns the import path from the chunk of importer to the
// chunk of target. Chunks keep the source layout below the output
// directory and take the .js extension.
func outputSpecifier(importer, target string) string {
	rel, err := filepath.Rel(filepath.Dir(importer), target)
	if err != nil {
		return target
	}
	rel = filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)) + ".js")
	if !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel
}

// recordErr keeps the first callback error so it can be returned with its
// original type instead of as esbuild message text.
func (h *handle) recordErr(err error) {
	if h.callbackErr == nil {
		h.callbackErr = err
	}
}

func (h *handle) rebuild(ctx context.Context) error {
	stop := context.AfterFunc(ctx, h.ctx.Cancel)
	result := h.ctx.Rebuild()
	stop()

	h.result = &result
	// Callback errors are returned to the caller as values, not logged.
	errs := slices.DeleteFunc(slices.Clone(result.Errors), func(m api.Message) bool {
		return m.PluginName == PluginName
	})
	h.logs = append(h.logs, toBundlerLogs(errs, diag.BundlerError)...)
	h.logs = append(h.logs, toBundlerLogs(result.Warnings, diag.BundlerWarn)...)

	if result.Metafile != "" {
		var meta metafile
		if err := json.Unmarshal([]byte(result.Metafile), &meta); err != nil {
			return fmt.Errorf("parsing esbuild metafile: %w", err)
		}
		h.meta = &meta
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	callbackErr := h.callbackErr
	h.mu.Unlock()
	if callbackErr != nil {
		return callbackErr
	}
	if len(result.Errors) > 0 {
		return &BuildError{Messages: result.Errors}
	}
	return nil
}

func (h *handle) Inputs() []backend.Input {
	if h.meta == nil {
		return nil
	}
	entries := make(map[string]struct{}, len(h.req.Entries))
	for _, e := range h.req.Entries {
		entries[filepath.Clean(e)] = struct{}{}
	}
	inputs := make([]backend.Input, 0, len(h.meta.Inputs))
	for key := range h.meta.Inputs {
		p := h.abs(key)
		_, isEntry := entries[p]
		inputs = append(inputs, backend.Input{Path: p, IsEntry: isEntry})
	}
	slices.SortFunc(inputs, func(a, b backend.Input) int { return strings.Compare(a.Path, b.Path) })
	return inputs
}

func (h *handle) Logs() []diag.BundlerLog {
	return h.logs
}

// Generate returns the rendered artifacts. With the native writer enabled
// this is where esbuild builds and writes them.
func (h *handle) Generate(ctx context.Context) ([]*backend.Output, error) {
	if h.result == nil {
		if err := h.rebuild(ctx); err != nil {
			return nil, err
		}
	}

	outputs := make([]*backend.Output, 0, len(h.result.OutputFiles))
	for _, f := range h.result.OutputFiles {
		name, err := fspath.Rel(types.FilesystemPath(h.req.Outdir), types.FilesystemPath(f.Path))
		if err != nil {
			return nil, err
		}

		var out *backend.Output
		switch filepath.Ext(f.Path) {
		case ".js", ".mjs", ".cjs":
			out = backend.NewChunk(name, string(f.Contents))
			h.annotate(out, f.Path)
		default:
			out = backend.NewAsset(name, f.Contents)
		}
		out.Written = h.req.NativeWrite
		outputs = append(outputs, out)
	}
	return outputs, nil
}

// annotate copies entry, export and import information from the metafile.
func (h *handle) annotate(out *backend.Output, path string) {
	if h.meta == nil {
		return
	}
	for key, meta := range h.meta.Outputs {
		if h.abs(key) != filepath.Clean(path) {
			continue
		}
		out.Exports = slices.Clone(meta.Exports)
		for _, imp := range meta.Imports {
			out.Imports = append(out.Imports, imp.Path)
		}
		if meta.EntryPoint != "" {
			out.IsEntry = true
			out.Module = h.abs(meta.EntryPoint)
		}
		return
	}
}

func (h *handle) Close() {
	if h.ctx != nil {
		h.ctx.Dispose()
	}
}

// abs converts a metafile key, relative to the working directory and
// optionally namespace-prefixed, to an absolute path.
func (h *handle) abs(key string) string {
	key = strings.TrimPrefix(key, "file:")
	if filepath.IsAbs(key) {
		return filepath.Clean(key)
	}
	return filepath.Join(h.workDir, filepath.FromSlash(key))
}

func (e *BuildError) Error() string {
	if len(e.Messages) == 0 {
		return "bundle failed"
	}
	first := e.Messages[0]
	msg := first.Text
	if first.Location != nil {
		msg = fmt.Sprintf("%s:%d:%d: %s", first.Location.File, first.Location.Line, first.Location.Column, msg)
	}
	if n := len(e.Messages) - 1; n > 0 {
		msg += fmt.Sprintf(" (and %d more)", n)
	}
	return msg
}


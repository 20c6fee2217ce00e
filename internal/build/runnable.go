// SPDX-License-Identifier: MPL-2.0

package build

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/invowk/forge/internal/backend"
	"github.com/invowk/forge/internal/backend/esbuild"
	"github.com/invowk/forge/internal/backend/tsc"
	"github.com/invowk/forge/internal/diag"
	"github.com/invowk/forge/internal/fsys"
	"github.com/invowk/forge/internal/pipeline"
	"github.com/invowk/forge/internal/task"
	"github.com/invowk/forge/pkg/fspath"
	"github.com/invowk/forge/pkg/types"
)

// NoEntriesCode marks the warning for a task whose inputs match no files.
const NoEntriesCode = "NO_ENTRIES"

type (
	// Options is the environment shared by the tasks of one Run. Nil
	// backends use esbuild for transpiling and bundling and tsc for
	// declarations.
	Options struct {
		// Cwd is the root of tasks that set none. Empty means the process
		// working directory.
		Cwd        string
		Transpiler backend.Transpiler
		Bundler    backend.Bundler
		Compiler   backend.Compiler
		Logger     *slog.Logger
	}

	// Runnable builds a single task. It is used once.
	Runnable struct {
		task  *task.Task
		inv   *pipeline.Invocation
		files fsys.FileSystem
		opts  Options

		state       State
		sc          *pipeline.StageContext
		pipe        pipeline.Pipeline
		tsconfigRaw string
		entries     []string
		transformed map[string]*backend.LoadResult
		sources     map[string]string
		bundle      *pipeline.Bundle
		result      *Result
	}

	// TransformError reports a module the transpiler rejected. The
	// individual errors are in the task messages.
	TransformError struct {
		Path   string
		Errors int
	}
)

func (o Options) withDefaults() (Options, error) {
	if o.Cwd == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return o, fmt.Errorf("resolving working directory: %w", err)
		}
		o.Cwd = cwd
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Transpiler == nil {
		o.Transpiler = esbuild.NewTranspiler()
	}
	if o.Bundler == nil {
		o.Bundler = esbuild.NewBundler()
	}
	if o.Compiler == nil {
		c := tsc.New("")
		c.Logger = o.Logger
		o.Compiler = c
	}
	return o, nil
}

// NewRunnable binds t to an invocation. opts must be complete; Run fills in
// defaults before creating runnables.
func NewRunnable(inv *pipeline.Invocation, t *task.Task, files fsys.FileSystem, opts Options) *Runnable {
	return &Runnable{
		task:        t,
		inv:         inv,
		files:       files,
		opts:        opts,
		state:       StateInit,
		transformed: make(map[string]*backend.LoadResult),
		sources:     make(map[string]string),
	}
}

// State returns the current lifecycle state.
func (r *Runnable) State() State {
	return r.state
}

// Run builds the task and returns its Result. Errors and panics are
// recorded in Result.Failure rather than returned.
func (r *Runnable) Run(ctx context.Context) (res *Result) {
	res = &Result{}
	r.result = res
	defer r.finish()
	defer func() {
		if rec := recover(); rec != nil {
			r.fail(pkgerrors.Errorf("panic during %s: %v", r.state, rec))
		}
	}()

	if err := r.run(ctx); err != nil {
		r.fail(err)
		return res
	}
	r.state = StateDone
	return res
}

func (r *Runnable) run(ctx context.Context) error {
	if err := r.init(); err != nil {
		return err
	}

	r.state = StateResolve
	if err := r.pipe.Start(ctx, r.sc); err != nil {
		return err
	}
	entries, err := r.expandInputs()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		r.sc.Report(diag.Message{
			Code:  NoEntriesCode,
			Level: diag.LevelWarn,
			Text:  fmt.Sprintf("no files matched input %v", []string(r.sc.Task.Input)),
		})
		return nil
	}
	r.entries = entries

	r.state = StateTransform
	for _, e := range r.entries {
		if _, err := r.transform(ctx, e); err != nil {
			return err
		}
	}

	r.state = StateBundle
	h, err := r.opts.Bundler.Build(ctx, r.bundleRequest())
	if h != nil {
		defer func() {
			r.reportBundlerLogs(h.Logs())
			h.Close()
		}()
	}
	if err != nil {
		return err
	}

	r.state = StateOutput
	if err := r.pipe.Clean(ctx, r.sc); err != nil {
		return err
	}
	outputs, err := h.Generate(ctx)
	if err != nil {
		return err
	}
	r.bundle = &pipeline.Bundle{Inputs: h.Inputs(), Outputs: outputs, Sources: r.sources}
	if err := r.pipe.Declare(ctx, r.sc, r.bundle); err != nil {
		return err
	}
	if err := r.pipe.Annotate(ctx, r.sc, r.bundle); err != nil {
		return err
	}
	return r.pipe.Write(ctx, r.sc, r.bundle)
}

// init resolves the task root and default format and prepares the stage
// context.
func (r *Runnable) init() error {
	t := r.task

	rootPath := fspath.Root(types.FilesystemPath(task.Deref(t.Root, "")), types.FilesystemPath(r.opts.Cwd))
	if resolved, err := r.files.Realpath(string(fspath.TrimSeparator(rootPath))); err == nil {
		rootPath = fspath.Root(types.FilesystemPath(resolved), "")
	}
	root := string(rootPath)

	format := task.Deref(t.Format, "")
	if format == "" {
		pkg, err := r.inv.Manifests().Nearest(r.files, root)
		if err != nil {
			return err
		}
		format = task.FormatCJS
		if pkg != nil && pkg.IsModule() {
			format = task.FormatESM
		}
	}

	effective := task.Merge(t, &task.Task{
		Input:  t.InputOrDefault(),
		Format: &format,
		Root:   &root,
	})
	r.sc = pipeline.NewStageContext(r.inv, effective, root, r.files)
	r.pipe = pipeline.Default(r.opts.Compiler)

	r.result.Format = format
	r.result.Root = root
	r.result.Outdir = r.sc.Outdir
	r.result.Task = task.Merge(effective)

	if tsconfig := task.Deref(effective.TransformOptions().TSConfig, ""); tsconfig != "" {
		if !filepath.IsAbs(tsconfig) {
			tsconfig = filepath.Join(root, tsconfig)
		}
		data, err := r.files.ReadFile(tsconfig)
		if err != nil {
			return fmt.Errorf("reading tsconfig: %w", err)
		}
		r.tsconfigRaw = string(data)
	}

	r.sc.Logger.Debug("task initialized", "root", root, "format", format, "outdir", r.sc.Outdir)
	return nil
}

// expandInputs turns input patterns into absolute entry paths in order.
// Patterns never select declaration files; an explicit path always counts.
func (r *Runnable) expandInputs() ([]string, error) {
	var entries task.List[string]
	for _, in := range r.sc.Task.Input {
		matches, err := fsys.Glob(r.files, r.sc.Root, in)
		if err != nil {
			return nil, fmt.Errorf("expanding input %q: %w", in, err)
		}
		if fsys.HasMeta(in) {
			matches = slices.DeleteFunc(matches, isDeclarationFile)
		}
		entries = entries.Merge(matches)
	}
	return entries, nil
}

func isDeclarationFile(p string) bool {
	base := filepath.Base(p)
	for _, ext := range []string{".d.ts", ".d.mts", ".d.cts"} {
		if strings.HasSuffix(base, ext) {
			return true
		}
	}
	return false
}

// transform reads and transpiles one module. Results are cached for the
// lifetime of the runnable, so entries transformed eagerly are not
// transformed again when the bundler loads them.
func (r *Runnable) transform(ctx context.Context, path string) (*backend.LoadResult, error) {
	if lr, ok := r.transformed[path]; ok {
		return lr, nil
	}

	data, err := r.files.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	src := string(data)
	r.sources[path] = src

	t := r.sc.Task
	topts := t.TransformOptions()
	loader := backend.LoaderName(path, topts.Loader)
	if !backend.IsScript(loader) {
		lr := &backend.LoadResult{Contents: src, Loader: loader}
		r.transformed[path] = lr
		return lr, nil
	}

	jsx := task.Deref(topts.JSX, "")
	sourcemap := task.Deref(t.Sourcemap, false)
	res, err := r.opts.Transpiler.Transform(ctx, backend.TransformRequest{
		Path:        path,
		Source:      src,
		Loader:      loader,
		Platform:    t.PlatformOrDefault(),
		Target:      topts.Target,
		Define:      topts.Define,
		JSX:         jsx,
		Sourcemap:   sourcemap,
		TSConfigRaw: r.tsconfigRaw,
	})
	if err != nil {
		return nil, fmt.Errorf("transforming %s: %w", path, err)
	}
	for _, w := range res.Warnings {
		r.sc.Report(diag.Format(diag.FromBundlerLog(diag.TranspilerToLog(w, diag.SeverityWarning, src))))
	}
	for _, e := range res.Errors {
		r.sc.Report(diag.Format(diag.FromBundlerLog(diag.TranspilerToLog(e, diag.SeverityError, src))))
	}
	if len(res.Errors) > 0 {
		return nil, &TransformError{Path: path, Errors: len(res.Errors)}
	}

	code := res.Code
	if sourcemap && res.Map != "" {
		code += "\n//# sourceMappingURL=data:application/json;base64," +
			base64.StdEncoding.EncodeToString([]byte(res.Map)) + "\n"
	}
	outLoader := "js"
	if jsx == "preserve" && (loader == "jsx" || loader == "tsx") {
		outLoader = "jsx"
	}
	lr := &backend.LoadResult{Contents: code, Loader: outLoader}
	r.transformed[path] = lr
	return lr, nil
}

func (r *Runnable) bundleRequest() backend.BundleRequest {
	t := r.sc.Task
	topts := t.TransformOptions()
	return backend.BundleRequest{
		Entries:     r.entries,
		Root:        r.sc.Root,
		Outdir:      r.sc.Outdir,
		Format:      r.result.Format,
		Bundle:      t.IsBundle(),
		Platform:    t.PlatformOrDefault(),
		Sourcemap:   task.Deref(t.Sourcemap, false),
		Minify:      task.Deref(topts.Minify, false),
		Target:      topts.Target,
		Define:      topts.Define,
		External:    t.External,
		NativeWrite: t.IsWrite() && t.IsNativeWrite(),
		Resolve:     r.resolve,
		Load:        r.load,
	}
}

// resolve is the bundler's resolve callback. Entry points left untouched
// by every stage resolve to themselves so they are read through the task
// filesystem.
func (r *Runnable) resolve(ctx context.Context, specifier, importer string, isEntry bool) (res *backend.Resolution, err error) {
	defer recoverInto(&err)

	res, err = r.pipe.Resolve(ctx, r.sc, pipeline.ResolveRequest{
		Specifier: specifier,
		Importer:  importer,
		IsEntry:   isEntry,
	})
	if err == nil && res == nil && isEntry {
		res = &backend.Resolution{ID: specifier}
	}
	return res, err
}

// load is the bundler's load callback.
func (r *Runnable) load(ctx context.Context, path string) (lr *backend.LoadResult, err error) {
	defer recoverInto(&err)
	return r.transform(ctx, path)
}

func (r *Runnable) reportBundlerLogs(logs []diag.BundlerLog) {
	for _, l := range logs {
		r.sc.Report(diag.Format(diag.FromBundlerLog(l)))
	}
}

func (r *Runnable) fail(err error) {
	r.result.Failure = diag.FromError(err)
	r.opts.Logger.Debug("task failed", "task", r.task.DisplayName(), "state", r.state, "error", err)
	r.state = StateFailed
}

// finish copies the collected messages and any partial outputs into the
// result.
func (r *Runnable) finish() {
	if r.sc != nil {
		r.result.Messages = r.sc.Messages()
	}
	if r.bundle != nil {
		r.result.Outputs = r.bundle.Outputs
	}
}

// recoverInto turns a panic in a backend callback into an error.
func recoverInto(err *error) {
	if rec := recover(); rec != nil {
		*err = pkgerrors.Errorf("panic: %v", rec)
	}
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transforming %s: %d error(s)", e.Path, e.Errors)
}

// Code identifies transform failures in diagnostics.
func (e *TransformError) Code() string { return "TRANSFORM_FAILED" }

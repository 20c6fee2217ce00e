// SPDX-License-Identifier: MPL-2.0

package backend

import (
	"context"

	"github.com/invowk/forge/internal/diag"
	"github.com/invowk/forge/internal/task"
)

type (
	// TransformRequest asks the transpiler to convert one source file.
	TransformRequest struct {
		Path      string
		Source    string
		Loader    string
		Format    task.Format
		Platform  task.Platform
		Target    []string
		Define    map[string]string
		Minify    bool
		JSX       string
		Sourcemap bool
		// TSConfigRaw is the content of the task's tsconfig file.
		TSConfigRaw string
	}

	// TransformResult holds the transpiled code and any messages. Messages
	// keep the transpiler's own shape and severity.
	TransformResult struct {
		Code     string
		Map      string
		Warnings []diag.TranspilerMessage
		Errors   []diag.TranspilerMessage
	}

	// Transpiler converts a single source file.
	Transpiler interface {
		Transform(ctx context.Context, req TransformRequest) (*TransformResult, error)
	}

	// Resolution is the outcome of resolving a module specifier.
	Resolution struct {
		ID       string `json:"id"`
		External bool   `json:"external"`
	}

	// ResolveFunc resolves a specifier on behalf of the bundler. A nil
	// Resolution leaves the specifier to the bundler's defaults.
	ResolveFunc func(ctx context.Context, specifier, importer string, isEntry bool) (*Resolution, error)

	// LoadResult is the transpiled content of a module.
	LoadResult struct {
		Contents string
		Loader   string
	}

	// LoadFunc loads and transforms the module at path.
	LoadFunc func(ctx context.Context, path string) (*LoadResult, error)

	// BundleRequest describes one bundler invocation. Bundle inlines
	// imported modules; without it every entry is rendered on its own and
	// imports of other script modules stay in the output.
	BundleRequest struct {
		Entries   []string
		Root      string
		Outdir    string
		Format    task.Format
		Bundle    bool
		Platform  task.Platform
		Sourcemap bool
		Minify    bool
		Target    []string
		Define    map[string]string
		External  []string
		// NativeWrite makes Generate write artifacts itself.
		NativeWrite bool
		Resolve     ResolveFunc
		Load        LoadFunc
	}

	// Bundler builds a module graph. Rendering is deferred to the returned
	// Handle so that output directories can be cleaned in between.
	Bundler interface {
		Build(ctx context.Context, req BundleRequest) (Handle, error)
	}

	// Handle is a built module graph waiting to be rendered.
	Handle interface {
		// Inputs lists the modules in the graph.
		Inputs() []Input
		// Logs returns the diagnostics collected so far.
		Logs() []diag.BundlerLog
		// Generate renders the artifacts.
		Generate(ctx context.Context) ([]*Output, error)
		// Close releases engine resources.
		Close()
	}

	// CompileOptions configures one declaration emit pass.
	CompileOptions struct {
		RootNames       []string
		Root            string
		OutDir          string
		DeclarationOnly bool
		SkipLibCheck    bool
		TSConfig        string
		// Command overrides the compiler command line.
		Command string
	}

	// CompilerHost is the file access the compiler goes through.
	CompilerHost interface {
		ReadFile(path string) ([]byte, error)
		FileExists(path string) bool
		WriteFile(path string, data []byte) error
	}

	// Compiler type-checks sources and emits declarations through a host.
	Compiler interface {
		Emit(ctx context.Context, opts CompileOptions, host CompilerHost) ([]diag.CompilerDiagnostic, error)
	}
)

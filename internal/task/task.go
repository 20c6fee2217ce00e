// SPDX-License-Identifier: MPL-2.0

package task

import (
	"errors"
	"fmt"
)

const (
	// DefaultOutdir is used when no fragment sets an output directory.
	DefaultOutdir = "dist"
	// DefaultInput selects every script module under src when no fragment
	// lists inputs.
	DefaultInput = "src/**/*.{js,mjs,cjs,jsx,ts,mts,cts,tsx}"
)

type (
	// Task describes one build unit. Every field is optional so a Task can
	// also serve as a merge fragment.
	Task struct {
		Name        string           `json:"name,omitempty"`
		Input       List[string]     `json:"input,omitempty"`
		Outdir      *string          `json:"outdir,omitempty"`
		Format      *Format          `json:"format,omitempty"`
		Bundle      *bool            `json:"bundle,omitempty"`
		Declaration *DeclarationMode `json:"declaration,omitempty"`
		Clean       *bool            `json:"clean,omitempty"`
		Write       *bool            `json:"write,omitempty"`
		// NativeWrite lets the bundler write its own outputs instead of the
		// write stage.
		NativeWrite *bool             `json:"native_write,omitempty"`
		Platform    *Platform         `json:"platform,omitempty"`
		Sourcemap   *bool             `json:"sourcemap,omitempty"`
		External    List[string]      `json:"external,omitempty"`
		Root        *string           `json:"root,omitempty"`
		Resolve     *ResolveOptions   `json:"resolve,omitempty"`
		Transform   *TransformOptions `json:"transform,omitempty"`
	}

	// ResolveOptions configures the resolver stage.
	ResolveOptions struct {
		Alias          Dict[string] `json:"alias,omitempty"`
		Conditions     Set[string]  `json:"conditions,omitempty"`
		Extensions     List[string] `json:"extensions,omitempty"`
		MainFields     List[string] `json:"main_fields,omitempty"`
		PreferBuiltins *bool        `json:"prefer_builtins,omitempty"`
	}

	// TransformOptions configures the transpiler and declaration compiler.
	TransformOptions struct {
		Target   List[string] `json:"target,omitempty"`
		Define   Dict[string] `json:"define,omitempty"`
		Loader   Dict[string] `json:"loader,omitempty"`
		Minify   *bool        `json:"minify,omitempty"`
		JSX      *string      `json:"jsx,omitempty"`
		TSConfig *string      `json:"tsconfig,omitempty"`
		// DeclarationCommand is the shell command line that emits declarations.
		DeclarationCommand *string `json:"declaration_command,omitempty"`
	}
)

// Ptr returns a pointer to v, for building fragments inline.
func Ptr[T any](v T) *T {
	return &v
}

// Deref returns *p, or fallback when p is nil.
func Deref[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

// Merge applies sources to target left to right and returns the result.
// Lists become ordered unions, sets become unions, records merge key by key,
// and a scalar set on a source overwrites the target. Nil fragments are
// skipped and no argument is modified.
func Merge(target *Task, sources ...*Task) *Task {
	out := &Task{}
	out.mergeFrom(target)
	for _, src := range sources {
		out.mergeFrom(src)
	}
	return out
}

func (t *Task) mergeFrom(src *Task) {
	if src == nil {
		return
	}
	if src.Name != "" {
		t.Name = src.Name
	}
	t.Input = t.Input.Merge(src.Input)
	mergeScalar(&t.Outdir, src.Outdir)
	mergeScalar(&t.Format, src.Format)
	mergeScalar(&t.Bundle, src.Bundle)
	mergeScalar(&t.Declaration, src.Declaration)
	mergeScalar(&t.Clean, src.Clean)
	mergeScalar(&t.Write, src.Write)
	mergeScalar(&t.NativeWrite, src.NativeWrite)
	mergeScalar(&t.Platform, src.Platform)
	mergeScalar(&t.Sourcemap, src.Sourcemap)
	t.External = t.External.Merge(src.External)
	mergeScalar(&t.Root, src.Root)
	t.Resolve = t.Resolve.merge(src.Resolve)
	t.Transform = t.Transform.merge(src.Transform)
}

func (r *ResolveOptions) merge(src *ResolveOptions) *ResolveOptions {
	if r == nil && src == nil {
		return nil
	}
	if r == nil {
		r = &ResolveOptions{}
	}
	if src == nil {
		src = &ResolveOptions{}
	}
	out := &ResolveOptions{
		Alias:      r.Alias.Merge(src.Alias),
		Conditions: r.Conditions.Merge(src.Conditions),
		Extensions: r.Extensions.Merge(src.Extensions),
		MainFields: r.MainFields.Merge(src.MainFields),
	}
	mergeScalar(&out.PreferBuiltins, r.PreferBuiltins)
	mergeScalar(&out.PreferBuiltins, src.PreferBuiltins)
	return out
}

func (o *TransformOptions) merge(src *TransformOptions) *TransformOptions {
	if o == nil && src == nil {
		return nil
	}
	if o == nil {
		o = &TransformOptions{}
	}
	if src == nil {
		src = &TransformOptions{}
	}
	out := &TransformOptions{
		Target: o.Target.Merge(src.Target),
		Define: o.Define.Merge(src.Define),
		Loader: o.Loader.Merge(src.Loader),
	}
	for _, s := range [2]*TransformOptions{o, src} {
		mergeScalar(&out.Minify, s.Minify)
		mergeScalar(&out.JSX, s.JSX)
		mergeScalar(&out.TSConfig, s.TSConfig)
		mergeScalar(&out.DeclarationCommand, s.DeclarationCommand)
	}
	return out
}

func mergeScalar[T any](dst **T, src *T) {
	if src == nil {
		return
	}
	v := *src
	*dst = &v
}

// OutdirOrDefault returns the output directory, falling back to DefaultOutdir.
func (t *Task) OutdirOrDefault() string {
	if t.Outdir == nil || *t.Outdir == "" {
		return DefaultOutdir
	}
	return *t.Outdir
}

// InputOrDefault returns the input patterns, falling back to DefaultInput.
func (t *Task) InputOrDefault() List[string] {
	if len(t.Input) == 0 {
		return NewList(DefaultInput)
	}
	return t.Input
}

// IsBundle reports whether the task bundles its module graph.
func (t *Task) IsBundle() bool { return Deref(t.Bundle, false) }

// IsClean reports whether the output directory is emptied before writing.
func (t *Task) IsClean() bool { return Deref(t.Clean, false) }

// IsWrite reports whether outputs are written to the filesystem. Defaults to true.
func (t *Task) IsWrite() bool { return Deref(t.Write, true) }

// IsNativeWrite reports whether the bundler writes its own outputs.
func (t *Task) IsNativeWrite() bool { return Deref(t.NativeWrite, false) }

// DeclarationMode returns the declaration mode, defaulting to off.
func (t *Task) DeclarationMode() DeclarationMode { return Deref(t.Declaration, DeclarationOff) }

// PlatformOrDefault returns the target platform, defaulting to node.
func (t *Task) PlatformOrDefault() Platform { return Deref(t.Platform, PlatformNode) }

// ResolveOptions returns the resolve bag, never nil.
func (t *Task) ResolveOptions() ResolveOptions {
	if t.Resolve == nil {
		return ResolveOptions{}
	}
	return *t.Resolve
}

// TransformOptions returns the transform bag, never nil.
func (t *Task) TransformOptions() TransformOptions {
	if t.Transform == nil {
		return TransformOptions{}
	}
	return *t.Transform
}

// DisplayName returns Name, or the first input when Name is empty.
func (t *Task) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	if len(t.Input) > 0 {
		return t.Input[0]
	}
	return "<unnamed>"
}

// Validate checks the enumerated fields that are set.
func (t *Task) Validate() error {
	var errs []error
	if t.Format != nil {
		if ok, fieldErrs := t.Format.IsValid(); !ok {
			errs = append(errs, fieldErrs...)
		}
	}
	if t.Declaration != nil {
		if ok, fieldErrs := t.Declaration.IsValid(); !ok {
			errs = append(errs, fieldErrs...)
		}
	}
	if t.Platform != nil {
		if ok, fieldErrs := t.Platform.IsValid(); !ok {
			errs = append(errs, fieldErrs...)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("task %s: %w", t.DisplayName(), errors.Join(errs...))
}

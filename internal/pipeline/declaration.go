// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/invowk/forge/internal/backend"
	"github.com/invowk/forge/internal/diag"
	"github.com/invowk/forge/internal/fsys"
	"github.com/invowk/forge/internal/task"
)

type (
	// DeclarationStage emits type declarations for the TypeScript modules
	// of a bundle and adds them as assets.
	DeclarationStage struct {
		Compiler backend.Compiler
	}

	// overlayHost serves eligible sources from memory, falls back to the
	// task filesystem for everything else, and captures writes.
	overlayHost struct {
		files   fsys.FileSystem
		sources map[string]string
		written map[string][]byte
	}
)

func (*DeclarationStage) Name() string { return "declaration" }

func (s *DeclarationStage) OnDeclare(ctx context.Context, sc *StageContext, b *Bundle) error {
	eligible := declarationInputs(sc.Task.DeclarationMode(), b.Inputs)
	if len(eligible) == 0 || s.Compiler == nil {
		return nil
	}

	host := &overlayHost{
		files:   sc.FS,
		sources: make(map[string]string, len(eligible)),
		written: make(map[string][]byte),
	}
	for _, p := range eligible {
		if src, ok := b.Sources[p]; ok {
			host.sources[p] = src
		}
	}

	topts := sc.Task.TransformOptions()
	opts := backend.CompileOptions{
		RootNames:       eligible,
		Root:            sc.Root,
		OutDir:          sc.Outdir,
		DeclarationOnly: true,
		SkipLibCheck:    true,
		TSConfig:        task.Deref(topts.TSConfig, ""),
		Command:         task.Deref(topts.DeclarationCommand, ""),
	}

	sc.Logger.Debug("emitting declarations", "modules", len(eligible))
	diagnostics, err := s.Compiler.Emit(ctx, opts, host)
	for _, d := range diagnostics {
		sc.Report(diag.Format(diag.FromBundlerLog(diag.CompilerToLog(d))))
	}
	if err != nil {
		// Declaration emission is best-effort.
		sc.Report(diag.Message{
			Code:   "DECLARATION_FAILED",
			Level:  diag.LevelWarn,
			Plugin: s.Name(),
			Text:   err.Error(),
		})
		return nil
	}

	for _, p := range slices.Sorted(maps.Keys(host.written)) {
		b.Set(backend.NewAsset(outputName(sc, p), host.written[p]))
	}
	return nil
}

// declarationInputs returns the sorted TypeScript module paths eligible
// for declaration emission under mode. Auto emits only when one of the
// task inputs, the entry points, is TypeScript.
func declarationInputs(mode task.DeclarationMode, inputs []backend.Input) []string {
	if mode == task.DeclarationOff {
		return nil
	}
	var (
		eligible []string
		tsEntry  bool
	)
	for _, in := range inputs {
		if !backend.IsTypeScript(in.Path) || inNodeModules(in.Path) {
			continue
		}
		eligible = append(eligible, in.Path)
		if in.IsEntry {
			tsEntry = true
		}
	}
	if mode == task.DeclarationAuto && !tsEntry {
		return nil
	}
	slices.Sort(eligible)
	return slices.Compact(eligible)
}

func inNodeModules(p string) bool {
	return slices.Contains(strings.Split(filepath.ToSlash(p), "/"), "node_modules")
}

// outputName keys a captured file by its path relative to the output
// directory, or to the root when the compiler wrote elsewhere.
func outputName(sc *StageContext, p string) string {
	if rel, err := filepath.Rel(sc.Outdir, p); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	if rel, err := filepath.Rel(sc.Root, p); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return filepath.Base(p)
}

func (h *overlayHost) ReadFile(path string) ([]byte, error) {
	if src, ok := h.sources[filepath.Clean(path)]; ok {
		return []byte(src), nil
	}
	return h.files.ReadFile(path)
}

func (h *overlayHost) FileExists(path string) bool {
	if _, ok := h.sources[filepath.Clean(path)]; ok {
		return true
	}
	if _, ok := h.written[filepath.Clean(path)]; ok {
		return true
	}
	return fsys.IsFile(h.files, path)
}

func (h *overlayHost) WriteFile(path string, data []byte) error {
	h.written[filepath.Clean(path)] = slices.Clone(data)
	return nil
}

// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/invowk/forge/internal/backend"
	"github.com/invowk/forge/internal/fsys"
	"github.com/invowk/forge/internal/manifest"
	"github.com/invowk/forge/internal/task"
)

// ErrUnresolved is the sentinel error wrapped by ResolveError.
var ErrUnresolved = errors.New("module not resolved")

var (
	// DefaultExtensions is tried in order when a task lists none.
	DefaultExtensions = []string{".mjs", ".js", ".mts", ".ts", ".jsx", ".tsx", ".json"}

	defaultMainFields        = []string{"module", "main"}
	defaultBrowserMainFields = []string{"browser", "module", "main"}
)

type (
	// ResolveStage turns module specifiers into absolute paths or external
	// ids. OnStart captures the task's root, probing lists and filesystem.
	ResolveStage struct {
		root           string
		files          fsys.FileSystem
		manifests      *manifest.Cache
		extensions     []string
		mainFields     []string
		conditions     map[string]struct{}
		alias          task.Dict[string]
		aliasKeys      []string
		external       task.List[string]
		bundle         bool
		preferBuiltins bool
	}

	// ResolveError reports a specifier that could not be mapped to a file.
	// It aborts only the task being built.
	ResolveError struct {
		Specifier string
		Importer  string
	}
)

// NewResolveStage returns a ResolveStage awaiting OnStart.
func NewResolveStage() *ResolveStage {
	return &ResolveStage{}
}

func (s *ResolveStage) Name() string { return "resolve" }

// OnStart captures per-task resolution settings.
func (s *ResolveStage) OnStart(_ context.Context, sc *StageContext) error {
	t := sc.Task
	opts := t.ResolveOptions()

	s.root = sc.Root
	s.files = sc.FS
	s.manifests = sc.Invocation.Manifests()
	s.bundle = t.IsBundle()
	s.preferBuiltins = task.Deref(opts.PreferBuiltins, true)
	s.external = t.External

	s.extensions = slices.Clone(DefaultExtensions)
	if len(opts.Extensions) > 0 {
		s.extensions = slices.Clone(opts.Extensions)
	}

	platform := t.PlatformOrDefault()
	s.mainFields = defaultMainFields
	if platform == task.PlatformBrowser {
		s.mainFields = defaultBrowserMainFields
	}
	if len(opts.MainFields) > 0 {
		s.mainFields = slices.Clone(opts.MainFields)
	}

	s.conditions = map[string]struct{}{}
	for c := range opts.Conditions {
		s.conditions[c] = struct{}{}
	}
	if task.Deref(t.Format, task.FormatESM) == task.FormatCJS {
		s.conditions["require"] = struct{}{}
	} else {
		s.conditions["import"] = struct{}{}
	}
	if platform != task.PlatformNeutral {
		s.conditions[string(platform)] = struct{}{}
	}

	s.alias = opts.Alias
	s.aliasKeys = opts.Alias.Keys()
	// Longest key first so the most specific alias wins.
	slices.SortStableFunc(s.aliasKeys, func(a, b string) int { return len(b) - len(a) })

	sc.Logger.Debug("resolver ready",
		"root", s.root, "extensions", s.extensions, "mainFields", s.mainFields, "bundle", s.bundle)
	return nil
}

// OnResolve applies, in order: virtual bypass, builtin externals, aliases,
// file resolution (when bundling or for relative specifiers), and finally
// externalization of anything else that is not an entry point.
func (s *ResolveStage) OnResolve(_ context.Context, sc *StageContext, req ResolveRequest) (*backend.Resolution, error) {
	spec := req.Specifier

	if IsVirtual(spec) {
		return nil, nil
	}

	if IsBuiltin(spec) {
		if !strings.HasPrefix(spec, BuiltinPrefix) && !s.preferBuiltins && s.bundle {
			if resolved, ok := s.resolveBare(spec, s.baseDir(req.Importer)); ok {
				return &backend.Resolution{ID: resolved}, nil
			}
		}
		sc.Logger.Debug("builtin", "specifier", spec, "from", s.baseDir(req.Importer))
		return &backend.Resolution{ID: BuiltinID(spec), External: true}, nil
	}

	base := s.baseDir(req.Importer)
	spec, aliased := s.applyAlias(spec)
	if aliased && isRelative(spec) {
		// Relative alias targets are rooted at the task root.
		base = filepath.Clean(s.root)
	}

	if isBare(spec) && s.isExternal(spec) {
		return &backend.Resolution{ID: spec, External: true}, nil
	}

	if s.bundle || isRelative(spec) {
		resolved, ok := s.resolveSpecifier(spec, base)
		if !ok {
			return nil, &ResolveError{Specifier: req.Specifier, Importer: req.Importer}
		}
		return &backend.Resolution{ID: resolved}, nil
	}

	if req.IsEntry {
		return nil, nil
	}
	return &backend.Resolution{ID: spec, External: true}, nil
}

func (s *ResolveStage) baseDir(importer string) string {
	if importer != "" && filepath.IsAbs(importer) {
		return filepath.Dir(importer)
	}
	return filepath.Clean(s.root)
}

// applyAlias rewrites spec through the longest matching alias key, either
// an exact match or a "key/" prefix.
func (s *ResolveStage) applyAlias(spec string) (string, bool) {
	for _, key := range s.aliasKeys {
		target := s.alias[key]
		switch {
		case spec == key:
			return target, true
		case strings.HasPrefix(spec, key+"/"):
			return target + spec[len(key):], true
		}
	}
	return spec, false
}

func (s *ResolveStage) isExternal(spec string) bool {
	for _, ext := range s.external {
		if spec == ext || strings.HasPrefix(spec, ext+"/") {
			return true
		}
	}
	return false
}

func (s *ResolveStage) resolveSpecifier(spec, base string) (string, bool) {
	switch {
	case filepath.IsAbs(spec):
		return s.resolvePath(filepath.Clean(spec))
	case isRelative(spec):
		return s.resolvePath(filepath.Join(base, spec))
	default:
		return s.resolveBare(spec, base)
	}
}

// resolvePath tries p as a file, then with each extension, then as a
// directory.
func (s *ResolveStage) resolvePath(p string) (string, bool) {
	if resolved, ok := s.resolveFile(p); ok {
		return resolved, true
	}
	if fsys.IsDir(s.files, p) {
		return s.resolveDirectory(p)
	}
	return "", false
}

func (s *ResolveStage) resolveFile(p string) (string, bool) {
	if fsys.IsFile(s.files, p) {
		return p, true
	}
	for _, ext := range s.extensions {
		if candidate := p + ext; fsys.IsFile(s.files, candidate) {
			return candidate, true
		}
	}
	return "", false
}

// resolveDirectory follows the manifest main fields, then index files.
func (s *ResolveStage) resolveDirectory(dir string) (string, bool) {
	pkg, _ := s.manifests.LoadDir(s.files, dir)
	if pkg != nil {
		for _, field := range s.mainFields {
			entry, ok := pkg.StringField(field)
			if !ok {
				continue
			}
			target := filepath.Join(dir, entry)
			if resolved, ok := s.resolveFile(target); ok {
				return resolved, true
			}
			if resolved, ok := s.resolveIndex(target); ok {
				return resolved, true
			}
		}
	}
	return s.resolveIndex(dir)
}

func (s *ResolveStage) resolveIndex(dir string) (string, bool) {
	for _, ext := range s.extensions {
		if candidate := filepath.Join(dir, "index"+ext); fsys.IsFile(s.files, candidate) {
			return candidate, true
		}
	}
	return "", false
}

// resolveBare looks the package up in node_modules directories from base
// towards the filesystem root.
func (s *ResolveStage) resolveBare(spec, base string) (string, bool) {
	name, subpath := splitPackage(spec)
	for dir := base; ; {
		pkgDir := filepath.Join(dir, "node_modules", name)
		if fsys.IsDir(s.files, pkgDir) {
			return s.resolvePackage(pkgDir, subpath)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func (s *ResolveStage) resolvePackage(pkgDir, subpath string) (string, bool) {
	pkg, _ := s.manifests.LoadDir(s.files, pkgDir)
	if pkg != nil && len(pkg.Exports) > 0 && string(pkg.Exports) != "null" {
		target, ok := resolveExports(pkg.Exports, subpath, s.conditionActive)
		if !ok {
			return "", false
		}
		p := filepath.Join(pkgDir, target)
		if fsys.IsFile(s.files, p) {
			return p, true
		}
		return "", false
	}
	if subpath == "." {
		return s.resolveDirectory(pkgDir)
	}
	return s.resolvePath(filepath.Join(pkgDir, subpath))
}

func (s *ResolveStage) conditionActive(name string) bool {
	_, ok := s.conditions[name]
	return ok
}

// splitPackage splits "@scope/pkg/sub/path" into "@scope/pkg" and
// "./sub/path". A specifier without a subpath yields ".".
func splitPackage(spec string) (string, string) {
	parts := strings.SplitN(spec, "/", 3)
	n := 1
	if strings.HasPrefix(spec, "@") && len(parts) > 1 {
		n = 2
	}
	if len(parts) <= n {
		return spec, "."
	}
	name := strings.Join(parts[:n], "/")
	return name, "./" + spec[len(name)+1:]
}

func isRelative(spec string) bool {
	return spec == "." || spec == ".." ||
		strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") ||
		strings.HasPrefix(spec, `.\`) || strings.HasPrefix(spec, `..\`)
}

func isBare(spec string) bool {
	return !isRelative(spec) && !filepath.IsAbs(spec)
}

func (e *ResolveError) Error() string {
	if e.Importer == "" {
		return fmt.Sprintf("could not resolve %q", e.Specifier)
	}
	return fmt.Sprintf("could not resolve %q from %s", e.Specifier, e.Importer)
}

func (e *ResolveError) Unwrap() error { return ErrUnresolved }

// Code identifies resolution failures in diagnostics.
func (e *ResolveError) Code() string { return "UNRESOLVED_IMPORT" }

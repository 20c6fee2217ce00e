// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/invowk/forge/internal/backend"
	"github.com/invowk/forge/internal/fsys"
	"github.com/invowk/forge/internal/task"
	"github.com/invowk/forge/internal/testutil"
)

func TestResolve_VirtualUntouched(t *testing.T) {
	t.Parallel()

	tasks := []*task.Task{
		{},
		{Bundle: task.Ptr(true)},
		{Bundle: task.Ptr(true), Resolve: &task.ResolveOptions{
			Alias: task.Dict[string]{"virtual:x": "./x"},
		}},
	}
	specs := []string{"\x00commonjsHelpers", "virtual:config", "\x00virtual:entry"}

	for _, tk := range tasks {
		s, sc := startResolver(t, fsys.Memory(), tk)
		for _, spec := range specs {
			res, err := s.OnResolve(context.Background(), sc, ResolveRequest{Specifier: spec, Importer: "/proj/a.js"})
			if err != nil || res != nil {
				t.Errorf("OnResolve(%q) = %+v, %v, want untouched", spec, res, err)
			}
		}
	}
}

func TestResolve_Builtin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		spec     string
		importer string
		want     string
	}{
		{"fs", "/proj/src/a.js", "node:fs"},
		{"fs", "", "node:fs"},
		{"fs/promises", "/proj/src/a.js", "node:fs/promises"},
		{"node:path", "", "node:path"},
		{"node:test", "/proj/a.js", "node:test"},
	}

	for _, tt := range tests {
		t.Run(tt.spec+"@"+tt.importer, func(t *testing.T) {
			t.Parallel()
			s, sc := startResolver(t, fsys.Memory(), &task.Task{Bundle: task.Ptr(true)})
			res, err := s.OnResolve(context.Background(), sc, ResolveRequest{Specifier: tt.spec, Importer: tt.importer})
			if err != nil {
				t.Fatalf("OnResolve() error = %v", err)
			}
			want := &backend.Resolution{ID: tt.want, External: true}
			if res == nil || *res != *want {
				t.Errorf("OnResolve() = %+v, want %+v", res, want)
			}
		})
	}
}

func TestResolve_PreferBuiltinsFalse(t *testing.T) {
	t.Parallel()

	mem := fsys.Memory()
	testutil.WriteFiles(t, mem, map[string]string{
		"/proj/node_modules/events/package.json": `{"main":"events.js"}`,
		"/proj/node_modules/events/events.js":    "module.exports = {}",
	})
	s, sc := startResolver(t, mem, &task.Task{
		Bundle:  task.Ptr(true),
		Resolve: &task.ResolveOptions{PreferBuiltins: task.Ptr(false)},
	})

	res, err := s.OnResolve(context.Background(), sc, ResolveRequest{Specifier: "events", Importer: "/proj/a.js"})
	if err != nil || res == nil || res.ID != "/proj/node_modules/events/events.js" || res.External {
		t.Errorf("OnResolve(events) = %+v, %v", res, err)
	}

	res, err = s.OnResolve(context.Background(), sc, ResolveRequest{Specifier: "node:events", Importer: "/proj/a.js"})
	if err != nil || res == nil || res.ID != "node:events" || !res.External {
		t.Errorf("OnResolve(node:events) = %+v, %v", res, err)
	}
}

func TestResolve_Files(t *testing.T) {
	t.Parallel()

	mem := fsys.Memory()
	testutil.WriteFiles(t, mem, map[string]string{
		"/proj/src/index.ts":             "",
		"/proj/src/util.ts":              "",
		"/proj/src/lib/index.js":         "",
		"/proj/src/widgets/main.ts":      "",
		"/proj/src/widgets/package.json": `{"main":"./main"}`,
		"/proj/vendor/deep/x.mjs":        "",
	})

	tests := []struct {
		name     string
		spec     string
		importer string
		want     string
	}{
		{"extension probing", "./util", "/proj/src/index.ts", "/proj/src/util.ts"},
		{"exact file", "./util.ts", "/proj/src/index.ts", "/proj/src/util.ts"},
		{"directory index", "./lib", "/proj/src/index.ts", "/proj/src/lib/index.js"},
		{"directory main field", "./widgets", "/proj/src/index.ts", "/proj/src/widgets/main.ts"},
		{"relative to root without importer", "./src/util", "", "/proj/src/util.ts"},
		{"alias prefix", "@/util", "/proj/src/index.ts", "/proj/src/util.ts"},
		{"longest alias wins", "@/deep/x", "/proj/src/index.ts", "/proj/vendor/deep/x.mjs"},
		{"exact alias", "utils", "/proj/src/index.ts", "/proj/src/util.ts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, sc := startResolver(t, mem, &task.Task{Resolve: &task.ResolveOptions{
				Alias: task.Dict[string]{
					"@":      "./src",
					"@/deep": "./vendor/deep",
					"utils":  "./src/util",
				},
			}})
			res, err := s.OnResolve(context.Background(), sc, ResolveRequest{Specifier: tt.spec, Importer: tt.importer})
			if err != nil {
				t.Fatalf("OnResolve() error = %v", err)
			}
			if res == nil || res.ID != tt.want || res.External {
				t.Errorf("OnResolve(%q) = %+v, want %s", tt.spec, res, tt.want)
			}
		})
	}
}

func TestResolve_Packages(t *testing.T) {
	t.Parallel()

	mem := fsys.Memory()
	testutil.WriteFiles(t, mem, map[string]string{
		"/proj/node_modules/dual/package.json": `{
			"name":    "dual",
			"exports": {
				".":           {"import": "./esm/index.mjs", "require": "./cjs/index.cjs"},
				"./feature/*": {"default": "./dist/feature/*.js"}
			}
		}`,
		"/proj/node_modules/dual/esm/index.mjs":         "",
		"/proj/node_modules/dual/cjs/index.cjs":         "",
		"/proj/node_modules/dual/dist/feature/a.js":     "",
		"/proj/node_modules/@scope/legacy/package.json": `{"module":"es/main.js","main":"lib/main.js"}`,
		"/proj/node_modules/@scope/legacy/es/main.js":   "",
		"/proj/node_modules/@scope/legacy/lib/main.js":  "",
		"/proj/node_modules/@scope/legacy/lib/extra.js": "",
		"/proj/node_modules/sugar/package.json":         `{"exports":"./sugar.js"}`,
		"/proj/node_modules/sugar/sugar.js":             "",
	})

	tests := []struct {
		name   string
		spec   string
		format task.Format
		fields task.List[string]
		want   string
	}{
		{"exports import condition", "dual", task.FormatESM, nil, "/proj/node_modules/dual/esm/index.mjs"},
		{"exports require condition", "dual", task.FormatCJS, nil, "/proj/node_modules/dual/cjs/index.cjs"},
		{"exports pattern", "dual/feature/a", task.FormatESM, nil, "/proj/node_modules/dual/dist/feature/a.js"},
		{"exports string", "sugar", task.FormatESM, nil, "/proj/node_modules/sugar/sugar.js"},
		{"module field first", "@scope/legacy", task.FormatESM, nil, "/proj/node_modules/@scope/legacy/es/main.js"},
		{"custom main fields", "@scope/legacy", task.FormatESM, task.List[string]{"main"}, "/proj/node_modules/@scope/legacy/lib/main.js"},
		{"package subpath", "@scope/legacy/lib/extra", task.FormatESM, nil, "/proj/node_modules/@scope/legacy/lib/extra.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, sc := startResolver(t, mem, &task.Task{
				Bundle:  task.Ptr(true),
				Format:  task.Ptr(tt.format),
				Resolve: &task.ResolveOptions{MainFields: tt.fields},
			})
			res, err := s.OnResolve(context.Background(), sc, ResolveRequest{
				Specifier: tt.spec,
				Importer:  "/proj/src/deep/index.ts",
			})
			if err != nil {
				t.Fatalf("OnResolve() error = %v", err)
			}
			if res == nil || res.ID != tt.want {
				t.Errorf("OnResolve(%q) = %+v, want %s", tt.spec, res, tt.want)
			}
		})
	}
}

func TestResolve_UnexportedSubpathFails(t *testing.T) {
	t.Parallel()

	mem := fsys.Memory()
	testutil.WriteFiles(t, mem, map[string]string{
		"/proj/node_modules/sealed/package.json": `{"exports":{".":"./index.js"}}`,
		"/proj/node_modules/sealed/index.js":     "",
		"/proj/node_modules/sealed/private.js":   "",
	})
	s, sc := startResolver(t, mem, &task.Task{Bundle: task.Ptr(true)})

	_, err := s.OnResolve(context.Background(), sc, ResolveRequest{Specifier: "sealed/private", Importer: "/proj/a.js"})
	var re *ResolveError
	if !errors.As(err, &re) || re.Specifier != "sealed/private" {
		t.Fatalf("OnResolve() error = %v, want *ResolveError", err)
	}
	if !errors.Is(err, ErrUnresolved) || re.Code() != "UNRESOLVED_IMPORT" {
		t.Errorf("ResolveError should wrap ErrUnresolved with a code")
	}
}

func TestResolve_NotBundling(t *testing.T) {
	t.Parallel()

	mem := fsys.Memory()
	testutil.WriteFiles(t, mem, map[string]string{"/proj/src/a.ts": ""})
	s, sc := startResolver(t, mem, &task.Task{})
	ctx := context.Background()

	res, err := s.OnResolve(ctx, sc, ResolveRequest{Specifier: "react", Importer: "/proj/src/a.ts"})
	if err != nil || res == nil || !res.External || res.ID != "react" {
		t.Errorf("bare specifier = %+v, %v, want external", res, err)
	}

	res, err = s.OnResolve(ctx, sc, ResolveRequest{Specifier: "/proj/src/a.ts", IsEntry: true})
	if err != nil || res != nil {
		t.Errorf("entry = %+v, %v, want untouched", res, err)
	}

	res, err = s.OnResolve(ctx, sc, ResolveRequest{Specifier: "./a", Importer: "/proj/src/b.ts"})
	if err != nil || res == nil || res.ID != "/proj/src/a.ts" {
		t.Errorf("relative = %+v, %v, want resolved file", res, err)
	}

	if _, err := s.OnResolve(ctx, sc, ResolveRequest{Specifier: "./missing", Importer: "/proj/src/b.ts"}); !errors.Is(err, ErrUnresolved) {
		t.Errorf("missing relative error = %v, want ErrUnresolved", err)
	}
}

func TestResolve_ExternalList(t *testing.T) {
	t.Parallel()

	s, sc := startResolver(t, fsys.Memory(), &task.Task{
		Bundle:   task.Ptr(true),
		External: task.List[string]{"react"},
	})
	for _, spec := range []string{"react", "react/jsx-runtime"} {
		res, err := s.OnResolve(context.Background(), sc, ResolveRequest{Specifier: spec, Importer: "/proj/a.js"})
		if err != nil || res == nil || !res.External || res.ID != spec {
			t.Errorf("OnResolve(%q) = %+v, %v, want external", spec, res, err)
		}
	}
}

func TestSplitPackage(t *testing.T) {
	t.Parallel()

	tests := []struct{ spec, name, sub string }{
		{"lodash", "lodash", "."},
		{"lodash/fp/map", "lodash", "./fp/map"},
		{"@scope/pkg", "@scope/pkg", "."},
		{"@scope/pkg/a/b", "@scope/pkg", "./a/b"},
	}
	for _, tt := range tests {
		if name, sub := splitPackage(tt.spec); name != tt.name || sub != tt.sub {
			t.Errorf("splitPackage(%q) = %q, %q, want %q, %q", tt.spec, name, sub, tt.name, tt.sub)
		}
	}
}

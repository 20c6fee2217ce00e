// SPDX-License-Identifier: MPL-2.0

package task

import (
	"errors"
	"reflect"
	"slices"
	"testing"
)

func TestMerge_ListUnion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		fragments []*Task
		want      List[string]
	}{
		{
			name:      "two fragments",
			fragments: []*Task{{Input: List[string]{"a"}}, {Input: List[string]{"b"}}},
			want:      List[string]{"a", "b"},
		},
		{
			name: "duplicates keep first-seen order",
			fragments: []*Task{
				{Input: List[string]{"b", "a"}},
				{Input: List[string]{"a", "c"}},
				{Input: List[string]{"c", "b", "d"}},
			},
			want: List[string]{"b", "a", "c", "d"},
		},
		{
			name:      "nil fragments skipped",
			fragments: []*Task{nil, {Input: List[string]{"x"}}, nil},
			want:      List[string]{"x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Merge(tt.fragments[0], tt.fragments[1:]...)
			if !slices.Equal(got.Input, tt.want) {
				t.Errorf("Input = %v, want %v", got.Input, tt.want)
			}
		})
	}
}

func TestMerge_SetUnion(t *testing.T) {
	t.Parallel()

	got := Merge(
		&Task{Resolve: &ResolveOptions{Conditions: NewSet("x")}},
		&Task{Resolve: &ResolveOptions{Conditions: NewSet("y")}},
	)
	want := []string{"x", "y"}
	if !slices.Equal(got.Resolve.Conditions.Sorted(), want) {
		t.Errorf("Conditions = %v, want %v", got.Resolve.Conditions.Sorted(), want)
	}
}

func TestMerge_Records(t *testing.T) {
	t.Parallel()

	base := &Task{
		Outdir: Ptr("dist"),
		Resolve: &ResolveOptions{
			Alias:          Dict[string]{"@": "./src", "util": "./lib/util"},
			PreferBuiltins: Ptr(true),
		},
		Transform: &TransformOptions{Define: Dict[string]{"DEBUG": "false"}},
	}
	override := &Task{
		Format: Ptr(FormatCJS),
		Resolve: &ResolveOptions{
			Alias:      Dict[string]{"util": "./vendor/util"},
			Extensions: List[string]{".ts"},
		},
		Transform: &TransformOptions{Minify: Ptr(true)},
	}

	got := Merge(base, override)

	if got.OutdirOrDefault() != "dist" {
		t.Errorf("Outdir = %q, want dist (unset scalars must not overwrite)", got.OutdirOrDefault())
	}
	if *got.Format != FormatCJS {
		t.Errorf("Format = %q, want cjs", *got.Format)
	}
	wantAlias := Dict[string]{"@": "./src", "util": "./vendor/util"}
	if !reflect.DeepEqual(got.Resolve.Alias, wantAlias) {
		t.Errorf("Alias = %v, want %v", got.Resolve.Alias, wantAlias)
	}
	if !Deref(got.Resolve.PreferBuiltins, false) {
		t.Error("PreferBuiltins should survive from base")
	}
	if got.Transform.Define["DEBUG"] != "false" || !Deref(got.Transform.Minify, false) {
		t.Errorf("Transform = %+v, want merged define and minify", got.Transform)
	}

	// Inputs are untouched.
	if len(base.Resolve.Alias) != 2 || base.Resolve.Alias["util"] != "./lib/util" {
		t.Error("Merge modified the target")
	}
	if base.Format != nil {
		t.Error("Merge modified the target format")
	}
}

func TestMerge_Idempotent(t *testing.T) {
	t.Parallel()

	x := &Task{
		Input:   List[string]{"a", "b"},
		Bundle:  Ptr(true),
		Resolve: &ResolveOptions{Conditions: NewSet("import")},
	}
	y := &Task{
		Input:     List[string]{"b", "c"},
		Resolve:   &ResolveOptions{Conditions: NewSet("node"), MainFields: List[string]{"module"}},
		Transform: &TransformOptions{Target: List[string]{"es2020"}},
	}

	once := Merge(x, y)
	if again := Merge(once); !reflect.DeepEqual(again, once) {
		t.Errorf("Merge(Merge(x, y)) = %+v, want %+v", again, once)
	}
	if repeated := Merge(x, y, y); !reflect.DeepEqual(repeated, once) {
		t.Errorf("Merge(x, y, y) = %+v, want %+v", repeated, once)
	}
}

func TestMerge_Associative(t *testing.T) {
	t.Parallel()

	a := &Task{Input: List[string]{"a"}, Outdir: Ptr("one")}
	b := &Task{Input: List[string]{"b"}, Resolve: &ResolveOptions{Conditions: NewSet("x")}}
	c := &Task{Input: List[string]{"a", "c"}, Outdir: Ptr("three")}

	left := Merge(Merge(a, b), c)
	right := Merge(a, Merge(b, c))
	if !reflect.DeepEqual(left, right) {
		t.Errorf("(a+b)+c = %+v, a+(b+c) = %+v", left, right)
	}
}

func TestConfig_Expand(t *testing.T) {
	t.Parallel()

	var nilCfg *Config
	if nilCfg.Expand() != nil {
		t.Error("nil config should expand to nil")
	}

	inferred := (&Config{Base: Task{Input: List[string]{"src/index.ts"}}}).Expand()
	if len(inferred) != 1 || !slices.Equal(inferred[0].Input, List[string]{"src/index.ts"}) {
		t.Errorf("inferred = %+v, want single base task", inferred)
	}

	cfg := &Config{
		Base: Task{Outdir: Ptr("dist"), External: List[string]{"react"}},
		Tasks: []*Task{
			{Name: "esm", Format: Ptr(FormatESM)},
			{Name: "cjs", Format: Ptr(FormatCJS), External: List[string]{"lodash"}},
		},
	}
	tasks := cfg.Expand()
	if len(tasks) != 2 {
		t.Fatalf("len(tasks) = %d, want 2", len(tasks))
	}
	if tasks[0].OutdirOrDefault() != "dist" || *tasks[1].Format != FormatCJS {
		t.Errorf("tasks not seeded from base: %+v", tasks)
	}
	if !slices.Equal(tasks[1].External, List[string]{"react", "lodash"}) {
		t.Errorf("External = %v", tasks[1].External)
	}
	if len(cfg.Base.External) != 1 {
		t.Error("Expand modified the base")
	}
}

func TestTask_Validate(t *testing.T) {
	t.Parallel()

	valid := &Task{Format: Ptr(FormatIIFE), Declaration: Ptr(DeclarationAuto), Platform: Ptr(PlatformBrowser)}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	invalid := &Task{Name: "web", Format: Ptr(Format("amd")), Platform: Ptr(Platform("deno"))}
	err := invalid.Validate()
	if !errors.Is(err, ErrInvalidFormat) || !errors.Is(err, ErrInvalidPlatform) {
		t.Errorf("Validate() = %v, want both format and platform errors", err)
	}
	var fe *InvalidFormatError
	if !errors.As(err, &fe) || fe.Value != "amd" {
		t.Errorf("errors.As InvalidFormatError = %v", fe)
	}
}

func TestTask_Defaults(t *testing.T) {
	t.Parallel()

	var empty Task
	if empty.OutdirOrDefault() != DefaultOutdir {
		t.Errorf("OutdirOrDefault() = %q", empty.OutdirOrDefault())
	}
	if !empty.IsWrite() || empty.IsClean() || empty.IsBundle() || empty.IsNativeWrite() {
		t.Error("unexpected boolean defaults")
	}
	if empty.DeclarationMode() != DeclarationOff || empty.PlatformOrDefault() != PlatformNode {
		t.Error("unexpected enum defaults")
	}
	if in := empty.InputOrDefault(); len(in) != 1 || in[0] != DefaultInput {
		t.Errorf("InputOrDefault() = %v, want [%s]", in, DefaultInput)
	}
	set := Task{Input: NewList("lib/a.js")}
	if in := set.InputOrDefault(); len(in) != 1 || in[0] != "lib/a.js" {
		t.Errorf("InputOrDefault() = %v, want the configured input", in)
	}
}

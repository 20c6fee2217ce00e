// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/invowk/forge/internal/build"
	"github.com/invowk/forge/internal/config"
	"github.com/invowk/forge/internal/task"
)

type (
	fakeProvider struct {
		file *config.File
		err  error
		opts config.LoadOptions
	}

	fakeBuilder struct {
		report *build.Report
		err    error
		opts   build.Options
		calls  int
	}

	testApp struct {
		*App
		stdout   *bytes.Buffer
		stderr   *bytes.Buffer
		provider *fakeProvider
		builder  *fakeBuilder
	}
)

func (p *fakeProvider) Load(_ context.Context, opts config.LoadOptions) (*config.File, error) {
	p.opts = opts
	return p.file, p.err
}

func (b *fakeBuilder) Run(_ context.Context, _ *task.Config, opts build.Options) (*build.Report, error) {
	b.calls++
	b.opts = opts
	return b.report, b.err
}

func newTestApp(t *testing.T, provider *fakeProvider, builder *fakeBuilder) *testApp {
	t.Helper()

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	if builder == nil {
		builder = &fakeBuilder{report: &build.Report{}}
	}
	app := NewApp(Dependencies{
		Config:  provider,
		Builder: builder,
		Stdout:  stdout,
		Stderr:  stderr,
	})
	return &testApp{App: app, stdout: stdout, stderr: stderr, provider: provider, builder: builder}
}

// execute runs the command tree with args the way main does, minus fang.
func (a *testApp) execute(args ...string) error {
	root := NewRootCommand(a.App)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func sampleFile() *config.File {
	return &config.File{
		Path: "/proj/forge.cue",
		Config: &task.Config{
			Base: task.Task{Outdir: task.Ptr("dist")},
			Tasks: []*task.Task{
				{Name: "app", Input: task.NewList("src/index.ts")},
				{Name: "cli", Input: task.NewList("src/cli.ts")},
			},
		},
	}
}

// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/invowk/forge/internal/backend"
	"github.com/invowk/forge/internal/diag"
	"github.com/invowk/forge/internal/fsys"
	"github.com/invowk/forge/internal/task"
)

type (
	// Stage is implemented by every pipeline stage.
	Stage interface {
		Name() string
	}

	// Starter runs once when a task starts, before any resolution.
	Starter interface {
		OnStart(ctx context.Context, sc *StageContext) error
	}

	// Resolver resolves module specifiers. A nil Resolution means the
	// stage leaves the specifier untouched.
	Resolver interface {
		OnResolve(ctx context.Context, sc *StageContext, req ResolveRequest) (*backend.Resolution, error)
	}

	// Cleaner prepares output directories before rendering.
	Cleaner interface {
		OnClean(ctx context.Context, sc *StageContext) error
	}

	// Declarer adds type declaration artifacts to a rendered bundle.
	Declarer interface {
		OnDeclare(ctx context.Context, sc *StageContext, b *Bundle) error
	}

	// Annotator attaches metadata to artifacts.
	Annotator interface {
		OnAnnotate(ctx context.Context, sc *StageContext, b *Bundle) error
	}

	// Writer persists artifacts.
	Writer interface {
		OnWrite(ctx context.Context, sc *StageContext, b *Bundle) error
	}

	// Pipeline is an ordered list of stages. Hooks run in list order.
	Pipeline []Stage

	// ResolveRequest is a specifier to resolve.
	ResolveRequest struct {
		Specifier string
		Importer  string
		IsEntry   bool
	}

	// StageContext is the per-task state handed to every hook.
	StageContext struct {
		Invocation *Invocation
		Task       *task.Task
		// Root is absolute with a trailing separator.
		Root string
		// Outdir is the absolute output directory.
		Outdir string
		FS     fsys.FileSystem
		Logger *slog.Logger

		messages []diag.Message
	}

	// Bundle is the rendered output of one task.
	Bundle struct {
		Inputs  []backend.Input
		Outputs []*backend.Output
		// Sources holds the original text of loaded modules by path.
		Sources map[string]string
	}
)

// Default returns the standard stage order for one task. The resolve stage
// keeps per-task state, so every task needs its own Pipeline.
func Default(compiler backend.Compiler) Pipeline {
	return Pipeline{
		NewResolveStage(),
		CleanStage{},
		&DeclarationStage{Compiler: compiler},
		MetadataStage{},
		WriteStage{},
	}
}

// NewStageContext binds a task to an invocation. root must already be
// normalized.
func NewStageContext(inv *Invocation, t *task.Task, root string, files fsys.FileSystem) *StageContext {
	outdir := t.OutdirOrDefault()
	if !filepath.IsAbs(outdir) {
		outdir = filepath.Join(root, outdir)
	}
	return &StageContext{
		Invocation: inv,
		Task:       t,
		Root:       root,
		Outdir:     filepath.Clean(outdir),
		FS:         files,
		Logger:     inv.Logger().With("task", t.DisplayName()),
	}
}

// Report records a diagnostic against the task.
func (sc *StageContext) Report(m diag.Message) {
	sc.messages = append(sc.messages, m)
}

// Messages returns the diagnostics recorded so far.
func (sc *StageContext) Messages() []diag.Message {
	return sc.messages
}

// Start runs every Starter.
func (p Pipeline) Start(ctx context.Context, sc *StageContext) error {
	for _, s := range p {
		if h, ok := s.(Starter); ok {
			if err := h.OnStart(ctx, sc); err != nil {
				return fmt.Errorf("%s: start: %w", s.Name(), err)
			}
		}
	}
	return nil
}

// Resolve asks each Resolver in order and returns the first resolution.
func (p Pipeline) Resolve(ctx context.Context, sc *StageContext, req ResolveRequest) (*backend.Resolution, error) {
	for _, s := range p {
		h, ok := s.(Resolver)
		if !ok {
			continue
		}
		res, err := h.OnResolve(ctx, sc, req)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
	}
	return nil, nil
}

// Clean runs every Cleaner.
func (p Pipeline) Clean(ctx context.Context, sc *StageContext) error {
	for _, s := range p {
		if h, ok := s.(Cleaner); ok {
			if err := h.OnClean(ctx, sc); err != nil {
				return fmt.Errorf("%s: %w", s.Name(), err)
			}
		}
	}
	return nil
}

// Declare runs every Declarer.
func (p Pipeline) Declare(ctx context.Context, sc *StageContext, b *Bundle) error {
	for _, s := range p {
		if h, ok := s.(Declarer); ok {
			if err := h.OnDeclare(ctx, sc, b); err != nil {
				return fmt.Errorf("%s: %w", s.Name(), err)
			}
		}
	}
	return nil
}

// Annotate runs every Annotator.
func (p Pipeline) Annotate(ctx context.Context, sc *StageContext, b *Bundle) error {
	for _, s := range p {
		if h, ok := s.(Annotator); ok {
			if err := h.OnAnnotate(ctx, sc, b); err != nil {
				return fmt.Errorf("%s: %w", s.Name(), err)
			}
		}
	}
	return nil
}

// Write runs every Writer.
func (p Pipeline) Write(ctx context.Context, sc *StageContext, b *Bundle) error {
	for _, s := range p {
		if h, ok := s.(Writer); ok {
			if err := h.OnWrite(ctx, sc, b); err != nil {
				return fmt.Errorf("%s: %w", s.Name(), err)
			}
		}
	}
	return nil
}

// Find returns the artifact with the given file name.
func (b *Bundle) Find(fileName string) *backend.Output {
	for _, o := range b.Outputs {
		if o.FileName == fileName {
			return o
		}
	}
	return nil
}

// Set adds out, replacing an artifact with the same file name.
func (b *Bundle) Set(out *backend.Output) {
	for i, o := range b.Outputs {
		if o.FileName == out.FileName {
			b.Outputs[i] = out
			return
		}
	}
	b.Outputs = append(b.Outputs, out)
}

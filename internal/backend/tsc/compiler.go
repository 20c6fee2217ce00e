// SPDX-License-Identifier: MPL-2.0

package tsc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/invowk/forge/internal/backend"
	"github.com/invowk/forge/internal/diag"
)

const (
	// DefaultProgram is the compiler executable used by the default command.
	DefaultProgram = "tsc"

	srcDir = "src"
	outDir = "out"

	exitCommandNotFound = 127
)

type (
	// Compiler runs a declaration compiler command. The zero value runs tsc
	// from PATH.
	Compiler struct {
		// Command replaces the generated command line.
		Command string
		// Env is appended to the process environment.
		Env []string
		// Scratch holds the mirrored sources. Nil means the OS filesystem.
		Scratch afero.Fs
		Logger  *slog.Logger
	}

	// RunError reports a compiler command that failed without producing
	// diagnostics.
	RunError struct {
		Command  string
		ExitCode int
		Stderr   string
	}
)

// New returns a Compiler that runs command, or the default tsc command line
// when command is empty.
func New(command string) *Compiler {
	return &Compiler{Command: command}
}

// Emit implements backend.Compiler.
func (c *Compiler) Emit(ctx context.Context, opts backend.CompileOptions, host backend.CompilerHost) ([]diag.CompilerDiagnostic, error) {
	scratchFs := c.Scratch
	if scratchFs == nil {
		scratchFs = afero.NewOsFs()
	}
	scratch, err := afero.TempDir(scratchFs, "", "forge-dts-")
	if err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	defer func() { _ = scratchFs.RemoveAll(scratch) }()

	m := &mirror{fs: scratchFs, dir: scratch, root: opts.Root}
	files, err := m.copyIn(opts.RootNames, host)
	if err != nil {
		return nil, err
	}
	if err := scratchFs.MkdirAll(m.out(), 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", m.out(), err)
	}

	command := c.commandLine(opts)
	env := append(os.Environ(), c.Env...)
	env = append(env,
		"FORGE_DTS_ROOT="+m.src(),
		"FORGE_DTS_OUT="+m.out(),
		"FORGE_DTS_FILES="+strings.Join(files, " "),
	)
	if opts.TSConfig != "" {
		env = append(env, "FORGE_DTS_TSCONFIG="+opts.TSConfig)
	}

	stdout, stderr, exitCode, err := c.run(ctx, command, scratch, env)
	if err != nil {
		return nil, err
	}

	diagnostics := parseDiagnostics(stdout+stderr, m, host)
	if exitCode != 0 && (len(diagnostics) == 0 || exitCode == exitCommandNotFound) {
		return diagnostics, &RunError{Command: command, ExitCode: exitCode, Stderr: strings.TrimSpace(stderr)}
	}

	if err := m.copyOut(opts.OutDir, host); err != nil {
		return diagnostics, err
	}
	return diagnostics, nil
}

func (c *Compiler) commandLine(opts backend.CompileOptions) string {
	if opts.Command != "" {
		return opts.Command
	}
	if c.Command != "" {
		return c.Command
	}
	args := []string{DefaultProgram, "--declaration", "--pretty", "false"}
	if opts.DeclarationOnly {
		args = append(args, "--emitDeclarationOnly")
	}
	if opts.SkipLibCheck {
		args = append(args, "--skipLibCheck")
	}
	args = append(args, `--rootDir "$FORGE_DTS_ROOT"`, `--outDir "$FORGE_DTS_OUT"`, "$FORGE_DTS_FILES")
	return strings.Join(args, " ")
}

func (c *Compiler) run(ctx context.Context, command, dir string, env []string) (string, string, int, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(command), "declaration")
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to parse declaration command: %w", err)
	}

	var stdout, stderr bytes.Buffer
	runner, err := interp.New(
		interp.Dir(dir),
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(nil, &stdout, &stderr),
		interp.ExecHandlers(c.execHandler),
	)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to create interpreter: %w", err)
	}

	exitCode := 0
	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if !errors.As(err, &exitStatus) {
			return "", "", 0, fmt.Errorf("declaration command failed: %w", err)
		}
		exitCode = int(exitStatus)
	}
	return stdout.String(), stderr.String(), exitCode, nil
}

func (c *Compiler) execHandler(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		c.logger().Debug("declaration compiler exec", "args", args)
		return next(ctx, args)
	}
}

func (c *Compiler) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (e *RunError) Error() string {
	msg := fmt.Sprintf("declaration command %q exited with status %d", e.Command, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// mirror maps host paths under root to a scratch directory layout.
type mirror struct {
	fs   afero.Fs
	dir  string
	root string
}

func (m *mirror) src() string { return filepath.Join(m.dir, srcDir) }
func (m *mirror) out() string { return filepath.Join(m.dir, outDir) }

// copyIn writes every root file read through host into the scratch source
// tree and returns the mirrored paths.
func (m *mirror) copyIn(rootNames []string, host backend.CompilerHost) ([]string, error) {
	files := make([]string, 0, len(rootNames))
	for _, name := range rootNames {
		rel, err := filepath.Rel(m.root, name)
		if err != nil || strings.HasPrefix(rel, "..") {
			rel = filepath.Base(name)
		}
		data, err := host.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		target := filepath.Join(m.src(), rel)
		if err := m.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, err
		}
		if err := afero.WriteFile(m.fs, target, data, 0o644); err != nil {
			return nil, err
		}
		files = append(files, target)
	}
	return files, nil
}

// copyOut hands every emitted file to the host under outDir.
func (m *mirror) copyOut(outDir string, host backend.CompilerHost) error {
	return afero.Walk(m.fs, m.out(), func(p string, info fs.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(m.out(), p)
		if err != nil {
			return err
		}
		data, err := afero.ReadFile(m.fs, p)
		if err != nil {
			return err
		}
		return host.WriteFile(filepath.Join(outDir, rel), data)
	})
}

// hostPath maps a path printed by the compiler back to the host path.
func (m *mirror) hostPath(p string) string {
	if !filepath.IsAbs(p) {
		p = filepath.Join(m.dir, p)
	}
	rel, err := filepath.Rel(m.src(), p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return p
	}
	return filepath.Join(m.root, rel)
}

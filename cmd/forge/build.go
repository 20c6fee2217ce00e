// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/invowk/forge/internal/build"
	"github.com/invowk/forge/internal/config"
	"github.com/invowk/forge/internal/watch"
	"github.com/invowk/forge/pkg/types"
)

// errBuildFailed is wrapped by the exit error when any task failed.
var errBuildFailed = errors.New("one or more builds failed")

type (
	buildFlagValues struct {
		watch      bool
		jsonOutput bool
	}

	// buildOutcome is what one build pass leaves behind for watch mode.
	buildOutcome struct {
		dir     string
		outdirs []string
		report  *build.Report
	}
)

func newBuildCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &buildFlagValues{}

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Build every task of the project configuration",
		Long: `Build every task of the project configuration.

The configuration is read from forge.cue, forge.json, forge.toml or
forge.yaml in the working directory, or from the file given with --config.
A failed task does not stop the others; the command exits with status 1
when any task failed and 2 when the configuration is invalid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.watch && flags.jsonOutput {
				return fmt.Errorf("--watch and --json cannot be used together")
			}
			if flags.watch {
				return runWatchMode(cmd, app, rootFlags)
			}
			_, err := runBuild(cmd.Context(), app, rootFlags, flags.jsonOutput)
			if err != nil {
				cmd.SilenceErrors = true
				cmd.SilenceUsage = true
			}
			return err
		},
	}

	buildCmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "rebuild when sources change")
	buildCmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "print the report as JSON")

	return buildCmd
}

// runBuild loads the configuration and runs one build pass. Errors are
// rendered before they are returned as *ExitError.
func runBuild(ctx context.Context, app *App, rootFlags *rootFlagValues, jsonOutput bool) (*buildOutcome, error) {
	logger := newLogger(app.stderr, rootFlags.verbose)

	file, err := app.Config.Load(ctx, rootFlags.loadOptions())
	if err != nil {
		renderError(app.stderr, err, rootFlags.verbose)
		return nil, &ExitError{Code: types.ExitConfigError, Err: err}
	}

	dir := filepath.Dir(file.Path)
	logger.Debug("configuration loaded", "path", file.Path)

	report, err := app.Builder.Run(ctx, file.Config, build.Options{Cwd: dir, Logger: logger})
	if err != nil {
		renderError(app.stderr, err, rootFlags.verbose)
		return nil, &ExitError{Code: types.ExitConfigError, Err: err}
	}

	tasks := file.Config.Expand()
	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = t.DisplayName()
	}

	outcome := &buildOutcome{dir: dir, report: report}
	for _, res := range report.Builds {
		if res.Outdir != "" {
			outcome.outdirs = append(outcome.outdirs, res.Outdir)
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(app.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return outcome, fmt.Errorf("encoding report: %w", err)
		}
	} else {
		for i, res := range report.Builds {
			logMessages(ctx, logger, names[i], res)
		}
		renderReport(app.stdout, names, report, rootFlags.verbose)
		renderGuidance(app.stderr, report)
	}

	if report.Failed() {
		return outcome, &ExitError{Code: types.ExitBuildFailed, Err: errBuildFailed}
	}
	return outcome, nil
}

// runWatchMode builds once, then rebuilds whenever a source or the
// configuration changes. It blocks until the context is canceled.
func runWatchMode(cmd *cobra.Command, app *App, rootFlags *rootFlagValues) error {
	ctx := cmd.Context()

	fmt.Fprintf(app.stdout, "%s Watch mode: initial build\n", CmdStyle.Render("→"))
	outcome, err := runBuild(ctx, app, rootFlags, false)
	if outcome == nil {
		cmd.SilenceErrors = true
		cmd.SilenceUsage = true
		return err
	}

	fmt.Fprintf(app.stdout, "\n%s Watching %s for changes (Ctrl+C to stop)...\n\n",
		CmdStyle.Render("→"), SubtitleStyle.Render(outcome.dir))

	w, err := watch.New(watch.Config{
		Root:    outcome.dir,
		Outdirs: outcome.outdirs,
		Logger:  newLogger(app.stderr, rootFlags.verbose),
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintf(app.stdout, "%s Detected %d change(s). Rebuilding...\n", CmdStyle.Render("→"), len(changed))
			if _, err := runBuild(ctx, app, rootFlags, false); err != nil {
				fmt.Fprintf(app.stderr, "%s %v\n", WarningStyle.Render("!"), err)
			}
			fmt.Fprintf(app.stdout, "\n%s Watching for changes...\n\n", CmdStyle.Render("→"))
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	return w.Run(ctx)
}

func (f *rootFlagValues) loadOptions() config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: types.FilesystemPath(f.configPath)}
}

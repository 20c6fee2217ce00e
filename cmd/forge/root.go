// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the persistent flags shared by every subcommand.
type rootFlagValues struct {
	verbose    bool
	configPath string
}

// NewRootCommand creates the forge command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	rootFlags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "forge",
		Short: "A task-based JavaScript and TypeScript build engine",
		Long: TitleStyle.Render("forge") + SubtitleStyle.Render(" - A task-based JavaScript and TypeScript build engine") + `

forge reads a list of build tasks, merges each one with the shared base
configuration, and bundles, transpiles and writes every task in order.
A failing task is reported without stopping the others.

` + SubtitleStyle.Render("Examples:") + `
  forge build               Build every task
  forge build --watch       Rebuild when sources change
  forge build --json        Print the build report as JSON
  forge config show         Show the expanded task list`,
	}

	rootCmd.PersistentFlags().BoolVarP(&rootFlags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&rootFlags.configPath, "config", "", "config file (default is ./forge.{cue,json,toml,yaml})")

	rootCmd.AddCommand(newBuildCommand(app, rootFlags))
	rootCmd.AddCommand(newConfigCommand(app, rootFlags))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the forge command tree and exits with the status the
// command asked for. It is called by main.main().
func Execute() {
	rootCmd := NewRootCommand(NewApp(Dependencies{}))

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(int(processExitCode(err)))
	}
}

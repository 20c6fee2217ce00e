// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/invowk/forge/internal/config"
	"github.com/invowk/forge/pkg/types"
)

// newConfigCommand creates the `forge config` command tree.
func newConfigCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the build configuration",
		Long: `Inspect the build configuration.

forge reads the first of these files found in the working directory:
  - forge.cue
  - forge.json
  - forge.toml
  - forge.yaml / forge.yml

Top-level fields seed every entry of the tasks list. FORGE_* environment
variables (for example FORGE_OUTDIR or FORGE_CLEAN=true) override them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the expanded task list as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := app.Config.Load(cmd.Context(), rootFlags.loadOptions())
			if err != nil {
				renderError(app.stderr, err, rootFlags.verbose)
				cmd.SilenceErrors = true
				cmd.SilenceUsage = true
				return &ExitError{Code: types.ExitConfigError, Err: err}
			}

			enc := json.NewEncoder(app.stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(file.Config.Expand())
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := app.Config.Load(cmd.Context(), rootFlags.loadOptions())
			if err != nil {
				renderError(app.stderr, err, rootFlags.verbose)
				cmd.SilenceErrors = true
				cmd.SilenceUsage = true
				return &ExitError{Code: types.ExitConfigError, Err: err}
			}
			fmt.Fprintln(app.stdout, file.Path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "schema",
		Short: "Print the CUE schema configuration files are validated against",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := app.stdout.Write(config.Schema())
			return err
		},
	})

	return cfgCmd
}

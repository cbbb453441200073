// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/blastradius/blastradius/internal/config"
	"github.com/blastradius/blastradius/pkg/types"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `blastradius config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	tolerant := map[string]string{tolerateConfigErrors: "true"}

	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage blastradius configuration",
		Long: `Manage blastradius configuration.

The user configuration is stored in:
  - Linux: ~/.config/blastradius/config.cue
  - macOS: ~/Library/Application Support/blastradius/config.cue
  - Windows: %APPDATA%\blastradius\config.cue

blastradius.config.cue in the working directory is merged over it, and
BLASTRADIUS_* environment variables (BLASTRADIUS_STRATEGY,
BLASTRADIUS_OUTPUT_FORMAT, ...) override both.`,
		Annotations: tolerant,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:         "show",
		Short:       "Show the effective configuration as CUE",
		Args:        cobra.NoArgs,
		Annotations: tolerant,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showConfig()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:         "path",
		Short:       "Show the configuration files that are consulted",
		Args:        cobra.NoArgs,
		Annotations: tolerant,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showConfigPath()
		},
	})

	var project bool
	initCmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a default configuration file",
		Args:        cobra.NoArgs,
		Annotations: tolerant,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.initConfig(project)
		},
	}
	initCmd.Flags().BoolVar(&project, "project", false, "write ./"+config.ProjectConfigFileName+" instead of the user config")
	cfgCmd.AddCommand(initCmd)

	return cfgCmd
}

func (a *App) showConfig() error {
	sources := a.sources()
	if len(sources) == 0 {
		_, _ = fmt.Fprintln(a.stdout, "// (using defaults)")
	}
	for _, src := range sources {
		_, _ = fmt.Fprintf(a.stdout, "// source: %s\n", src)
	}
	_, _ = fmt.Fprint(a.stdout, config.GenerateCUE(a.settings()))
	return nil
}

func (a *App) showConfigPath() error {
	paths, err := config.SearchPaths(config.LoadOptions{ConfigFilePath: types.FilesystemPath(a.flags.configFile)})
	if err != nil {
		return err
	}
	loaded := a.sources()
	for _, path := range paths {
		state := SubtitleStyle.Render("(not found)")
		if slices.Contains(loaded, path) {
			state = SuccessStyle.Render("(loaded)")
		}
		_, _ = fmt.Fprintf(a.stdout, "%s %s\n", path, state)
	}
	return nil
}

func (a *App) initConfig(project bool) error {
	var path string
	if project {
		path = config.ProjectConfigFileName
	} else {
		cfgDir, err := config.ConfigDir()
		if err != nil {
			return err
		}
		path = filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
	}

	created, err := config.CreateDefaultConfig(path)
	if err != nil {
		return err
	}
	if !created {
		_, _ = fmt.Fprintf(a.stdout, "%s already exists\n", path)
		return nil
	}
	_, _ = fmt.Fprintf(a.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

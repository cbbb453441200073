// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/blastradius/blastradius/internal/config"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// tolerateConfigErrors marks commands that keep working with defaults when
// the configuration does not load, so a broken config can still be inspected
// and replaced.
const tolerateConfigErrors = "blastradius/tolerate-config-errors"

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Decide which modules of a repository changed since the last build",
		Long: TitleStyle.Render("blastradius") + SubtitleStyle.Render(" - change detection for multi-module builds") + `

blastradius picks a previous commit (last successful build, previous version
tag, HEAD~1 or an explicit reference), diffs it against HEAD and marks every
module whose files, or whose runtime dependencies' files, were touched.
When no reliable diff can be established every module is reported as changed.

` + SubtitleStyle.Render("Examples:") + `
  blastradius changed                        Write the verdict of every module to changedFiles
  blastradius changed --strategy previous-tag
  blastradius module :services:api          Print true or false for one module
  blastradius range                          Show the commit range that would be diffed
  blastradius deps :app                      List the directories :app depends on`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.prepare(cmd)
		},
	}
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&app.flags.configFile, "config", "", "config file (default is $HOME/.config/blastradius/config.cue merged with ./blastradius.config.cue)")
	flags.StringVarP(&app.flags.repo, "repo", "C", "", "path inside the git repository to inspect (default \".\")")
	flags.StringVar(&app.flags.manifest, "manifest", "", "module manifest, relative to the repository root (default \"blastradius.cue\")")
	flags.StringVar(&app.flags.envFile, "env-file", "", "dotenv file consulted when a variable is not set in the environment")

	rootCmd.AddCommand(
		newChangedCommand(app),
		newModuleCommand(app),
		newRangeCommand(app),
		newTagsCommand(app),
		newDepsCommand(app),
		newValidateCommand(app),
		newConfigCommand(app),
	)

	return rootCmd
}

// prepare installs logging and loads configuration before any command runs.
func (a *App) prepare(cmd *cobra.Command) error {
	setupLogging(a.stderr, a.flags.verbose)

	if err := a.loadConfig(cmd.Context()); err != nil {
		if _, ok := cmd.Annotations[tolerateConfigErrors]; !ok {
			return err
		}
		_, _ = fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, a.flags.verbose))
	}

	// Apply verbose from config if not set via flag
	if cfg := a.settings(); cfg.UI.Verbose && !a.flags.verbose {
		setupLogging(a.stderr, true)
	}
	return nil
}

// setupLogging routes slog through a charmbracelet logger on w.
func setupLogging(w io.Writer, verbose bool) {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: config.AppName,
		Level:  log.InfoLevel,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	slog.SetDefault(slog.New(logger))
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the production App, runs the command line and exits with
// the code the outcome maps to. It is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	rootCmd := NewRootCommand(app)

	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(app.errorHandler),
	); err != nil {
		_, code := classifyError(err)
		os.Exit(int(code))
	}
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/blastradius/blastradius/internal/detect"
	"github.com/blastradius/blastradius/internal/pattern"
	"github.com/blastradius/blastradius/pkg/types"

	"github.com/spf13/cobra"
)

type moduleOptions struct {
	req      changeRequest
	exitCode bool
}

func newModuleCommand(app *App) *cobra.Command {
	var opts moduleOptions
	cmd := &cobra.Command{
		Use:   "module <path>",
		Short: "Print whether one module changed",
		Long: `Print "true" when the module at <path>, or a module it depends on at
runtime, has a changed file, and "false" otherwise.

Unlike 'blastradius changed', a changed parent module does not make this
module changed. Modules without patterns use /[^.]*.gradle, /src/main/.*
and /deploy/.*. An undetermined diff prints "true".

Without a manifest, <path> is taken as a module directory below the
repository root.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runModule(args[0], opts)
		},
	}
	addChangeFlags(cmd, &opts.req)
	cmd.Flags().BoolVar(&opts.exitCode, "exit-code", false, "exit with status 1 when the module is unchanged")
	return cmd
}

func (a *App) runModule(path string, opts moduleOptions) error {
	s, err := a.openSession(path)
	if err != nil {
		return err
	}
	source, err := s.changeSource(opts.req)
	if err != nil {
		return err
	}

	changed, changes, err := detect.New(s.tree, s.cfg.Patterns(pattern.ModuleDefaultPatterns())).ModuleChanged(source, path)
	if err != nil {
		return err
	}
	slog.Info("module verdict", "module", path, "changed", changed, "determined", changes.Determined)

	_, _ = fmt.Fprintln(a.stdout, strconv.FormatBool(changed))
	if opts.exitCode && !changed {
		return &ExitError{Code: types.ExitUnchanged}
	}
	return nil
}

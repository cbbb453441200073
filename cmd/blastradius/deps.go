// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/blastradius/blastradius/internal/issue"
	"github.com/blastradius/blastradius/internal/modgraph"

	"github.com/spf13/cobra"
)

func newDepsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "deps [module]",
		Short: "Show runtime dependencies",
		Long: `With a module path, list the module and every module in its runtime
dependency closure together with the directory whose files count for it.

Without arguments, list all modules in build order: every module after the
modules it depends on.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return app.runBuildOrder()
			}
			return app.runDeps(args[0])
		},
	}
}

func (a *App) runDeps(path string) error {
	s, err := a.openSession("")
	if err != nil {
		return err
	}
	id, err := s.tree.Lookup(path)
	if err != nil {
		return err
	}

	closure := modgraph.Closure(s.tree, id)
	dirs := modgraph.RelevantPaths(s.tree, id)
	for i, m := range closure {
		_, _ = fmt.Fprintf(a.stdout, "%s %s\n", CmdStyle.Render(s.tree.Path(m)), SubtitleStyle.Render(displayDir(dirs[i])))
	}
	return nil
}

func (a *App) runBuildOrder() error {
	s, err := a.openSession("")
	if err != nil {
		return err
	}
	order, err := modgraph.BuildOrder(s.tree)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("order modules").
			WithResource(s.manifestPath).
			WithSuggestion("Remove one depends_on entry from the cycle").
			WithIssue(issue.DependencyCycleId).
			Wrap(err).
			BuildError()
	}
	for _, path := range order {
		_, _ = fmt.Fprintln(a.stdout, path)
	}
	return nil
}

// displayDir shows the root directory as "/".
func displayDir(dir string) string {
	if dir == "" {
		return "/"
	}
	return dir
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func newRangeCommand(app *App) *cobra.Command {
	var req changeRequest
	cmd := &cobra.Command{
		Use:   "range",
		Short: "Print the commit range the selected strategy resolves to",
		Long: `Print the commit range the selected strategy resolves to as
"<previous>..<current>" full commit ids, or "undetermined" when no reliable
previous commit exists. In that case 'blastradius changed' marks every module
as changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runRange(req)
		},
	}
	cmd.Flags().StringVarP(&req.strategy, "strategy", "s", "", "how the previous commit is chosen: last-successful-build, previous-tag, previous-commit or explicit-commit")
	cmd.Flags().StringVar(&req.explicitRef, "previous-commit", "", "reference diffed against HEAD by the explicit-commit strategy")
	return cmd
}

func (a *App) runRange(req changeRequest) error {
	s, err := a.openSession("")
	if err != nil {
		return err
	}
	strategy, explicitRef, err := s.strategy(req)
	if err != nil {
		return err
	}
	resolver, err := s.resolver()
	if err != nil {
		return err
	}

	r, ok, err := resolver.Resolve(strategy, explicitRef)
	if err != nil {
		return err
	}
	if !ok {
		slog.Info("no commit range", "strategy", strategy.String())
		_, _ = fmt.Fprintln(a.stdout, "undetermined")
		return nil
	}
	_, _ = fmt.Fprintf(a.stdout, "%s..%s\n", r.Previous, r.Current)
	return nil
}

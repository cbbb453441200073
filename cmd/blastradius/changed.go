// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"log/slog"

	"github.com/blastradius/blastradius/internal/detect"
	"github.com/blastradius/blastradius/internal/pattern"
	"github.com/blastradius/blastradius/internal/report"
	"github.com/blastradius/blastradius/pkg/types"

	"github.com/spf13/cobra"
)

// stdoutFile selects standard output as the report destination.
const stdoutFile = "-"

type changedOptions struct {
	req    changeRequest
	output string
	format string
}

// addChangeFlags registers the flags shared by the commands that compute a change set.
func addChangeFlags(cmd *cobra.Command, req *changeRequest) {
	cmd.Flags().StringVarP(&req.strategy, "strategy", "s", "", "how the previous commit is chosen: last-successful-build, previous-tag, previous-commit or explicit-commit")
	cmd.Flags().StringVar(&req.explicitRef, "previous-commit", "", "reference diffed against HEAD by the explicit-commit strategy")
	cmd.Flags().StringVar(&req.diffFile, "diff-file", "", "read the changed paths from a unified diff instead of the repository")
}

func newChangedCommand(app *App) *cobra.Command {
	var opts changedOptions
	cmd := &cobra.Command{
		Use:   "changed",
		Short: "Compute the verdict of every module and write the report",
		Long: `Compute the verdict of every module and write the report.

A module is changed when a changed path matches one of its file patterns, a
pattern of a module in its runtime dependency closure, or when its parent
module is changed. The report is written to changedFiles in the repository
root by default, one "<module>,<true|false>" line per module.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runChanged(opts)
		},
	}
	addChangeFlags(cmd, &opts.req)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "report file, relative to the repository root; \"-\" prints to stdout (default \"changedFiles\")")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "report format: lines, json or yaml (default \"lines\")")
	return cmd
}

func (a *App) runChanged(opts changedOptions) error {
	s, err := a.openSession("")
	if err != nil {
		return err
	}

	formatName := s.cfg.Output.Format
	if opts.format != "" {
		formatName = opts.format
	}
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}

	source, err := s.changeSource(opts.req)
	if err != nil {
		return err
	}
	result, err := detect.New(s.tree, s.cfg.Patterns(pattern.DefaultPatterns())).Changed(source)
	if err != nil {
		return err
	}
	for _, v := range result.Sorted() {
		slog.Info("module verdict", "module", v.Path, "changed", v.Changed)
	}

	output := s.cfg.Output.File
	if opts.output != "" {
		output = opts.output
	}
	if output == stdoutFile {
		return report.Write(a.stdout, result, format)
	}
	output = types.FilesystemPath(output).Resolve(s.repo.Root())
	if err := report.WriteFile(output, result, format); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(a.stdout, summary(result)+" "+SubtitleStyle.Render("→ "+output))
	return nil
}

// summary describes a result in one line.
func summary(result *detect.Result) string {
	changed := len(result.ChangedModules())
	total := len(result.Verdicts)
	if !result.Changes.Determined {
		return fmt.Sprintf("%s: all %d modules marked %s", WarningStyle.Render("undetermined diff"), total, verdictLabel(true))
	}
	return fmt.Sprintf("%d of %d modules %s (%s, %d paths)",
		changed, total, verdictLabel(true), CmdStyle.Render(rangeLabel(result.Changes)), len(result.Changes.Paths))
}

// rangeLabel names where a determined change set came from.
func rangeLabel(changes detect.ChangeSet) string {
	if changes.Range.Previous.IsZero() {
		return "patch"
	}
	return changes.Range.String()
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/blastradius/blastradius/internal/issue"
	"github.com/blastradius/blastradius/internal/modgraph"

	"github.com/spf13/cobra"
)

func newValidateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and the module manifest",
		Long: `Check the configuration and the module manifest.

The manifest is a CUE file (blastradius.cue) or a TOML file (blastradius.toml):

  root: {
      path: ":"
      modules: [
          {path: ":A", modules: [
              {path: ":A:B", depends_on: [":C"]},
          ]},
          {path: ":C", patterns: ["/src/main/.*", "glob:**/*.proto"]},
      ]
  }

Errors: duplicate module paths, depends_on entries naming unknown modules and
invalid file patterns. Dependency cycles are reported as warnings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runValidate()
		},
	}
}

func (a *App) runValidate() error {
	s, err := a.loadSession("")
	if err != nil {
		return err
	}

	findings := modgraph.Validate(s.tree)
	for _, f := range findings {
		label := WarningStyle.Render("warning")
		if f.Severity == modgraph.SeverityError {
			label = ErrorStyle.Render("error")
		}
		if f.Module != "" {
			_, _ = fmt.Fprintf(a.stdout, "%s: %s: %v\n", label, CmdStyle.Render(f.Module), f.Err)
			continue
		}
		_, _ = fmt.Fprintf(a.stdout, "%s: %v\n", label, f.Err)
	}

	if modgraph.HasErrors(findings) {
		return issue.NewErrorContext().
			WithOperation("validate manifest").
			WithResource(s.manifestPath).
			WithSuggestion("Fix the errors listed above").
			WithIssue(issue.InvalidPatternId).
			Wrap(firstError(findings)).
			BuildError()
	}

	source := s.manifestPath
	if source == "" {
		source = "no manifest, single module"
	}
	_, _ = fmt.Fprintf(a.stdout, "%s %d modules (%s)\n", SuccessStyle.Render("✓"), s.tree.Len(), source)
	return nil
}

func firstError(findings []modgraph.Finding) error {
	for _, f := range findings {
		if f.Severity == modgraph.SeverityError {
			return f.Err
		}
	}
	return nil
}

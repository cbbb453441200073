// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/blastradius/blastradius/internal/buildenv"
	"github.com/blastradius/blastradius/internal/commitrange"
	"github.com/blastradius/blastradius/internal/gitrepo"
	"github.com/blastradius/blastradius/internal/issue"
	"github.com/blastradius/blastradius/internal/manifest"
	"github.com/blastradius/blastradius/internal/modgraph"
	"github.com/blastradius/blastradius/internal/pattern"
	"github.com/blastradius/blastradius/internal/report"
	"github.com/blastradius/blastradius/pkg/types"

	"github.com/charmbracelet/fang"
	"golang.org/x/term"
)

// classifyError maps an error to its catalog issue (0 when none applies) and
// the process exit code.
func classifyError(err error) (issue.Id, types.ExitCode) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return 0, exitErr.Code
	}

	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.IssueID != 0 {
		return ae.IssueID, exitCodeForIssue(ae.IssueID)
	}

	var id issue.Id
	switch {
	case errors.Is(err, commitrange.ErrInvalidStrategy):
		id = issue.InvalidStrategyId
	case errors.Is(err, commitrange.ErrExplicitRefRequired):
		id = issue.ExplicitRefRequiredId
	case errors.Is(err, commitrange.ErrUnresolvedExplicitRef):
		id = issue.UnresolvedRefId
	case errors.Is(err, pattern.ErrInvalidPattern):
		id = issue.InvalidPatternId
	case errors.Is(err, modgraph.ErrUnknownModule):
		id = issue.UnknownModuleId
	case errors.Is(err, report.ErrInvalidFormat):
		id = issue.InvalidReportFormatId
	case errors.Is(err, buildenv.ErrEnvFileNotFound):
		id = issue.EnvFileNotFoundId
	case errors.Is(err, manifest.ErrNotFound):
		id = issue.ManifestNotFoundId
	case errors.Is(err, gitrepo.ErrNotRepository):
		id = issue.NotARepositoryId
	}
	if id != 0 {
		return id, exitCodeForIssue(id)
	}

	if commitrange.IsConfigurationError(err) {
		return 0, types.ExitConfiguration
	}
	return 0, types.ExitFailure
}

func exitCodeForIssue(id issue.Id) types.ExitCode {
	if id == issue.NotARepositoryId {
		return types.ExitFailure
	}
	return types.ExitConfiguration
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// errorHandler is the fang error handler: it prints the error and, for
// well-known failures, the catalog entry explaining how to fix it.
func (a *App) errorHandler(w io.Writer, _ fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	id, _ := classifyError(err)
	_, _ = fmt.Fprintln(w, ErrorStyle.Render("Error:")+" "+formatErrorForDisplay(err, a.settings().UI.Verbose))
	renderIssue(w, id, glamourStyle(a.stderr))
}

// renderIssue writes the catalog entry for id, if any.
func renderIssue(w io.Writer, id issue.Id, style string) {
	if id == 0 {
		return
	}
	catalogEntry := issue.Get(id)
	if catalogEntry == nil {
		return
	}
	rendered, err := catalogEntry.Render(style)
	if err != nil {
		slog.Warn("failed to render issue catalog entry", "issueID", id, "error", err)
		return
	}
	_, _ = fmt.Fprint(w, rendered)
}

// glamourStyle picks the dark style on terminals and plain text otherwise.
func glamourStyle(w io.Writer) string {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) && os.Getenv("NO_COLOR") == "" {
		return "dark"
	}
	return "notty"
}

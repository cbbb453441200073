// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Color palette - shared hex colors for consistent theming across all CLI output.
// These colors are designed for dark terminal backgrounds with good contrast.
const (
	// ColorPrimary is purple - used for titles and headers.
	ColorPrimary = lipgloss.Color("#7C3AED")

	// ColorMuted is gray - used for subtitles and de-emphasized content.
	ColorMuted = lipgloss.Color("#6B7280")

	// ColorChanged is amber - used for modules that need rebuilding.
	ColorChanged = lipgloss.Color("#F59E0B")

	// ColorSuccess is green - used for success states and unchanged modules.
	ColorSuccess = lipgloss.Color("#10B981")

	// ColorError is red - used for errors and failures.
	ColorError = lipgloss.Color("#EF4444")

	// ColorHighlight is blue - used for module paths, commit ids and commands.
	ColorHighlight = lipgloss.Color("#3B82F6")
)

// Base styles - reusable lipgloss styles built from the color palette.
var (
	// TitleStyle is for primary headers and section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for success messages and positive indicators.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for error messages and failure indicators.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle is for warnings such as dependency cycles.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorChanged)

	// CmdStyle is for module paths, commit ids and commands.
	CmdStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	// ChangedStyle marks a changed verdict.
	ChangedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorChanged)

	// UnchangedStyle marks an unchanged verdict.
	UnchangedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// verdictLabel renders a verdict for humans.
func verdictLabel(changed bool) string {
	if changed {
		return ChangedStyle.Render("changed")
	}
	return UnchangedStyle.Render("unchanged")
}

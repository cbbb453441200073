// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/blastradius/blastradius/internal/tagindex"

	"github.com/spf13/cobra"
)

func newTagsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List version tags in precedence order",
		Long: `List every tag that parses as a semantic version, lowest first, with the
commit it points at. The version tag on HEAD, if any, is marked; it is what
the previous-tag strategy starts from.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runTags()
		},
	}
}

func (a *App) runTags() error {
	s, err := a.openSession("")
	if err != nil {
		return err
	}

	index := tagindex.New(s.repo)
	versions, err := index.AllVersions()
	if err != nil {
		return err
	}
	head, onHead, err := index.HeadVersion()
	if err != nil {
		return err
	}

	if len(versions) == 0 {
		_, _ = fmt.Fprintln(a.stdout, SubtitleStyle.Render("(no version tags)"))
		return nil
	}
	for _, v := range versions {
		tag, _, err := index.Tag(v.Original)
		if err != nil {
			return err
		}
		line := fmt.Sprintf("%s %s", v.Original, CmdStyle.Render(tag.Target().Short()))
		if onHead && v.Equal(head) {
			line += " " + SuccessStyle.Render("(HEAD)")
		}
		_, _ = fmt.Fprintln(a.stdout, line)
	}
	return nil
}

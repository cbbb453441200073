// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	NotARepositoryId Id = iota + 1
	ManifestNotFoundId
	ManifestParseErrorId
	ConfigLoadFailedId
	InvalidStrategyId
	ExplicitRefRequiredId
	UnresolvedRefId
	InvalidPatternId
	UnknownModuleId
	DependencyCycleId
	InvalidReportFormatId
	EnvFileNotFoundId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range append(i.DocLinks(), i.extLinks...) {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	notARepositoryIssue = &Issue{
		id: NotARepositoryId,
		mdMsg: `
# Not a git repository!

blastradius diffs commits, so it has to run inside a git working tree.

## Things you can try:
- Run the command from the repository root, or any directory below it
- Point it at the repository explicitly:
~~~
$ blastradius --repo /path/to/checkout changed
~~~
- In CI, make sure the checkout step ran before this one`,
	}

	manifestNotFoundIssue = &Issue{
		id: ManifestNotFoundId,
		mdMsg: `
# No module manifest found!

The module tree is declared in ` + "`blastradius.cue`" + ` (or ` + "`blastradius.toml`" + `) at the repository root.

## Things you can try:
- Create a manifest:
~~~cue
root: {
	path: ":"
	modules: [
		{path: ":api", depends_on: [":core"]},
		{path: ":core"},
	]
}
~~~
- Or point to an existing one:
~~~
$ blastradius --manifest build/modules.cue changed
~~~`,
	}

	manifestParseErrorIssue = &Issue{
		id: ManifestParseErrorId,
		mdMsg: `
# Failed to parse the module manifest!

## Common issues:
- Invalid CUE or TOML syntax
- Unknown field names (allowed: path, dir, patterns, depends_on, aggregate, modules)
- Two modules with the same path
- A depends_on entry naming a module that is not declared

## Things you can try:
- Check the error message above for the failing field
- Run the validator:
~~~
$ blastradius validate
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try:
- Check the CUE syntax of your config file
- Show where blastradius looks for it:
~~~
$ blastradius config path
~~~
- Write a fresh one with every default:
~~~
$ blastradius config init
~~~`,
	}

	invalidStrategyIssue = &Issue{
		id: InvalidStrategyId,
		mdMsg: `
# Invalid diff strategy!

## Valid strategies:
- ` + "`last-successful-build`" + ` (default): diff against GIT_PREVIOUS_SUCCESSFUL_COMMIT
- ` + "`previous-tag`" + `: diff against the previous release tag
- ` + "`previous-commit`" + `: diff against HEAD~1
- ` + "`explicit-commit`" + `: diff against --previous-commit`,
	}

	explicitRefRequiredIssue = &Issue{
		id: ExplicitRefRequiredId,
		mdMsg: `
# No previous commit given!

The explicit-commit strategy needs the reference to diff against.

## Things you can try:
~~~
$ blastradius changed --strategy explicit-commit --previous-commit origin/main
~~~`,
	}

	unresolvedRefIssue = &Issue{
		id: UnresolvedRefId,
		mdMsg: `
# Previous commit does not resolve!

The reference given with --previous-commit is not a commit in this repository.

## Things you can try:
- Fetch the history your CI checkout is missing (shallow clones often lack it)
- Check for typos in the branch, tag or commit id`,
	}

	invalidPatternIssue = &Issue{
		id: InvalidPatternId,
		mdMsg: `
# Invalid file pattern!

Patterns are regular expressions that must match the whole path, or
doublestar globs prefixed with ` + "`glob:`" + `.

## Examples:
~~~cue
patterns: ["/src/main/.*", "/[^.]*.gradle", "glob:/deploy/**"]
~~~`,
	}

	unknownModuleIssue = &Issue{
		id: UnknownModuleId,
		mdMsg: `
# Module not found!

## Things you can try:
- List the modules of the manifest:
~~~
$ blastradius validate
~~~
- Module paths accept both ` + "`:a:b`" + ` and ` + "`a/b`" + ` forms`,
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Dependency cycle detected!

Change detection still terminates, but a cycle usually means a depends_on entry is wrong.

## Things you can try:
- Review the depends_on lists of the modules named above
- Inspect one module's closure:
~~~
$ blastradius deps :api
~~~`,
	}

	invalidReportFormatIssue = &Issue{
		id: InvalidReportFormatId,
		mdMsg: `
# Invalid report format!

## Valid formats:
- ` + "`lines`" + ` (default): one ` + "`path,true|false`" + ` line per module
- ` + "`json`" + `
- ` + "`yaml`",
	}

	envFileNotFoundIssue = &Issue{
		id: EnvFileNotFoundId,
		mdMsg: `
# Env file not found!

## Things you can try:
- Check the path given in environment.env_file or --env-file
- Remove the setting to read the process environment only`,
	}

	issues = map[Id]*Issue{
		notARepositoryIssue.Id():      notARepositoryIssue,
		manifestNotFoundIssue.Id():    manifestNotFoundIssue,
		manifestParseErrorIssue.Id():  manifestParseErrorIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		invalidStrategyIssue.Id():     invalidStrategyIssue,
		explicitRefRequiredIssue.Id(): explicitRefRequiredIssue,
		unresolvedRefIssue.Id():       unresolvedRefIssue,
		invalidPatternIssue.Id():      invalidPatternIssue,
		unknownModuleIssue.Id():       unknownModuleIssue,
		dependencyCycleIssue.Id():     dependencyCycleIssue,
		invalidReportFormatIssue.Id(): invalidReportFormatIssue,
		envFileNotFoundIssue.Id():     envFileNotFoundIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}

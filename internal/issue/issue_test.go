// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"strings"
	"testing"
)

var allIds = []Id{
	NotARepositoryId,
	ManifestNotFoundId,
	ManifestParseErrorId,
	ConfigLoadFailedId,
	InvalidStrategyId,
	ExplicitRefRequiredId,
	UnresolvedRefId,
	InvalidPatternId,
	UnknownModuleId,
	DependencyCycleId,
	InvalidReportFormatId,
	EnvFileNotFoundId,
}

func stubRender(t *testing.T) {
	t.Helper()
	original := render
	t.Cleanup(func() { render = original })
	render = func(in string, _ string) (string, error) {
		return in, nil
	}
}

func TestId_Constants(t *testing.T) {
	seen := make(map[Id]bool)
	for _, id := range allIds {
		if seen[id] {
			t.Errorf("duplicate ID: %d", id)
		}
		seen[id] = true
	}
	if NotARepositoryId != 1 {
		t.Errorf("NotARepositoryId = %d, want 1", NotARepositoryId)
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		id       Id
		wantNil  bool
		contains string
	}{
		{NotARepositoryId, false, "Not a git repository"},
		{ManifestNotFoundId, false, "No module manifest found"},
		{ManifestParseErrorId, false, "Failed to parse the module manifest"},
		{ConfigLoadFailedId, false, "Failed to load configuration"},
		{InvalidStrategyId, false, "Invalid diff strategy"},
		{ExplicitRefRequiredId, false, "No previous commit given"},
		{UnresolvedRefId, false, "Previous commit does not resolve"},
		{InvalidPatternId, false, "Invalid file pattern"},
		{UnknownModuleId, false, "Module not found"},
		{DependencyCycleId, false, "Dependency cycle"},
		{InvalidReportFormatId, false, "Invalid report format"},
		{EnvFileNotFoundId, false, "Env file not found"},
		{Id(9999), true, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.contains, func(t *testing.T) {
			issue := Get(tt.id)
			if tt.wantNil {
				if issue != nil {
					t.Errorf("Get(%d) should return nil", tt.id)
				}
				return
			}
			if issue == nil {
				t.Fatalf("Get(%d) returned nil", tt.id)
			}
			if issue.Id() != tt.id {
				t.Errorf("issue.Id() = %d, want %d", issue.Id(), tt.id)
			}
			if !strings.Contains(string(issue.MarkdownMsg()), tt.contains) {
				t.Errorf("Get(%d).MarkdownMsg() should contain %q", tt.id, tt.contains)
			}
		})
	}
}

func TestValues(t *testing.T) {
	issues := Values()
	if len(issues) != len(allIds) {
		t.Errorf("Values() returned %d issues, want %d", len(issues), len(allIds))
	}
	for _, issue := range issues {
		if issue.Id() == 0 {
			t.Error("found issue with ID 0")
		}
		if issue.MarkdownMsg() == "" {
			t.Errorf("Issue %d has empty MarkdownMsg", issue.Id())
		}
	}
}

func TestIssue_Render_WithLinks(t *testing.T) {
	stubRender(t)

	testIssue := &Issue{
		id:       Id(9999),
		mdMsg:    "# Test Issue",
		docLinks: []HttpLink{"https://docs.example.com"},
		extLinks: []HttpLink{"https://external.example.com"},
	}
	rendered, err := testIssue.Render("")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	for _, want := range []string{"## See also", "- <https://docs.example.com>", "- <https://external.example.com>"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("Render() output should contain %q, got:\n%s", want, rendered)
		}
	}
	if len(testIssue.DocLinks()) != 1 {
		t.Error("Render() mutated the doc links")
	}
}

func TestIssue_Render_NoLinks(t *testing.T) {
	stubRender(t)

	testIssue := &Issue{id: Id(9998), mdMsg: "# Test Issue\n\nNo links here."}
	rendered, err := testIssue.Render("")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if strings.Contains(rendered, "See also") {
		t.Error("Render() without links should not contain 'See also'")
	}
}

func TestIssue_LinksAreCloned(t *testing.T) {
	testIssue := &Issue{docLinks: []HttpLink{"https://a"}, extLinks: []HttpLink{"https://b"}}

	docs := testIssue.DocLinks()
	docs[0] = "modified"
	if testIssue.DocLinks()[0] != "https://a" {
		t.Error("DocLinks() should return a clone")
	}
	ext := testIssue.ExtLinks()
	ext[0] = "modified"
	if testIssue.ExtLinks()[0] != "https://b" {
		t.Error("ExtLinks() should return a clone")
	}
}

func TestAllIssuesAreRenderable(t *testing.T) {
	stubRender(t)

	for _, issue := range Values() {
		rendered, err := issue.Render("")
		if err != nil {
			t.Errorf("Issue %d failed to render: %v", issue.Id(), err)
		}
		if rendered == "" {
			t.Errorf("Issue %d rendered to empty string", issue.Id())
		}
	}
}

func TestAllIssuesRenderWithGlamour(t *testing.T) {
	for _, issue := range Values() {
		if _, err := issue.Render("notty"); err != nil {
			t.Errorf("Issue %d failed to render with glamour: %v", issue.Id(), err)
		}
	}
}

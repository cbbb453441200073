// SPDX-License-Identifier: MPL-2.0

package gitrepo

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/blastradius/blastradius/internal/testutil"
	"github.com/blastradius/blastradius/internal/vcs"
)

func TestOpen_DetectsDotGitFromSubdirectory(t *testing.T) {
	t.Parallel()
	fixture := testutil.NewGitRepo(t)
	fixture.WriteFile("app/src/main/Main.java", "class Main {}")
	fixture.Commit("initial")

	repo, err := Open(filepath.Join(fixture.Dir, "app", "src"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	head, err := repo.CurrentHead()
	if err != nil {
		t.Fatalf("CurrentHead() error: %v", err)
	}
	if string(head) != fixture.Head() {
		t.Errorf("CurrentHead() = %s, want %s", head, fixture.Head())
	}
	if repo.Root() != fixture.Dir {
		t.Errorf("Root() = %s, want %s", repo.Root(), fixture.Dir)
	}
}

func TestOpen_NotARepository(t *testing.T) {
	t.Parallel()
	_, err := Open(t.TempDir())
	if !errors.Is(err, ErrNotRepository) {
		t.Fatalf("expected ErrNotRepository, got %v", err)
	}
}

func TestResolveReference(t *testing.T) {
	t.Parallel()
	fixture := testutil.NewGitRepo(t)
	fixture.WriteFile("a.txt", "1")
	first := fixture.Commit("first")
	fixture.WriteFile("a.txt", "2")
	second := fixture.Commit("second")
	repo := New(fixture.Repo)

	tests := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{ref: "HEAD", want: second},
		{ref: "HEAD~1", want: first},
		{ref: first, want: first},
		{ref: "HEAD~2", wantErr: true},
		{ref: "does-not-exist", wantErr: true},
	}

	for _, tt := range tests {
		got, err := repo.ResolveReference(tt.ref)
		if tt.wantErr {
			if !errors.Is(err, vcs.ErrReferenceNotFound) {
				t.Errorf("ResolveReference(%q) expected ErrReferenceNotFound, got %v (%s)", tt.ref, err, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ResolveReference(%q) unexpected error: %v", tt.ref, err)
			continue
		}
		if string(got) != tt.want {
			t.Errorf("ResolveReference(%q) = %s, want %s", tt.ref, got, tt.want)
		}
	}
}

func TestListTags_PeelsLightweightAndAnnotated(t *testing.T) {
	t.Parallel()
	fixture := testutil.NewGitRepo(t)
	fixture.WriteFile("a.txt", "1")
	first := fixture.Commit("first")
	fixture.Tag("0.0.1")
	fixture.WriteFile("a.txt", "2")
	second := fixture.Commit("second")
	fixture.AnnotatedTag("1.0.0", "release 1.0.0")
	fixture.Tag("nonsense")

	tags, err := New(fixture.Repo).ListTags()
	if err != nil {
		t.Fatalf("ListTags() error: %v", err)
	}

	if got := tags["0.0.1"]; string(got.Peeled) != first || string(got.Commit) != first {
		t.Errorf("lightweight tag = %+v, want commit and peeled %s", got, first)
	}
	annotated := tags["1.0.0"]
	if string(annotated.Peeled) != second {
		t.Errorf("annotated tag peeled = %s, want %s", annotated.Peeled, second)
	}
	if string(annotated.Commit) == second {
		t.Errorf("annotated tag ref should point at the tag object, not the commit")
	}
	if got := tags["nonsense"]; string(got.Peeled) != second {
		t.Errorf("nonsense tag peeled = %s, want %s", got.Peeled, second)
	}
	if len(tags) != 3 {
		t.Errorf("expected 3 tags, got %d: %v", len(tags), tags)
	}
}

func TestDiffPaths(t *testing.T) {
	t.Parallel()
	fixture := testutil.NewGitRepo(t)
	fixture.WriteFile("C/src/main/Foo.txt", "foo")
	fixture.WriteFile("B/src/main/Bar.txt", "bar")
	fixture.WriteFile("README.md", "readme")
	first := fixture.Commit("first")

	fixture.WriteFile("C/src/main/Foo.txt", "foo changed")
	fixture.WriteFile("A/build.gradle", "apply plugin: 'java'")
	fixture.Remove("README.md")
	second := fixture.Commit("second")

	paths, err := New(fixture.Repo).DiffPaths(vcs.CommitID(first), vcs.CommitID(second))
	if err != nil {
		t.Fatalf("DiffPaths() error: %v", err)
	}
	want := []string{"/A/build.gradle", "/C/src/main/Foo.txt", "/README.md"}
	if !slices.Equal(paths, want) {
		t.Errorf("DiffPaths() = %v, want %v", paths, want)
	}
}

func TestDiffPaths_InvalidCommit(t *testing.T) {
	t.Parallel()
	fixture := testutil.NewGitRepo(t)
	fixture.WriteFile("a.txt", "1")
	head := fixture.Commit("first")

	repo := New(fixture.Repo)
	if _, err := repo.DiffPaths("not-a-sha", vcs.CommitID(head)); !errors.Is(err, vcs.ErrInvalidCommitID) {
		t.Errorf("expected ErrInvalidCommitID, got %v", err)
	}
	missing := vcs.CommitID("0123456789012345678901234567890123456789")
	if _, err := repo.DiffPaths(missing, vcs.CommitID(head)); err == nil {
		t.Error("expected error for unknown commit")
	}
}

func TestBranch(t *testing.T) {
	t.Parallel()
	fixture := testutil.NewGitRepo(t)
	fixture.WriteFile("a.txt", "1")
	first := fixture.Commit("first")
	fixture.WriteFile("a.txt", "2")
	fixture.Commit("second")

	repo := New(fixture.Repo)
	branch, err := repo.Branch()
	if err != nil {
		t.Fatalf("Branch() error: %v", err)
	}
	if branch != "master" {
		t.Errorf("Branch() = %q, want %q", branch, "master")
	}

	fixture.Checkout(first)
	branch, err = repo.Branch()
	if err != nil {
		t.Fatalf("Branch() error: %v", err)
	}
	if branch != vcs.HeadRef {
		t.Errorf("Branch() on detached HEAD = %q, want %q", branch, vcs.HeadRef)
	}
}

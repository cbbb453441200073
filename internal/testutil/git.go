// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GitRepo is a throwaway repository in a temporary directory. Commits get
// strictly increasing timestamps so history order is stable across runs.
type GitRepo struct {
	t    testing.TB
	Dir  string
	Repo *git.Repository
	when time.Time
}

// NewGitRepo initializes an empty non-bare repository in t.TempDir().
func NewGitRepo(t testing.TB) *GitRepo {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init repository in %s: %v", dir, err)
	}
	return &GitRepo{
		t:    t,
		Dir:  dir,
		Repo: repo,
		when: time.Date(2017, time.October, 13, 12, 0, 0, 0, time.UTC),
	}
}

// WriteFile writes a file relative to the repository root.
func (g *GitRepo) WriteFile(rel, content string) {
	g.t.Helper()
	MustWriteFile(g.t, filepath.Join(g.Dir, filepath.FromSlash(rel)), content)
}

// Remove deletes a file relative to the repository root.
func (g *GitRepo) Remove(rel string) {
	g.t.Helper()
	if err := os.Remove(filepath.Join(g.Dir, filepath.FromSlash(rel))); err != nil {
		g.t.Fatalf("failed to remove %s: %v", rel, err)
	}
}

// Commit stages every change in the worktree and commits it, returning the
// commit SHA.
func (g *GitRepo) Commit(message string) string {
	g.t.Helper()
	wt, err := g.Repo.Worktree()
	if err != nil {
		g.t.Fatalf("failed to open worktree: %v", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		g.t.Fatalf("failed to stage changes: %v", err)
	}
	hash, err := wt.Commit(message, &git.CommitOptions{
		All:               true,
		AllowEmptyCommits: true,
		Author:            g.signature(),
	})
	if err != nil {
		g.t.Fatalf("failed to commit %q: %v", message, err)
	}
	return hash.String()
}

// Tag creates a lightweight tag on HEAD.
func (g *GitRepo) Tag(name string) {
	g.t.Helper()
	if _, err := g.Repo.CreateTag(name, g.headHash(), nil); err != nil {
		g.t.Fatalf("failed to create tag %s: %v", name, err)
	}
}

// AnnotatedTag creates an annotated tag object on HEAD.
func (g *GitRepo) AnnotatedTag(name, message string) {
	g.t.Helper()
	if _, err := g.Repo.CreateTag(name, g.headHash(), &git.CreateTagOptions{
		Tagger:  g.signature(),
		Message: message,
	}); err != nil {
		g.t.Fatalf("failed to create annotated tag %s: %v", name, err)
	}
}

// Head returns the SHA HEAD points at.
func (g *GitRepo) Head() string {
	g.t.Helper()
	return g.headHash().String()
}

// Checkout moves HEAD (detached) to the given commit SHA.
func (g *GitRepo) Checkout(sha string) {
	g.t.Helper()
	wt, err := g.Repo.Worktree()
	if err != nil {
		g.t.Fatalf("failed to open worktree: %v", err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(sha), Force: true}); err != nil {
		g.t.Fatalf("failed to checkout %s: %v", sha, err)
	}
}

func (g *GitRepo) headHash() plumbing.Hash {
	g.t.Helper()
	ref, err := g.Repo.Head()
	if err != nil {
		g.t.Fatalf("failed to resolve HEAD: %v", err)
	}
	return ref.Hash()
}

func (g *GitRepo) signature() *object.Signature {
	g.when = g.when.Add(time.Minute)
	return &object.Signature{
		Name:  "Blast Radius",
		Email: "ci@blastradius.invalid",
		When:  g.when,
	}
}

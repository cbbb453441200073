// SPDX-License-Identifier: MPL-2.0

package gitrepo

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/blastradius/blastradius/internal/vcs"
)

// maxPeelDepth bounds how many nested annotated tag objects are followed.
const maxPeelDepth = 16

// ErrNotRepository is returned when no git repository is found at or above a path.
var ErrNotRepository = errors.New("not a git repository")

// Repository reads commits, tags and tree diffs from a git repository.
type Repository struct {
	repo *git.Repository
	root string
}

var _ vcs.Repository = (*Repository)(nil)

// Open opens the repository containing path, searching parent directories for
// the .git directory the way git itself does.
func Open(path string) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotRepository)
		}
		return nil, fmt.Errorf("failed to open repository at %s: %w", path, err)
	}
	return New(repo), nil
}

// New wraps an already opened go-git repository.
func New(repo *git.Repository) *Repository {
	r := &Repository{repo: repo}
	if wt, err := repo.Worktree(); err == nil {
		r.root = wt.Filesystem.Root()
	}
	return r
}

// Root returns the top directory of the working tree, or "" for a bare repository.
func (r *Repository) Root() string { return r.root }

// Branch returns the short name of the checked-out branch, or "HEAD" when
// HEAD is detached.
func (r *Repository) Branch() (string, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}
	if ref.Name().IsBranch() {
		return ref.Name().Short(), nil
	}
	return vcs.HeadRef, nil
}

// CurrentHead returns the commit HEAD points at.
func (r *Repository) CurrentHead() (vcs.CommitID, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}
	return vcs.CommitID(ref.Hash().String()), nil
}

// ResolveReference resolves a revision expression ("HEAD~1", a branch, a tag,
// a full or abbreviated SHA) to a commit.
func (r *Repository) ResolveReference(ref string) (vcs.CommitID, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w: %w", ref, vcs.ErrReferenceNotFound, err)
	}
	if _, err := r.repo.CommitObject(*hash); err != nil {
		return "", fmt.Errorf("resolve %q: %w: %w", ref, vcs.ErrReferenceNotFound, err)
	}
	return vcs.CommitID(hash.String()), nil
}

// ListTags returns every tag keyed by its short name. Lightweight tags peel to
// the commit they reference; annotated tags peel through their tag objects.
// A tag that cannot be peeled to a commit is returned with a zero Peeled id.
func (r *Repository) ListTags() (map[string]vcs.Tag, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer iter.Close()

	tags := make(map[string]vcs.Tag)
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		tag := vcs.Tag{Name: name, Commit: vcs.CommitID(ref.Hash().String())}
		peeled, peelErr := r.peel(ref.Hash())
		if peelErr != nil {
			slog.Debug("tag does not peel to a commit", "tag", name, "error", peelErr)
		} else {
			tag.Peeled = peeled
		}
		tags[name] = tag
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}
	return tags, nil
}

// peel follows annotated tag objects until it reaches a commit.
func (r *Repository) peel(hash plumbing.Hash) (vcs.CommitID, error) {
	for range maxPeelDepth {
		tagObj, err := r.repo.TagObject(hash)
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			if _, err := r.repo.CommitObject(hash); err != nil {
				return "", fmt.Errorf("object %s is not a commit: %w", hash, err)
			}
			return vcs.CommitID(hash.String()), nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to read tag object %s: %w", hash, err)
		}

		switch tagObj.TargetType {
		case plumbing.CommitObject:
			return vcs.CommitID(tagObj.Target.String()), nil
		case plumbing.TagObject:
			hash = tagObj.Target
		default:
			return "", fmt.Errorf("tag %s targets a %s, not a commit", tagObj.Name, tagObj.TargetType)
		}
	}
	return "", fmt.Errorf("tag chain at %s exceeds %d levels", hash, maxPeelDepth)
}

// DiffPaths lists every path added, removed or modified between two commits,
// each prefixed with "/". Deleted files report their old path; everything else
// reports the new path. The result is sorted.
func (r *Repository) DiffPaths(previous, current vcs.CommitID) ([]string, error) {
	prevTree, err := r.treeOf(previous)
	if err != nil {
		return nil, err
	}
	currTree, err := r.treeOf(current)
	if err != nil {
		return nil, err
	}

	slog.Info("computing tree diff", "previous", previous.Short(), "current", current.Short())
	changes, err := object.DiffTree(prevTree, currTree)
	if err != nil {
		return nil, fmt.Errorf("failed to diff %s..%s: %w", previous.Short(), current.Short(), err)
	}

	paths := make([]string, 0, len(changes))
	for _, change := range changes {
		name := change.To.Name
		if name == "" {
			name = change.From.Name
		}
		slog.Debug("diff", "path", "/"+name)
		paths = append(paths, "/"+name)
	}
	sort.Strings(paths)
	return paths, nil
}

func (r *Repository) treeOf(id vcs.CommitID) (*object.Tree, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	commit, err := r.repo.CommitObject(plumbing.NewHash(string(id)))
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %s: %w", id.Short(), err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to read tree of %s: %w", id.Short(), err)
	}
	return tree, nil
}

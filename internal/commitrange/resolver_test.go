// SPDX-License-Identifier: MPL-2.0

package commitrange

import (
	"errors"
	"fmt"
	"testing"

	"github.com/blastradius/blastradius/internal/gitrepo"
	"github.com/blastradius/blastradius/internal/testutil"
	"github.com/blastradius/blastradius/internal/vcs"
)

const (
	commitA vcs.CommitID = "1111111111111111111111111111111111111111"
	commitB vcs.CommitID = "2222222222222222222222222222222222222222"
	commitC vcs.CommitID = "3333333333333333333333333333333333333333"
	commitD vcs.CommitID = "4444444444444444444444444444444444444444"
)

type fakeSource struct {
	head    vcs.CommitID
	headErr error
	refs    map[string]vcs.CommitID
	tags    map[string]vcs.Tag

	listCalls int
}

func (f *fakeSource) CurrentHead() (vcs.CommitID, error) {
	if f.headErr != nil {
		return "", f.headErr
	}
	return f.head, nil
}

func (f *fakeSource) ResolveReference(ref string) (vcs.CommitID, error) {
	if ref == vcs.HeadRef {
		return f.CurrentHead()
	}
	if id, ok := f.refs[ref]; ok {
		return id, nil
	}
	return "", fmt.Errorf("reference %q: %w", ref, vcs.ErrReferenceNotFound)
}

func (f *fakeSource) ListTags() (map[string]vcs.Tag, error) {
	f.listCalls++
	return f.tags, nil
}

func lightweight(pairs ...any) map[string]vcs.Tag {
	tags := make(map[string]vcs.Tag, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		name := pairs[i].(string)
		id := pairs[i+1].(vcs.CommitID)
		tags[name] = vcs.Tag{Name: name, Commit: id, Peeled: id}
	}
	return tags
}

func noEnv(string) (string, bool) { return "", false }

func envWith(key, value string) EnvLookup {
	return func(k string) (string, bool) {
		if k == key {
			return value, true
		}
		return "", false
	}
}

func TestResolve_PreviousTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source *fakeSource
		want   Range
		wantOK bool
	}{
		{
			name: "head tagged with later release",
			source: &fakeSource{
				head: commitC,
				tags: lightweight("0.0.1", commitA, "1.0.0", commitB, "1.0.1", commitC),
			},
			want:   Range{Previous: commitB, Current: commitC},
			wantOK: true,
		},
		{
			name: "head tagged with earliest release",
			source: &fakeSource{
				head: commitA,
				tags: lightweight("0.0.1", commitA, "1.0.0", commitB, "1.0.1", commitC),
			},
		},
		{
			name: "head untagged",
			source: &fakeSource{
				head: commitD,
				tags: lightweight("0.0.1", commitA, "1.0.0", commitB),
			},
			want:   Range{Previous: commitB, Current: commitD},
			wantOK: true,
		},
		{
			name:   "no versions",
			source: &fakeSource{head: commitD, tags: lightweight("nightly", commitC)},
		},
		{
			name:   "no tags at all",
			source: &fakeSource{head: commitD},
		},
		{
			name: "v-prefixed duplicate of a release",
			source: &fakeSource{
				head: commitC,
				tags: lightweight("1.0.0", commitA, "v1.0.0", commitA, "v1.0.1", commitC),
			},
			want:   Range{Previous: commitA, Current: commitC},
			wantOK: true,
		},
		{
			name: "annotated head tag pairs peeled commits",
			source: &fakeSource{
				head: commitC,
				tags: map[string]vcs.Tag{
					"1.0.0": {Name: "1.0.0", Commit: commitA, Peeled: commitB},
					"1.1.0": {Name: "1.1.0", Commit: commitD, Peeled: commitC},
				},
			},
			want:   Range{Previous: commitB, Current: commitC},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := NewResolver(tt.source, Options{LookupEnv: noEnv})
			got, ok, err := r.Resolve(PreviousTag, "")
			if err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}
			if ok != tt.wantOK {
				t.Fatalf("Resolve() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolve_PreviousTag_ListsTagsOnce(t *testing.T) {
	t.Parallel()

	for _, head := range []vcs.CommitID{commitC, commitD} {
		source := &fakeSource{
			head: head,
			tags: lightweight("0.0.1", commitA, "1.0.0", commitB, "1.0.1", commitC),
		}
		r := NewResolver(source, Options{LookupEnv: noEnv})
		if _, ok, err := r.Resolve(PreviousTag, ""); err != nil || !ok {
			t.Fatalf("Resolve() with head %s = %v, %v", head, ok, err)
		}
		if source.listCalls != 1 {
			t.Errorf("head %s: expected one tag listing per resolve, got %d", head, source.listCalls)
		}
	}
}

func TestResolve_PreviousCommit(t *testing.T) {
	t.Parallel()

	withParent := &fakeSource{head: commitB, refs: map[string]vcs.CommitID{"HEAD~1": commitA}}
	got, ok, err := NewResolver(withParent, Options{LookupEnv: noEnv}).Resolve(PreviousCommit, "")
	if err != nil || !ok {
		t.Fatalf("Resolve() = %v, %v, %v; want range", got, ok, err)
	}
	if want := (Range{Previous: commitA, Current: commitB}); got != want {
		t.Errorf("Resolve() = %+v, want %+v", got, want)
	}

	firstCommit := &fakeSource{head: commitA}
	_, ok, err = NewResolver(firstCommit, Options{LookupEnv: noEnv}).Resolve(PreviousCommit, "")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if ok {
		t.Error("Resolve() ok = true on a commit without parent")
	}
}

func TestResolve_LastSuccessfulBuild(t *testing.T) {
	t.Parallel()

	source := &fakeSource{head: commitC, refs: map[string]vcs.CommitID{string(commitA): commitA}}

	tests := []struct {
		name   string
		opts   Options
		want   Range
		wantOK bool
	}{
		{
			name:   "variable set",
			opts:   Options{LookupEnv: envWith(DefaultPreviousBuildVar, string(commitA))},
			want:   Range{Previous: commitA, Current: commitC},
			wantOK: true,
		},
		{
			name: "custom variable",
			opts: Options{
				LookupEnv:        envWith("CI_LAST_GREEN", string(commitA)),
				PreviousBuildVar: "CI_LAST_GREEN",
			},
			want:   Range{Previous: commitA, Current: commitC},
			wantOK: true,
		},
		{name: "variable absent", opts: Options{LookupEnv: noEnv}},
		{name: "variable empty", opts: Options{LookupEnv: envWith(DefaultPreviousBuildVar, "  ")}},
		{name: "commit rewritten away", opts: Options{LookupEnv: envWith(DefaultPreviousBuildVar, string(commitD))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok, err := NewResolver(source, tt.opts).Resolve(LastSuccessfulBuild, "")
			if err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}
			if ok != tt.wantOK {
				t.Fatalf("Resolve() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolve_LastSuccessfulBuild_HeadFailureIsUndetermined(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		headErr: errors.New("reference not found"),
		refs:    map[string]vcs.CommitID{string(commitA): commitA},
	}
	_, ok, err := NewResolver(source, Options{LookupEnv: envWith(DefaultPreviousBuildVar, string(commitA))}).
		Resolve(LastSuccessfulBuild, "")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if ok {
		t.Error("Resolve() ok = true with unresolvable head")
	}
}

func TestResolve_ExplicitCommit(t *testing.T) {
	t.Parallel()

	source := &fakeSource{head: commitC, refs: map[string]vcs.CommitID{"release/1.x": commitB}}
	r := NewResolver(source, Options{LookupEnv: noEnv})

	got, ok, err := r.Resolve(ExplicitCommit, "release/1.x")
	if err != nil || !ok {
		t.Fatalf("Resolve() = %v, %v, %v; want range", got, ok, err)
	}
	if want := (Range{Previous: commitB, Current: commitC}); got != want {
		t.Errorf("Resolve() = %+v, want %+v", got, want)
	}

	_, _, err = r.Resolve(ExplicitCommit, "")
	if !errors.Is(err, ErrExplicitRefRequired) {
		t.Errorf("Resolve() with empty ref error = %v, want ErrExplicitRefRequired", err)
	}
	if !IsConfigurationError(err) {
		t.Errorf("IsConfigurationError(%v) = false", err)
	}

	_, _, err = r.Resolve(ExplicitCommit, "does-not-exist")
	if !errors.Is(err, ErrUnresolvedExplicitRef) {
		t.Errorf("Resolve() with unknown ref error = %v, want ErrUnresolvedExplicitRef", err)
	}
	if !errors.Is(err, vcs.ErrReferenceNotFound) {
		t.Errorf("Resolve() with unknown ref error = %v, want wrapped ErrReferenceNotFound", err)
	}
	var ure *UnresolvedRefError
	if !errors.As(err, &ure) || ure.Ref != "does-not-exist" {
		t.Errorf("errors.As(*UnresolvedRefError) failed for %v", err)
	}
}

func TestResolve_UnknownStrategy(t *testing.T) {
	t.Parallel()

	_, ok, err := NewResolver(&fakeSource{head: commitA}, Options{LookupEnv: noEnv}).Resolve("newest", "")
	if ok {
		t.Error("Resolve() ok = true for unknown strategy")
	}
	if !errors.Is(err, ErrInvalidStrategy) || !IsConfigurationError(err) {
		t.Errorf("Resolve() error = %v, want ErrInvalidStrategy", err)
	}
}

func TestRange_String(t *testing.T) {
	t.Parallel()

	r := Range{Previous: commitA, Current: commitB}
	if got, want := r.String(), "1111111..2222222"; got != want {
		t.Errorf("Range.String() = %q, want %q", got, want)
	}
}

func TestResolve_GitRepository(t *testing.T) {
	t.Parallel()

	fixture := testutil.NewGitRepo(t)
	fixture.WriteFile("README.md", "first\n")
	first := fixture.Commit("first")
	fixture.Tag("0.0.1")
	fixture.WriteFile("README.md", "second\n")
	second := fixture.Commit("second")
	fixture.AnnotatedTag("1.0.0", "release 1.0.0")
	fixture.WriteFile("README.md", "third\n")
	third := fixture.Commit("third")

	repo := gitrepo.New(fixture.Repo)

	t.Run("previous commit", func(t *testing.T) {
		got, ok, err := NewResolver(repo, Options{LookupEnv: noEnv}).Resolve(PreviousCommit, "")
		if err != nil || !ok {
			t.Fatalf("Resolve() = %v, %v, %v", got, ok, err)
		}
		want := Range{Previous: vcs.CommitID(second), Current: vcs.CommitID(third)}
		if got != want {
			t.Errorf("Resolve() = %+v, want %+v", got, want)
		}
	})

	t.Run("previous tag on untagged head", func(t *testing.T) {
		got, ok, err := NewResolver(repo, Options{LookupEnv: noEnv}).Resolve(PreviousTag, "")
		if err != nil || !ok {
			t.Fatalf("Resolve() = %v, %v, %v", got, ok, err)
		}
		want := Range{Previous: vcs.CommitID(second), Current: vcs.CommitID(third)}
		if got != want {
			t.Errorf("Resolve() = %+v, want %+v", got, want)
		}
	})

	t.Run("last successful build", func(t *testing.T) {
		got, ok, err := NewResolver(repo, Options{LookupEnv: envWith(DefaultPreviousBuildVar, first)}).
			Resolve(LastSuccessfulBuild, "")
		if err != nil || !ok {
			t.Fatalf("Resolve() = %v, %v, %v", got, ok, err)
		}
		want := Range{Previous: vcs.CommitID(first), Current: vcs.CommitID(third)}
		if got != want {
			t.Errorf("Resolve() = %+v, want %+v", got, want)
		}
	})
}

func TestResolve_GitRepository_FirstCommit(t *testing.T) {
	t.Parallel()

	fixture := testutil.NewGitRepo(t)
	fixture.WriteFile("README.md", "only\n")
	fixture.Commit("only")
	fixture.Tag("0.0.1")

	repo := gitrepo.New(fixture.Repo)
	for _, s := range []Strategy{PreviousCommit, PreviousTag} {
		_, ok, err := NewResolver(repo, Options{LookupEnv: noEnv}).Resolve(s, "")
		if err != nil {
			t.Fatalf("Resolve(%s) error: %v", s, err)
		}
		if ok {
			t.Errorf("Resolve(%s) ok = true on the first commit", s)
		}
	}
}

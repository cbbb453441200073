// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/blastradius/blastradius/internal/buildenv"
	"github.com/blastradius/blastradius/internal/commitrange"
	"github.com/blastradius/blastradius/internal/config"
	"github.com/blastradius/blastradius/internal/detect"
	"github.com/blastradius/blastradius/internal/gitrepo"
	"github.com/blastradius/blastradius/internal/issue"
	"github.com/blastradius/blastradius/internal/manifest"
	"github.com/blastradius/blastradius/internal/modgraph"
	"github.com/blastradius/blastradius/internal/pattern"
	"github.com/blastradius/blastradius/pkg/types"
)

type (
	// session is the per-invocation state shared by the detection commands.
	session struct {
		cfg  *config.Config
		repo Repository
		tree *modgraph.Tree
		// manifestPath is empty when the repository has no manifest.
		manifestPath string
	}

	// changeRequest selects where the changed paths come from.
	changeRequest struct {
		strategy    string
		explicitRef string
		diffFile    string
	}
)

// openSession opens the repository, builds the module tree and rejects a tree
// with invalid file patterns, whether or not the command would compile them.
func (a *App) openSession(ensureModule string) (*session, error) {
	s, err := a.loadSession(ensureModule)
	if err != nil {
		return nil, err
	}
	if err := s.checkPatterns(); err != nil {
		return nil, err
	}
	return s, nil
}

// loadSession opens the repository and builds the module tree. When the
// repository has no manifest and ensureModule names a non-root module, that
// module is added as a child of the root so single-module queries work
// without a manifest.
func (a *App) loadSession(ensureModule string) (*session, error) {
	cfg := a.settings()

	repo, err := a.OpenRepository(cfg.Repository)
	if err != nil {
		if errors.Is(err, gitrepo.ErrNotRepository) {
			return nil, issue.NewErrorContext().
				WithOperation("open repository").
				WithResource(cfg.Repository).
				WithSuggestion("Run blastradius inside a git working tree or pass --repo").
				WithIssue(issue.NotARepositoryId).
				Wrap(err).
				BuildError()
		}
		return nil, issue.WrapWithContext(err, "open repository", cfg.Repository)
	}

	branch, err := repo.Branch()
	if err != nil {
		slog.Warn("could not determine branch", "error", err)
	}
	slog.Info("inspecting repository", "root", repo.Root(), "branch", branch)

	s := &session{cfg: cfg, repo: repo}
	spec, err := s.loadManifest()
	if err != nil {
		return nil, err
	}
	if s.manifestPath == "" && ensureModule != "" && pattern.NormalizeModuleDir(ensureModule) != "" {
		spec.Modules = append(spec.Modules, modgraph.Spec{Path: ensureModule})
	}
	manifest.ApplyPatterns(&spec, cfg.ModuleOverrides())

	tree, err := modgraph.Build(spec)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("build module tree").
			WithResource(s.manifestPath).
			WithSuggestion("Module paths must be unique and every depends_on entry must name a declared module").
			WithSuggestion("Run 'blastradius validate' for a full report").
			WithIssue(issue.ManifestParseErrorId).
			Wrap(err).
			BuildError()
	}
	s.tree = tree
	slog.Debug("module tree built", "modules", tree.Len(), "manifest", s.manifestPath)
	return s, nil
}

func (s *session) checkPatterns() error {
	findings := modgraph.Validate(s.tree)
	if !modgraph.HasErrors(findings) {
		return nil
	}
	return issue.NewErrorContext().
		WithOperation("validate manifest").
		WithResource(s.manifestPath).
		WithSuggestion("Run 'blastradius validate' for a full report").
		WithIssue(issue.InvalidPatternId).
		Wrap(firstError(findings)).
		BuildError()
}

// loadManifest reads the configured manifest. A missing manifest at the
// default location means the repository is one module; a missing manifest
// that was asked for explicitly is an error.
func (s *session) loadManifest() (modgraph.Spec, error) {
	path := types.FilesystemPath(s.cfg.Manifest).Resolve(s.repo.Root())

	spec, err := manifest.Load(path)
	switch {
	case err == nil:
		s.manifestPath = path
		return spec, nil
	case errors.Is(err, manifest.ErrNotFound) && s.cfg.Manifest == config.DefaultConfig().Manifest:
		tomlPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".toml"
		spec, tomlErr := manifest.Load(tomlPath)
		if tomlErr == nil {
			s.manifestPath = tomlPath
			return spec, nil
		}
		if !errors.Is(tomlErr, manifest.ErrNotFound) {
			return modgraph.Spec{}, manifestParseError(tomlPath, tomlErr)
		}
		slog.Info("no manifest found, treating the repository as a single module", "path", path)
		return manifest.SingleModule(), nil
	case errors.Is(err, manifest.ErrNotFound):
		return modgraph.Spec{}, issue.NewErrorContext().
			WithOperation("load manifest").
			WithResource(path).
			WithSuggestion("Check the --manifest flag or the manifest config key").
			WithIssue(issue.ManifestNotFoundId).
			Wrap(err).
			BuildError()
	default:
		return modgraph.Spec{}, manifestParseError(path, err)
	}
}

func manifestParseError(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("load manifest").
		WithResource(path).
		WithSuggestion("Check the manifest against the schema described by 'blastradius validate --help'").
		WithIssue(issue.ManifestParseErrorId).
		Wrap(err).
		BuildError()
}

// resolver builds a commit range resolver reading the previous build
// variable from the process environment and the optional env file.
func (s *session) resolver() (*commitrange.Resolver, error) {
	env, err := buildenv.Load(s.cfg.Environment.EnvFile)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load environment file").
			WithResource(s.cfg.Environment.EnvFile).
			WithSuggestion("Check the --env-file flag or environment.env_file config key").
			WithIssue(issue.EnvFileNotFoundId).
			Wrap(err).
			BuildError()
	}
	return commitrange.NewResolver(s.repo, commitrange.Options{
		LookupEnv:        env.Lookup,
		PreviousBuildVar: s.cfg.Environment.PreviousBuildVar,
	}), nil
}

// changeSource picks the change source for req. Flags override config.
func (s *session) changeSource(req changeRequest) (detect.ChangeSource, error) {
	if req.diffFile != "" {
		slog.Info("reading changed paths from patch", "path", req.diffFile)
		return &detect.PatchSource{Path: req.diffFile}, nil
	}

	strategy, explicitRef, err := s.strategy(req)
	if err != nil {
		return nil, err
	}
	resolver, err := s.resolver()
	if err != nil {
		return nil, err
	}
	return &detect.CommitSource{
		Resolver:    resolver,
		Diff:        s.repo,
		Strategy:    strategy,
		ExplicitRef: explicitRef,
	}, nil
}

func (s *session) strategy(req changeRequest) (commitrange.Strategy, string, error) {
	name := s.cfg.Strategy
	if req.strategy != "" {
		name = req.strategy
	}
	explicitRef := s.cfg.PreviousCommit
	if req.explicitRef != "" {
		explicitRef = req.explicitRef
	}
	strategy, err := commitrange.ParseStrategy(name)
	if err != nil {
		return "", "", err
	}
	return strategy, explicitRef, nil
}

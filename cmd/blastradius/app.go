// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/blastradius/blastradius/internal/config"
	"github.com/blastradius/blastradius/internal/gitrepo"
	"github.com/blastradius/blastradius/internal/vcs"
	"github.com/blastradius/blastradius/pkg/types"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer; every Cobra command handler receives an App reference.
	App struct {
		Config         ConfigProvider
		OpenRepository RepositoryOpener
		stdout         io.Writer
		stderr         io.Writer

		flags  rootFlags
		loaded *config.Loaded
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config         ConfigProvider
		OpenRepository RepositoryOpener
		Stdout         io.Writer
		Stderr         io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Loaded, error)
	}

	// Repository is the repository view the CLI works against.
	Repository interface {
		vcs.Repository
		Branch() (string, error)
		Root() string
	}

	// RepositoryOpener opens the repository containing path.
	RepositoryOpener func(path string) (Repository, error)

	rootFlags struct {
		configFile string
		verbose    bool
		repo       string
		manifest   string
		envFile    string
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.OpenRepository == nil {
		deps.OpenRepository = openGitRepository
	}

	return &App{
		Config:         deps.Config,
		OpenRepository: deps.OpenRepository,
		stdout:         deps.Stdout,
		stderr:         deps.Stderr,
	}
}

func openGitRepository(path string) (Repository, error) {
	repo, err := gitrepo.Open(path)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// loadConfig loads configuration once per invocation.
func (a *App) loadConfig(ctx context.Context) error {
	loaded, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: types.FilesystemPath(a.flags.configFile),
	})
	if err != nil {
		return err
	}
	a.loaded = loaded
	return nil
}

// settings returns the loaded configuration with the global flags applied.
// Flags always win over files and environment.
func (a *App) settings() *config.Config {
	var cfg config.Config
	if a.loaded != nil && a.loaded.Config != nil {
		cfg = *a.loaded.Config
	} else {
		cfg = *config.DefaultConfig()
	}
	if a.flags.repo != "" {
		cfg.Repository = a.flags.repo
	}
	if a.flags.manifest != "" {
		cfg.Manifest = a.flags.manifest
	}
	if a.flags.envFile != "" {
		cfg.Environment.EnvFile = a.flags.envFile
	}
	if a.flags.verbose {
		cfg.UI.Verbose = true
	}
	return &cfg
}

// sources lists the config files the current settings were merged from.
func (a *App) sources() []string {
	if a.loaded == nil {
		return nil
	}
	return a.loaded.Sources
}

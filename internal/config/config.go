// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/blastradius/blastradius/internal/issue"
	"github.com/blastradius/blastradius/pkg/cueutil"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "blastradius"
	// ConfigFileName is the name of the user config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// ProjectConfigFileName is the config file looked up in the working directory.
	ProjectConfigFileName = AppName + "." + ConfigFileName + "." + ConfigFileExt
	// EnvPrefix prefixes environment overrides (BLASTRADIUS_STRATEGY, BLASTRADIUS_OUTPUT_FORMAT).
	EnvPrefix = "BLASTRADIUS"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the blastradius configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	// Allow tests to override the config directory
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// SearchPaths returns the config files consulted by Load, lowest precedence
// first. An explicit ConfigFilePath replaces the search entirely.
func SearchPaths(opts LoadOptions) ([]string, error) {
	if opts.ConfigFilePath != "" {
		return []string{string(opts.ConfigFilePath)}, nil
	}

	cfgDir, err := configDirWithOverride(string(opts.ConfigDirPath))
	if err != nil {
		return nil, err
	}

	return []string{
		filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt),
		filepath.Join(string(opts.BaseDir), ProjectConfigFileName),
	}, nil
}

// newViper returns a viper instance carrying every default and the
// BLASTRADIUS_ environment overrides.
func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("strategy", defaults.Strategy)
	v.SetDefault("previous_commit", defaults.PreviousCommit)
	v.SetDefault("repository", defaults.Repository)
	v.SetDefault("manifest", defaults.Manifest)
	v.SetDefault("file_patterns", defaults.FilePatterns)
	v.SetDefault("module_file_patterns", defaults.ModuleFilePatterns)
	v.SetDefault("output.file", defaults.Output.File)
	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("environment.previous_build_var", defaults.Environment.PreviousBuildVar)
	v.SetDefault("environment.env_file", defaults.Environment.EnvFile)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// loadWithOptions performs option-driven config loading without mutating
// package-level cache state. It returns the config and the files that were
// merged, in merge order.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, []string, error) {
	select {
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper()

	var loaded []string

	// A custom config file set via --config is used exclusively and must exist.
	if opts.ConfigFilePath != "" {
		path := string(opts.ConfigFilePath)
		if !fileExists(path) {
			return nil, nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithSuggestion("Use 'blastradius config show' to see the default configuration").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("config file not found: %s", path)).
				BuildError()
		}
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, nil, cueLoadError(path, err)
		}
		loaded = append(loaded, path)
	} else {
		paths, err := SearchPaths(opts)
		if err != nil {
			return nil, nil, err
		}
		// User config first, project config merged over it.
		// Missing files are skipped; defaults apply.
		for _, path := range paths {
			if !fileExists(path) {
				continue
			}
			if err := loadCUEIntoViper(v, path); err != nil {
				return nil, nil, cueLoadError(path, err)
			}
			loaded = append(loaded, path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Validate what CUE cannot express: strategy aliases, pattern syntax
	// and module uniqueness. Environment overrides are checked here too.
	if valid, errs := cfg.IsValid(); !valid {
		return nil, nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(strings.Join(loaded, ", ")).
			WithSuggestion("Run 'blastradius config show' to inspect the effective configuration").
			WithSuggestion("Check BLASTRADIUS_* environment variables for stale overrides").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(errs[0]).
			BuildError()
	}

	return &cfg, loaded, nil
}

func cueLoadError(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource(path).
		WithSuggestion("Check that the file contains valid CUE syntax").
		WithSuggestion("Verify the configuration values match the expected schema").
		WithSuggestion("See 'blastradius config --help' for configuration options").
		WithIssue(issue.ConfigLoadFailedId).
		Wrap(err).
		BuildError()
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
//
// Note: This uses manual CUE parsing instead of cueutil.ParseAndDecode because:
// 1. Config decodes to map[string]any (not a struct) for Viper integration
// 2. Uses Concrete(false) because config fields are optional
// 3. Needs to merge into Viper's config map, not return a struct
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	configMap, err := decodeConfig(data, path)
	if err != nil {
		return err
	}

	// Merge into Viper (preserves defaults, allows env overrides)
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// decodeConfig unifies data with the #Config schema and decodes it to a map.
func decodeConfig(data []byte, path string) (map[string]any, error) {
	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return nil, cueutil.FormatError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return nil, cueutil.FormatError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return nil, cueutil.FormatError(err, path)
	}
	return configMap, nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default configuration to path unless a file
// already exists there. It reports whether a file was written.
func CreateDefaultConfig(path string) (bool, error) {
	if fileExists(path) {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}

	return true, nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// blastradius configuration file\n")
	sb.WriteString("// Environment variables prefixed with BLASTRADIUS_ override these values.\n\n")

	fmt.Fprintf(&sb, "strategy: %q\n", cfg.Strategy)
	if cfg.PreviousCommit != "" {
		fmt.Fprintf(&sb, "previous_commit: %q\n", cfg.PreviousCommit)
	}
	fmt.Fprintf(&sb, "repository: %q\n", cfg.Repository)
	fmt.Fprintf(&sb, "manifest: %q\n", cfg.Manifest)

	sb.WriteString("\n// Empty uses the built-in defaults.\n")
	sb.WriteString("file_patterns: [")
	for i, p := range cfg.FilePatterns {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q", p)
	}
	sb.WriteString("]\n")

	if len(cfg.ModuleFilePatterns) > 0 {
		sb.WriteString("\nmodule_file_patterns: [\n")
		for _, entry := range cfg.ModuleFilePatterns {
			fmt.Fprintf(&sb, "\t{module: %q, patterns: [", entry.Module)
			for i, p := range entry.Patterns {
				if i > 0 {
					sb.WriteString(", ")
				}
				fmt.Fprintf(&sb, "%q", p)
			}
			sb.WriteString("]},\n")
		}
		sb.WriteString("]\n")
	}

	sb.WriteString("\noutput: {\n")
	fmt.Fprintf(&sb, "\tfile: %q\n", cfg.Output.File)
	fmt.Fprintf(&sb, "\tformat: %q\n", cfg.Output.Format)
	sb.WriteString("}\n")

	sb.WriteString("\nenvironment: {\n")
	fmt.Fprintf(&sb, "\tprevious_build_var: %q\n", cfg.Environment.PreviousBuildVar)
	fmt.Fprintf(&sb, "\tenv_file: %q\n", cfg.Environment.EnvFile)
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}

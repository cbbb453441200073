// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blastradius/blastradius/internal/commitrange"
	"github.com/blastradius/blastradius/internal/manifest"
	"github.com/blastradius/blastradius/internal/pattern"
	"github.com/blastradius/blastradius/internal/report"
)

var (
	// ErrInvalidModulePatterns is the sentinel error wrapped by InvalidModulePatternsError.
	ErrInvalidModulePatterns = errors.New("invalid module file patterns")
	// ErrInvalidOutputConfig is the sentinel error wrapped by InvalidOutputConfigError.
	ErrInvalidOutputConfig = errors.New("invalid output config")
	// ErrInvalidEnvironmentConfig is the sentinel error wrapped by InvalidEnvironmentConfigError.
	ErrInvalidEnvironmentConfig = errors.New("invalid environment config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ModulePatterns declares the file patterns of one module. An entry with
	// an empty Patterns list declares that nothing inside the module counts.
	ModulePatterns struct {
		// Module is the module path as it appears in the manifest (":app", ":lib:core").
		Module string `json:"module" mapstructure:"module"`
		// Patterns are regular expressions, or glob: prefixed globs, relative to the module directory.
		Patterns []string `json:"patterns" mapstructure:"patterns"`
	}

	// OutputConfig configures where `blastradius changed` writes its report.
	OutputConfig struct {
		// File is the report path. "-" writes to standard output.
		File string `json:"file" mapstructure:"file"`
		// Format is one of lines, json or yaml.
		Format string `json:"format" mapstructure:"format"`
	}

	// EnvironmentConfig configures how the previous successful build is discovered.
	EnvironmentConfig struct {
		// PreviousBuildVar names the variable holding the last successful build commit.
		PreviousBuildVar string `json:"previous_build_var" mapstructure:"previous_build_var"`
		// EnvFile is an optional dotenv file consulted after the process environment.
		EnvFile string `json:"env_file" mapstructure:"env_file"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables debug logging
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// Config holds the application configuration.
	Config struct {
		// Strategy selects how the previous commit is chosen.
		Strategy string `json:"strategy" mapstructure:"strategy"`
		// PreviousCommit is the reference used by the explicit-commit strategy.
		PreviousCommit string `json:"previous_commit" mapstructure:"previous_commit"`
		// Repository is a path inside the working tree to inspect.
		Repository string `json:"repository" mapstructure:"repository"`
		// Manifest is the module manifest path, relative to the repository root when not absolute.
		Manifest string `json:"manifest" mapstructure:"manifest"`
		// FilePatterns replaces the built-in default patterns when non-empty.
		FilePatterns []string `json:"file_patterns" mapstructure:"file_patterns"`
		// ModuleFilePatterns declares patterns for individual modules.
		ModuleFilePatterns []ModulePatterns `json:"module_file_patterns" mapstructure:"module_file_patterns"`
		// Output configures the report.
		Output OutputConfig `json:"output" mapstructure:"output"`
		// Environment configures previous build discovery.
		Environment EnvironmentConfig `json:"environment" mapstructure:"environment"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// InvalidModulePatternsError is returned when a ModulePatterns entry has
	// an empty module path or an invalid pattern.
	InvalidModulePatternsError struct {
		Module      string
		FieldErrors []error
	}

	// InvalidOutputConfigError is returned when an OutputConfig has invalid fields.
	InvalidOutputConfigError struct {
		FieldErrors []error
	}

	// InvalidEnvironmentConfigError is returned when an EnvironmentConfig has invalid fields.
	InvalidEnvironmentConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// IsValid returns whether the ModulePatterns entry has a module path and
// compilable patterns.
func (m ModulePatterns) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(m.Module) == "" {
		errs = append(errs, errors.New("module path must not be empty"))
	}
	for _, p := range m.Patterns {
		if err := pattern.Validate(pattern.FilePattern(p)); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidModulePatternsError{Module: m.Module, FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidModulePatternsError.
func (e *InvalidModulePatternsError) Error() string {
	return fmt.Sprintf("invalid file patterns for module %q: %s", e.Module, errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidModulePatterns and the field errors for errors.Is() compatibility.
func (e *InvalidModulePatternsError) Unwrap() []error { return append([]error{ErrInvalidModulePatterns}, e.FieldErrors...) }

// IsValid returns whether the OutputConfig has a file and a known format.
func (c OutputConfig) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(c.File) == "" {
		errs = append(errs, errors.New("output file must not be empty"))
	}
	if _, err := report.ParseFormat(c.Format); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidOutputConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidOutputConfigError.
func (e *InvalidOutputConfigError) Error() string {
	return fmt.Sprintf("invalid output config: %s", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidOutputConfig and the field errors for errors.Is() compatibility.
func (e *InvalidOutputConfigError) Unwrap() []error { return append([]error{ErrInvalidOutputConfig}, e.FieldErrors...) }

// IsValid returns whether the EnvironmentConfig names a variable.
// EnvFile is optional.
func (c EnvironmentConfig) IsValid() (bool, []error) {
	if strings.TrimSpace(c.PreviousBuildVar) == "" {
		return false, []error{&InvalidEnvironmentConfigError{
			FieldErrors: []error{errors.New("previous_build_var must not be empty")},
		}}
	}
	return true, nil
}

// Error implements the error interface for InvalidEnvironmentConfigError.
func (e *InvalidEnvironmentConfigError) Error() string {
	return fmt.Sprintf("invalid environment config: %s", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidEnvironmentConfig and the field errors for errors.Is() compatibility.
func (e *InvalidEnvironmentConfigError) Unwrap() []error { return append([]error{ErrInvalidEnvironmentConfig}, e.FieldErrors...) }

// IsValid returns whether the Config has valid fields.
// It delegates to the strategy parser, each pattern, Output.IsValid(),
// Environment.IsValid() and each ModuleFilePatterns entry's IsValid().
// Duplicate module entries are rejected.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if _, err := commitrange.ParseStrategy(c.Strategy); err != nil {
		errs = append(errs, err)
	}
	for _, p := range c.FilePatterns {
		if err := pattern.Validate(pattern.FilePattern(p)); err != nil {
			errs = append(errs, err)
		}
	}
	seen := make(map[string]int, len(c.ModuleFilePatterns))
	for i, entry := range c.ModuleFilePatterns {
		if valid, fieldErrs := entry.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
		if first, dup := seen[entry.Module]; dup {
			errs = append(errs, fmt.Errorf("module_file_patterns[%d]: duplicate module %q (same as module_file_patterns[%d])", i, entry.Module, first))
			continue
		}
		seen[entry.Module] = i
	}
	if valid, fieldErrs := c.Output.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Environment.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig and the field errors for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() []error { return append([]error{ErrInvalidConfig}, e.FieldErrors...) }

// Patterns returns the configured tree-wide patterns, or fallback when none
// are configured.
func (c *Config) Patterns(fallback []pattern.FilePattern) []pattern.FilePattern {
	if len(c.FilePatterns) == 0 {
		return fallback
	}
	return toFilePatterns(c.FilePatterns)
}

// ModuleOverrides returns the per-module pattern declarations keyed by module path.
// Declared-but-empty entries map to a non-nil empty slice.
func (c *Config) ModuleOverrides() map[string][]pattern.FilePattern {
	out := make(map[string][]pattern.FilePattern, len(c.ModuleFilePatterns))
	for _, entry := range c.ModuleFilePatterns {
		out[entry.Module] = toFilePatterns(entry.Patterns)
	}
	return out
}

// StrategyValue returns the parsed strategy.
func (c *Config) StrategyValue() (commitrange.Strategy, error) {
	return commitrange.ParseStrategy(c.Strategy)
}

// OutputFormat returns the parsed report format.
func (c *Config) OutputFormat() (report.Format, error) {
	return report.ParseFormat(c.Output.Format)
}

func toFilePatterns(in []string) []pattern.FilePattern {
	out := make([]pattern.FilePattern, 0, len(in))
	for _, p := range in {
		out = append(out, pattern.FilePattern(p))
	}
	return out
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Strategy:           string(commitrange.DefaultStrategy),
		PreviousCommit:     "",
		Repository:         ".",
		Manifest:           manifest.DefaultFileName,
		FilePatterns:       []string{},
		ModuleFilePatterns: []ModulePatterns{},
		Output: OutputConfig{
			File:   report.DefaultFileName,
			Format: string(report.FormatLines),
		},
		Environment: EnvironmentConfig{
			PreviousBuildVar: commitrange.DefaultPreviousBuildVar,
			EnvFile:          "",
		},
		UI: UIConfig{
			Verbose: false,
		},
	}
}

// SPDX-License-Identifier: MPL-2.0

package commitrange

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// LastSuccessfulBuild diffs against the previous successful CI build.
	LastSuccessfulBuild Strategy = "last-successful-build"
	// PreviousTag diffs against the preceding release tag.
	PreviousTag Strategy = "previous-tag"
	// PreviousCommit diffs against HEAD's first parent.
	PreviousCommit Strategy = "previous-commit"
	// ExplicitCommit diffs against a caller supplied reference.
	ExplicitCommit Strategy = "explicit-commit"

	// DefaultStrategy is used when no strategy is configured.
	DefaultStrategy = LastSuccessfulBuild
)

var (
	// ErrConfiguration marks caller misuse that must not be downgraded to an
	// undetermined change set.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidStrategy is the sentinel error wrapped by InvalidStrategyError.
	ErrInvalidStrategy = fmt.Errorf("%w: invalid diff strategy", ErrConfiguration)

	// strategyAliases maps the upper-case constant spellings accepted for
	// compatibility to their canonical strategies.
	strategyAliases = map[string]Strategy{
		"JENKINS_LAST_COMMIT":   LastSuccessfulBuild,
		"LAST_SUCCESSFUL_BUILD": LastSuccessfulBuild,
		"PREVIOUS_TAG":          PreviousTag,
		"PREVIOUS_COMMIT":       PreviousCommit,
		"SPECIFIC_COMMIT":       ExplicitCommit,
		"EXPLICIT_COMMIT":       ExplicitCommit,
	}
)

type (
	// Strategy selects how the previous commit of a range is found.
	Strategy string

	// InvalidStrategyError is returned when a Strategy value is not recognized.
	InvalidStrategyError struct {
		Value Strategy
	}
)

// Error implements the error interface.
func (e *InvalidStrategyError) Error() string {
	return fmt.Sprintf("invalid diff strategy %q (valid: %s)", e.Value, strings.Join(strategyNames(), ", "))
}

// Unwrap returns ErrInvalidStrategy so callers can use errors.Is for programmatic detection.
func (e *InvalidStrategyError) Unwrap() error { return ErrInvalidStrategy }

// Strategies returns the canonical strategies in documentation order.
func Strategies() []Strategy {
	return []Strategy{LastSuccessfulBuild, PreviousTag, PreviousCommit, ExplicitCommit}
}

func strategyNames() []string {
	names := make([]string, 0, 4)
	for _, s := range Strategies() {
		names = append(names, string(s))
	}
	return names
}

// ParseStrategy accepts a canonical strategy name or one of its upper-case
// aliases (JENKINS_LAST_COMMIT, PREVIOUS_TAG, PREVIOUS_COMMIT, SPECIFIC_COMMIT).
// An empty string selects DefaultStrategy.
func ParseStrategy(s string) (Strategy, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return DefaultStrategy, nil
	}
	if alias, ok := strategyAliases[strings.ToUpper(trimmed)]; ok {
		return alias, nil
	}
	strategy := Strategy(strings.ToLower(trimmed))
	if err := strategy.Validate(); err != nil {
		return "", err
	}
	return strategy, nil
}

// Validate returns nil if the Strategy is one of the canonical strategies.
func (s Strategy) Validate() error {
	switch s {
	case LastSuccessfulBuild, PreviousTag, PreviousCommit, ExplicitCommit:
		return nil
	default:
		return &InvalidStrategyError{Value: s}
	}
}

// String returns the string representation of the Strategy.
func (s Strategy) String() string { return string(s) }

// SPDX-License-Identifier: MPL-2.0

package modgraph

import (
	"errors"

	"github.com/blastradius/blastradius/internal/dag"
	"github.com/blastradius/blastradius/internal/pattern"
)

const (
	// SeverityError marks a finding that makes change detection fail.
	SeverityError Severity = "error"
	// SeverityWarning marks a finding that detection tolerates.
	SeverityWarning Severity = "warning"
)

type (
	// Severity classifies a Finding.
	Severity string

	// Finding is one problem reported by Validate.
	Finding struct {
		Module   string
		Severity Severity
		Err      error
	}
)

// Validate checks every declared pattern and reports dependency cycles.
// Cycles are warnings: the closure walk terminates on them, but they usually
// indicate a modelling mistake.
func Validate(p Provider) []Finding {
	var findings []Finding
	Walk(p, func(id, _ ModuleID) {
		declared, ok := p.DeclaredPatterns(id)
		if !ok {
			return
		}
		if _, err := pattern.Build(p.Dir(id), declared); err != nil {
			findings = append(findings, Finding{Module: p.Path(id), Severity: SeverityError, Err: err})
		}
	})

	if _, err := BuildOrder(p); err != nil {
		var cycleErr *dag.CycleError
		if errors.As(err, &cycleErr) {
			for _, path := range cycleErr.Nodes {
				findings = append(findings, Finding{Module: path, Severity: SeverityWarning, Err: err})
			}
		} else {
			findings = append(findings, Finding{Severity: SeverityError, Err: err})
		}
	}
	return findings
}

// HasErrors reports whether any finding is an error.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Package decision defines the outreach decision contract and the gate that
// shields the AI oracle behind cheap deterministic pre-checks.
package decision

import (
	"context"
	"fmt"
	"strings"
)

const (
	Yes = "YES"
	No  = "NO"
)

// Extracted holds structured fields the oracle pulled out of the profile.
type Extracted struct {
	Name string   `json:"name,omitempty"`
	Tags []string `json:"tags,omitempty"`
}

// Result is the outcome of evaluating one candidate. Decision is constrained
// to the YES/NO literals; anything else is rejected at the boundary.
type Result struct {
	Decision      string    `json:"decision"`
	Rationale     string    `json:"rationale,omitempty"`
	Draft         string    `json:"draft,omitempty"`
	Extracted     Extracted `json:"extracted,omitempty"`
	PromptVersion string    `json:"prompt_version,omitempty"`
}

// Validate rejects any decision value other than the YES/NO literals and
// enforces that a NO carries no draft.
func (r *Result) Validate() error {
	if r == nil {
		return fmt.Errorf("decision result is required")
	}

	switch strings.TrimSpace(r.Decision) {
	case Yes:
		r.Decision = Yes
	case No:
		r.Decision = No
		r.Draft = ""
	default:
		return fmt.Errorf("invalid decision value: %q", r.Decision)
	}

	return nil
}

// Oracle evaluates a candidate profile against criteria. Implementations are
// assumed costly and fallible; callers gate access to them.
type Oracle interface {
	Evaluate(ctx context.Context, profile, criteria string) (*Result, error)
}

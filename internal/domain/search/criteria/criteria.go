// Package criteria defines the user-selected attribute filter. A Criteria is
// an immutable value compared by structural equality, so callers can detect
// redundant fetch/filter cycles cheaply.
package criteria

import (
	"fmt"
	"slices"
	"strings"
)

// Sponsor is the sponsor-class constraint.
type Sponsor string

// Sponsor constraint values.
const (
	SponsorAny      Sponsor = "Any"
	SponsorIndustry Sponsor = "Industry"
)

// IsValid checks if the sponsor constraint is one of the supported values.
func (s Sponsor) IsValid() bool {
	return s == SponsorAny || s == SponsorIndustry
}

// ValidPhases are the normalized phases a criteria may select.
var ValidPhases = []string{"1", "2", "3", "4", "NA"}

// Criteria is the user-chosen predicate over trial attributes.
// The zero value is the identity (no constraint).
type Criteria struct {
	phases         []string
	sponsor        Sponsor
	recruitingOnly bool
}

// Identity returns the no-constraint criteria.
func Identity() Criteria {
	return Criteria{sponsor: SponsorAny}
}

// New validates and creates a Criteria. Phases are deduplicated and sorted so
// structural equality is order-independent.
func New(phases []string, sponsor Sponsor, recruitingOnly bool) (Criteria, error) {
	if sponsor == "" {
		sponsor = SponsorAny
	}
	if !sponsor.IsValid() {
		return Criteria{}, fmt.Errorf("invalid sponsor constraint: %q", sponsor)
	}

	normalized := make([]string, 0, len(phases))
	for _, p := range phases {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !slices.Contains(ValidPhases, p) {
			return Criteria{}, fmt.Errorf("invalid phase: %q", p)
		}
		if !slices.Contains(normalized, p) {
			normalized = append(normalized, p)
		}
	}
	slices.Sort(normalized)
	if len(normalized) == 0 {
		normalized = nil
	}

	return Criteria{
		phases:         normalized,
		sponsor:        sponsor,
		recruitingOnly: recruitingOnly,
	}, nil
}

// Phases returns the selected phases, nil when unconstrained.
func (c Criteria) Phases() []string { return c.phases }

// Sponsor returns the sponsor constraint.
func (c Criteria) Sponsor() Sponsor {
	if c.sponsor == "" {
		return SponsorAny
	}
	return c.sponsor
}

// RecruitingOnly reports whether only recruiting trials are accepted.
func (c Criteria) RecruitingOnly() bool { return c.recruitingOnly }

// IsIdentity reports whether the criteria imposes no constraint.
func (c Criteria) IsIdentity() bool {
	return len(c.phases) == 0 && c.Sponsor() == SponsorAny && !c.recruitingOnly
}

// Equal compares two criteria structurally.
func (c Criteria) Equal(other Criteria) bool {
	return slices.Equal(c.phases, other.phases) &&
		c.Sponsor() == other.Sponsor() &&
		c.recruitingOnly == other.recruitingOnly
}

// AllowsPhase reports whether the given normalized phase passes the phase
// constraint. An empty phase set allows everything.
func (c Criteria) AllowsPhase(phase string) bool {
	return len(c.phases) == 0 || slices.Contains(c.phases, phase)
}

// AllowsSponsor reports whether the given sponsor class passes the sponsor
// constraint. Comparison is case-insensitive.
func (c Criteria) AllowsSponsor(sponsorClass string) bool {
	if c.Sponsor() != SponsorIndustry {
		return true
	}
	return strings.EqualFold(sponsorClass, "industry")
}

// AllowsStatus reports whether the given overall status passes the
// recruiting-only constraint. Comparison is a case-insensitive prefix match so
// upstream variants like "RECRUITING" and "Recruiting by invitation" both pass.
func (c Criteria) AllowsStatus(overallStatus string) bool {
	if !c.recruitingOnly {
		return true
	}
	const prefix = "recruit"
	if len(overallStatus) < len(prefix) {
		return false
	}
	return strings.EqualFold(overallStatus[:len(prefix)], prefix)
}

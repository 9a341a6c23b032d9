// Package trial holds normalized facts about registry trials. Attributes are
// fetched on demand per search and never persisted.
package trial

import "regexp"

// PhaseNA is the normalized phase for trials with no recognizable phase.
const PhaseNA = "NA"

var phaseDigit = regexp.MustCompile(`[1-4]`)

// Attributes are normalized facts about one external trial, keyed by NCT id.
// SponsorClass and OverallStatus are pass-through nullable strings (empty when
// absent upstream); case-insensitive comparison is the filter's job.
type Attributes struct {
	nctID         string
	phase         string
	sponsorClass  string
	overallStatus string
}

// Reconstruct builds Attributes from already-normalized values.
func Reconstruct(nctID, phase, sponsorClass, overallStatus string) Attributes {
	return Attributes{
		nctID:         nctID,
		phase:         phase,
		sponsorClass:  sponsorClass,
		overallStatus: overallStatus,
	}
}

// Normalize builds Attributes from raw registry fields, normalizing the phase
// from the upstream free-text phase list.
func Normalize(nctID string, phases []string, sponsorClass, overallStatus string) Attributes {
	return Attributes{
		nctID:         nctID,
		phase:         NormalizePhase(phases),
		sponsorClass:  sponsorClass,
		overallStatus: overallStatus,
	}
}

// NCTID returns the registry-assigned trial identifier.
func (a Attributes) NCTID() string { return a.nctID }

// Phase returns the normalized phase: "1", "2", "3", "4", or "NA".
func (a Attributes) Phase() string { return a.phase }

// SponsorClass returns the upstream sponsor class, empty when absent.
func (a Attributes) SponsorClass() string { return a.sponsorClass }

// OverallStatus returns the upstream overall status, empty when absent.
func (a Attributes) OverallStatus() string { return a.overallStatus }

// NormalizePhase extracts the first element of the upstream free-text phase
// list and matches it against a single digit 1-4. Absent or unmatched phases
// normalize to PhaseNA.
func NormalizePhase(phases []string) string {
	if len(phases) == 0 {
		return PhaseNA
	}
	if m := phaseDigit.FindString(phases[0]); m != "" {
		return m
	}
	return PhaseNA
}

// Lookup indexes attributes by NCT id. Later entries win on duplicate ids.
func Lookup(attrs []Attributes) map[string]Attributes {
	byID := make(map[string]Attributes, len(attrs))
	for _, a := range attrs {
		byID[a.nctID] = a
	}
	return byID
}

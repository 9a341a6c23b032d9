// Package mode defines the reconciler's two operating states. Which data sets
// are fetched and how totals are reported follows from the mode alone, never
// from scattered boolean flags.
package mode

import "github.com/kailas-cloud/trialscout/internal/domain/search/criteria"

// Mode is the reconciler operating state.
type Mode string

// Operating states.
const (
	// Unfiltered serves the server page verbatim; totals come from the store.
	Unfiltered Mode = "unfiltered"
	// Filtered requires the full unpaged candidate set; filtering and
	// pagination happen in memory and the filtered count becomes the total.
	Filtered Mode = "filtered"
)

// For returns the mode implied by the given criteria. Any active constraint
// enters Filtered; the identity criteria stays Unfiltered.
func For(c criteria.Criteria) Mode {
	if c.IsIdentity() {
		return Unfiltered
	}
	return Filtered
}

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Unfiltered || m == Filtered
}

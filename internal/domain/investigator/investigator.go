package investigator

import "time"

// Distance is the distance from the query origin. Investigators whose zip code
// is missing from the geo table carry an unknown distance rather than a numeric
// sentinel, so sorting and display never confuse "unknown" with "far away".
type Distance struct {
	miles float64
	known bool
}

// KnownDistance creates a resolved distance in miles.
func KnownDistance(miles float64) Distance {
	return Distance{miles: miles, known: true}
}

// UnknownDistance creates an unresolved distance.
func UnknownDistance() Distance {
	return Distance{}
}

// Miles returns the distance in miles and whether it is known.
func (d Distance) Miles() (float64, bool) { return d.miles, d.known }

// Known reports whether the distance was resolved.
func (d Distance) Known() bool { return d.known }

// Investigator is one person associated with a trial at a location.
// Records are read-only from this service's perspective; an external ingestion
// process owns their lifecycle.
type Investigator struct {
	id          int64
	name        string
	role        string
	facility    string
	city        string
	state       string
	zip         string
	affiliation string
	nctID       string
	startDate   *time.Time
	distance    Distance
}

// Reconstruct builds an Investigator from stored values. nctID is empty when
// the record has no associated trial; startDate may be nil.
func Reconstruct(
	id int64,
	name, role, facility, city, state, zip, affiliation, nctID string,
	startDate *time.Time,
) Investigator {
	return Investigator{
		id:          id,
		name:        name,
		role:        role,
		facility:    facility,
		city:        city,
		state:       state,
		zip:         zip,
		affiliation: affiliation,
		nctID:       nctID,
		startDate:   startDate,
	}
}

// ID returns the stable record identifier.
func (i Investigator) ID() int64 { return i.id }

// Name returns the investigator's name.
func (i Investigator) Name() string { return i.name }

// Role returns the investigator's role on the trial.
func (i Investigator) Role() string { return i.role }

// Facility returns the trial site facility name.
func (i Investigator) Facility() string { return i.facility }

// City returns the facility city.
func (i Investigator) City() string { return i.city }

// State returns the facility state.
func (i Investigator) State() string { return i.state }

// Zip returns the facility postal code.
func (i Investigator) Zip() string { return i.zip }

// Affiliation returns the investigator's affiliation.
func (i Investigator) Affiliation() string { return i.affiliation }

// NCTID returns the registry-assigned trial identifier, empty when the record
// has no associated trial.
func (i Investigator) NCTID() string { return i.nctID }

// HasTrial reports whether the record is linked to a registry trial.
func (i Investigator) HasTrial() bool { return i.nctID != "" }

// StartDate returns the study start date, nil when unknown.
func (i Investigator) StartDate() *time.Time { return i.startDate }

// Distance returns the computed distance from the query origin.
func (i Investigator) Distance() Distance { return i.distance }

// WithDistance returns a copy decorated with the given distance.
// The original is not mutated; stored records never carry a distance.
func (i Investigator) WithDistance(d Distance) Investigator {
	i.distance = d
	return i
}

package request

import (
	"fmt"
	"regexp"
	"time"

	"github.com/kailas-cloud/trialscout/internal/domain/search/criteria"
)

// Search parameter limits.
const (
	DefaultRadiusMiles = 50
	MaxRadiusMiles     = 500
	DefaultPage        = 1
)

var (
	zipPattern  = regexp.MustCompile(`^\d{5}$`)
	yearPattern = regexp.MustCompile(`^\d{4}$`)
)

// Request is a validated investigator search query.
type Request struct {
	zip         string
	radiusMiles float64
	page        int
	startYear   int
	endYear     int
	filter      criteria.Criteria
	indications []string
}

// New validates and normalizes search parameters.
// Defaults: radius=50 miles, page=1. Inverted year ranges are auto-swapped
// rather than rejected. startYear/endYear are 4-digit strings, empty = open
// bound. indications is reserved and carried through unused.
func New(
	zip string,
	radiusMiles float64,
	page int,
	startYear, endYear string,
	filter criteria.Criteria,
	indications []string,
) (Request, error) {
	if !zipPattern.MatchString(zip) {
		return Request{}, fmt.Errorf("zip must be a 5-digit code, got %q", zip)
	}
	if radiusMiles < 0 {
		return Request{}, fmt.Errorf("radius must be non-negative, got %v", radiusMiles)
	}
	if radiusMiles == 0 {
		radiusMiles = DefaultRadiusMiles
	}
	if radiusMiles > MaxRadiusMiles {
		radiusMiles = MaxRadiusMiles
	}
	if page <= 0 {
		page = DefaultPage
	}

	start, err := parseYear("startYear", startYear)
	if err != nil {
		return Request{}, err
	}
	end, err := parseYear("endYear", endYear)
	if err != nil {
		return Request{}, err
	}
	if start != 0 && end != 0 && start > end {
		start, end = end, start
	}

	return Request{
		zip:         zip,
		radiusMiles: radiusMiles,
		page:        page,
		startYear:   start,
		endYear:     end,
		filter:      filter,
		indications: indications,
	}, nil
}

func parseYear(name, s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	if !yearPattern.MatchString(s) {
		return 0, fmt.Errorf("%s must be a 4-digit year, got %q", name, s)
	}
	var y int
	_, _ = fmt.Sscanf(s, "%d", &y)
	return y, nil
}

// Zip returns the origin postal code.
func (r Request) Zip() string { return r.zip }

// RadiusMiles returns the search radius in miles.
func (r Request) RadiusMiles() float64 { return r.radiusMiles }

// Page returns the 1-based page number.
func (r Request) Page() int { return r.page }

// Filter returns the attribute filter criteria.
func (r Request) Filter() criteria.Criteria { return r.filter }

// Indications returns the reserved indications parameter.
func (r Request) Indications() []string { return r.indications }

// DateRange returns the inclusive study-start-date bounds implied by the year
// range. A nil bound is open.
func (r Request) DateRange() (start, end *time.Time) {
	if r.startYear != 0 {
		t := time.Date(r.startYear, time.January, 1, 0, 0, 0, 0, time.UTC)
		start = &t
	}
	if r.endYear != 0 {
		t := time.Date(r.endYear, time.December, 31, 23, 59, 59, 0, time.UTC)
		end = &t
	}
	return start, end
}

// WithFilter returns a copy carrying the given filter criteria.
func (r Request) WithFilter(filter criteria.Criteria) Request {
	r.filter = filter
	return r
}

// SameScope reports whether the other request targets the same candidate pool
// (same origin, radius, and date range). Page and filter changes do not start
// a new search; scope changes do.
func (r Request) SameScope(other Request) bool {
	return r.zip == other.zip &&
		r.radiusMiles == other.radiusMiles &&
		r.startYear == other.startYear &&
		r.endYear == other.endYear
}

package result

import (
	"github.com/kailas-cloud/trialscout/internal/domain/investigator"
	"github.com/kailas-cloud/trialscout/internal/domain/search/mode"
)

// Page is one displayed page of a search: the investigators to show, the
// total count consistent with the active mode, and an optional non-fatal
// warning (metadata degradation).
type Page struct {
	investigators []investigator.Investigator
	totalCount    int
	searchMode    mode.Mode
	warning       string
}

// New creates a result page.
func New(investigators []investigator.Investigator, totalCount int, m mode.Mode) Page {
	return Page{investigators: investigators, totalCount: totalCount, searchMode: m}
}

// Investigators returns the page records in display order.
func (p Page) Investigators() []investigator.Investigator { return p.investigators }

// TotalCount returns the total matching count. In filtered mode this is the
// filtered count, not the store count.
func (p Page) TotalCount() int { return p.totalCount }

// Mode returns the operating mode that produced the page.
func (p Page) Mode() mode.Mode { return p.searchMode }

// Warning returns the non-fatal degradation notice, empty when none.
func (p Page) Warning() string { return p.warning }

// WithWarning returns a copy carrying a degradation notice.
func (p Page) WithWarning(warning string) Page {
	p.warning = warning
	return p
}

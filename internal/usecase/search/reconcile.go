package search

import (
	"github.com/kailas-cloud/trialscout/internal/domain/investigator"
	"github.com/kailas-cloud/trialscout/internal/domain/search/criteria"
	"github.com/kailas-cloud/trialscout/internal/domain/trial"
)

// applyFilter returns the investigators matching the criteria, preserving the
// relative order of the input (stable filter, no re-sort). It is a pure
// function of its inputs: identical inputs always yield an identical sequence.
//
// Fail-closed rule: under a non-identity criteria, an investigator with no
// trial identifier or no fetched attributes record is excluded — a record
// whose trial data is unknown cannot be proven to match. This holds even for
// predicates that would not consult the missing fields.
func applyFilter(
	c criteria.Criteria,
	records []investigator.Investigator,
	attrs map[string]trial.Attributes,
) []investigator.Investigator {
	if c.IsIdentity() {
		return records
	}

	filtered := make([]investigator.Investigator, 0, len(records))
	for _, rec := range records {
		if !rec.HasTrial() {
			continue
		}
		a, ok := attrs[rec.NCTID()]
		if !ok {
			continue
		}
		if !c.AllowsPhase(a.Phase()) {
			continue
		}
		if !c.AllowsSponsor(a.SponsorClass()) {
			continue
		}
		if !c.AllowsStatus(a.OverallStatus()) {
			continue
		}
		filtered = append(filtered, rec)
	}
	return filtered
}

// paginate slices one 1-based page out of the filtered list using the same
// page size as server pagination. Pages past the end are empty, not an error.
func paginate(records []investigator.Investigator, page, pageSize int) []investigator.Investigator {
	start := (page - 1) * pageSize
	if start >= len(records) {
		return nil
	}
	end := start + pageSize
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

// distinctTrialIDs gathers the distinct NCT ids referenced by the records,
// in first-seen order. Records without a trial contribute nothing.
func distinctTrialIDs(records []investigator.Investigator) []string {
	seen := make(map[string]struct{}, len(records))
	var ids []string
	for _, rec := range records {
		id := rec.NCTID()
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/trialscout/internal/domain/geo"
	"github.com/kailas-cloud/trialscout/internal/domain/investigator"
	"github.com/kailas-cloud/trialscout/internal/domain/search/mode"
	"github.com/kailas-cloud/trialscout/internal/domain/search/request"
	"github.com/kailas-cloud/trialscout/internal/domain/search/result"
	"github.com/kailas-cloud/trialscout/internal/domain/trial"
)

// DefaultPageSize matches the server-side pagination size.
const DefaultPageSize = 20

// MetadataWarning is the non-fatal notice shown when trial attributes could
// not be fetched for an active filter. No investigator can be proven to match,
// so the filtered result is empty rather than wrong.
const MetadataWarning = "trial details are temporarily unavailable; attribute filters could not be applied"

// Service reconciles geographic search pages with on-demand trial attributes.
type Service struct {
	geo      GeoResolver
	store    InvestigatorStore
	metadata MetadataFetcher
	pageSize int
	logger   *zap.Logger
}

// New creates a search service.
func New(geo GeoResolver, store InvestigatorStore, metadata MetadataFetcher, logger *zap.Logger) *Service {
	return &Service{
		geo:      geo,
		store:    store,
		metadata: metadata,
		pageSize: DefaultPageSize,
		logger:   logger,
	}
}

// WithPageSize overrides the page size shared by server and in-memory pagination.
func (s *Service) WithPageSize(pageSize int) *Service {
	if pageSize > 0 {
		s.pageSize = pageSize
	}
	return s
}

// PageSize returns the active page size.
func (s *Service) PageSize() int { return s.pageSize }

// Search executes one search pipeline: resolve the radius zip set, query the
// store in the mode implied by the filter criteria, reconcile with trial
// attributes, and decorate distances against the query origin.
func (s *Service) Search(ctx context.Context, req request.Request) (result.Page, error) {
	zips, err := s.geo.WithinRadius(ctx, req.Zip(), req.RadiusMiles())
	if err != nil {
		return result.Page{}, fmt.Errorf("resolve radius: %w", err)
	}
	if len(zips) == 0 {
		zips = []string{req.Zip()}
	}

	startDate, endDate := req.DateRange()

	var page result.Page
	switch m := mode.For(req.Filter()); m {
	case mode.Filtered:
		page, err = s.searchFiltered(ctx, req, zips, startDate, endDate)
	default:
		page, err = s.searchUnfiltered(ctx, req, zips, startDate, endDate)
	}
	if err != nil {
		return result.Page{}, err
	}

	return s.decorateDistances(ctx, req.Zip(), page), nil
}

// searchUnfiltered serves the server page verbatim; the total count comes
// straight from the store and no metadata fetch gates the display.
func (s *Service) searchUnfiltered(
	ctx context.Context,
	req request.Request,
	zips []string,
	startDate, endDate *time.Time,
) (result.Page, error) {
	records, total, err := s.store.Search(ctx, zips, startDate, endDate, req.Page(), s.pageSize)
	if err != nil {
		return result.Page{}, fmt.Errorf("search investigators: %w", err)
	}
	return result.New(records, total, mode.Unfiltered), nil
}

// searchFiltered fetches the entire unpaged candidate set, filters it against
// trial attributes, and paginates in memory. Client-side filtering over a
// single server page would silently drop matches from later pages.
func (s *Service) searchFiltered(
	ctx context.Context,
	req request.Request,
	zips []string,
	startDate, endDate *time.Time,
) (result.Page, error) {
	full, err := s.store.SearchAll(ctx, zips, startDate, endDate)
	if err != nil {
		// No fallback to the last page's data: surface the error and let the
		// caller render an explicit error state.
		return result.Page{}, fmt.Errorf("search all investigators: %w", err)
	}

	ids := distinctTrialIDs(full)
	attrs, err := s.metadata.FetchMetadata(ctx, ids)
	if err != nil {
		// Metadata failure under an active filter: nothing can be proven to
		// match, so the display is empty with a warning, not an error.
		s.logger.Warn("Trial metadata fetch failed with active filter",
			zap.Int("ids", len(ids)),
			zap.Error(err),
		)
		return result.New(nil, 0, mode.Filtered).WithWarning(MetadataWarning), nil
	}

	filtered := applyFilter(req.Filter(), full, trial.Lookup(attrs))
	pageRecords := paginate(filtered, req.Page(), s.pageSize)

	// The filtered count replaces the store count as the reported total.
	return result.New(pageRecords, len(filtered), mode.Filtered), nil
}

// decorateDistances computes each displayed investigator's distance from the
// query origin. Zip codes missing from the geo table get a tagged unknown
// distance; a resolver failure degrades every distance to unknown rather than
// blocking the page.
func (s *Service) decorateDistances(ctx context.Context, originZip string, page result.Page) result.Page {
	records := page.Investigators()
	if len(records) == 0 {
		return page
	}

	zipSet := make([]string, 0, len(records)+1)
	zipSet = append(zipSet, originZip)
	for _, rec := range records {
		zipSet = append(zipSet, rec.Zip())
	}

	coords, err := s.geo.CoordinatesFor(ctx, zipSet)
	if err != nil {
		s.logger.Warn("Distance decoration failed", zap.String("zip", originZip), zap.Error(err))
		coords = nil
	}
	origin, originKnown := coords[originZip]

	decorated := make([]investigator.Investigator, len(records))
	for i, rec := range records {
		d := investigator.UnknownDistance()
		if c, ok := coords[rec.Zip()]; ok && originKnown {
			d = investigator.KnownDistance(geo.DistanceMiles(origin, c))
		}
		decorated[i] = rec.WithDistance(d)
	}

	out := result.New(decorated, page.TotalCount(), page.Mode())
	if page.Warning() != "" {
		out = out.WithWarning(page.Warning())
	}
	return out
}

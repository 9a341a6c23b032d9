package search

import (
	"context"
	"time"

	"github.com/kailas-cloud/trialscout/internal/domain/geo"
	"github.com/kailas-cloud/trialscout/internal/domain/investigator"
	"github.com/kailas-cloud/trialscout/internal/domain/trial"
)

// GeoResolver resolves postal codes and distances. The resolver is treated as
// authoritative; the service does not retry or validate its geometry.
type GeoResolver interface {
	ResolveOrigin(ctx context.Context, zip string) (geo.Coordinate, error)
	WithinRadius(ctx context.Context, zip string, radiusMiles float64) ([]string, error)
	CoordinatesFor(ctx context.Context, zips []string) (map[string]geo.Coordinate, error)
}

// InvestigatorStore defines the storage contract for investigator queries.
// Both variants return records ordered by study start date descending with
// stable ties.
type InvestigatorStore interface {
	Search(
		ctx context.Context, zips []string,
		startDate, endDate *time.Time,
		page, pageSize int,
	) ([]investigator.Investigator, int, error)

	SearchAll(
		ctx context.Context, zips []string,
		startDate, endDate *time.Time,
	) ([]investigator.Investigator, error)
}

// MetadataFetcher resolves NCT ids into normalized trial attributes.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, ids []string) ([]trial.Attributes, error)
}

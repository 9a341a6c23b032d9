// Package zipcode resolves US postal codes against a read-only centroid table.
package zipcode

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kailas-cloud/trialscout/internal/domain"
	"github.com/kailas-cloud/trialscout/internal/domain/geo"
)

// Repository implements the geo-radius resolver over a zip_codes table
// (zip, latitude, longitude). The table is externally owned and read-only.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a zip-code repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ResolveOrigin returns the centroid coordinate for a zip code.
// Returns domain.ErrZipNotFound for unknown codes.
func (r *Repository) ResolveOrigin(ctx context.Context, zip string) (geo.Coordinate, error) {
	var c geo.Coordinate
	err := r.pool.QueryRow(ctx,
		`SELECT latitude, longitude FROM zip_codes WHERE zip = $1`,
		zip,
	).Scan(&c.Latitude, &c.Longitude)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return geo.Coordinate{}, fmt.Errorf("zip %s: %w", zip, domain.ErrZipNotFound)
		}
		return geo.Coordinate{}, fmt.Errorf("resolve origin %s: %w", zip, err)
	}
	return c, nil
}

// WithinRadius returns every zip code whose centroid lies within radiusMiles
// of the origin zip, origin included. A bounding-box SQL prefilter narrows the
// candidate set before the exact Haversine check.
func (r *Repository) WithinRadius(ctx context.Context, zip string, radiusMiles float64) ([]string, error) {
	origin, err := r.ResolveOrigin(ctx, zip)
	if err != nil {
		return nil, err
	}

	minLat, maxLat, minLon, maxLon := geo.BoundingBox(origin, radiusMiles)

	rows, err := r.pool.Query(ctx,
		`SELECT zip, latitude, longitude
		   FROM zip_codes
		  WHERE latitude BETWEEN $1 AND $2
		    AND longitude BETWEEN $3 AND $4`,
		minLat, maxLat, minLon, maxLon,
	)
	if err != nil {
		return nil, fmt.Errorf("zip codes within radius of %s: %w", zip, err)
	}
	defer rows.Close()

	var zips []string
	for rows.Next() {
		var candidate string
		var c geo.Coordinate
		if err := rows.Scan(&candidate, &c.Latitude, &c.Longitude); err != nil {
			return nil, fmt.Errorf("scan zip row: %w", err)
		}
		if geo.DistanceMiles(origin, c) <= radiusMiles {
			zips = append(zips, candidate)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate zip rows: %w", err)
	}
	return zips, nil
}

// Distance returns the great-circle distance in miles between two zip codes.
func (r *Repository) Distance(ctx context.Context, zipA, zipB string) (float64, error) {
	a, err := r.ResolveOrigin(ctx, zipA)
	if err != nil {
		return 0, err
	}
	b, err := r.ResolveOrigin(ctx, zipB)
	if err != nil {
		return 0, err
	}
	return geo.DistanceMiles(a, b), nil
}

// CoordinatesFor returns centroids for the given zip codes in one query.
// Unknown zips are simply absent from the result.
func (r *Repository) CoordinatesFor(ctx context.Context, zips []string) (map[string]geo.Coordinate, error) {
	if len(zips) == 0 {
		return map[string]geo.Coordinate{}, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT zip, latitude, longitude FROM zip_codes WHERE zip = ANY($1)`,
		zips,
	)
	if err != nil {
		return nil, fmt.Errorf("coordinates for zips: %w", err)
	}
	defer rows.Close()

	coords := make(map[string]geo.Coordinate, len(zips))
	for rows.Next() {
		var z string
		var c geo.Coordinate
		if err := rows.Scan(&z, &c.Latitude, &c.Longitude); err != nil {
			return nil, fmt.Errorf("scan zip row: %w", err)
		}
		coords[z] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate zip rows: %w", err)
	}
	return coords, nil
}

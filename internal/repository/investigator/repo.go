// Package investigator queries the read-only investigator store.
package investigator

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kailas-cloud/trialscout/internal/domain"
	dominv "github.com/kailas-cloud/trialscout/internal/domain/investigator"
)

// Repository implements the investigator query service over an externally
// owned relational store. Records are created and mutated by an ingestion
// process out of scope; this repository only reads.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates an investigator repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectColumns = `id, name, role, facility, city, state, zip,
       affiliation, nct_id, study_start_date`

// Ordering contract: study start date descending, nulls last, ties broken by
// primary key ascending so pagination is stable across requests.
const orderClause = ` ORDER BY study_start_date DESC NULLS LAST, id ASC`

// Search returns one page of investigators within the given zip set and date
// range, plus the total matching count.
func (r *Repository) Search(
	ctx context.Context,
	zips []string,
	startDate, endDate *time.Time,
	page, pageSize int,
) ([]dominv.Investigator, int, error) {
	where, args := buildWhere(zips, startDate, endDate)

	var total int
	countQuery := `SELECT COUNT(*) FROM investigators` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count investigators: %w: %w", domain.ErrSearchFailed, err)
	}

	offset := (page - 1) * pageSize
	pageQuery := fmt.Sprintf(
		`SELECT %s FROM investigators%s%s LIMIT $%d OFFSET $%d`,
		selectColumns, where, orderClause, len(args)+1, len(args)+2,
	)
	args = append(args, pageSize, offset)

	records, err := r.queryInvestigators(ctx, pageQuery, args)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// SearchAll returns the entire unpaged matching set in the same order as
// Search. Used only when attribute filtering is active.
func (r *Repository) SearchAll(
	ctx context.Context,
	zips []string,
	startDate, endDate *time.Time,
) ([]dominv.Investigator, error) {
	where, args := buildWhere(zips, startDate, endDate)
	query := fmt.Sprintf(`SELECT %s FROM investigators%s%s`, selectColumns, where, orderClause)
	return r.queryInvestigators(ctx, query, args)
}

func (r *Repository) queryInvestigators(
	ctx context.Context, query string, args []any,
) ([]dominv.Investigator, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query investigators: %w: %w", domain.ErrSearchFailed, err)
	}
	defer rows.Close()

	var records []dominv.Investigator
	for rows.Next() {
		rec, err := scanInvestigator(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate investigators: %w: %w", domain.ErrSearchFailed, err)
	}
	return records, nil
}

func scanInvestigator(rows pgx.Rows) (dominv.Investigator, error) {
	var (
		id                                int64
		name, role, facility, city, state string
		zip, affiliation                  string
		nctID                             *string
		startDate                         *time.Time
	)
	err := rows.Scan(
		&id, &name, &role, &facility, &city, &state, &zip,
		&affiliation, &nctID, &startDate,
	)
	if err != nil {
		return dominv.Investigator{}, fmt.Errorf("scan investigator row: %w", err)
	}

	trialID := ""
	if nctID != nil {
		trialID = *nctID
	}
	return dominv.Reconstruct(
		id, name, role, facility, city, state, zip, affiliation, trialID, startDate,
	), nil
}

// buildWhere assembles the shared WHERE clause for Search and SearchAll so the
// paged and unpaged variants can never disagree on the candidate pool.
func buildWhere(zips []string, startDate, endDate *time.Time) (string, []any) {
	where := ` WHERE zip = ANY($1)`
	args := []any{zips}

	if startDate != nil {
		args = append(args, *startDate)
		where += fmt.Sprintf(` AND study_start_date >= $%d`, len(args))
	}
	if endDate != nil {
		args = append(args, *endDate)
		where += fmt.Sprintf(` AND study_start_date <= $%d`, len(args))
	}
	return where, args
}

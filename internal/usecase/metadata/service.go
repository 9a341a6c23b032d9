package metadata

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/trialscout/internal/domain"
	"github.com/kailas-cloud/trialscout/internal/domain/trial"
)

// Service exposes trial metadata lookups to the API. Browser clients use it
// to populate filter-option counts without re-running a search.
type Service struct {
	fetcher Fetcher
}

// New creates a metadata service.
func New(fetcher Fetcher) *Service {
	return &Service{fetcher: fetcher}
}

// Fetch resolves the given NCT ids. At least one id is required.
func (s *Service) Fetch(ctx context.Context, ids []string) ([]trial.Attributes, error) {
	nonEmpty := 0
	for _, id := range ids {
		if id != "" {
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		return nil, fmt.Errorf("%w: at least one trial id is required", domain.ErrInvalidRequest)
	}

	attrs, err := s.fetcher.FetchMetadata(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch trial metadata: %w", err)
	}
	return attrs, nil
}

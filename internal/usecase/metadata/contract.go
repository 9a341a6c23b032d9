package metadata

import (
	"context"

	"github.com/kailas-cloud/trialscout/internal/domain/trial"
)

// Fetcher resolves NCT ids into normalized trial attributes.
type Fetcher interface {
	FetchMetadata(ctx context.Context, ids []string) ([]trial.Attributes, error)
}

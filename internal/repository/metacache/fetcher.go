package metacache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/trialscout/internal/db"
	"github.com/kailas-cloud/trialscout/internal/domain/trial"
)

const cacheKeyPrefix = "trialscout:meta_cache:"

// fetcher is the consumer interface for the upstream metadata gateway (ISP).
type fetcher interface {
	FetchMetadata(ctx context.Context, ids []string) ([]trial.Attributes, error)
}

// store is the consumer interface for the metadata cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedFetcher caches trial attributes in a key-value store, keyed by the
// sorted deduplicated identifier set. Entries expire by TTL; the cache is
// append-only from the caller's perspective.
type CachedFetcher struct {
	inner      fetcher
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner fetcher,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedFetcher {
	return &CachedFetcher{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// cachedAttrs is the stored payload shape.
type cachedAttrs struct {
	NCTID         string `json:"nctId"`
	Phase         string `json:"phase"`
	SponsorClass  string `json:"sponsorClass,omitempty"`
	OverallStatus string `json:"overallStatus,omitempty"`
}

// FetchMetadata returns cached attributes for the id set or calls the inner
// gateway. Cache errors degrade to a miss; fetch errors are never cached.
func (c *CachedFetcher) FetchMetadata(ctx context.Context, ids []string) ([]trial.Attributes, error) {
	key := CacheKey(ids)

	if attrs, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return attrs, nil
	}

	c.incCache("miss")

	attrs, err := c.inner.FetchMetadata(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch trial metadata: %w", err)
	}

	c.putToCache(ctx, key, attrs)
	return attrs, nil
}

func (c *CachedFetcher) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// CacheKey derives the cache key from the sorted deduplicated id set, so the
// same set always maps to the same entry regardless of input order.
func CacheKey(ids []string) string {
	distinct := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			distinct = append(distinct, id)
		}
	}
	slices.Sort(distinct)
	distinct = slices.Compact(distinct)

	h := sha256.Sum256([]byte(strings.Join(distinct, ",")))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedFetcher) getFromCache(ctx context.Context, key string) ([]trial.Attributes, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached trial metadata", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var stored []cachedAttrs
	if err := json.Unmarshal(data, &stored); err != nil {
		c.logger.Warn("Failed to parse cached trial metadata", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	attrs := make([]trial.Attributes, len(stored))
	for i, s := range stored {
		attrs[i] = trial.Reconstruct(s.NCTID, s.Phase, s.SponsorClass, s.OverallStatus)
	}
	return attrs, true
}

func (c *CachedFetcher) putToCache(ctx context.Context, key string, attrs []trial.Attributes) {
	stored := make([]cachedAttrs, len(attrs))
	for i, a := range attrs {
		stored[i] = cachedAttrs{
			NCTID:         a.NCTID(),
			Phase:         a.Phase(),
			SponsorClass:  a.SponsorClass(),
			OverallStatus: a.OverallStatus(),
		}
	}

	data, err := json.Marshal(stored)
	if err != nil {
		c.logger.Warn("Failed to encode trial metadata for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache trial metadata", zap.String("key", key), zap.Error(err))
	}
}

// Package registry is the HTTP client for the external trials registry.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/trialscout/internal/domain"
	"github.com/kailas-cloud/trialscout/internal/domain/trial"
	"github.com/kailas-cloud/trialscout/internal/metrics"
)

// MaxBatchSize is the registry's per-request identifier limit.
const MaxBatchSize = 100

// maxQueryLength is the encoded-query byte threshold above which the client
// switches from the query-string form to the body form.
const maxQueryLength = 1800

// requestedFields trims the upstream response to the attributes this service
// normalizes.
const requestedFields = "nctId,phases,fundedBy,overallStatus"

// Config holds the trials registry client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
}

// Client fetches trial attributes from the registry, batching and paginating
// requests per the upstream contract.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a trials registry client.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     cfg.Logger,
	}
}

// studiesResponse is the upstream page shape.
type studiesResponse struct {
	Studies []rawStudy `json:"studies"`
	// NextPageToken is empty on the final page of a batch.
	NextPageToken string `json:"nextPageToken"`
}

type rawStudy struct {
	NCTID         string   `json:"nctId"`
	Phases        []string `json:"phases"`
	FundedBy      string   `json:"fundedBy"`
	OverallStatus string   `json:"overallStatus"`
}

// bodyRequest is the body-form request shape, used when the query-string
// encoding would exceed maxQueryLength.
type bodyRequest struct {
	IDs       []string `json:"ids"`
	Fields    string   `json:"fields,omitempty"`
	PageToken string   `json:"pageToken,omitempty"`
}

// FetchMetadata resolves a set of NCT ids into normalized trial attributes.
// Input order has no significance; the set is deduplicated and sorted before
// batching. The output contains at most one record per distinct input id;
// ids unknown upstream are simply absent. Any non-success upstream response
// aborts the entire fetch and discards partial results.
func (c *Client) FetchMetadata(ctx context.Context, ids []string) ([]trial.Attributes, error) {
	distinct := dedupeSorted(ids)
	if len(distinct) == 0 {
		return nil, nil
	}

	var out []trial.Attributes
	for start := 0; start < len(distinct); start += MaxBatchSize {
		batch := distinct[start:min(start+MaxBatchSize, len(distinct))]
		attrs, err := c.fetchBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		out = append(out, attrs...)
	}
	return out, nil
}

// fetchBatch issues requests for one batch, following the continuation token
// until the upstream signals no further pages exist.
func (c *Client) fetchBatch(ctx context.Context, ids []string) ([]trial.Attributes, error) {
	var attrs []trial.Attributes
	pageToken := ""
	for {
		page, err := c.fetchPage(ctx, ids, pageToken)
		if err != nil {
			return nil, err
		}
		for _, s := range page.Studies {
			attrs = append(attrs, trial.Normalize(s.NCTID, s.Phases, s.FundedBy, s.OverallStatus))
		}
		if page.NextPageToken == "" {
			return attrs, nil
		}
		pageToken = page.NextPageToken
	}
}

func (c *Client) fetchPage(ctx context.Context, ids []string, pageToken string) (*studiesResponse, error) {
	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))
	query.Set("fields", requestedFields)
	if pageToken != "" {
		query.Set("pageToken", pageToken)
	}
	encoded := query.Encode()

	var (
		req  *http.Request
		form string
		err  error
	)
	if len(encoded) > maxQueryLength {
		form = "body"
		req, err = c.newBodyRequest(ctx, ids, pageToken)
	} else {
		form = "query"
		req, err = http.NewRequestWithContext(
			ctx, http.MethodGet, c.baseURL+"/studies?"+encoded, nil,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("build registry request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		metrics.RegistryRequestsTotal.WithLabelValues(form, "error").Inc()
		return nil, fmt.Errorf("registry request: %w: %w", domain.ErrRegistryUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.RegistryRequestsTotal.WithLabelValues(form, strconv.Itoa(resp.StatusCode)).Inc()
	metrics.RegistryRequestDuration.WithLabelValues(form).Observe(duration.Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused; the payload is irrelevant.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		c.logger.Warn("Registry returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.String("form", form),
			zap.Int("ids", len(ids)),
		)
		return nil, domain.NewMetadataFetchError(resp.StatusCode)
	}

	var page studiesResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode registry response: %w: %w", domain.ErrRegistryUnavailable, err)
	}
	return &page, nil
}

func (c *Client) newBodyRequest(ctx context.Context, ids []string, pageToken string) (*http.Request, error) {
	payload, err := json.Marshal(bodyRequest{
		IDs:       ids,
		Fields:    requestedFields,
		PageToken: pageToken,
	})
	if err != nil {
		return nil, fmt.Errorf("encode registry body: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+"/studies/search", bytes.NewReader(payload),
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// dedupeSorted returns the distinct non-empty ids in sorted order. Sorting
// makes batch composition independent of input order, which also keeps cache
// keys stable upstream of this client.
func dedupeSorted(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

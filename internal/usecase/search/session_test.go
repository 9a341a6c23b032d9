package search

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/trialscout/internal/domain"
	"github.com/kailas-cloud/trialscout/internal/domain/investigator"
	"github.com/kailas-cloud/trialscout/internal/domain/search/criteria"
	"github.com/kailas-cloud/trialscout/internal/domain/search/result"
)

// gatedStore blocks the first SearchAll call until released, so a test can
// interleave a second search while the first is in flight.
type gatedStore struct {
	mockStore
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int64
}

func (g *gatedStore) SearchAll(
	ctx context.Context, zips []string,
	startDate, endDate *time.Time,
) ([]investigator.Investigator, error) {
	if g.calls.Add(1) == 1 {
		close(g.entered)
		<-g.release
	}
	return g.mockStore.SearchAll(ctx, zips, startDate, endDate)
}

func TestSessionLastRequestWins(t *testing.T) {
	st := &gatedStore{
		mockStore: mockStore{allRecords: []investigator.Investigator{
			testInvestigator(1, "NCT01", "2020-01-01"),
		}},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	f := &mockFetcher{attrs: nil}
	sess := NewSession(New(&mockGeo{zips: []string{"02114"}}, st, f, zap.NewNop()))

	filter, err := criteria.New([]string{"2"}, criteria.SponsorAny, false)
	if err != nil {
		t.Fatalf("criteria.New() error: %v", err)
	}
	req := mustSearchRequest(t, "02139", 1, filter)

	type outcome struct {
		page result.Page
		err  error
	}
	first := make(chan outcome, 1)
	go func() {
		page, err := sess.Search(context.Background(), req)
		first <- outcome{page, err}
	}()

	// Wait until the first search has hit the store, then supersede it.
	<-st.entered
	if _, err := sess.Search(context.Background(), req); err != nil {
		t.Fatalf("second search error: %v", err)
	}

	close(st.release)
	got := <-first
	if !errors.Is(got.err, domain.ErrStaleSearch) {
		t.Errorf("superseded search error = %v, want ErrStaleSearch", got.err)
	}
	if len(got.page.Investigators()) != 0 {
		t.Error("superseded search must not deliver results")
	}
}

func TestSessionScopeChangeClearsFilter(t *testing.T) {
	st := &mockStore{
		allRecords:  []investigator.Investigator{testInvestigator(1, "NCT01", "2020-01-01")},
		pageRecords: []investigator.Investigator{testInvestigator(1, "NCT01", "2020-01-01")},
		total:       1,
	}
	f := &mockFetcher{attrs: nil}
	sess := NewSession(New(&mockGeo{zips: []string{"02114"}}, st, f, zap.NewNop()))

	filter, err := criteria.New(nil, criteria.SponsorIndustry, false)
	if err != nil {
		t.Fatalf("criteria.New() error: %v", err)
	}

	// First search establishes the scope; its filter runs.
	if _, err := sess.Search(context.Background(), mustSearchRequest(t, "02139", 1, filter)); err != nil {
		t.Fatalf("first search error: %v", err)
	}
	if st.searchAllCalls != 1 {
		t.Fatalf("SearchAll calls = %d, want 1 (filter active)", st.searchAllCalls)
	}

	// New origin zip is a new search; the carried-over filter must not apply.
	if _, err := sess.Search(context.Background(), mustSearchRequest(t, "90210", 1, filter)); err != nil {
		t.Fatalf("second search error: %v", err)
	}
	if st.searchAllCalls != 1 {
		t.Errorf("SearchAll calls = %d, want still 1 (filter cleared on scope change)", st.searchAllCalls)
	}
	if st.searchCalls != 1 {
		t.Errorf("paged Search calls = %d, want 1 (unfiltered path)", st.searchCalls)
	}
}

func TestSessionSameScopeKeepsFilter(t *testing.T) {
	st := &mockStore{
		allRecords: []investigator.Investigator{testInvestigator(1, "NCT01", "2020-01-01")},
	}
	sess := NewSession(New(&mockGeo{zips: []string{"02114"}}, st, &mockFetcher{}, zap.NewNop()))

	filter, err := criteria.New([]string{"3"}, criteria.SponsorAny, false)
	if err != nil {
		t.Fatalf("criteria.New() error: %v", err)
	}

	if _, err := sess.Search(context.Background(), mustSearchRequest(t, "02139", 1, filter)); err != nil {
		t.Fatalf("first search error: %v", err)
	}
	// Page change within the same scope keeps the filter active.
	if _, err := sess.Search(context.Background(), mustSearchRequest(t, "02139", 2, filter)); err != nil {
		t.Fatalf("second search error: %v", err)
	}
	if st.searchAllCalls != 2 {
		t.Errorf("SearchAll calls = %d, want 2 (filter survives paging)", st.searchAllCalls)
	}
}

func TestRegistryReturnsSameSessionForSameID(t *testing.T) {
	reg := NewRegistry(New(&mockGeo{}, &mockStore{}, &mockFetcher{}, zap.NewNop()))

	a := reg.Session("client-a")
	if reg.Session("client-a") != a {
		t.Error("same id should return the same session")
	}
	if reg.Session("client-b") == a {
		t.Error("different ids should return different sessions")
	}
}

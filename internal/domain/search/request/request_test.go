package request

import (
	"testing"
	"time"

	"github.com/kailas-cloud/trialscout/internal/domain/search/criteria"
)

func mustRequest(t *testing.T, zip string, radius float64, page int, startYear, endYear string) Request {
	t.Helper()
	req, err := New(zip, radius, page, startYear, endYear, criteria.Identity(), nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return req
}

func TestNewValidatesZip(t *testing.T) {
	tests := []struct {
		zip     string
		wantErr bool
	}{
		{"02139", false},
		{"90210", false},
		{"", true},
		{"1234", true},
		{"123456", true},
		{"abcde", true},
		{"02139-1234", true},
	}
	for _, tt := range tests {
		_, err := New(tt.zip, 0, 0, "", "", criteria.Identity(), nil)
		if (err != nil) != tt.wantErr {
			t.Errorf("New(zip=%q) error = %v, wantErr %v", tt.zip, err, tt.wantErr)
		}
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	req := mustRequest(t, "02139", 0, 0, "", "")
	if req.RadiusMiles() != DefaultRadiusMiles {
		t.Errorf("RadiusMiles() = %v, want %v", req.RadiusMiles(), DefaultRadiusMiles)
	}
	if req.Page() != DefaultPage {
		t.Errorf("Page() = %d, want %d", req.Page(), DefaultPage)
	}
}

func TestNewClampsRadius(t *testing.T) {
	req := mustRequest(t, "02139", 9000, 1, "", "")
	if req.RadiusMiles() != MaxRadiusMiles {
		t.Errorf("RadiusMiles() = %v, want %v", req.RadiusMiles(), MaxRadiusMiles)
	}

	if _, err := New("02139", -1, 1, "", "", criteria.Identity(), nil); err == nil {
		t.Error("expected error for negative radius, got nil")
	}
}

func TestNewRejectsMalformedYears(t *testing.T) {
	for _, year := range []string{"20", "20201", "twenty", "2020.5"} {
		if _, err := New("02139", 0, 0, year, "", criteria.Identity(), nil); err == nil {
			t.Errorf("expected error for startYear %q, got nil", year)
		}
	}
}

func TestNewSwapsInvertedYears(t *testing.T) {
	req := mustRequest(t, "02139", 0, 0, "2023", "2019")
	start, end := req.DateRange()
	if start == nil || end == nil {
		t.Fatal("expected both bounds set")
	}
	if start.Year() != 2019 {
		t.Errorf("start year = %d, want 2019", start.Year())
	}
	if end.Year() != 2023 {
		t.Errorf("end year = %d, want 2023", end.Year())
	}
}

func TestDateRangeBounds(t *testing.T) {
	req := mustRequest(t, "02139", 0, 0, "2020", "2021")
	start, end := req.DateRange()

	wantStart := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", start, wantStart)
	}
	wantEnd := time.Date(2021, time.December, 31, 23, 59, 59, 0, time.UTC)
	if !end.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", end, wantEnd)
	}
}

func TestDateRangeOpenBounds(t *testing.T) {
	req := mustRequest(t, "02139", 0, 0, "", "")
	if start, end := req.DateRange(); start != nil || end != nil {
		t.Errorf("DateRange() = (%v, %v), want both nil", start, end)
	}

	req = mustRequest(t, "02139", 0, 0, "2020", "")
	start, end := req.DateRange()
	if start == nil {
		t.Error("expected start bound set")
	}
	if end != nil {
		t.Errorf("end = %v, want nil", end)
	}
}

func TestWithFilterReplacesCriteria(t *testing.T) {
	filter, err := criteria.New([]string{"2"}, criteria.SponsorIndustry, true)
	if err != nil {
		t.Fatalf("criteria.New() error: %v", err)
	}
	req, err := New("02139", 0, 0, "", "", filter, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	cleared := req.WithFilter(criteria.Identity())
	if !cleared.Filter().IsIdentity() {
		t.Error("WithFilter(Identity()) should clear the criteria")
	}
	if req.Filter().IsIdentity() {
		t.Error("original request must not be mutated")
	}
}

func TestSameScope(t *testing.T) {
	base := mustRequest(t, "02139", 25, 1, "2020", "2022")

	if !base.SameScope(mustRequest(t, "02139", 25, 3, "2020", "2022")) {
		t.Error("page change should not change scope")
	}

	filter, err := criteria.New([]string{"3"}, criteria.SponsorAny, false)
	if err != nil {
		t.Fatalf("criteria.New() error: %v", err)
	}
	if !base.SameScope(base.WithFilter(filter)) {
		t.Error("filter change should not change scope")
	}

	if base.SameScope(mustRequest(t, "90210", 25, 1, "2020", "2022")) {
		t.Error("zip change should change scope")
	}
	if base.SameScope(mustRequest(t, "02139", 100, 1, "2020", "2022")) {
		t.Error("radius change should change scope")
	}
	if base.SameScope(mustRequest(t, "02139", 25, 1, "2019", "2022")) {
		t.Error("year range change should change scope")
	}
}

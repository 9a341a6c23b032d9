package criteria

import (
	"slices"
	"testing"
)

func TestNewNormalizesPhases(t *testing.T) {
	c, err := New([]string{"3", "1", "3", " 2 ", ""}, SponsorAny, false)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	want := []string{"1", "2", "3"}
	if !slices.Equal(c.Phases(), want) {
		t.Errorf("Phases() = %v, want %v", c.Phases(), want)
	}
}

func TestNewRejectsInvalidPhase(t *testing.T) {
	if _, err := New([]string{"5"}, SponsorAny, false); err == nil {
		t.Error("expected error for phase \"5\", got nil")
	}
	if _, err := New([]string{"Phase 2"}, SponsorAny, false); err == nil {
		t.Error("expected error for unnormalized phase, got nil")
	}
}

func TestNewRejectsInvalidSponsor(t *testing.T) {
	if _, err := New(nil, Sponsor("Government"), false); err == nil {
		t.Error("expected error for unknown sponsor constraint, got nil")
	}
}

func TestNewEmptySponsorDefaultsToAny(t *testing.T) {
	c, err := New(nil, "", false)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if c.Sponsor() != SponsorAny {
		t.Errorf("Sponsor() = %q, want %q", c.Sponsor(), SponsorAny)
	}
}

func TestIsIdentity(t *testing.T) {
	tests := []struct {
		name           string
		phases         []string
		sponsor        Sponsor
		recruitingOnly bool
		want           bool
	}{
		{"no constraints", nil, SponsorAny, false, true},
		{"zero value equivalent", nil, "", false, true},
		{"phase constraint", []string{"2"}, SponsorAny, false, false},
		{"sponsor constraint", nil, SponsorIndustry, false, false},
		{"recruiting constraint", nil, SponsorAny, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.phases, tt.sponsor, tt.recruitingOnly)
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			if got := c.IsIdentity(); got != tt.want {
				t.Errorf("IsIdentity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestZeroValueIsIdentity(t *testing.T) {
	var c Criteria
	if !c.IsIdentity() {
		t.Error("zero-value Criteria should be the identity")
	}
	if !c.Equal(Identity()) {
		t.Error("zero-value Criteria should equal Identity()")
	}
}

func TestEqualIsOrderIndependent(t *testing.T) {
	a, err := New([]string{"3", "1"}, SponsorIndustry, true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	b, err := New([]string{"1", "3"}, SponsorIndustry, true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if !a.Equal(b) {
		t.Error("criteria with the same phase set in different order should be equal")
	}
}

func TestAllowsPhase(t *testing.T) {
	unconstrained := Identity()
	if !unconstrained.AllowsPhase("NA") {
		t.Error("identity criteria should allow every phase")
	}

	c, err := New([]string{"2", "3"}, SponsorAny, false)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if !c.AllowsPhase("2") {
		t.Error("AllowsPhase(\"2\") = false, want true")
	}
	if c.AllowsPhase("1") {
		t.Error("AllowsPhase(\"1\") = true, want false")
	}
	if c.AllowsPhase("NA") {
		t.Error("AllowsPhase(\"NA\") = true, want false")
	}
}

func TestAllowsSponsor(t *testing.T) {
	industry, err := New(nil, SponsorIndustry, false)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	tests := []struct {
		sponsorClass string
		want         bool
	}{
		{"INDUSTRY", true},
		{"Industry", true},
		{"industry", true},
		{"NIH", false},
		{"OTHER", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := industry.AllowsSponsor(tt.sponsorClass); got != tt.want {
			t.Errorf("AllowsSponsor(%q) = %v, want %v", tt.sponsorClass, got, tt.want)
		}
	}

	if !Identity().AllowsSponsor("") {
		t.Error("identity criteria should allow an absent sponsor class")
	}
}

func TestAllowsStatus(t *testing.T) {
	recruiting, err := New(nil, SponsorAny, true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	tests := []struct {
		status string
		want   bool
	}{
		{"RECRUITING", true},
		{"Recruiting", true},
		{"Recruiting by invitation", true},
		{"COMPLETED", false},
		{"ACTIVE_NOT_RECRUITING", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := recruiting.AllowsStatus(tt.status); got != tt.want {
			t.Errorf("AllowsStatus(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}

	if !Identity().AllowsStatus("COMPLETED") {
		t.Error("identity criteria should allow every status")
	}
}

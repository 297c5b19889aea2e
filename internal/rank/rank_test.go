package rank

import (
	"strings"
	"testing"
	"time"

	"github.com/jobpath-app/go-discovery/internal/domain"
)

func TestScore_Bounds(t *testing.T) {
	profile := &domain.UserProfile{
		Skills:         []string{"cashier", "customer service", "inventory"},
		MaxCommuteMins: 30,
		SalaryFloor:    40000,
		PreferredTypes: []string{"full-time"},
		ProgramID:      "prog-1",
	}

	listings := []domain.EnrichedListing{
		{}, // everything missing
		{
			Listing: domain.Listing{
				Title:        "Cashier",
				Company:      "Costco Wholesale",
				Description:  "cashier and customer service work with inventory duties",
				SalaryMin:    25,
				SalaryPeriod: domain.PeriodHour,
				Employment:   "full-time",
				PostedAt:     time.Now().Add(-2 * time.Hour),
			},
			ProgramMatch:   true,
			ProgramPercent: 100,
			Commute:        &domain.Commute{Minutes: 10},
		},
	}

	for i := range listings {
		score, _ := Score(&listings[i], profile)
		if score < 0 || score > 100 {
			t.Errorf("Score(listing %d) = %d, want within [0,100]", i, score)
		}
	}
}

func TestScore_StrongMatchBeatsWeakMatch(t *testing.T) {
	profile := &domain.UserProfile{
		Skills:         []string{"cashier"},
		MaxCommuteMins: 30,
	}

	strong := domain.EnrichedListing{
		Listing: domain.Listing{
			Title:       "Retail Cashier",
			Company:     "Target",
			Description: "Experienced cashier wanted for busy store.",
			PostedAt:    time.Now().Add(-6 * time.Hour),
		},
		Commute: &domain.Commute{Minutes: 15},
	}
	weak := domain.EnrichedListing{
		Listing: domain.Listing{
			Title:       "Warehouse Operative",
			Company:     "Unknown Logistics",
			Description: "Forklift certification required.",
			PostedAt:    time.Now().AddDate(0, 0, -20),
		},
		Commute: &domain.Commute{Minutes: 60},
	}

	strongScore, strongReasons := Score(&strong, profile)
	weakScore, weakReasons := Score(&weak, profile)

	if strongScore <= weakScore {
		t.Errorf("strong = %d, weak = %d, want strong > weak", strongScore, weakScore)
	}
	if !hasReasonContaining(strongReasons, "cashier") {
		t.Errorf("strong reasons %v should mention the matched skill", strongReasons)
	}
	if hasReasonContaining(weakReasons, "skills") {
		t.Errorf("weak reasons %v should not claim a skill match", weakReasons)
	}
}

func TestScore_NeutralWhenProfileEmpty(t *testing.T) {
	l := domain.EnrichedListing{
		Listing: domain.Listing{Title: "Barista", Description: "Make coffee."},
	}
	score, _ := Score(&l, &domain.UserProfile{})

	// All factors land on their neutral or unspecified values.
	if score < 45 || score > 65 {
		t.Errorf("Score() = %d, want near neutral", score)
	}
}

func TestScoreProgram(t *testing.T) {
	tests := []struct {
		name    string
		program string
		match   bool
		percent int
		want    int
	}{
		{name: "no program on profile", program: "", match: false, want: 50},
		{name: "match uses percent", program: "p1", match: true, percent: 85, want: 85},
		{name: "computed non-match", program: "p1", match: false, want: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &domain.EnrichedListing{ProgramMatch: tt.match, ProgramPercent: tt.percent}
			p := &domain.UserProfile{ProgramID: tt.program}
			if got := scoreProgram(l, p); got != tt.want {
				t.Errorf("scoreProgram() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreSalary_Annualized(t *testing.T) {
	profile := &domain.UserProfile{SalaryFloor: 40000}

	tests := []struct {
		name   string
		min    float64
		period domain.SalaryPeriod
		want   int
	}{
		{name: "hourly meets floor", min: 20, period: domain.PeriodHour, want: 100},
		{name: "hourly near floor", min: 17.5, period: domain.PeriodHour, want: 80},
		{name: "hourly below floor", min: 12, period: domain.PeriodHour, want: 50},
		{name: "monthly meets floor", min: 3500, period: domain.PeriodMonth, want: 100},
		{name: "weekly near floor", min: 700, period: domain.PeriodWeek, want: 80},
		{name: "no salary data", min: 0, want: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &domain.EnrichedListing{
				Listing: domain.Listing{SalaryMin: tt.min, SalaryPeriod: tt.period},
			}
			if got, _ := scoreSalary(l, profile); got != tt.want {
				t.Errorf("scoreSalary() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreCommute_Ratios(t *testing.T) {
	profile := &domain.UserProfile{MaxCommuteMins: 30}

	tests := []struct {
		name    string
		commute *domain.Commute
		want    int
	}{
		{name: "half the limit", commute: &domain.Commute{Minutes: 15}, want: 100},
		{name: "at the limit", commute: &domain.Commute{Minutes: 30}, want: 80},
		{name: "somewhat over", commute: &domain.Commute{Minutes: 45}, want: 50},
		{name: "far over", commute: &domain.Commute{Minutes: 46}, want: 20},
		{name: "unknown commute", commute: nil, want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &domain.EnrichedListing{Commute: tt.commute}
			if got, _ := scoreCommute(l, profile); got != tt.want {
				t.Errorf("scoreCommute() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreFreshness_Staircase(t *testing.T) {
	tests := []struct {
		name string
		age  time.Duration
		want int
	}{
		{name: "hours old", age: 6 * time.Hour, want: 100},
		{name: "two days", age: 48 * time.Hour, want: 85},
		{name: "five days", age: 5 * 24 * time.Hour, want: 70},
		{name: "ten days", age: 10 * 24 * time.Hour, want: 50},
		{name: "three weeks", age: 21 * 24 * time.Hour, want: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &domain.EnrichedListing{
				Listing: domain.Listing{PostedAt: time.Now().Add(-tt.age)},
			}
			if got, _ := scoreFreshness(l); got != tt.want {
				t.Errorf("scoreFreshness() = %d, want %d", got, tt.want)
			}
		})
	}

	t.Run("unknown posting date", func(t *testing.T) {
		if got, _ := scoreFreshness(&domain.EnrichedListing{}); got != 50 {
			t.Errorf("scoreFreshness() = %d, want 50", got)
		}
	})
}

func TestScoreReputation(t *testing.T) {
	known := &domain.EnrichedListing{Listing: domain.Listing{Company: "Starbucks Coffee Company"}}
	if got := scoreReputation(known); got != 90 {
		t.Errorf("scoreReputation(known) = %d, want 90", got)
	}
	unknown := &domain.EnrichedListing{Listing: domain.Listing{Company: "Bob's Diner"}}
	if got := scoreReputation(unknown); got != 60 {
		t.Errorf("scoreReputation(unknown) = %d, want 60", got)
	}
}

func TestScoreJobType(t *testing.T) {
	profile := &domain.UserProfile{PreferredTypes: []string{"part-time"}}

	tests := []struct {
		employment string
		want       int
	}{
		{employment: "part-time", want: 100},
		{employment: "full-time", want: 40},
		{employment: "", want: 60},
	}

	for _, tt := range tests {
		l := &domain.EnrichedListing{Listing: domain.Listing{Employment: tt.employment}}
		if got := scoreJobType(l, profile); got != tt.want {
			t.Errorf("scoreJobType(%q) = %d, want %d", tt.employment, got, tt.want)
		}
	}
}

func TestRank_OrdersByScoreStable(t *testing.T) {
	profile := &domain.UserProfile{Skills: []string{"driver"}}

	listings := []domain.EnrichedListing{
		{Listing: domain.Listing{ExternalID: "a", Description: "office work"}},
		{Listing: domain.Listing{ExternalID: "b", Description: "delivery driver needed"}},
		{Listing: domain.Listing{ExternalID: "c", Description: "office work"}},
	}

	ranked := Rank(listings, profile)
	if len(ranked) != 3 {
		t.Fatalf("len(ranked) = %d, want 3", len(ranked))
	}
	if ranked[0].ExternalID != "b" {
		t.Errorf("ranked[0] = %s, want b", ranked[0].ExternalID)
	}
	// Equal scores keep their input order.
	if ranked[1].ExternalID != "a" || ranked[2].ExternalID != "c" {
		t.Errorf("tie order = %s, %s, want a, c", ranked[1].ExternalID, ranked[2].ExternalID)
	}
}

func hasReasonContaining(reasons []string, substr string) bool {
	for _, r := range reasons {
		if strings.Contains(strings.ToLower(r), substr) {
			return true
		}
	}
	return false
}

package enrich

import (
	"testing"

	"github.com/jobpath-app/go-discovery/internal/domain"
)

func TestScoreProgramFit(t *testing.T) {
	program := &domain.ProgramProfile{
		ID:       "p1",
		Name:     "Culinary Arts Certificate",
		Field:    "culinary",
		Keywords: []string{"kitchen", "food safety", "menu"},
	}

	tests := []struct {
		name        string
		listing     domain.Listing
		wantMatch   bool
		wantPercent int
	}{
		{
			name: "strong overlap",
			listing: domain.Listing{
				Title:       "Culinary Assistant",
				Description: "Work in a busy kitchen. Food safety training provided. Help plan the menu.",
			},
			wantMatch:   true,
			wantPercent: 100,
		},
		{
			name: "single term at threshold boundary",
			listing: domain.Listing{
				Title:       "Kitchen Porter",
				Description: "Dishwashing and cleanup.",
			},
			wantMatch:   false,
			wantPercent: 25,
		},
		{
			name: "half the terms",
			listing: domain.Listing{
				Title:        "Prep Cook",
				Description:  "Support the kitchen team.",
				Requirements: "Food safety certificate required.",
			},
			wantMatch:   true,
			wantPercent: 50,
		},
		{
			name:        "no overlap",
			listing:     domain.Listing{Title: "Forklift Operator", Description: "Warehouse work."},
			wantMatch:   false,
			wantPercent: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreProgramFit(&tt.listing, program)
			if got.Match != tt.wantMatch || got.Percent != tt.wantPercent {
				t.Errorf("ScoreProgramFit() = %+v, want match=%v percent=%d", got, tt.wantMatch, tt.wantPercent)
			}
		})
	}
}

func TestScoreProgramFit_NoProgram(t *testing.T) {
	got := ScoreProgramFit(&domain.Listing{Title: "Cook"}, nil)
	if got.Match || got.Percent != 0 {
		t.Errorf("ScoreProgramFit(nil program) = %+v, want zero value", got)
	}
}

func TestScoreProgramFit_EmptyProgramTerms(t *testing.T) {
	got := ScoreProgramFit(&domain.Listing{Title: "Cook"}, &domain.ProgramProfile{ID: "p1"})
	if got.Match || got.Percent != 0 {
		t.Errorf("ScoreProgramFit(empty terms) = %+v, want zero value", got)
	}
}

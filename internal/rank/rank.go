// Package rank orders enriched listings: a weighted multi-factor
// match score with human-readable reasons, and the filter/sort stage
// applied to search responses.
package rank

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jobpath-app/go-discovery/internal/domain"
)

// Fixed factor weights, summing to 1.0. Product decisions; keep exact.
const (
	weightSkills     = 0.25
	weightProgram    = 0.20
	weightSalary     = 0.15
	weightCommute    = 0.15
	weightFreshness  = 0.10
	weightReputation = 0.10
	weightJobType    = 0.05
)

const neutralScore = 50

const maxReasons = 4

// reputableEmployers is the curated allow-list checked by the
// employer-reputation factor (case-insensitive substring match).
var reputableEmployers = []string{
	"starbucks", "target", "costco", "trader joe's", "whole foods",
	"ups", "fedex", "home depot", "ikea", "rei",
	"chipotle", "panera", "in-n-out", "wegmans", "publix",
}

// Score computes the 0-100 match score of a listing for a profile,
// with short reasons for the factors that meaningfully influenced the
// outcome.
func Score(l *domain.EnrichedListing, profile *domain.UserProfile) (int, []string) {
	var reasons []string

	skills, skillReason := scoreSkills(l, profile)
	if skillReason != "" {
		reasons = append(reasons, skillReason)
	}

	program := scoreProgram(l, profile)
	if l.ProgramMatch {
		reasons = append(reasons, "Related to your field of study")
	}

	salary, salaryReason := scoreSalary(l, profile)
	if salaryReason != "" {
		reasons = append(reasons, salaryReason)
	}

	commute, commuteReason := scoreCommute(l, profile)
	if commuteReason != "" {
		reasons = append(reasons, commuteReason)
	}

	freshness, freshReason := scoreFreshness(l)
	if freshReason != "" {
		reasons = append(reasons, freshReason)
	}

	reputation := scoreReputation(l)
	if reputation > 60 {
		reasons = append(reasons, "Well-known employer")
	}

	jobType := scoreJobType(l, profile)

	total := float64(skills)*weightSkills +
		float64(program)*weightProgram +
		float64(salary)*weightSalary +
		float64(commute)*weightCommute +
		float64(freshness)*weightFreshness +
		float64(reputation)*weightReputation +
		float64(jobType)*weightJobType

	if len(reasons) > maxReasons {
		reasons = reasons[:maxReasons]
	}

	return clamp(int(math.Round(total))), reasons
}

// scoreSkills measures what fraction of the profile's skills appear
// as substrings of the listing text. Neutral when either side is
// missing.
func scoreSkills(l *domain.EnrichedListing, profile *domain.UserProfile) (int, string) {
	text := strings.ToLower(l.Description + " " + l.Requirements)
	if strings.TrimSpace(text) == "" || len(profile.Skills) == 0 {
		return neutralScore, ""
	}

	var matched []string
	for _, skill := range profile.Skills {
		s := strings.ToLower(strings.TrimSpace(skill))
		if s != "" && strings.Contains(text, s) {
			matched = append(matched, skill)
		}
	}

	score := len(matched) * 100 / len(profile.Skills)
	if len(matched) == 0 {
		return score, ""
	}

	shown := matched
	if len(shown) > 3 {
		shown = shown[:3]
	}
	return score, "Matches your skills: " + strings.Join(shown, ", ")
}

// scoreProgram uses the externally computed match percentage when the
// listing matched the user's program, a fixed low baseline when it
// didn't, and neutral when the user has no program at all.
func scoreProgram(l *domain.EnrichedListing, profile *domain.UserProfile) int {
	if profile.ProgramID == "" {
		return neutralScore
	}
	if l.ProgramMatch {
		return clamp(l.ProgramPercent)
	}
	return 30
}

func scoreSalary(l *domain.EnrichedListing, profile *domain.UserProfile) (int, string) {
	if profile.SalaryFloor <= 0 || !l.HasSalary() {
		return 60, ""
	}

	annual := l.AnnualSalaryMin()
	switch {
	case annual >= profile.SalaryFloor:
		return 100, "Salary meets your target"
	case annual >= profile.SalaryFloor*0.9:
		return 80, "Salary close to your target"
	default:
		return 50, ""
	}
}

func scoreCommute(l *domain.EnrichedListing, profile *domain.UserProfile) (int, string) {
	if l.Commute == nil || profile.MaxCommuteMins <= 0 {
		return neutralScore, ""
	}

	ratio := float64(l.Commute.Minutes) / float64(profile.MaxCommuteMins)
	switch {
	case ratio <= 0.5:
		return 100, fmt.Sprintf("Short commute (%d min)", l.Commute.Minutes)
	case ratio <= 1.0:
		return 80, ""
	case ratio <= 1.5:
		return 50, ""
	default:
		return 20, ""
	}
}

// scoreFreshness maps posting age onto a five-step staircase.
func scoreFreshness(l *domain.EnrichedListing) (int, string) {
	if l.PostedAt.IsZero() {
		return neutralScore, ""
	}

	days := time.Since(l.PostedAt).Hours() / 24
	switch {
	case days <= 1:
		return 100, "Posted in the last day"
	case days <= 3:
		return 85, ""
	case days <= 7:
		return 70, ""
	case days <= 14:
		return 50, ""
	default:
		return 30, ""
	}
}

func scoreReputation(l *domain.EnrichedListing) int {
	company := strings.ToLower(l.Company)
	if company == "" {
		return 60
	}
	for _, name := range reputableEmployers {
		if strings.Contains(company, name) {
			return 90
		}
	}
	return 60
}

func scoreJobType(l *domain.EnrichedListing, profile *domain.UserProfile) int {
	if l.Employment == "" || len(profile.PreferredTypes) == 0 {
		return 60
	}
	for _, t := range profile.PreferredTypes {
		if strings.EqualFold(t, l.Employment) {
			return 100
		}
	}
	return 40
}

// Rank scores every listing and returns them ordered by descending
// match score, stable with respect to the input order on ties.
func Rank(listings []domain.EnrichedListing, profile *domain.UserProfile) []domain.RankedListing {
	ranked := make([]domain.RankedListing, 0, len(listings))
	for _, l := range listings {
		score, reasons := Score(&l, profile)
		ranked = append(ranked, domain.RankedListing{
			EnrichedListing: l,
			MatchScore:      score,
			Reasons:         reasons,
		})
	}

	stableSortBy(ranked, func(a, b *domain.RankedListing) bool {
		return a.MatchScore > b.MatchScore
	})
	return ranked
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

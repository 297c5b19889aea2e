// Package plan selects a bounded daily subset of ranked listings and
// turns it into an actionable application plan.
package plan

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/jobpath-app/go-discovery/internal/domain"
	"github.com/jobpath-app/go-discovery/internal/rank"
)

// DefaultJobCount is the plan size when the caller doesn't ask for one.
const DefaultJobCount = 8

const defaultFocusArea = "Fresh opportunities near you"

// Selector builds daily plans. generator may be nil, in which case
// the deterministic template message is always used.
type Selector struct {
	generator MessageGenerator
}

// NewSelector creates a Selector.
func NewSelector(generator MessageGenerator) *Selector {
	return &Selector{generator: generator}
}

// Build ranks the candidates for the profile, takes the top n and
// assembles the plan. Never fabricates entries: a pool smaller than n
// yields a smaller plan.
func (s *Selector) Build(ctx context.Context, profile *domain.UserProfile, candidates []domain.EnrichedListing, n int) *domain.DailyPlan {
	if n <= 0 {
		n = DefaultJobCount
	}

	ranked := rank.Rank(candidates, profile)
	if len(ranked) > n {
		ranked = ranked[:n]
	}

	p := &domain.DailyPlan{
		UserID: profile.UserID,
		Date:   time.Now().UTC().Truncate(24 * time.Hour),
	}

	for _, r := range ranked {
		job := domain.PlannedJob{
			RankedListing: r,
			Priority:      classifyPriority(r),
			EstimatedMins: estimateApplyMins(&r),
			Tips:          applicationTips(&r),
		}
		p.Jobs = append(p.Jobs, job)
		p.TotalMins += job.EstimatedMins
	}

	p.Stats = computeStats(p.Jobs, candidates)
	p.FocusArea = focusArea(p.Jobs)
	p.Message, p.GeneratedWith = s.message(ctx, profile, p)

	return p
}

// classifyPriority applies the fixed cutoffs: high for 80+, or 70+
// with a program match; low under 60; medium otherwise.
func classifyPriority(r domain.RankedListing) domain.Priority {
	switch {
	case r.MatchScore >= 80, r.MatchScore >= 70 && r.ProgramMatch:
		return domain.PriorityHigh
	case r.MatchScore < 60:
		return domain.PriorityLow
	default:
		return domain.PriorityMedium
	}
}

// estimateApplyMins guesses how long the application will take.
func estimateApplyMins(r *domain.RankedListing) int {
	mins := 20
	text := strings.ToLower(r.Description + " " + r.Requirements)
	if strings.Contains(text, "cover letter") {
		mins += 15
	}
	if strings.Contains(text, "portfolio") || strings.Contains(text, "work sample") {
		mins += 10
	}
	return mins
}

func applicationTips(r *domain.RankedListing) []string {
	var tips []string
	if r.ProgramMatch {
		tips = append(tips, "Highlight your coursework, this role matches your program")
	}
	if !r.PostedAt.IsZero() && time.Since(r.PostedAt) <= 48*time.Hour {
		tips = append(tips, "Apply early: this was posted very recently")
	}
	if r.Commute != nil && r.Commute.Summary != "" {
		tips = append(tips, "Getting there: "+r.Commute.Summary)
	}
	if len(tips) == 0 {
		tips = append(tips, "Tailor your first sentence to the job title")
	}
	return tips
}

// computeStats averages over the selected jobs, except the program
// match count, which covers the whole candidate pool.
func computeStats(jobs []domain.PlannedJob, candidates []domain.EnrichedListing) domain.PlanStats {
	stats := domain.PlanStats{}

	for _, c := range candidates {
		if c.ProgramMatch {
			stats.ProgramMatches++
		}
	}

	if len(jobs) == 0 {
		return stats
	}

	var scoreSum float64
	var salarySum float64
	var salaryCount int
	var commuteSum float64
	var commuteCount int

	for _, j := range jobs {
		scoreSum += float64(j.MatchScore)
		if j.HasSalary() {
			salarySum += j.SalaryCeiling()
			salaryCount++
		}
		if j.Commute != nil {
			commuteSum += float64(j.Commute.Minutes)
			commuteCount++
		}
	}

	stats.MeanScore = round1(scoreSum / float64(len(jobs)))
	if salaryCount > 0 {
		stats.MeanSalary = round1(salarySum / float64(salaryCount))
	}
	if commuteCount > 0 {
		stats.MeanCommute = round1(commuteSum / float64(commuteCount))
	}

	return stats
}

// focusArea labels the plan with the most frequent significant title
// word and the most frequent city among the selected jobs.
func focusArea(jobs []domain.PlannedJob) string {
	if len(jobs) == 0 {
		return defaultFocusArea
	}

	wordCounts := make(map[string]int)
	cityCounts := make(map[string]int)
	for _, j := range jobs {
		for _, w := range titleWords(j.Title) {
			wordCounts[w]++
		}
		if city := cityOf(j.Location); city != "" {
			cityCounts[strings.ToLower(city)]++
		}
	}

	word := mostFrequent(wordCounts)
	city := mostFrequent(cityCounts)
	if word == "" {
		return defaultFocusArea
	}
	if city == "" {
		city = "your area"
	}

	return fmt.Sprintf("%s roles in %s", titleCase(word), titleCase(city))
}

// titleWords extracts significant words (longer than 4 letters).
func titleWords(title string) []string {
	var words []string
	for _, w := range strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if len(w) > 4 {
			words = append(words, w)
		}
	}
	return words
}

func cityOf(location string) string {
	parts := strings.Split(location, ",")
	return strings.TrimSpace(parts[0])
}

// mostFrequent returns the highest-count key, breaking count ties
// alphabetically so the label is deterministic.
func mostFrequent(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best := ""
	bestCount := 0
	for _, k := range keys {
		if counts[k] > bestCount {
			best = k
			bestCount = counts[k]
		}
	}
	return best
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// message attempts the AI generator once and falls back to the
// deterministic templates on any failure. Never retried, never fatal.
func (s *Selector) message(ctx context.Context, profile *domain.UserProfile, p *domain.DailyPlan) (string, string) {
	count := len(p.Jobs)

	if s.generator != nil {
		prompt := fmt.Sprintf(
			"Write one short, upbeat sentence for %s about their job application plan today: %d jobs selected, focus area %q. No emojis.",
			firstName(profile.Name), count, p.FocusArea,
		)
		text, err := s.generator.Generate(ctx, prompt)
		if err == nil {
			return text, "ai"
		}
		log.Printf("[plan] ai message failed: %v, using template", err)
	}

	return fallbackMessage(firstName(profile.Name), count), "template"
}

func firstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

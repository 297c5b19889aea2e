// Package domain defines the canonical data shapes shared by the
// discovery pipeline. Every provider payload is normalized into a
// Listing at the aggregator boundary; downstream code never sees a
// provider-native shape.
package domain

import "time"

// Source identifies where a listing (or a search response) came from.
type Source string

const (
	SourceJSearch  Source = "jsearch"
	SourceAdzuna   Source = "adzuna"
	SourceDatabase Source = "database"
	SourceCache    Source = "cache"
)

// SalaryPeriod is the unit a salary range is quoted in.
type SalaryPeriod string

const (
	PeriodHour  SalaryPeriod = "hour"
	PeriodDay   SalaryPeriod = "day"
	PeriodWeek  SalaryPeriod = "week"
	PeriodMonth SalaryPeriod = "month"
	PeriodYear  SalaryPeriod = "year"
)

// Listing is a normalized job posting. (Source, ExternalID) uniquely
// determines at most one InternalID; InternalID is assigned on first
// persistence and never changes across re-ingestions.
type Listing struct {
	Source       Source       `json:"source"`
	ExternalID   string       `json:"external_id"`
	InternalID   int64        `json:"internal_id,omitempty"`
	Title        string       `json:"title"`
	Company      string       `json:"company"`
	Description  string       `json:"description"`
	Requirements string       `json:"requirements,omitempty"`
	Location     string       `json:"location"`
	Latitude     *float64     `json:"latitude,omitempty"`
	Longitude    *float64     `json:"longitude,omitempty"`
	SalaryMin    float64      `json:"salary_min,omitempty"`
	SalaryMax    float64      `json:"salary_max,omitempty"`
	SalaryPeriod SalaryPeriod `json:"salary_period,omitempty"`
	Employment   string       `json:"employment_type,omitempty"`
	URL          string       `json:"url,omitempty"`
	PostedAt     time.Time    `json:"posted_at"`
}

// HasSalary reports whether the listing carries any salary data.
func (l *Listing) HasSalary() bool {
	return l.SalaryMin > 0 || l.SalaryMax > 0
}

// SalaryCeiling returns max(SalaryMax, SalaryMin, 0), the value used
// by salary-descending sorting.
func (l *Listing) SalaryCeiling() float64 {
	if l.SalaryMax > l.SalaryMin {
		return l.SalaryMax
	}
	if l.SalaryMin > 0 {
		return l.SalaryMin
	}
	return 0
}

// AnnualSalaryMin converts the listing's minimum salary to a yearly
// figure. An unknown period is treated as yearly.
func (l *Listing) AnnualSalaryMin() float64 {
	switch l.SalaryPeriod {
	case PeriodHour:
		return l.SalaryMin * 2080
	case PeriodDay:
		return l.SalaryMin * 260
	case PeriodWeek:
		return l.SalaryMin * 52
	case PeriodMonth:
		return l.SalaryMin * 12
	default:
		return l.SalaryMin
	}
}

// RiskSeverity classifies how likely a listing is fraudulent.
type RiskSeverity string

const (
	RiskClean   RiskSeverity = "clean"
	RiskWarning RiskSeverity = "warning"
	RiskDanger  RiskSeverity = "danger"
)

// Commute is the resolved transit trip from the user to a listing.
type Commute struct {
	Minutes  int      `json:"minutes"`
	RouteIDs []string `json:"route_ids,omitempty"`
	Summary  string   `json:"summary,omitempty"`
}

// EnrichedListing carries request-scoped derived fields on top of a
// Listing. These are recomputed per request and never persisted.
type EnrichedListing struct {
	Listing

	RiskSeverity RiskSeverity `json:"risk_severity"`
	RiskReasons  []string     `json:"risk_reasons,omitempty"`
	RiskScore    int          `json:"risk_score"`

	ProgramMatch   bool `json:"program_match"`
	ProgramPercent int  `json:"program_percent,omitempty"`

	// Commute is nil when no user location was supplied or the trip
	// could not be resolved ("commute unknown", never an error).
	Commute *Commute `json:"commute,omitempty"`
}

// RankedListing is an EnrichedListing plus its match score. Ephemeral,
// produced per ranking invocation.
type RankedListing struct {
	EnrichedListing

	MatchScore int      `json:"match_score"`
	Reasons    []string `json:"reasons,omitempty"`
}

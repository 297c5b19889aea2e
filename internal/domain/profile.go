package domain

import "time"

// UserProfile is the read-only scoring input owned by the external
// profile service.
type UserProfile struct {
	UserID         string   `json:"user_id"`
	Name           string   `json:"name,omitempty"`
	Location       string   `json:"location,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	MaxCommuteMins int      `json:"max_commute_mins,omitempty"`
	PreferredTypes []string `json:"preferred_types,omitempty"`
	Skills         []string `json:"skills,omitempty"`
	Education      string   `json:"education,omitempty"`
	SalaryFloor    float64  `json:"salary_floor,omitempty"`
	ProgramID      string   `json:"program_id,omitempty"`
}

// ProgramProfile describes a user's field-of-study program, fetched
// from the external program-profile service.
type ProgramProfile struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Field    string   `json:"field"`
	Keywords []string `json:"keywords,omitempty"`
}

// Priority tiers for planned jobs.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// PlannedJob is one entry of a daily plan.
type PlannedJob struct {
	RankedListing

	Priority      Priority `json:"priority"`
	EstimatedMins int      `json:"estimated_mins"`
	Tips          []string `json:"tips,omitempty"`
}

// PlanStats aggregates the selected jobs of a plan. Salary and commute
// means only cover jobs where the value is present; ProgramMatches
// counts the original candidate set, not just the selected top-N.
type PlanStats struct {
	MeanScore      float64 `json:"mean_score"`
	MeanSalary     float64 `json:"mean_salary,omitempty"`
	MeanCommute    float64 `json:"mean_commute,omitempty"`
	ProgramMatches int     `json:"program_matches"`
}

// DailyPlan is the bounded application plan for one user-day.
// Immutable once created until explicitly regenerated.
type DailyPlan struct {
	UserID        string       `json:"user_id"`
	Date          time.Time    `json:"date"`
	Jobs          []PlannedJob `json:"jobs"`
	TotalMins     int          `json:"total_mins"`
	FocusArea     string       `json:"focus_area"`
	Message       string       `json:"message"`
	Stats         PlanStats    `json:"stats"`
	GeneratedWith string       `json:"generated_with,omitempty"` // "ai" or "template"
}

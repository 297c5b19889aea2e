package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jobpath-app/go-discovery/internal/domain"
)

// JSearch fetches listings from the JSearch aggregate API (RapidAPI).
type JSearch struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewJSearch creates the JSearch adapter.
func NewJSearch(apiKey, baseURL string, timeout time.Duration) *JSearch {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &JSearch{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the source identifier.
func (p *JSearch) Name() domain.Source { return domain.SourceJSearch }

// jsearchResponse mirrors the top-level JSearch JSON response.
type jsearchResponse struct {
	Status string       `json:"status"`
	Data   []jsearchJob `json:"data"`
}

type jsearchJob struct {
	JobID          string `json:"job_id"`
	EmployerName   string `json:"employer_name"`
	JobTitle       string `json:"job_title"`
	JobDescription string `json:"job_description"`
	JobHighlights  struct {
		Qualifications []string `json:"Qualifications"`
	} `json:"job_highlights"`
	JobCity          string   `json:"job_city"`
	JobState         string   `json:"job_state"`
	JobCountry       string   `json:"job_country"`
	JobLatitude      *float64 `json:"job_latitude"`
	JobLongitude     *float64 `json:"job_longitude"`
	JobMinSalary     float64  `json:"job_min_salary"`
	JobMaxSalary     float64  `json:"job_max_salary"`
	JobSalaryPeriod  string   `json:"job_salary_period"`
	JobEmploymentTyp string   `json:"job_employment_type"`
	JobApplyLink     string   `json:"job_apply_link"`
	JobPostedAtUTC   string   `json:"job_posted_at_datetime_utc"`
}

// Search queries the JSearch API for one page of listings.
func (p *JSearch) Search(ctx context.Context, q Query) ([]domain.Listing, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("jsearch: api key not configured")
	}

	params := url.Values{}
	query := q.Text
	if q.Location != "" {
		query = query + " in " + q.Location
	}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(maxInt(q.Page, 1)))
	params.Set("num_pages", "1")
	if dp := jsearchDatePosted(q.PostedWithin); dp != "" {
		params.Set("date_posted", dp)
	}
	if types := jsearchEmploymentTypes(q.JobTypes); types != "" {
		params.Set("employment_types", types)
	}

	reqURL := p.baseURL + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-RapidAPI-Key", p.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jsearch: http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("jsearch: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jsearch: status %d: %s", resp.StatusCode, string(body))
	}

	return parseJSearchResponse(body, q.PageSize)
}

// parseJSearchResponse decodes a JSearch payload into canonical listings.
func parseJSearchResponse(body []byte, pageSize int) ([]domain.Listing, error) {
	var apiResp jsearchResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("jsearch: unmarshal: %w", err)
	}

	listings := make([]domain.Listing, 0, len(apiResp.Data))
	for _, j := range apiResp.Data {
		if j.JobID == "" || j.JobTitle == "" {
			continue
		}
		l := domain.Listing{
			Source:       domain.SourceJSearch,
			ExternalID:   j.JobID,
			Title:        j.JobTitle,
			Company:      j.EmployerName,
			Description:  j.JobDescription,
			Requirements: strings.Join(j.JobHighlights.Qualifications, "\n"),
			Location:     joinLocation(j.JobCity, j.JobState, j.JobCountry),
			Latitude:     j.JobLatitude,
			Longitude:    j.JobLongitude,
			SalaryMin:    j.JobMinSalary,
			SalaryMax:    j.JobMaxSalary,
			SalaryPeriod: jsearchSalaryPeriod(j.JobSalaryPeriod),
			Employment:   jsearchJobType(j.JobEmploymentTyp),
			URL:          j.JobApplyLink,
			PostedAt:     parseTimeUTC(j.JobPostedAtUTC),
		}
		listings = append(listings, l)
		if pageSize > 0 && len(listings) >= pageSize {
			break
		}
	}
	return listings, nil
}

func jsearchDatePosted(within string) string {
	switch within {
	case PostedDay:
		return "today"
	case Posted3Days:
		return "3days"
	case PostedWeek:
		return "week"
	case PostedMonth:
		return "month"
	default:
		return ""
	}
}

// jsearchEmploymentTypes maps canonical job types onto JSearch's vocabulary.
func jsearchEmploymentTypes(types []string) string {
	var out []string
	for _, t := range types {
		switch strings.ToLower(t) {
		case "full-time":
			out = append(out, "FULLTIME")
		case "part-time":
			out = append(out, "PARTTIME")
		case "contract":
			out = append(out, "CONTRACTOR")
		case "internship":
			out = append(out, "INTERN")
		}
	}
	return strings.Join(out, ",")
}

func jsearchJobType(t string) string {
	switch strings.ToUpper(t) {
	case "FULLTIME", "FULL-TIME":
		return "full-time"
	case "PARTTIME", "PART-TIME":
		return "part-time"
	case "CONTRACTOR", "CONTRACT":
		return "contract"
	case "INTERN", "INTERNSHIP":
		return "internship"
	case "TEMPORARY":
		return "temporary"
	default:
		return ""
	}
}

func jsearchSalaryPeriod(p string) domain.SalaryPeriod {
	switch strings.ToUpper(p) {
	case "HOUR", "HOURLY":
		return domain.PeriodHour
	case "DAY", "DAILY":
		return domain.PeriodDay
	case "WEEK", "WEEKLY":
		return domain.PeriodWeek
	case "MONTH", "MONTHLY":
		return domain.PeriodMonth
	case "YEAR", "YEARLY", "ANNUAL":
		return domain.PeriodYear
	default:
		return ""
	}
}

func joinLocation(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

// parseTimeUTC tries the timestamp formats JSearch is known to emit.
func parseTimeUTC(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

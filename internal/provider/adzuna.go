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

const adzunaBaseURL = "https://api.adzuna.com/v1/api/jobs"

// Adzuna fetches listings from the Adzuna public API.
type Adzuna struct {
	appID   string
	appKey  string
	country string // "us", "gb", "fr", …
	client  *http.Client
}

// NewAdzuna creates the Adzuna adapter.
func NewAdzuna(appID, appKey, country string, timeout time.Duration) *Adzuna {
	if country == "" {
		country = "us"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Adzuna{
		appID:   appID,
		appKey:  appKey,
		country: country,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the source identifier.
func (p *Adzuna) Name() domain.Source { return domain.SourceAdzuna }

// adzunaResponse mirrors the top-level Adzuna JSON response.
type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
	Count   int            `json:"count"`
}

type adzunaResult struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Company     struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	SalaryMin    float64  `json:"salary_min"`
	SalaryMax    float64  `json:"salary_max"`
	RedirectURL  string   `json:"redirect_url"`
	Created      string   `json:"created"`
	ContractTime string   `json:"contract_time"`
	ContractType string   `json:"contract_type"`
}

// Search queries one Adzuna result page.
func (p *Adzuna) Search(ctx context.Context, q Query) ([]domain.Listing, error) {
	if p.appID == "" || p.appKey == "" {
		return nil, fmt.Errorf("adzuna: credentials not configured")
	}

	endpoint := fmt.Sprintf("%s/%s/search/%d", adzunaBaseURL, p.country, maxInt(q.Page, 1))

	params := url.Values{}
	params.Set("app_id", p.appID)
	params.Set("app_key", p.appKey)
	params.Set("results_per_page", strconv.Itoa(pageSizeOrDefault(q.PageSize)))
	params.Set("what", q.Text)
	params.Set("sort_by", "date")
	if q.Location != "" {
		params.Set("where", q.Location)
	}
	if q.SalaryMin > 0 {
		params.Set("salary_min", strconv.Itoa(int(q.SalaryMin)))
	}
	if days := adzunaMaxDaysOld(q.PostedWithin); days > 0 {
		params.Set("max_days_old", strconv.Itoa(days))
	}
	applyAdzunaTypeFilters(params, q.JobTypes)

	reqURL := endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("adzuna: http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("adzuna: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("adzuna: status %d: %s", resp.StatusCode, string(body))
	}

	return parseAdzunaResponse(body)
}

// parseAdzunaResponse decodes an Adzuna payload into canonical listings.
func parseAdzunaResponse(body []byte) ([]domain.Listing, error) {
	var apiResp adzunaResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("adzuna: unmarshal: %w", err)
	}

	listings := make([]domain.Listing, 0, len(apiResp.Results))
	for _, r := range apiResp.Results {
		if r.ID == "" || r.Title == "" {
			continue
		}
		listings = append(listings, domain.Listing{
			Source:       domain.SourceAdzuna,
			ExternalID:   r.ID,
			Title:        r.Title,
			Company:      r.Company.DisplayName,
			Description:  r.Description,
			Location:     r.Location.DisplayName,
			Latitude:     r.Latitude,
			Longitude:    r.Longitude,
			SalaryMin:    r.SalaryMin,
			SalaryMax:    r.SalaryMax,
			SalaryPeriod: domain.PeriodYear, // Adzuna quotes annual figures
			Employment:   adzunaJobType(r.ContractTime, r.ContractType),
			URL:          r.RedirectURL,
			PostedAt:     parseTimeUTC(r.Created),
		})
	}
	return listings, nil
}

func adzunaMaxDaysOld(within string) int {
	switch within {
	case PostedDay:
		return 1
	case Posted3Days:
		return 3
	case PostedWeek:
		return 7
	case PostedMonth:
		return 30
	default:
		return 0
	}
}

// applyAdzunaTypeFilters maps canonical job types onto Adzuna's
// boolean contract filters. Only types Adzuna can express are applied.
func applyAdzunaTypeFilters(params url.Values, types []string) {
	for _, t := range types {
		switch strings.ToLower(t) {
		case "full-time":
			params.Set("full_time", "1")
		case "part-time":
			params.Set("part_time", "1")
		case "contract":
			params.Set("contract", "1")
		}
	}
}

func adzunaJobType(contractTime, contractType string) string {
	switch contractTime {
	case "full_time":
		return "full-time"
	case "part_time":
		return "part-time"
	}
	switch contractType {
	case "contract":
		return "contract"
	case "temporary":
		return "temporary"
	}
	return ""
}

func pageSizeOrDefault(n int) int {
	if n <= 0 {
		return 20
	}
	return n
}

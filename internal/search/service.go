// Package search orchestrates the discovery pipeline: aggregate,
// reconcile identity, enrich, filter and sort.
package search

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/jobpath-app/go-discovery/internal/aggregator"
	"github.com/jobpath-app/go-discovery/internal/cache"
	"github.com/jobpath-app/go-discovery/internal/domain"
	"github.com/jobpath-app/go-discovery/internal/enrich"
	"github.com/jobpath-app/go-discovery/internal/plan"
	"github.com/jobpath-app/go-discovery/internal/provider"
	"github.com/jobpath-app/go-discovery/internal/rank"
	"github.com/jobpath-app/go-discovery/internal/store"
)

// Request is a normalized search request as exposed to callers.
type Request struct {
	Query        string
	Location     string
	SalaryMin    float64
	JobTypes     []string
	PostedWithin string

	MaxCommuteMins int
	TransitOnly    bool
	ProgramOnly    bool

	// Origin for commute resolution: coordinates win over the address.
	UserLat     *float64
	UserLng     *float64
	UserAddress string

	UserID string

	Sort     rank.SortKey
	Page     int
	PageSize int
	Refresh  bool
}

// Response is one enriched, filtered, sorted result page. The
// completeness flags report honestly whether transit and program
// enrichment actually ran, so degraded responses are visible.
type Response struct {
	Listings        []domain.EnrichedListing `json:"listings"`
	Total           int                      `json:"total"`
	Page            int                      `json:"page"`
	Limit           int                      `json:"limit"`
	HasMore         bool                     `json:"has_more"`
	Source          domain.Source            `json:"source"`
	TransitComputed bool                     `json:"transit_computed"`
	ProgramComputed bool                     `json:"program_computed"`
}

// Service wires the pipeline stages together.
type Service struct {
	agg      *aggregator.Aggregator
	store    store.Store
	index    *store.ESIndex // optional
	cache    *cache.Cache   // optional
	commutes *enrich.CommuteResolver
	geocoder enrich.Geocoder
	programs enrich.ProgramService
	profiles enrich.ProfileService
	selector *plan.Selector
}

// Options carries the optional collaborators of a Service.
type Options struct {
	Index    *store.ESIndex
	Cache    *cache.Cache
	Commutes *enrich.CommuteResolver
	Geocoder enrich.Geocoder
	Programs enrich.ProgramService
	Profiles enrich.ProfileService
	Selector *plan.Selector
}

// New creates a Service.
func New(agg *aggregator.Aggregator, st store.Store, opts Options) *Service {
	return &Service{
		agg:      agg,
		store:    st,
		index:    opts.Index,
		cache:    opts.Cache,
		commutes: opts.Commutes,
		geocoder: opts.Geocoder,
		programs: opts.Programs,
		profiles: opts.Profiles,
		selector: opts.Selector,
	}
}

// Search runs the full pipeline for one request page.
func (s *Service) Search(ctx context.Context, req Request) (*Response, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	listings, total, hasMore, source, err := s.locate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	enriched, transitOK, programOK := s.enrichAll(ctx, req, listings)

	filtered := rank.Filter(enriched, rank.FilterOptions{
		MaxCommuteMins: req.MaxCommuteMins,
		TransitOnly:    req.TransitOnly,
		ProgramOnly:    req.ProgramOnly,
		Sort:           req.Sort,
	})

	return &Response{
		Listings:        filtered,
		Total:           total,
		Page:            req.Page,
		Limit:           req.PageSize,
		HasMore:         hasMore,
		Source:          source,
		TransitComputed: transitOK,
		ProgramComputed: programOK,
	}, nil
}

// locate finds the raw page of normalized listings: response cache
// first (unless a refresh is forced), then the aggregator chain, then
// identity reconciliation for anything freshly fetched.
func (s *Service) locate(ctx context.Context, req Request) ([]domain.Listing, int, bool, domain.Source, error) {
	key := s.cacheKey(req)

	if s.cache != nil && !req.Refresh {
		if listings, total, _, ok := s.cache.GetSearch(ctx, key); ok {
			hasMore := req.Page*req.PageSize < total
			return listings, total, hasMore, domain.SourceCache, nil
		}
	}

	result, err := s.agg.Search(ctx, provider.Query{
		Text:         req.Query,
		Location:     req.Location,
		JobTypes:     req.JobTypes,
		PostedWithin: req.PostedWithin,
		SalaryMin:    req.SalaryMin,
		Page:         req.Page,
		PageSize:     req.PageSize,
	}, req.Refresh)
	if err != nil {
		return nil, 0, false, "", err
	}

	listings := result.Listings
	if result.Source != domain.SourceDatabase {
		listings = s.reconcile(ctx, listings)
	}

	if s.cache != nil {
		if err := s.cache.SetSearch(ctx, key, listings, result.Total, result.Source); err != nil {
			log.Printf("[search] response cache set failed: %v", err)
		}
	}

	return listings, result.Total, result.HasMore, result.Source, nil
}

// reconcile upserts freshly fetched listings and stamps the stable
// internal identifiers onto the records that persisted. Records
// missing from the mapping keep their provider-native identity only.
func (s *Service) reconcile(ctx context.Context, listings []domain.Listing) []domain.Listing {
	ids, err := s.store.Upsert(ctx, listings)
	if err != nil {
		log.Printf("[search] upsert batch failed: %v, continuing with provider ids", err)
		return listings
	}

	var persisted []domain.Listing
	for i := range listings {
		if id, ok := ids[listings[i].ExternalID]; ok {
			listings[i].InternalID = id
			persisted = append(persisted, listings[i])
		}
	}

	if s.index != nil && len(persisted) > 0 {
		if err := s.index.BulkIndex(ctx, persisted); err != nil {
			log.Printf("[search] es index failed: %v", err)
		}
	}

	return listings
}

// enrichAll runs the per-listing enrichment stages. Risk always runs;
// program fit runs when a user is known; commute only when an origin
// can be established.
func (s *Service) enrichAll(ctx context.Context, req Request, listings []domain.Listing) ([]domain.EnrichedListing, bool, bool) {
	enriched := make([]domain.EnrichedListing, len(listings))
	for i, l := range listings {
		enriched[i].Listing = l
		risk := enrich.ScoreRisk(&l)
		enriched[i].RiskSeverity = risk.Severity
		enriched[i].RiskReasons = risk.Reasons
		enriched[i].RiskScore = risk.Score
	}

	programOK := s.enrichProgram(ctx, req.UserID, enriched)
	transitOK := s.enrichCommute(ctx, req, listings, enriched)

	return enriched, transitOK, programOK
}

func (s *Service) enrichProgram(ctx context.Context, userID string, enriched []domain.EnrichedListing) bool {
	if s.programs == nil || userID == "" {
		return false
	}

	program, err := s.programs.GetProgram(ctx, userID)
	if err != nil {
		log.Printf("[search] program lookup failed: %v, skipping program fit", err)
		return false
	}
	if program == nil {
		return false
	}

	for i := range enriched {
		fit := enrich.ScoreProgramFit(&enriched[i].Listing, program)
		enriched[i].ProgramMatch = fit.Match
		enriched[i].ProgramPercent = fit.Percent
	}
	return true
}

func (s *Service) enrichCommute(ctx context.Context, req Request, listings []domain.Listing, enriched []domain.EnrichedListing) bool {
	if s.commutes == nil {
		return false
	}

	origin := s.origin(ctx, req)
	if origin == nil {
		return false
	}

	commutes := s.commutes.ResolveBatch(ctx, *origin, listings)
	for i, c := range commutes {
		enriched[i].Commute = c
	}
	return true
}

// origin resolves the user's starting point for commute computation.
func (s *Service) origin(ctx context.Context, req Request) *enrich.LatLng {
	if req.UserLat != nil && req.UserLng != nil {
		return &enrich.LatLng{Lat: *req.UserLat, Lng: *req.UserLng}
	}
	if req.UserAddress == "" || s.geocoder == nil {
		return nil
	}

	coords, err := s.geocoder.Geocode(ctx, req.UserAddress)
	if err != nil {
		log.Printf("[search] origin geocode failed: %v, skipping commute", err)
		return nil
	}
	return coords
}

func (s *Service) cacheKey(req Request) string {
	return cache.SearchKey(
		req.Query,
		req.Location,
		strings.Join(req.JobTypes, ","),
		req.PostedWithin,
		strconv.FormatFloat(req.SalaryMin, 'f', 0, 64),
		strconv.Itoa(req.Page),
		strconv.Itoa(req.PageSize),
	)
}

// BuildDailyPlan fetches the user's profile, gathers candidates with
// a profile-derived search and assembles the daily plan.
func (s *Service) BuildDailyPlan(ctx context.Context, userID string, jobCount int) (*domain.DailyPlan, error) {
	if s.profiles == nil {
		return nil, fmt.Errorf("daily plan: profile service not configured")
	}
	if s.selector == nil {
		return nil, fmt.Errorf("daily plan: selector not configured")
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("daily plan: %w", err)
	}

	req := Request{
		Query:          strings.Join(profile.Skills, " "),
		Location:       profile.Location,
		JobTypes:       profile.PreferredTypes,
		MaxCommuteMins: profile.MaxCommuteMins,
		UserLat:        profile.Latitude,
		UserLng:        profile.Longitude,
		UserAddress:    profile.Location,
		UserID:         profile.UserID,
		PageSize:       jobCount * 4, // oversample so filtering still leaves a full plan
		Refresh:        true,
	}
	if req.Query == "" {
		req.Query = profile.Education
	}

	resp, err := s.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("daily plan: %w", err)
	}

	return s.selector.Build(ctx, profile, resp.Listings, jobCount), nil
}

// Package server exposes the discovery pipeline over HTTP.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jobpath-app/go-discovery/internal/cache"
	"github.com/jobpath-app/go-discovery/internal/rank"
	"github.com/jobpath-app/go-discovery/internal/search"
)

// Server holds the HTTP handlers and their collaborators.
type Server struct {
	service *search.Service
	cache   *cache.Cache // optional, stores daily plans
}

// New creates a Server.
func New(service *search.Service, c *cache.Cache) *Server {
	return &Server{service: service, cache: c}
}

// Routes returns the HTTP mux for the service.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/jobs/search", s.handleSearch)
	mux.HandleFunc("POST /api/plan/daily", s.handleDailyPlan)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "discovery-service",
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	req := parseSearchRequest(r)

	resp, err := s.service.Search(r.Context(), req)
	if err != nil {
		log.Printf("[server] search failed: %v", err)
		writeError(w, http.StatusBadGateway, "search failed")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// dailyPlanRequest is the body of POST /api/plan/daily.
type dailyPlanRequest struct {
	UserID     string `json:"user_id"`
	JobCount   int    `json:"job_count"`
	Regenerate bool   `json:"regenerate"`
}

func (s *Server) handleDailyPlan(w http.ResponseWriter, r *http.Request) {
	var req dailyPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)

	// Plans are immutable per user-day until explicitly regenerated.
	if s.cache != nil && !req.Regenerate {
		if p, ok := s.cache.GetPlan(r.Context(), req.UserID, today); ok {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}

	p, err := s.service.BuildDailyPlan(r.Context(), req.UserID, req.JobCount)
	if err != nil {
		log.Printf("[server] daily plan failed: %v", err)
		writeError(w, http.StatusBadGateway, "daily plan generation failed")
		return
	}

	if s.cache != nil {
		if err := s.cache.SetPlan(r.Context(), p); err != nil {
			log.Printf("[server] plan store failed: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, p)
}

// parseSearchRequest maps query parameters onto the pipeline request.
func parseSearchRequest(r *http.Request) search.Request {
	q := r.URL.Query()

	req := search.Request{
		Query:          q.Get("q"),
		Location:       q.Get("location"),
		SalaryMin:      parseFloat(q.Get("salary_min")),
		PostedWithin:   q.Get("posted_within"),
		MaxCommuteMins: parseInt(q.Get("max_commute"), 0),
		TransitOnly:    q.Get("transit_only") == "true",
		ProgramOnly:    q.Get("program_only") == "true",
		UserAddress:    q.Get("address"),
		UserID:         q.Get("user_id"),
		Sort:           rank.SortKey(q.Get("sort")),
		Page:           parseInt(q.Get("page"), 1),
		PageSize:       parseInt(q.Get("limit"), 20),
		Refresh:        q.Get("refresh") == "true",
	}

	if types := q.Get("job_types"); types != "" {
		for _, t := range strings.Split(types, ",") {
			if t = strings.TrimSpace(t); t != "" {
				req.JobTypes = append(req.JobTypes, t)
			}
		}
	}

	if lat, lng := q.Get("lat"), q.Get("lng"); lat != "" && lng != "" {
		latF, errLat := strconv.ParseFloat(lat, 64)
		lngF, errLng := strconv.ParseFloat(lng, 64)
		if errLat == nil && errLng == nil {
			req.UserLat = &latF
			req.UserLng = &lngF
		}
	}

	return req
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[server] write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}

func parseFloat(s string) float64 {
	if v, err := strconv.ParseFloat(s, 64); err == nil && v > 0 {
		return v
	}
	return 0
}

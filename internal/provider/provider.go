// Package provider implements the external listing source adapters.
// Each adapter normalizes its provider-specific payload into canonical
// domain.Listing values at the boundary; unmapped fields are dropped.
package provider

import (
	"context"

	"github.com/jobpath-app/go-discovery/internal/domain"
)

// PostedWithin buckets accepted by Query.PostedWithin. Adapters map
// these onto each provider's own date-filter vocabulary.
const (
	PostedAny   = ""
	PostedDay   = "day"
	Posted3Days = "3days"
	PostedWeek  = "week"
	PostedMonth = "month"
)

// Query is the normalized search request passed to every provider.
type Query struct {
	Text         string
	Location     string
	JobTypes     []string // canonical: full-time, part-time, contract, internship, temporary
	PostedWithin string
	SalaryMin    float64
	Page         int // 1-based
	PageSize     int
}

// Provider is the contract every listing source adapter satisfies.
// Search may fail; callers own the fallback, no retries happen here.
type Provider interface {
	// Name returns the source identifier recorded in responses.
	Name() domain.Source

	// Search queries the provider and returns normalized listings.
	Search(ctx context.Context, q Query) ([]domain.Listing, error)
}

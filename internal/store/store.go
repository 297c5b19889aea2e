// Package store persists normalized listings and resolves their
// stable internal identity.
package store

import (
	"context"
	"time"

	"github.com/jobpath-app/go-discovery/internal/domain"
)

// Filters narrows a cache-fallback query over stored listings.
type Filters struct {
	Text        string
	Location    string
	JobTypes    []string
	SalaryMin   float64
	PostedAfter time.Time
}

// Store is the persistent listing store. Upsert is keyed by
// (source, external_id) and must be idempotent; Query serves the
// aggregator's database fallback.
type Store interface {
	// Upsert writes the batch and returns externalID -> internalID for
	// every record successfully persisted. Records that fail are
	// absent from the mapping; that is logged, never fatal.
	Upsert(ctx context.Context, listings []domain.Listing) (map[string]int64, error)

	// Query returns one page of stored listings matching the filters
	// plus the total match count, newest first.
	Query(ctx context.Context, f Filters, page, limit int) ([]domain.Listing, int, error)
}

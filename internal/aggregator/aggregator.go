// Package aggregator implements the provider fallback chain: an
// ordered list of listing providers tried in sequence, with the
// persistent store as the terminal fallback.
package aggregator

import (
	"context"
	"log"
	"time"

	"github.com/jobpath-app/go-discovery/internal/cleaner"
	"github.com/jobpath-app/go-discovery/internal/domain"
	"github.com/jobpath-app/go-discovery/internal/provider"
	"github.com/jobpath-app/go-discovery/internal/store"
)

// Result is one page of normalized listings plus the provenance tag
// identifying which source satisfied the request.
type Result struct {
	Listings []domain.Listing
	Total    int
	HasMore  bool
	Source   domain.Source
}

// Aggregator queries providers in priority order and falls back to
// the persistent store when all of them fail or come back empty.
type Aggregator struct {
	providers []provider.Provider
	store     store.Store
	index     *store.ESIndex // optional full-text index for the fallback
	cleaner   *cleaner.Cleaner
}

// New creates an Aggregator. Providers are tried in the given order.
func New(providers []provider.Provider, st store.Store, index *store.ESIndex) *Aggregator {
	return &Aggregator{
		providers: providers,
		store:     st,
		index:     index,
		cleaner:   cleaner.New(),
	}
}

// Search walks the provider chain. The first provider returning at
// least one listing wins and is recorded as the result's Source; any
// provider error is a non-fatal fall-through. When every remote
// provider is exhausted the store serves the request and Source is
// "database". Only a store failure at that point is fatal.
//
// Remote providers are consulted only for free-text queries or when
// the caller forces a refresh; plain browse requests read the store
// directly.
func (a *Aggregator) Search(ctx context.Context, q provider.Query, forceRemote bool) (*Result, error) {
	if q.Text == "" && !forceRemote {
		return a.searchStore(ctx, q)
	}

	for _, p := range a.providers {
		listings, err := p.Search(ctx, q)
		if err != nil {
			log.Printf("[aggregator] provider %s failed: %v, trying next source", p.Name(), err)
			continue
		}
		if len(listings) == 0 {
			log.Printf("[aggregator] provider %s returned no results, trying next source", p.Name())
			continue
		}

		a.sanitize(listings)
		hasMore := q.PageSize > 0 && len(listings) >= q.PageSize
		return &Result{
			Listings: listings,
			Total:    (maxPage(q.Page)-1)*q.PageSize + len(listings),
			HasMore:  hasMore,
			Source:   p.Name(),
		}, nil
	}

	return a.searchStore(ctx, q)
}

// searchStore serves the request from persisted listings. Uses the
// Elasticsearch index for free-text matching when configured, with
// the SQL store as the last resort.
func (a *Aggregator) searchStore(ctx context.Context, q provider.Query) (*Result, error) {
	page := maxPage(q.Page)
	limit := q.PageSize
	if limit <= 0 {
		limit = 20
	}

	if a.index != nil && q.Text != "" {
		listings, total, err := a.index.Search(ctx, q.Text, page, limit)
		if err == nil {
			return &Result{
				Listings: listings,
				Total:    total,
				HasMore:  page*limit < total,
				Source:   domain.SourceDatabase,
			}, nil
		}
		log.Printf("[aggregator] es search failed: %v, falling back to sql", err)
	}

	filters := store.Filters{
		Text:      q.Text,
		Location:  q.Location,
		JobTypes:  q.JobTypes,
		SalaryMin: q.SalaryMin,
	}
	if cutoff := postedAfter(q.PostedWithin); !cutoff.IsZero() {
		filters.PostedAfter = cutoff
	}

	listings, total, err := a.store.Query(ctx, filters, page, limit)
	if err != nil {
		// Terminal fallback unreachable: surface as a search failure.
		return nil, err
	}

	return &Result{
		Listings: listings,
		Total:    total,
		HasMore:  page*limit < total,
		Source:   domain.SourceDatabase,
	}, nil
}

// sanitize cleans provider HTML in place. Descriptions keep basic
// formatting and hrefs (the risk scorer inspects links); requirements
// are reduced to plain text.
func (a *Aggregator) sanitize(listings []domain.Listing) {
	for i := range listings {
		listings[i].Description = a.cleaner.Clean(listings[i].Description)
		listings[i].Requirements = a.cleaner.CleanToText(listings[i].Requirements)
	}
}

func postedAfter(within string) time.Time {
	var days int
	switch within {
	case provider.PostedDay:
		days = 1
	case provider.Posted3Days:
		days = 3
	case provider.PostedWeek:
		days = 7
	case provider.PostedMonth:
		days = 30
	default:
		return time.Time{}
	}
	return time.Now().AddDate(0, 0, -days)
}

func maxPage(p int) int {
	if p < 1 {
		return 1
	}
	return p
}

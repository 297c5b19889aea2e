package enrich

import (
	"context"
	"log"
	"sync"

	"github.com/jobpath-app/go-discovery/internal/cache"
	"github.com/jobpath-app/go-discovery/internal/domain"
)

// commuteBatchSize bounds how many single-pair resolutions run at
// once. Batches are processed as fixed-size windows: the resolver
// waits for a window to fully complete before issuing the next, so
// peak concurrency never exceeds this bound.
const commuteBatchSize = 5

// CommuteResolver geocodes listing addresses and computes transit
// trips from the user's origin.
type CommuteResolver struct {
	geocoder Geocoder
	router   TransitRouter
	cache    *cache.Cache // optional geocode cache
}

// NewCommuteResolver creates a resolver. cache may be nil.
func NewCommuteResolver(geocoder Geocoder, router TransitRouter, c *cache.Cache) *CommuteResolver {
	return &CommuteResolver{geocoder: geocoder, router: router, cache: c}
}

// Resolve computes the transit trip from origin to the listing.
// Returns nil when the destination cannot be geocoded or no transit
// path exists; callers treat nil as "commute unknown".
func (r *CommuteResolver) Resolve(ctx context.Context, origin LatLng, l *domain.Listing) (*domain.Commute, error) {
	dest, err := r.destination(ctx, l)
	if err != nil {
		return nil, err
	}
	if dest == nil {
		return nil, nil
	}

	return r.router.Route(ctx, origin, *dest)
}

// ResolveBatch resolves commutes for all listings, at most
// commuteBatchSize concurrently, preserving input order in the output.
// An error from any individual resolution is logged and converted to
// a nil ("unknown") entry for that listing only.
func (r *CommuteResolver) ResolveBatch(ctx context.Context, origin LatLng, listings []domain.Listing) []*domain.Commute {
	results := make([]*domain.Commute, len(listings))

	for start := 0; start < len(listings); start += commuteBatchSize {
		end := start + commuteBatchSize
		if end > len(listings) {
			end = len(listings)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				commute, err := r.Resolve(ctx, origin, &listings[i])
				if err != nil {
					log.Printf("[commute] resolve %s/%s failed: %v, marking unknown",
						listings[i].Source, listings[i].ExternalID, err)
					return
				}
				results[i] = commute
			}(i)
		}
		wg.Wait()
	}

	return results
}

// destination finds the listing's coordinates, geocoding the location
// text when the provider didn't supply them. Geocode results go
// through the shared cache when available.
func (r *CommuteResolver) destination(ctx context.Context, l *domain.Listing) (*LatLng, error) {
	if l.Latitude != nil && l.Longitude != nil {
		return &LatLng{Lat: *l.Latitude, Lng: *l.Longitude}, nil
	}
	if l.Location == "" {
		return nil, nil
	}

	if r.cache != nil {
		if lat, lng, ok := r.cache.GetGeocode(ctx, l.Location); ok {
			return &LatLng{Lat: lat, Lng: lng}, nil
		}
	}

	coords, err := r.geocoder.Geocode(ctx, l.Location)
	if err != nil || coords == nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.SetGeocode(ctx, l.Location, coords.Lat, coords.Lng); err != nil {
			log.Printf("[commute] geocode cache set failed: %v", err)
		}
	}

	return coords, nil
}

package enrich

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jobpath-app/go-discovery/internal/domain"
)

type stubGeocoder struct {
	coords map[string]LatLng
}

func (g *stubGeocoder) Geocode(ctx context.Context, address string) (*LatLng, error) {
	if c, ok := g.coords[address]; ok {
		return &c, nil
	}
	return nil, nil
}

// stubRouter returns one minute of travel per unit of latitude and
// tracks its peak concurrency.
type stubRouter struct {
	mu       sync.Mutex
	inFlight int32
	peak     int32
	failFor  map[float64]bool
}

func (r *stubRouter) Route(ctx context.Context, from, to LatLng) (*domain.Commute, error) {
	cur := atomic.AddInt32(&r.inFlight, 1)
	defer atomic.AddInt32(&r.inFlight, -1)

	r.mu.Lock()
	if cur > r.peak {
		r.peak = cur
	}
	r.mu.Unlock()

	if r.failFor[to.Lat] {
		return nil, fmt.Errorf("router unavailable")
	}
	return &domain.Commute{Minutes: int(to.Lat)}, nil
}

func ptr(v float64) *float64 { return &v }

func TestResolveBatch_PreservesOrder(t *testing.T) {
	listings := make([]domain.Listing, 12)
	for i := range listings {
		listings[i] = domain.Listing{
			ExternalID: fmt.Sprintf("job-%d", i),
			Latitude:   ptr(float64(i + 1)),
			Longitude:  ptr(0),
		}
	}

	router := &stubRouter{}
	r := NewCommuteResolver(&stubGeocoder{}, router, nil)

	got := r.ResolveBatch(context.Background(), LatLng{}, listings)
	if len(got) != len(listings) {
		t.Fatalf("len(results) = %d, want %d", len(got), len(listings))
	}
	for i, c := range got {
		if c == nil {
			t.Fatalf("results[%d] = nil, want a commute", i)
		}
		if c.Minutes != i+1 {
			t.Errorf("results[%d].Minutes = %d, want %d", i, c.Minutes, i+1)
		}
	}
}

func TestResolveBatch_ConcurrencyBound(t *testing.T) {
	listings := make([]domain.Listing, 17)
	for i := range listings {
		listings[i] = domain.Listing{
			ExternalID: fmt.Sprintf("job-%d", i),
			Latitude:   ptr(float64(i + 1)),
			Longitude:  ptr(0),
		}
	}

	router := &stubRouter{}
	r := NewCommuteResolver(&stubGeocoder{}, router, nil)
	r.ResolveBatch(context.Background(), LatLng{}, listings)

	if router.peak > commuteBatchSize {
		t.Errorf("peak concurrency = %d, want <= %d", router.peak, commuteBatchSize)
	}
}

func TestResolveBatch_PerItemFailureIsUnknown(t *testing.T) {
	listings := []domain.Listing{
		{ExternalID: "a", Latitude: ptr(3), Longitude: ptr(0)},
		{ExternalID: "b", Latitude: ptr(7), Longitude: ptr(0)},
		{ExternalID: "c", Latitude: ptr(9), Longitude: ptr(0)},
	}

	router := &stubRouter{failFor: map[float64]bool{7: true}}
	r := NewCommuteResolver(&stubGeocoder{}, router, nil)

	got := r.ResolveBatch(context.Background(), LatLng{}, listings)
	if got[0] == nil || got[0].Minutes != 3 {
		t.Errorf("results[0] = %+v, want 3 minutes", got[0])
	}
	if got[1] != nil {
		t.Errorf("results[1] = %+v, want nil for the failed item", got[1])
	}
	if got[2] == nil || got[2].Minutes != 9 {
		t.Errorf("results[2] = %+v, want 9 minutes", got[2])
	}
}

func TestResolve_UngeocodableDestination(t *testing.T) {
	r := NewCommuteResolver(&stubGeocoder{}, &stubRouter{}, nil)

	commute, err := r.Resolve(context.Background(), LatLng{}, &domain.Listing{Location: "Nowhere, XX"})
	if err != nil {
		t.Fatalf("Resolve() error = %v, want nil", err)
	}
	if commute != nil {
		t.Errorf("Resolve() = %+v, want nil for unresolvable destination", commute)
	}
}

func TestResolve_GeocodesLocationText(t *testing.T) {
	g := &stubGeocoder{coords: map[string]LatLng{"Austin, TX": {Lat: 25, Lng: -97}}}
	r := NewCommuteResolver(g, &stubRouter{}, nil)

	commute, err := r.Resolve(context.Background(), LatLng{}, &domain.Listing{Location: "Austin, TX"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if commute == nil || commute.Minutes != 25 {
		t.Errorf("Resolve() = %+v, want 25 minutes", commute)
	}
}

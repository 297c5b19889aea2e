package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jobpath-app/go-discovery/internal/domain"
)

// TransitRouter computes a transit trip between two coordinates. A nil
// result with a nil error means no transit path exists.
type TransitRouter interface {
	Route(ctx context.Context, origin, dest LatLng) (*domain.Commute, error)
}

// HTTPTransitRouter talks to an OTP-style transit routing endpoint.
type HTTPTransitRouter struct {
	baseURL string
	client  *http.Client
}

// NewHTTPTransitRouter creates the transit client.
func NewHTTPTransitRouter(baseURL string, timeout time.Duration) *HTTPTransitRouter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPTransitRouter{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// transitPlan mirrors the routing API's itinerary response.
type transitPlan struct {
	Plan struct {
		Itineraries []struct {
			Duration int `json:"duration"` // seconds
			Legs     []struct {
				Mode      string `json:"mode"`
				Route     string `json:"route"`
				RouteID   string `json:"routeId"`
				RouteName string `json:"routeShortName"`
			} `json:"legs"`
		} `json:"itineraries"`
	} `json:"plan"`
}

// Route plans a transit trip. Returns (nil, nil) when the service
// finds no itinerary.
func (t *HTTPTransitRouter) Route(ctx context.Context, origin, dest LatLng) (*domain.Commute, error) {
	params := url.Values{}
	params.Set("fromPlace", fmt.Sprintf("%f,%f", origin.Lat, origin.Lng))
	params.Set("toPlace", fmt.Sprintf("%f,%f", dest.Lat, dest.Lng))
	params.Set("mode", "TRANSIT,WALK")
	params.Set("numItineraries", "1")

	reqURL := t.baseURL + "/otp/routers/default/plan?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transit: http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("transit: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transit: status %d", resp.StatusCode)
	}

	var plan transitPlan
	if err := json.Unmarshal(body, &plan); err != nil {
		return nil, fmt.Errorf("transit: unmarshal: %w", err)
	}
	if len(plan.Plan.Itineraries) == 0 {
		return nil, nil
	}

	it := plan.Plan.Itineraries[0]
	commute := &domain.Commute{
		Minutes: (it.Duration + 59) / 60,
	}

	var legs []string
	for _, leg := range it.Legs {
		if leg.Mode == "WALK" {
			continue
		}
		id := leg.RouteID
		if id == "" {
			id = leg.Route
		}
		if id != "" {
			commute.RouteIDs = append(commute.RouteIDs, id)
		}
		name := leg.RouteName
		if name == "" {
			name = leg.Route
		}
		if name != "" {
			legs = append(legs, name)
		}
	}

	if len(legs) > 0 {
		commute.Summary = fmt.Sprintf("%d min via %s", commute.Minutes, strings.Join(legs, ", "))
	} else {
		commute.Summary = fmt.Sprintf("%d min walk", commute.Minutes)
	}

	return commute, nil
}

package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jobpath-app/go-discovery/internal/domain"
)

// ProfileService fetches user profiles from the external profile
// service. Profiles are read-only inputs to scoring.
type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error)
}

// HTTPProfileService talks to the profile service over HTTP.
type HTTPProfileService struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProfileService creates the client.
func NewHTTPProfileService(baseURL string, timeout time.Duration) *HTTPProfileService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProfileService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// GetProfile fetches the profile for a user.
func (s *HTTPProfileService) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/profiles/"+userID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile: http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("profile: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile: status %d", resp.StatusCode)
	}

	var profile domain.UserProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("profile: unmarshal: %w", err)
	}
	return &profile, nil
}

// Package cache provides Redis-backed caching for search responses
// and geocode results.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jobpath-app/go-discovery/internal/domain"
)

// Cache wraps the Redis client. All operations degrade silently: a
// miss and an unreachable Redis look the same to callers.
type Cache struct {
	client     *redis.Client
	searchTTL  time.Duration
	geocodeTTL time.Duration
}

// New creates a Cache and verifies connectivity.
func New(ctx context.Context, addr, password string, db int, searchTTL, geocodeTTL time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	if searchTTL <= 0 {
		searchTTL = 15 * time.Minute
	}
	if geocodeTTL <= 0 {
		geocodeTTL = 30 * 24 * time.Hour
	}

	return &Cache{client: client, searchTTL: searchTTL, geocodeTTL: geocodeTTL}, nil
}

// cachedSearch is the stored shape of a search-response cache entry.
type cachedSearch struct {
	Listings []domain.Listing `json:"listings"`
	Total    int              `json:"total"`
	Source   domain.Source    `json:"source"`
}

// GetSearch retrieves a cached page of search results for the key.
func (c *Cache) GetSearch(ctx context.Context, key string) ([]domain.Listing, int, domain.Source, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, 0, "", false
	}

	var entry cachedSearch
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, 0, "", false
	}

	return entry.Listings, entry.Total, entry.Source, true
}

// SetSearch stores a page of search results under the key.
func (c *Cache) SetSearch(ctx context.Context, key string, listings []domain.Listing, total int, source domain.Source) error {
	data, err := json.Marshal(cachedSearch{Listings: listings, Total: total, Source: source})
	if err != nil {
		return fmt.Errorf("cache: marshal: %w", err)
	}
	return c.client.Set(ctx, key, data, c.searchTTL).Err()
}

// SearchKey derives a stable cache key for a search request.
func SearchKey(parts ...string) string {
	raw := strings.ToLower(strings.Join(parts, "|"))
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("search:%x", hash[:12])
}

// GetGeocode retrieves cached coordinates for an address.
func (c *Cache) GetGeocode(ctx context.Context, address string) (lat, lng float64, ok bool) {
	data, err := c.client.Get(ctx, geocodeKey(address)).Bytes()
	if err != nil {
		return 0, 0, false
	}

	var coords [2]float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return 0, 0, false
	}
	return coords[0], coords[1], true
}

// SetGeocode stores coordinates for an address.
func (c *Cache) SetGeocode(ctx context.Context, address string, lat, lng float64) error {
	data, _ := json.Marshal([2]float64{lat, lng})
	return c.client.Set(ctx, geocodeKey(address), data, c.geocodeTTL).Err()
}

// GetPlan retrieves the stored daily plan for a user-day. Plans are
// created once per user per day and immutable until regenerated.
func (c *Cache) GetPlan(ctx context.Context, userID string, date time.Time) (*domain.DailyPlan, bool) {
	data, err := c.client.Get(ctx, planKey(userID, date)).Bytes()
	if err != nil {
		return nil, false
	}

	var p domain.DailyPlan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, false
	}
	return &p, true
}

// SetPlan stores a daily plan, replacing any existing plan for the
// same user-day.
func (c *Cache) SetPlan(ctx context.Context, p *domain.DailyPlan) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("cache: marshal plan: %w", err)
	}
	return c.client.Set(ctx, planKey(p.UserID, p.Date), data, 48*time.Hour).Err()
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

func planKey(userID string, date time.Time) string {
	return fmt.Sprintf("plan:%s:%s", userID, date.UTC().Format("2006-01-02"))
}

func geocodeKey(address string) string {
	hash := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(address))))
	return fmt.Sprintf("geo:%x", hash[:12])
}

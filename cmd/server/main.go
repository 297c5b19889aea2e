package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jobpath-app/go-discovery/internal/aggregator"
	"github.com/jobpath-app/go-discovery/internal/cache"
	"github.com/jobpath-app/go-discovery/internal/config"
	"github.com/jobpath-app/go-discovery/internal/enrich"
	"github.com/jobpath-app/go-discovery/internal/plan"
	"github.com/jobpath-app/go-discovery/internal/provider"
	"github.com/jobpath-app/go-discovery/internal/search"
	"github.com/jobpath-app/go-discovery/internal/server"
	"github.com/jobpath-app/go-discovery/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Discovery Service")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Postgres is the persistent store and the terminal search fallback.
	pg, err := store.NewPostgresStore(cfg.Postgres.ConnectionString, cfg.Postgres.TableName)
	if err != nil {
		log.Fatalf("Postgres connection failed: %v", err)
	}
	defer pg.Close()
	log.Printf("Postgres connected, table: %s", cfg.Postgres.TableName)

	// Redis backs the response, geocode and plan caches. The service
	// still works without it, every lookup just goes to the providers.
	var c *cache.Cache
	if rc, err := cache.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.SearchTTL, cfg.Redis.GeocodeTTL); err != nil {
		log.Printf("Warning: Redis unavailable, running without cache: %v", err)
	} else {
		c = rc
		defer c.Close()
		log.Println("Redis connected")
	}

	// Elasticsearch serves free-text queries against persisted listings.
	var esIndex *store.ESIndex
	if len(cfg.Elasticsearch.Addresses) > 0 {
		esIndex, err = store.NewESIndex(cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Index)
		if err != nil {
			log.Fatalf("Elasticsearch connection failed: %v", err)
		}
		log.Printf("Elasticsearch connected, index: %s", cfg.Elasticsearch.Index)

		if err := esIndex.EnsureIndex(ctx); err != nil {
			log.Printf("Warning: Failed to ensure index: %v", err)
		}
	}

	providers := buildProviders(cfg)
	if len(providers) == 0 {
		log.Println("Warning: No remote providers configured, serving from the store only")
	}

	agg := aggregator.New(providers, pg, esIndex)

	geocoder := enrich.NewHTTPGeocoder(cfg.Commute.GeocoderBaseURL, cfg.Commute.Timeout)

	var commutes *enrich.CommuteResolver
	if cfg.Commute.TransitBaseURL != "" {
		router := enrich.NewHTTPTransitRouter(cfg.Commute.TransitBaseURL, cfg.Commute.Timeout)
		commutes = enrich.NewCommuteResolver(geocoder, router, c)
		log.Println("Transit routing enabled")
	}

	var generator plan.MessageGenerator
	if cfg.AI.Enabled && cfg.AI.BaseURL != "" {
		generator = plan.NewHTTPGenerator(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Timeout)
		log.Println("AI plan messages enabled")
	}

	svc := search.New(agg, pg, search.Options{
		Index:    esIndex,
		Cache:    c,
		Commutes: commutes,
		Geocoder: geocoder,
		Programs: enrich.NewHTTPProgramService(cfg.Services.ProgramBaseURL, cfg.Services.Timeout),
		Profiles: enrich.NewHTTPProfileService(cfg.Services.ProfileBaseURL, cfg.Services.Timeout),
		Selector: plan.NewSelector(generator),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      server.New(svc, c).Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-sigChan
	log.Println("Shutdown signal received, stopping...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Graceful shutdown complete")
}

// buildProviders assembles the remote provider chain in priority
// order. Providers missing credentials are skipped.
func buildProviders(cfg *config.Config) []provider.Provider {
	var providers []provider.Provider

	if cfg.Providers.JSearchAPIKey != "" {
		providers = append(providers, provider.NewJSearch(cfg.Providers.JSearchAPIKey, cfg.Providers.JSearchBaseURL, cfg.Providers.Timeout))
		log.Println("Provider enabled: jsearch")
	}
	if cfg.Providers.AdzunaAppID != "" && cfg.Providers.AdzunaAppKey != "" {
		providers = append(providers, provider.NewAdzuna(cfg.Providers.AdzunaAppID, cfg.Providers.AdzunaAppKey, cfg.Providers.AdzunaCountry, cfg.Providers.Timeout))
		log.Println("Provider enabled: adzuna")
	}

	return providers
}

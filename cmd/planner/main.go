package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jobpath-app/go-discovery/internal/aggregator"
	"github.com/jobpath-app/go-discovery/internal/cache"
	"github.com/jobpath-app/go-discovery/internal/config"
	"github.com/jobpath-app/go-discovery/internal/enrich"
	"github.com/jobpath-app/go-discovery/internal/plan"
	"github.com/jobpath-app/go-discovery/internal/provider"
	"github.com/jobpath-app/go-discovery/internal/scheduler"
	"github.com/jobpath-app/go-discovery/internal/search"
	"github.com/jobpath-app/go-discovery/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Daily Plan Scheduler")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := store.NewPostgresStore(cfg.Postgres.ConnectionString, cfg.Postgres.TableName)
	if err != nil {
		log.Fatalf("Postgres connection failed: %v", err)
	}
	defer pg.Close()

	// Generated plans live in Redis, so unlike the API server the
	// scheduler treats it as required.
	c, err := cache.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.SearchTTL, cfg.Redis.GeocodeTTL)
	if err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}
	defer c.Close()
	log.Println("Redis connected")

	var esIndex *store.ESIndex
	if len(cfg.Elasticsearch.Addresses) > 0 {
		esIndex, err = store.NewESIndex(cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Index)
		if err != nil {
			log.Fatalf("Elasticsearch connection failed: %v", err)
		}
	}

	var providers []provider.Provider
	if cfg.Providers.JSearchAPIKey != "" {
		providers = append(providers, provider.NewJSearch(cfg.Providers.JSearchAPIKey, cfg.Providers.JSearchBaseURL, cfg.Providers.Timeout))
	}
	if cfg.Providers.AdzunaAppID != "" && cfg.Providers.AdzunaAppKey != "" {
		providers = append(providers, provider.NewAdzuna(cfg.Providers.AdzunaAppID, cfg.Providers.AdzunaAppKey, cfg.Providers.AdzunaCountry, cfg.Providers.Timeout))
	}

	geocoder := enrich.NewHTTPGeocoder(cfg.Commute.GeocoderBaseURL, cfg.Commute.Timeout)

	var commutes *enrich.CommuteResolver
	if cfg.Commute.TransitBaseURL != "" {
		router := enrich.NewHTTPTransitRouter(cfg.Commute.TransitBaseURL, cfg.Commute.Timeout)
		commutes = enrich.NewCommuteResolver(geocoder, router, c)
	}

	var generator plan.MessageGenerator
	if cfg.AI.Enabled && cfg.AI.BaseURL != "" {
		generator = plan.NewHTTPGenerator(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Timeout)
	}

	svc := search.New(aggregator.New(providers, pg, esIndex), pg, search.Options{
		Index:    esIndex,
		Cache:    c,
		Commutes: commutes,
		Geocoder: geocoder,
		Programs: enrich.NewHTTPProgramService(cfg.Services.ProgramBaseURL, cfg.Services.Timeout),
		Profiles: enrich.NewHTTPProfileService(cfg.Services.ProfileBaseURL, cfg.Services.Timeout),
		Selector: plan.NewSelector(generator),
	})

	sched := scheduler.New(svc, c, cfg.Plan.UserIDs, cfg.Plan.JobCount, cfg.Plan.CronSpec)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Scheduler start failed: %v", err)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, stopping...")
	cancel()
	sched.Stop()
	log.Println("Graceful shutdown complete")
}

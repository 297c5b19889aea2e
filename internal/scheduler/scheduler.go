// Package scheduler wires up the cron job that periodically generates
// daily plans for subscribed users.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/jobpath-app/go-discovery/internal/cache"
	"github.com/jobpath-app/go-discovery/internal/domain"
)

// PlanBuilder generates one user's daily plan.
type PlanBuilder interface {
	BuildDailyPlan(ctx context.Context, userID string, jobCount int) (*domain.DailyPlan, error)
}

// Scheduler wraps robfig/cron and manages the plan generation loop.
type Scheduler struct {
	cron     *cron.Cron
	builder  PlanBuilder
	cache    *cache.Cache // optional, stores generated plans
	userIDs  []string
	jobCount int
	spec     string
}

// New creates a Scheduler firing on the given cron spec.
func New(builder PlanBuilder, c *cache.Cache, userIDs []string, jobCount int, spec string) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLogger(cron.DefaultLogger)),
		builder:  builder,
		cache:    c,
		userIDs:  userIDs,
		jobCount: jobCount,
		spec:     spec,
	}
}

// Start registers the job and starts the scheduler. Also runs one
// generation pass immediately so plans exist without waiting for the
// first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runGeneration(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started with spec %q", s.spec)

	go s.runGeneration(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

// runGeneration builds a plan for every subscribed user. A failure for
// one user never stops the pass.
func (s *Scheduler) runGeneration(ctx context.Context) {
	if len(s.userIDs) == 0 {
		log.Println("[scheduler] No subscribed users, nothing to generate")
		return
	}

	log.Printf("[scheduler] Generating plans for %d user(s)", len(s.userIDs))
	for _, userID := range s.userIDs {
		p, err := s.builder.BuildDailyPlan(ctx, userID, s.jobCount)
		if err != nil {
			log.Printf("[scheduler] Plan for user %s failed: %v, continuing", userID, err)
			continue
		}

		if s.cache != nil {
			if err := s.cache.SetPlan(ctx, p); err != nil {
				log.Printf("[scheduler] Plan store for user %s failed: %v", userID, err)
			}
		}

		log.Printf("[scheduler] User %s: %d jobs, mean score %.1f, focus %q",
			userID, len(p.Jobs), p.Stats.MeanScore, p.FocusArea)
	}

	log.Println("[scheduler] Generation pass complete")
}

package scheduler

import (
	"context"
	"fmt"
	"testing"

	"github.com/jobpath-app/go-discovery/internal/domain"
)

type fakeBuilder struct {
	calls   []string
	failFor map[string]bool
}

func (f *fakeBuilder) BuildDailyPlan(ctx context.Context, userID string, jobCount int) (*domain.DailyPlan, error) {
	f.calls = append(f.calls, userID)
	if f.failFor[userID] {
		return nil, fmt.Errorf("no profile")
	}
	return &domain.DailyPlan{UserID: userID}, nil
}

func TestRunGeneration_CoversAllUsers(t *testing.T) {
	b := &fakeBuilder{}
	s := New(b, nil, []string{"u1", "u2", "u3"}, 8, "0 6 * * *")

	s.runGeneration(context.Background())

	if len(b.calls) != 3 {
		t.Fatalf("builder called %d times, want 3", len(b.calls))
	}
}

func TestRunGeneration_UserFailureDoesNotStopPass(t *testing.T) {
	b := &fakeBuilder{failFor: map[string]bool{"u2": true}}
	s := New(b, nil, []string{"u1", "u2", "u3"}, 8, "0 6 * * *")

	s.runGeneration(context.Background())

	if len(b.calls) != 3 {
		t.Fatalf("builder called %d times, want 3: one failure never stops the pass", len(b.calls))
	}
}

func TestRunGeneration_NoUsers(t *testing.T) {
	b := &fakeBuilder{}
	s := New(b, nil, nil, 8, "0 6 * * *")

	s.runGeneration(context.Background())

	if len(b.calls) != 0 {
		t.Errorf("builder called %d times, want 0", len(b.calls))
	}
}

func TestStart_RejectsBadCronSpec(t *testing.T) {
	s := New(&fakeBuilder{}, nil, nil, 8, "not a cron spec")
	defer s.Stop()

	if err := s.Start(context.Background()); err == nil {
		t.Error("expected error for an invalid cron spec")
	}
}

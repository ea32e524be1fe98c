package orchestrator

import (
	"context"
	"fmt"
	"log"
	"time"

	"clearfeed/types"

	"github.com/robfig/cron/v3"
)

// Refresher rebuilds the cached aggregate.
type Refresher interface {
	Refresh(ctx context.Context) ([]*types.Article, error)
}

const refreshJobTimeout = 5 * time.Minute

// RefreshSchedule is a running periodic refresh.
type RefreshSchedule struct {
	cron *cron.Cron
}

// StartRefreshCron runs r.Refresh on the given standard five-field schedule.
// The caller stops the returned schedule on shutdown.
func StartRefreshCron(schedule string, r Refresher) (*RefreshSchedule, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, refreshJob(r)); err != nil {
		return nil, fmt.Errorf("failed to add cron job: %w", err)
	}
	c.Start()
	log.Printf("Cron refresh started with schedule: %s", schedule)
	return &RefreshSchedule{cron: c}, nil
}

// Entries reports how many jobs are scheduled.
func (s *RefreshSchedule) Entries() int {
	return len(s.cron.Entries())
}

// Stop halts the schedule and blocks until a refresh already in progress
// has finished, so the cache and store are not closed underneath it.
func (s *RefreshSchedule) Stop() {
	<-s.cron.Stop().Done()
	log.Println("Cron refresh stopped")
}

func refreshJob(r Refresher) func() {
	return func() {
		log.Println("Cron triggered: refreshing feeds")
		ctx, cancel := context.WithTimeout(context.Background(), refreshJobTimeout)
		defer cancel()
		articles, err := r.Refresh(ctx)
		if err != nil {
			log.Printf("❌ Cron refresh error: %v", err)
			return
		}
		log.Printf("✓ Cron refresh cached %d articles", len(articles))
	}
}

// Package jobs runs the periodic sweeps: ending expired auctions,
// activating due auctions and auto-releasing expired escrows.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	auction "auction-house/internal/auctionService"
	escrow "auction-house/internal/escrowService"
	"auction-house/utils"
)

// Specs carries the cron expressions for each sweep.
type Specs struct {
	EndExpiredAuctions string
	ActivateAuctions   string
	ReleaseEscrows     string
}

// Scheduler owns the cron instance driving the sweeps. Every job runs
// with its own timeout so a stuck sweep cannot pile up behind itself.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler registers the three sweeps and returns the scheduler
// unstarted.
func NewScheduler(auctions *auction.AuctionService, escrows *escrow.EscrowService, specs Specs) (*Scheduler, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	jobs := []struct {
		name string
		spec string
		run  func(ctx context.Context) (int, error)
	}{
		{"end_expired_auctions", specs.EndExpiredAuctions, auctions.SweepExpiredAuctions},
		{"activate_due_auctions", specs.ActivateAuctions, auctions.ActivateDueAuctions},
		{"auto_release_escrows", specs.ReleaseEscrows, escrows.AutoReleaseExpiredEscrows},
	}
	for _, j := range jobs {
		j := j
		_, err := c.AddFunc(j.spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			n, err := j.run(ctx)
			if err != nil {
				utils.Error("sweep failed", map[string]any{"job": j.name, "error": err.Error()})
				return
			}
			if n > 0 {
				utils.Info("sweep completed", map[string]any{"job": j.name, "processed": n})
			}
		})
		if err != nil {
			return nil, fmt.Errorf("jobs: failed to register %s (%q): %w", j.name, j.spec, err)
		}
	}
	return &Scheduler{cron: c}, nil
}

// Start begins running the sweeps on their schedules.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

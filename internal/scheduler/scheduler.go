// Package scheduler runs the daily valuation job: refresh market prices,
// settle trades, run the NAV pipeline, and rebuild the holdings rollup.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/quantora/fund-management-backend/internal/service"
)

// jobTimeout bounds one valuation run end to end.
const jobTimeout = 10 * time.Minute

// Scheduler owns the cron runner for the daily valuation job.
type Scheduler struct {
	cron            *cron.Cron
	priceService    *service.PriceService
	positionService *service.PositionService
	navService      *service.NavService
	snapshotService *service.SnapshotService
}

// New creates a Scheduler wired to the services the valuation job drives.
func New(
	priceService *service.PriceService,
	positionService *service.PositionService,
	navService *service.NavService,
	snapshotService *service.SnapshotService,
) *Scheduler {
	return &Scheduler{
		cron:            cron.New(),
		priceService:    priceService,
		positionService: positionService,
		navService:      navService,
		snapshotService: snapshotService,
	}
}

// Start registers the valuation job under the given cron expression and
// starts the runner.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runValuationJob); err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("valuation job scheduled: %s", spec)
	return nil
}

// Stop stops the cron runner and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// runValuationJob executes the daily sequence. Steps after a price refresh
// failure still run: stale prices are better than no valuation, and the
// refresh result logs which tickers failed.
func (s *Scheduler) runValuationJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	log.Println("valuation job: starting")

	result, err := s.priceService.RefreshAll(ctx)
	if err != nil {
		log.Printf("valuation job: price refresh failed: %v", err)
	} else {
		log.Printf("valuation job: prices refreshed (%d updated, %d failed)",
			len(result.Updated), len(result.Failed))
	}

	updated, err := s.positionService.Settle(ctx)
	if err != nil {
		log.Printf("valuation job: settlement failed: %v", err)
		return
	}
	log.Printf("valuation job: settled %d positions", len(updated))

	pipeline, err := s.navService.Run(ctx)
	if err != nil {
		log.Printf("valuation job: nav pipeline failed: %v", err)
		return
	}
	if pipeline.Valuation != nil {
		log.Printf("valuation job: nav per unit %.4f", pipeline.Valuation.NavPerUnit)
	}

	if _, err := s.snapshotService.Rebuild(ctx); err != nil {
		log.Printf("valuation job: snapshot rebuild failed: %v", err)
		return
	}

	log.Println("valuation job: finished")
}

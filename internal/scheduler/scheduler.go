// Package scheduler refreshes the demand map on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"
)

const DefaultSpec = "@every 10m"

type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler wraps robfig/cron around a single refresh job.
type Scheduler struct {
	cron *cron.Cron
	r    Refresher
	spec string
	wg   sync.WaitGroup
}

func New(r Refresher, spec string) *Scheduler {
	if spec == "" {
		spec = DefaultSpec
	}
	return &Scheduler{
		cron: cron.New(),
		r:    r,
		spec: spec,
	}
}

// Start registers the job and runs one refresh immediately so the map is
// populated without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc %q: %w", s.spec, err)
	}
	s.cron.Start()
	log.Printf("[scheduler] started spec=%q", s.spec)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
	return nil
}

// Stop waits for running jobs, including the startup refresh.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	log.Println("[scheduler] stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.r.Refresh(ctx); err != nil {
		log.Printf("[scheduler] demand refresh failed: %v", err)
	}
}

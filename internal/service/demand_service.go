package service

import (
	"context"
	"log"
	"sync"
	"time"

	"gigfinder/internal/entity"
)

// DemandErrorMessage is shown in place of the heat map when a refresh fails.
const DemandErrorMessage = "Could not load job demand data."

type DemandGenerator interface {
	GenerateDemand(ctx context.Context) ([]entity.DemandPoint, error)
}

type DemandSnapshot struct {
	Entries   []entity.DemandEntry `json:"entries"`
	Loaded    bool                 `json:"loaded"`
	Error     string               `json:"error,omitempty"`
	UpdatedAt time.Time            `json:"updated_at,omitempty"`
}

// DemandService caches the latest heat map. A failed refresh keeps the last
// good entries and sets Error.
type DemandService struct {
	gen DemandGenerator
	now func() time.Time

	mu   sync.RWMutex
	snap DemandSnapshot
	// started counts Refresh calls; applied is the newest one reflected in snap.
	started uint64
	applied uint64

	onRefresh func(err error)
}

func NewDemandService(gen DemandGenerator) *DemandService {
	return &DemandService{
		gen: gen,
		now: time.Now,
		snap: DemandSnapshot{
			Entries: entity.BuildDemandMap(nil),
		},
	}
}

func (s *DemandService) OnRefresh(f func(err error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRefresh = f
}

// Refresh fetches new demand points. Overlapping refreshes may finish out of
// order; a result older than the one already applied is dropped. The OnRefresh
// hook runs after the snapshot is updated and may call Current.
func (s *DemandService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.started++
	seq := s.started
	s.mu.Unlock()

	start := time.Now()
	points, err := s.gen.GenerateDemand(ctx)

	s.mu.Lock()
	switch {
	case seq < s.applied:
		log.Printf("[demand] refresh_seq=%d stale result dropped applied_seq=%d", seq, s.applied)
	case err != nil:
		s.applied = seq
		s.snap.Error = DemandErrorMessage
		log.Printf("[demand] refresh_seq=%d status=error duration_ms=%d error=%v", seq, time.Since(start).Milliseconds(), err)
	default:
		s.applied = seq
		s.snap = DemandSnapshot{
			Entries:   entity.BuildDemandMap(points),
			Loaded:    true,
			UpdatedAt: s.now().UTC(),
		}
		log.Printf("[demand] refresh_seq=%d status=done points=%d duration_ms=%d", seq, len(points), time.Since(start).Milliseconds())
	}
	hook := s.onRefresh
	s.mu.Unlock()

	if hook != nil {
		hook(err)
	}
	return err
}

func (s *DemandService) Current() DemandSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.snap
	out.Entries = make([]entity.DemandEntry, len(s.snap.Entries))
	copy(out.Entries, s.snap.Entries)
	return out
}

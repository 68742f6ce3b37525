package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"gigfinder/internal/entity"
)

// HistoryKey names the single durable record holding the accepted-jobs list.
const HistoryKey = "gigfinder-job-history"

var ErrPersist = errors.New("history persist failed")

// HistoryRepository stores the JSON-encoded history under HistoryKey.
// Load returns (nil, nil) when nothing has been saved yet.
// Implementations: file, redis, postgresql, sqlite.
type HistoryRepository interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// HistoryService keeps accepted jobs newest first, unique by id.
// The in-memory list is authoritative; the repository is best effort.
type HistoryService struct {
	repo HistoryRepository

	mu   sync.RWMutex
	jobs []entity.Job

	onChange func(size int, persistErr error)
}

func NewHistoryService(repo HistoryRepository) *HistoryService {
	return &HistoryService{repo: repo, jobs: []entity.Job{}}
}

// OnChange registers a hook called after every RecordAcceptance.
func (s *HistoryService) OnChange(f func(size int, persistErr error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = f
}

// Load replaces the in-memory list with the persisted one. Missing or
// unreadable data yields an empty history; the failure is only logged.
func (s *HistoryService) Load(ctx context.Context) []entity.Job {
	jobs := s.read(ctx)

	s.mu.Lock()
	s.jobs = jobs
	s.mu.Unlock()

	log.Printf("[history] loaded jobs=%d", len(jobs))
	return s.All()
}

func (s *HistoryService) read(ctx context.Context) []entity.Job {
	raw, err := s.repo.Load(ctx)
	if err != nil {
		log.Printf("[history] load error=%v", err)
		return []entity.Job{}
	}
	if len(raw) == 0 {
		return []entity.Job{}
	}

	var jobs []entity.Job
	if err := json.Unmarshal(raw, &jobs); err != nil {
		log.Printf("[history] parse error=%v bytes=%d", err, len(raw))
		return []entity.Job{}
	}
	return dedupe(jobs)
}

// RecordAcceptance moves job to the front, dropping any earlier entry with the
// same id, then persists the whole list before returning. A persistence error
// is wrapped in ErrPersist; the in-memory list is updated regardless.
func (s *HistoryService) RecordAcceptance(ctx context.Context, job entity.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]entity.Job, 0, len(s.jobs)+1)
	next = append(next, job)
	for _, j := range s.jobs {
		if j.ID != job.ID {
			next = append(next, j)
		}
	}
	s.jobs = next

	err := s.persistLocked(ctx)
	if s.onChange != nil {
		s.onChange(len(s.jobs), err)
	}
	return err
}

func (s *HistoryService) persistLocked(ctx context.Context) error {
	raw, err := json.Marshal(s.jobs)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrPersist, err)
	}
	if err := s.repo.Save(ctx, raw); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

// All returns a copy of the history, most recently accepted first.
func (s *HistoryService) All() []entity.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.Job, len(s.jobs))
	copy(out, s.jobs)
	return out
}

func (s *HistoryService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// dedupe keeps the first occurrence of each id, so hand-edited or legacy data
// still satisfies the uniqueness invariant.
func dedupe(jobs []entity.Job) []entity.Job {
	seen := make(map[string]struct{}, len(jobs))
	out := make([]entity.Job, 0, len(jobs))
	for _, j := range jobs {
		if _, ok := seen[j.ID]; ok {
			continue
		}
		seen[j.ID] = struct{}{}
		out = append(out, j)
	}
	return out
}

package workflow

import (
	"context"
	"log"
	"sync"
	"time"

	"gigfinder/internal/entity"
	"gigfinder/internal/worker"
)

// FailedSearchMessage is shown to the worker when the generator call fails.
const FailedSearchMessage = "Failed to find a job. The AI might be busy. Please try again."

const (
	DefaultSearchTimeout  = 30 * time.Second
	DefaultPersistTimeout = 5 * time.Second
)

// JobGenerator produces one validated gig offer per call.
type JobGenerator interface {
	GenerateJob(ctx context.Context) (entity.Job, error)
}

// HistoryRecorder persists accepted jobs. The returned error is informational.
type HistoryRecorder interface {
	RecordAcceptance(ctx context.Context, job entity.Job) error
}

// State is a consistent snapshot of the controller.
type State struct {
	Status   entity.WorkerStatus
	Job      *entity.Job
	Error    string
	Earnings *float64 // set only when Completed
}

// Change describes one applied transition.
type Change struct {
	From    entity.WorkerStatus
	To      entity.WorkerStatus
	Trigger Trigger
	State   State
}

// Observer is called under the controller lock, in transition order.
// It must not block or call back into the controller.
type Observer func(Change)

type Option func(*Controller)

func WithScheduler(s worker.Scheduler) Option {
	return func(c *Controller) { c.sched = s }
}

func WithShiftDuration(d time.Duration) Option {
	return func(c *Controller) { c.shiftDuration = d }
}

func WithSearchTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.searchTimeout = d
		}
	}
}

// WithPersistTimeout bounds the history write made while accepting a job.
// The controller lock is held for the duration of that write.
func WithPersistTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.persistTimeout = d
		}
	}
}

func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// Controller owns the worker status, the current job and the last error.
// All mutations go through the transition table while holding mu.
type Controller struct {
	mu        sync.Mutex
	status    entity.WorkerStatus
	job       *entity.Job
	errMsg    string
	searchSeq uint64

	gen     JobGenerator
	history HistoryRecorder
	shift   *worker.Shift

	sched          worker.Scheduler
	shiftDuration  time.Duration
	searchTimeout  time.Duration
	persistTimeout time.Duration
	observers      []Observer
}

func NewController(gen JobGenerator, history HistoryRecorder, opts ...Option) *Controller {
	c := &Controller{
		status:         entity.StatusIdle,
		gen:            gen,
		history:        history,
		shiftDuration:  worker.DefaultShift,
		searchTimeout:  DefaultSearchTimeout,
		persistTimeout: DefaultPersistTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.shift = worker.NewShift(c.sched, c.shiftDuration)
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// RequestJob moves Idle → Searching and blocks on the generator. It is a
// no-op in any other status, so a second call while Searching starts nothing.
// The generator runs detached from ctx cancellation, bounded by the search timeout.
func (c *Controller) RequestJob(ctx context.Context) (State, bool) {
	c.mu.Lock()
	var seq uint64
	ok := c.applyLocked(TriggerRequestJob, func() {
		c.errMsg = ""
		c.searchSeq++
		seq = c.searchSeq
	})
	if !ok {
		s := c.snapshotLocked()
		c.mu.Unlock()
		return s, false
	}
	c.mu.Unlock()

	start := time.Now()
	genCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.searchTimeout)
	job, err := c.gen.GenerateJob(genCtx)
	cancel()
	if err == nil {
		if job.ID == "" {
			job.ID = entity.NewJobID(time.Now(), job.Title)
		}
		err = job.Validate()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != entity.StatusSearching || c.searchSeq != seq {
		log.Printf("[workflow] search_seq=%d stale result dropped status=%s", seq, c.status)
		return c.snapshotLocked(), false
	}

	if err != nil {
		log.Printf("[workflow] search_seq=%d status=error duration_ms=%d error=%v",
			seq, time.Since(start).Milliseconds(), err,
		)
		c.applyLocked(TriggerSearchFailed, func() { c.errMsg = FailedSearchMessage })
		return c.snapshotLocked(), true
	}

	log.Printf("[workflow] search_seq=%d status=offered job_id=%s duration_ms=%d",
		seq, job.ID, time.Since(start).Milliseconds(),
	)
	c.applyLocked(TriggerSearchSucceeded, func() { c.job = &job })
	return c.snapshotLocked(), true
}

// AcceptCurrentJob records the offered job in history and starts the shift.
// The write is bounded by the persist timeout. Persistence failures are
// logged and ignored; the acceptance still stands.
func (c *Controller) AcceptCurrentJob(ctx context.Context) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.job == nil {
		return c.snapshotLocked(), false
	}
	job := *c.job

	ok := c.applyLocked(TriggerAccept, func() {
		persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.persistTimeout)
		err := c.history.RecordAcceptance(persistCtx, job)
		cancel()
		if err != nil {
			log.Printf("[workflow] job_id=%s history write failed, keeping in-memory history: %v", job.ID, err)
		}
		c.errMsg = ""
		c.shift.Start(c.completeShift)
	})
	return c.snapshotLocked(), ok
}

func (c *Controller) DeclineCurrentJob() (State, bool) {
	return c.reset(TriggerDecline)
}

// StartNewSearch returns a completed worker to Idle.
func (c *Controller) StartNewSearch() (State, bool) {
	return c.reset(TriggerFindAnother)
}

// Close stops a pending shift timer.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shift.Cancel()
}

func (c *Controller) reset(trigger Trigger) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ok := c.applyLocked(trigger, func() {
		c.shift.Cancel()
		c.job = nil
	})
	return c.snapshotLocked(), ok
}

func (c *Controller) completeShift(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.shift.Current(seq) {
		log.Printf("[workflow] shift_seq=%d stale timer ignored status=%s", seq, c.status)
		return
	}
	c.shift.Finish()
	c.applyLocked(TriggerShiftElapsed, nil)
}

// applyLocked fires trigger if the table allows it, running effect before the
// status changes. It reports whether the transition happened.
func (c *Controller) applyLocked(trigger Trigger, effect func()) bool {
	from := c.status
	to, ok := Next(from, trigger)
	if !ok {
		log.Printf("[workflow] trigger=%s ignored status=%s", trigger, from)
		return false
	}

	if effect != nil {
		effect()
	}
	c.status = to
	if !to.HoldsJob() {
		c.job = nil
	}

	jobID := ""
	if c.job != nil {
		jobID = c.job.ID
	}
	log.Printf("[workflow] trigger=%s from=%s to=%s job_id=%s", trigger, from, to, jobID)

	change := Change{From: from, To: to, Trigger: trigger, State: c.snapshotLocked()}
	for _, o := range c.observers {
		o(change)
	}
	return true
}

func (c *Controller) snapshotLocked() State {
	s := State{Status: c.status, Error: c.errMsg}
	if c.job != nil {
		j := *c.job
		s.Job = &j
		if c.status == entity.StatusCompleted {
			e := j.Earnings()
			s.Earnings = &e
		}
	}
	return s
}

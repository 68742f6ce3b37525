package worker

import (
	"log"
	"time"
)

// DefaultShift is how long a simulated gig takes before it is marked completed.
const DefaultShift = 5 * time.Second

// Timer is a pending shift completion. Stop reports whether it prevented the callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs a callback once after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

// NewScheduler returns a Scheduler backed by time.AfterFunc.
func NewScheduler() Scheduler {
	return realScheduler{}
}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Shift tracks the single outstanding completion timer of a worker session.
// It is not safe for concurrent use; the owner serializes calls.
type Shift struct {
	sched    Scheduler
	duration time.Duration

	seq   uint64
	timer Timer
}

func NewShift(sched Scheduler, duration time.Duration) *Shift {
	if sched == nil {
		sched = NewScheduler()
	}
	if duration <= 0 {
		duration = DefaultShift
	}
	return &Shift{sched: sched, duration: duration}
}

func (s *Shift) Duration() time.Duration { return s.duration }

// Start cancels any pending timer and schedules done with a fresh sequence
// number. done receives that number so the owner can discard stale firings.
func (s *Shift) Start(done func(seq uint64)) uint64 {
	s.Cancel()
	s.seq++
	seq := s.seq
	start := time.Now()
	s.timer = s.sched.AfterFunc(s.duration, func() {
		log.Printf("[worker] shift_seq=%d elapsed duration_ms=%d", seq, time.Since(start).Milliseconds())
		done(seq)
	})
	return seq
}

// Current reports whether seq belongs to the latest started shift.
func (s *Shift) Current(seq uint64) bool {
	return s.timer != nil && seq == s.seq
}

// Finish forgets the timer after it fired.
func (s *Shift) Finish() {
	s.timer = nil
}

// Cancel stops the pending timer, if any.
func (s *Shift) Cancel() bool {
	if s.timer == nil {
		return false
	}
	stopped := s.timer.Stop()
	s.timer = nil
	if stopped {
		log.Printf("[worker] shift_seq=%d cancelled", s.seq)
	}
	return stopped
}

package tracker

import (
	"sync"
	"time"
)

// Scheduler is the debounce timing primitive. Schedule arms the callback
// after the delay, replacing any previously armed callback; Cancel disarms.
// The Tracker uses exactly one Scheduler, so there is never more than one
// pending flush.
type Scheduler interface {
	Schedule(d time.Duration, fn func())
	Cancel()
}

// TimerScheduler is the production Scheduler backed by time.AfterFunc.
type TimerScheduler struct {
	mu    sync.Mutex
	timer *time.Timer
}

// NewTimerScheduler returns a real-time scheduler.
func NewTimerScheduler() *TimerScheduler { return &TimerScheduler{} }

// Schedule arms fn after d, replacing a pending callback.
func (s *TimerScheduler) Schedule(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(d, fn)
}

// Cancel disarms the pending callback, if any.
func (s *TimerScheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// ManualScheduler is a deterministic Scheduler for tests: time never
// advances on its own, Fire runs the pending callback.
type ManualScheduler struct {
	mu      sync.Mutex
	pending func()
	// Scheduled counts Schedule calls, exposing timer-reset behaviour.
	Scheduled int
}

// NewManualScheduler returns a virtual-time scheduler.
func NewManualScheduler() *ManualScheduler { return &ManualScheduler{} }

// Schedule records fn as the pending callback.
func (s *ManualScheduler) Schedule(_ time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = fn
	s.Scheduled++
}

// Cancel drops the pending callback.
func (s *ManualScheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// Fire runs the pending callback once, as if the quiet window elapsed.
// Returns false if nothing was pending.
func (s *ManualScheduler) Fire() bool {
	s.mu.Lock()
	fn := s.pending
	s.pending = nil
	s.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

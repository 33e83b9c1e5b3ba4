package scheduler

import (
	"log/slog"
	"sync"
)

// Callback is a unit of deferred work identified by a stable ID.
// Component instances implement Callback so the pending set can
// deduplicate by component identity.
type Callback interface {
	// ID returns a unique identifier for this callback.
	// Used for deduplication in the pending set.
	ID() uint64

	// Invoke performs the deferred work.
	Invoke()
}

// TickFunc requests a flush on the host framework's next scheduling
// cycle. The scheduler guarantees at most one outstanding request at a
// time; flush must be called exactly once per request.
type TickFunc func(flush func())

// SyncTick flushes immediately on the calling goroutine. Useful for
// synchronous hosts; note that with SyncTick a callback that reschedules
// itself flushes again before Add returns, so cyclic callbacks will not
// terminate. Tests should prefer ManualTick.
func SyncTick(flush func()) {
	flush()
}

// Scheduler batches pending update callbacks and flushes them on the
// host's tick.
type Scheduler struct {
	mu sync.Mutex

	// tick requests a flush from the host.
	tick TickFunc

	// pending are callbacks awaiting the next flush, in insertion order.
	pending []Callback

	// ids tracks pending membership for idempotent Add.
	ids map[uint64]struct{}

	// tickRequested is true while a flush request is outstanding.
	tickRequested bool

	logger *slog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets a structured logger for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// New creates a scheduler that flushes via tick. A nil tick means the
// owner drives Flush directly.
func New(tick TickFunc, opts ...Option) *Scheduler {
	s := &Scheduler{
		tick: tick,
		ids:  make(map[uint64]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add registers cb to run on the next flush. Adding an already-pending
// callback is a no-op, so N mutations between flushes schedule one run.
func (s *Scheduler) Add(cb Callback) {
	if cb == nil {
		return
	}

	s.mu.Lock()
	if _, ok := s.ids[cb.ID()]; ok {
		s.mu.Unlock()
		return
	}
	s.ids[cb.ID()] = struct{}{}
	s.pending = append(s.pending, cb)

	requestTick := !s.tickRequested && s.tick != nil
	if requestTick {
		s.tickRequested = true
	}
	tick := s.tick
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Debug("scheduled update", "callback", cb.ID())
	}

	// Request outside the lock: SyncTick re-enters Flush immediately.
	if requestTick {
		tick(s.Flush)
	}
}

// Remove cancels a pending callback. Removing a callback that is not
// pending is a no-op.
func (s *Scheduler) Remove(cb Callback) {
	if cb == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[cb.ID()]; !ok {
		return
	}
	delete(s.ids, cb.ID())

	for i, pending := range s.pending {
		if pending.ID() == cb.ID() {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}

// Flush runs all currently pending callbacks in the order they were
// added. The pending set is cleared before any callback runs, so a
// callback re-adding itself (or any mutation during the flush) schedules
// a new cycle instead of growing the current one.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.ids = make(map[uint64]struct{})
	s.tickRequested = false
	s.mu.Unlock()

	if len(pending) == 0 {
		return
	}

	if s.logger != nil {
		s.logger.Debug("flush", "callbacks", len(pending))
	}

	for _, cb := range pending {
		cb.Invoke()
	}
}

// Len returns the number of callbacks currently pending.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// ManualTick is a TickFunc source for tests and hosts that drive their
// own frame loop. Flush requests accumulate until Step runs them.
type ManualTick struct {
	mu      sync.Mutex
	flushes []func()
}

// Tick records a flush request.
func (m *ManualTick) Tick(flush func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushes = append(m.flushes, flush)
}

// Step runs the oldest pending flush request. Returns false if none was
// pending.
func (m *ManualTick) Step() bool {
	m.mu.Lock()
	if len(m.flushes) == 0 {
		m.mu.Unlock()
		return false
	}
	flush := m.flushes[0]
	m.flushes = m.flushes[1:]
	m.mu.Unlock()

	flush()
	return true
}

// Pending returns the number of outstanding flush requests.
func (m *ManualTick) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.flushes)
}

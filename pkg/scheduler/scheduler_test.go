package scheduler

import (
	"sync/atomic"
	"testing"
)

var callbackIDs atomic.Uint64

// testCallback records invocations and can run extra work per invoke.
type testCallback struct {
	id   uint64
	runs int
	fn   func()
}

func newTestCallback() *testCallback {
	return &testCallback{id: callbackIDs.Add(1)}
}

func (c *testCallback) ID() uint64 { return c.id }

func (c *testCallback) Invoke() {
	c.runs++
	if c.fn != nil {
		c.fn()
	}
}

func TestSchedulerAddIdempotent(t *testing.T) {
	tick := &ManualTick{}
	s := New(tick.Tick)
	cb := newTestCallback()

	s.Add(cb)
	s.Add(cb)
	s.Add(cb)

	if s.Len() != 1 {
		t.Errorf("expected 1 pending callback after duplicate adds, got %d", s.Len())
	}

	tick.Step()
	if cb.runs != 1 {
		t.Errorf("expected 1 run per flush, got %d", cb.runs)
	}
}

func TestSchedulerFlushOrder(t *testing.T) {
	tick := &ManualTick{}
	s := New(tick.Tick)

	var order []uint64
	cbs := make([]*testCallback, 3)
	for i := range cbs {
		cb := newTestCallback()
		cb.fn = func() { order = append(order, cb.id) }
		cbs[i] = cb
		s.Add(cb)
	}

	tick.Step()

	if len(order) != 3 {
		t.Fatalf("expected 3 invocations, got %d", len(order))
	}
	for i, cb := range cbs {
		if order[i] != cb.id {
			t.Errorf("position %d: expected callback %d, got %d", i, cb.id, order[i])
		}
	}
}

func TestSchedulerRemove(t *testing.T) {
	tick := &ManualTick{}
	s := New(tick.Tick)

	kept := newTestCallback()
	removed := newTestCallback()
	s.Add(kept)
	s.Add(removed)
	s.Remove(removed)

	if s.Len() != 1 {
		t.Errorf("expected 1 pending after remove, got %d", s.Len())
	}

	tick.Step()
	if removed.runs != 0 {
		t.Errorf("removed callback ran %d times, expected 0", removed.runs)
	}
	if kept.runs != 1 {
		t.Errorf("kept callback ran %d times, expected 1", kept.runs)
	}
}

func TestSchedulerRemoveNonPending(t *testing.T) {
	s := New(nil)

	// Removing a callback that was never added must be a no-op.
	s.Remove(newTestCallback())
	if s.Len() != 0 {
		t.Errorf("expected empty pending set, got %d", s.Len())
	}
}

func TestSchedulerReAddDuringFlushSchedulesNextCycle(t *testing.T) {
	tick := &ManualTick{}
	s := New(tick.Tick)

	cb := newTestCallback()
	cb.fn = func() {
		if cb.runs == 1 {
			s.Add(cb)
		}
	}
	s.Add(cb)

	tick.Step()
	if cb.runs != 1 {
		t.Fatalf("expected 1 run after first flush, got %d", cb.runs)
	}

	// The re-add must have requested a fresh tick, not extended the
	// completed flush.
	if tick.Pending() != 1 {
		t.Fatalf("expected 1 pending flush request, got %d", tick.Pending())
	}
	tick.Step()
	if cb.runs != 2 {
		t.Errorf("expected 2 runs after second flush, got %d", cb.runs)
	}
}

func TestSchedulerSingleTickRequest(t *testing.T) {
	tick := &ManualTick{}
	s := New(tick.Tick)

	s.Add(newTestCallback())
	s.Add(newTestCallback())
	s.Add(newTestCallback())

	if tick.Pending() != 1 {
		t.Errorf("expected a single flush request for 3 adds, got %d", tick.Pending())
	}
}

func TestSchedulerFlushClearsBeforeRun(t *testing.T) {
	s := New(nil)

	probe := newTestCallback()
	probe.fn = func() {
		if s.Len() != 0 {
			t.Errorf("pending set not cleared before callbacks ran: %d left", s.Len())
		}
	}
	s.Add(probe)
	s.Add(newTestCallback())

	s.Flush()
}

func TestSchedulerEmptyFlush(t *testing.T) {
	s := New(nil)
	// Must not panic or misbehave with nothing pending.
	s.Flush()
}

func TestSyncTick(t *testing.T) {
	s := New(SyncTick)
	cb := newTestCallback()

	s.Add(cb)
	if cb.runs != 1 {
		t.Errorf("SyncTick should flush during Add, got %d runs", cb.runs)
	}
	if s.Len() != 0 {
		t.Errorf("expected drained pending set, got %d", s.Len())
	}
}

func TestManualTickStepEmpty(t *testing.T) {
	tick := &ManualTick{}
	if tick.Step() {
		t.Error("Step with no pending flushes should return false")
	}
}

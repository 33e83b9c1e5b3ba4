package obstest

import (
	"sync"
	"sync/atomic"

	"github.com/reobserve/reobserve/pkg/devtool"
	"github.com/reobserve/reobserve/pkg/track"
)

// Store is a field-level observable store for tests. It implements
// track.Mechanism: functions wrapped with WrapWithTracking record which
// fields they read, and Set notifies the scheduler pair of every
// tracked function subscribed to the written field.
//
// The store follows the single-threaded cooperative model of the
// bridge; the mutex only keeps test helpers honest.
type Store struct {
	mu     sync.Mutex
	fields map[string]any

	// subs maps field name -> tracked function ID -> function.
	subs map[string]map[uint64]*trackedFn

	// current is the tracked function whose Call is executing; reads
	// subscribe it. nil means reads are untracked.
	current *trackedFn
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		fields: make(map[string]any),
		subs:   make(map[string]map[uint64]*trackedFn),
	}
}

// Set writes a field and notifies every subscribed tracked function.
// Writing the identical value still notifies; coalescing is the
// scheduler's job, not the store's.
func (s *Store) Set(field string, value any) {
	s.mu.Lock()
	s.fields[field] = value
	subs := make([]*trackedFn, 0, len(s.subs[field]))
	for _, tf := range s.subs[field] {
		subs = append(subs, tf)
	}
	s.mu.Unlock()

	for _, tf := range subs {
		tf.notify(field)
	}
}

// Get reads a field. When called during a tracked Call, the executing
// function subscribes to the field.
func (s *Store) Get(field string) any {
	s.mu.Lock()
	value := s.fields[field]
	current := s.current
	s.mu.Unlock()

	if current != nil {
		current.addDep(field)
	}
	return value
}

// Peek reads a field without subscribing.
func (s *Store) Peek(field string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields[field]
}

// Ref returns a tracked handle to a field, for components that hold
// store references as struct fields.
func (s *Store) Ref(field string) *Ref {
	return &Ref{store: s, field: field}
}

// Subscribers returns how many tracked functions are subscribed to a
// field. Assertion helper.
func (s *Store) Subscribers(field string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs[field])
}

var trackedFnIDs atomic.Uint64

// trackedFn is the store's track.TrackedFunc implementation.
type trackedFn struct {
	id    uint64
	store *Store
	fn    track.RenderFunc
	opts  track.Options

	// deps are the fields read during the last Call.
	deps map[string]struct{}

	stopped atomic.Bool
}

// WrapWithTracking implements track.Mechanism.
func (s *Store) WrapWithTracking(fn track.RenderFunc, opts track.Options) track.TrackedFunc {
	tf := &trackedFn{
		id:    trackedFnIDs.Add(1),
		store: s,
		fn:    fn,
		opts:  opts,
		deps:  make(map[string]struct{}),
	}
	if !opts.Lazy {
		// Eager wrapping establishes tracking immediately.
		tf.Call()
	}
	return tf
}

// StopTracking implements track.Mechanism.
func (s *Store) StopTracking(tf track.TrackedFunc) {
	inner, ok := tf.(*trackedFn)
	if !ok || inner.stopped.Swap(true) {
		return
	}

	s.mu.Lock()
	for field := range inner.deps {
		delete(s.subs[field], inner.id)
	}
	inner.deps = make(map[string]struct{})
	s.mu.Unlock()

	if inner.opts.Scheduler.Cancel != nil {
		inner.opts.Scheduler.Cancel(inner)
	}
}

// UnwrapToRaw implements track.Mechanism: a *Ref unwraps to a *Raw
// handle over the same field; everything else passes through.
func (s *Store) UnwrapToRaw(v any) any {
	if ref, ok := v.(*Ref); ok {
		return &Raw{store: ref.store, field: ref.field}
	}
	return v
}

// IsTrackedValue implements track.Mechanism.
func (s *Store) IsTrackedValue(v any) bool {
	_, ok := v.(*Ref)
	return ok
}

// Call implements track.TrackedFunc. The dependency set is re-derived
// from scratch: fields read by the previous call but not this one are
// unsubscribed.
func (t *trackedFn) Call() any {
	if t.stopped.Load() {
		return t.fn()
	}

	s := t.store

	s.mu.Lock()
	// Drop the previous dependency set before tracking this call.
	for field := range t.deps {
		delete(s.subs[field], t.id)
	}
	t.deps = make(map[string]struct{})
	prev := s.current
	s.current = t
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.current = prev
		s.mu.Unlock()
	}()

	return t.fn()
}

// ID implements track.TrackedFunc.
func (t *trackedFn) ID() uint64 {
	return t.id
}

// addDep subscribes t to a field read during the current call.
func (t *trackedFn) addDep(field string) {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := t.deps[field]; ok {
		return
	}
	t.deps[field] = struct{}{}
	if s.subs[field] == nil {
		s.subs[field] = make(map[uint64]*trackedFn)
	}
	s.subs[field][t.id] = t
}

// notify delivers a field mutation to the tracked function's consumer.
func (t *trackedFn) notify(field string) {
	if t.stopped.Load() {
		return
	}
	if t.opts.Devtool != nil {
		t.opts.Devtool(devtool.Stamp(devtool.Event{
			Kind:      devtool.KindMutation,
			Component: t.opts.Name,
			Field:     field,
		}))
	}
	if t.opts.Scheduler.Enqueue != nil {
		t.opts.Scheduler.Enqueue(t)
	}
}

// Ref is a tracked handle to a single store field.
type Ref struct {
	store *Store
	field string
}

// Get reads the field, subscribing the current tracked function.
func (r *Ref) Get() any {
	return r.store.Get(r.field)
}

// Set writes the field and notifies subscribers.
func (r *Ref) Set(v any) {
	r.store.Set(r.field, v)
}

// Field returns the field name.
func (r *Ref) Field() string {
	return r.field
}

// Raw is the untracked form of a Ref. Reads do not subscribe and
// writes do not notify, so derive hooks can mutate freely without
// re-entering the scheduler.
type Raw struct {
	store *Store
	field string
}

// Get reads the field without subscribing.
func (r *Raw) Get() any {
	return r.store.Peek(r.field)
}

// Set writes the field without notifying subscribers.
func (r *Raw) Set(v any) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.fields[r.field] = v
}

// Field returns the field name.
func (r *Raw) Field() string {
	return r.field
}

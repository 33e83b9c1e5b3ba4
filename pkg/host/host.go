package host

import (
	"reflect"
	"sync/atomic"
)

// Props carries the named inputs the framework passes to a component.
type Props map[string]any

// Component is the minimal renderable unit. Render returns whatever
// output type the host framework commits (a node tree, a string, ...);
// the bridge treats it as opaque.
type Component interface {
	Render() any
}

// FuncComponent wraps a plain render function as a Component.
type FuncComponent func() any

// Render calls the wrapped function.
func (f FuncComponent) Render() any {
	return f()
}

// UpdateVetoer is implemented by components that want to veto updates.
// The veto runs before any other update decision and wins over the
// reactive path.
type UpdateVetoer interface {
	ShouldUpdate(next Props) bool
}

// Unmounter is implemented by components that need teardown work when
// the framework unmounts them.
type Unmounter interface {
	WillUnmount()
}

// PropsDeriver is implemented by components that derive internal values
// from incoming props before a render. The raw slice holds the untracked
// forms of the component's observable fields, in field declaration
// order, so the hook can mutate them without re-entering the scheduler.
type PropsDeriver interface {
	DeriveFromProps(next Props, raw []any)
}

// Lifecycle is what a mounted instance exposes to the host runtime.
type Lifecycle interface {
	// Render produces the component's output, tracking observable reads.
	Render() any

	// ShouldUpdate decides whether a proposed update proceeds.
	// nextState is non-nil only for reactive-triggered updates.
	ShouldUpdate(nextProps Props, nextState *Marker) bool

	// WillReceiveProps runs before each render, giving the instance a
	// chance to derive internal values from the incoming props.
	WillReceiveProps(next Props)

	// Commit stores the proposed props and state marker as current.
	// The framework calls it after the update decision, whether or not
	// the render was approved. A nil marker keeps the current state.
	Commit(nextProps Props, nextState *Marker)

	// WillUnmount tears the instance down. After it returns, no further
	// work may execute for this instance.
	WillUnmount()
}

// Runtime is what the host framework exposes to a mounted instance.
type Runtime interface {
	// RequestUpdate asks the framework to run an update pass for l with
	// marker as the proposed next state. The framework calls
	// l.ShouldUpdate and, on approval, l.Render, then commits marker.
	RequestUpdate(l Lifecycle, marker *Marker)
}

// Marker is an opaque state-identity object. A scheduler flush assigns a
// fresh Marker as the instance's next state; the update decision treats
// any marker-identity change as a reactive trigger.
type Marker struct {
	seq uint64
}

var markerSeq atomic.Uint64

// NewMarker returns a marker with a process-unique sequence number.
func NewMarker() *Marker {
	return &Marker{seq: markerSeq.Add(1)}
}

// Seq returns the marker's sequence number. Diagnostic use only; the
// decision logic compares markers by pointer identity.
func (m *Marker) Seq() uint64 {
	if m == nil {
		return 0
	}
	return m.seq
}

// ShallowEqual reports whether two prop sets have identical key sets and
// identical values. Comparable values are compared with ==; everything
// else (slices, maps, funcs) falls back to pointer identity, so a
// freshly built slice with equal contents still counts as changed.
func ShallowEqual(a, b Props) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok {
			return false
		}
		if !identical(av, bv) {
			return false
		}
	}
	return true
}

// identical compares two values by identity.
func identical(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}
	// Comparability is a runtime property: a comparable static type can
	// still hold uncomparable content (an any field carrying a func).
	if ra.Comparable() && rb.Comparable() {
		return a == b
	}
	switch ra.Kind() {
	case reflect.Slice:
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len()
	case reflect.Map, reflect.Func:
		return ra.Pointer() == rb.Pointer()
	default:
		return false
	}
}

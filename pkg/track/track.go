package track

import "github.com/reobserve/reobserve/pkg/devtool"

// RenderFunc is a function whose observable reads should be tracked.
// The wrapped form preserves the input/output contract exactly.
type RenderFunc func() any

// TrackedFunc is the mechanism's handle for a wrapped function.
type TrackedFunc interface {
	// Call runs the wrapped function under tracking and returns its
	// result. Every call re-derives the dependency set from scratch.
	Call() any

	// ID returns a unique identifier for this tracked function.
	ID() uint64
}

// SchedulerPair is how the mechanism hands change notifications back to
// its consumer instead of re-running the function itself.
type SchedulerPair struct {
	// Enqueue is called when a tracked dependency of tf mutates.
	// The consumer decides when (and whether) to call tf again.
	Enqueue func(tf TrackedFunc)

	// Cancel withdraws a previous Enqueue for tf. Called by
	// StopTracking; cancelling a function that was never enqueued is a
	// no-op.
	Cancel func(tf TrackedFunc)
}

// Options configures WrapWithTracking.
type Options struct {
	// Scheduler receives change notifications. Required.
	Scheduler SchedulerPair

	// Devtool, if set, receives a diagnostic event per tracked
	// mutation/notification. It must not alter tracked behavior.
	Devtool devtool.Func

	// Name is the consumer's diagnostic label; the mechanism attaches
	// it to the events it emits so the mutation stream is attributable.
	Name string

	// Lazy defers tracking setup until the first Call.
	Lazy bool
}

// Mechanism is the observation library the bridge binds to.
type Mechanism interface {
	// WrapWithTracking returns a tracked version of fn.
	WrapWithTracking(fn RenderFunc, opts Options) TrackedFunc

	// StopTracking removes all subscriptions held by tf and guarantees
	// no further Enqueue calls fire for it.
	StopTracking(tf TrackedFunc)

	// UnwrapToRaw returns the raw, untracked form of a tracked value.
	// Non-tracked values pass through unchanged.
	UnwrapToRaw(v any) any

	// IsTrackedValue reports whether v is a tracked value.
	IsTrackedValue(v any) bool
}

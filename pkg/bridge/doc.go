// Package bridge binds a reactive observation mechanism to a host
// component framework's lifecycle.
//
// Observe wraps a component so that observable reads during its render
// are tracked, and a later mutation of any tracked dependency schedules
// exactly one re-render through the owning scheduler. The host's own
// prop-driven update semantics are preserved: an update proposed with
// unchanged props and no state-marker change is rejected, and a
// component's own veto always runs first.
//
//	sched := scheduler.New(tick.Tick)
//	inst := bridge.Observe(component, runtime, sched, mechanism)
//	// mount inst as the framework lifecycle for the component
//
// The flow for a store mutation is: tracked dependency fires → instance
// enters the scheduler's pending set → flush → RequestUpdate with a
// fresh state marker → ShouldUpdate recognizes the marker and approves →
// wrapped render re-executes, re-deriving its dependency set.
package bridge

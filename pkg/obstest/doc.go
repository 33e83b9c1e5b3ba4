// Package obstest provides test doubles for exercising the bridge
// without a real observation library or UI framework.
//
// Store is a minimal field-level observable store that satisfies
// track.Mechanism: reads during a tracked call are recorded, writes
// notify the scheduler pair, and every call re-derives the dependency
// set. It exists to drive tests and examples, not to be a tracking
// engine.
//
// Harness implements host.Runtime and drives the lifecycle the way a
// framework would: mount renders once, RequestUpdate funnels through
// ShouldUpdate, prop updates run the derive hook, unmount calls
// WillUnmount. It records render counts and decisions for assertions.
//
//	h := obstest.NewHarness()
//	inst := bridge.Observe(comp, h, h.Scheduler, h.Store)
//	m := h.Mount(inst, host.Props{"a": 1})
//	h.Store.Set("x", 2)
//	h.Step() // one flush
//	if m.Renders() != 2 { ... }
package obstest

// Package scheduler batches component update requests and flushes them
// once per host scheduling cycle.
//
// A Scheduler holds a pending set of callbacks deduplicated by ID, so a
// dependency that mutates many times between flushes still produces a
// single update. Flushing is clear-before-run: the pending set is cleared
// before any callback executes, so a callback that re-adds itself lands
// in the next cycle rather than extending the current one.
//
// Schedulers are explicitly owned, never a hidden singleton. A runtime
// constructs one and wires it to its own tick primitive; tests construct
// one per test with a ManualTick.
package scheduler

// Package track declares the contract the bridge expects from a
// reactive observation mechanism.
//
// The mechanism itself — how reads are recorded, how writes find their
// subscribers — is external and deliberately out of scope here. The
// bridge only needs four capabilities: wrap a function so its reads are
// tracked, stop tracking it, unwrap a tracked value to its raw form, and
// recognize tracked values.
//
// Dependency sets are lazy and re-derived: a TrackedFunc establishes no
// subscriptions until its first Call, and every Call rebuilds the
// dependency set from the reads of that execution alone. Fields read by
// a previous execution but not the current one must be untracked.
package track

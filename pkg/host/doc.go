// Package host defines the contract between the bridge and the UI
// framework that owns component lifecycles.
//
// The bridge never talks to a concrete framework. Instead, a mounted
// component exposes a Lifecycle, and the framework exposes a Runtime.
// Everything else — reconciliation, diffing, committing output — stays on
// the framework's side of the line.
//
// # Optional capabilities
//
// User components opt into lifecycle hooks by implementing the narrow
// capability interfaces (UpdateVetoer, Unmounter, PropsDeriver). Hooks are
// checked at call time; a component that implements none of them is valid.
//
// # State markers
//
// A reactive re-render is requested by assigning a fresh *Marker as the
// instance's state. The decision logic recognizes the reactive path by
// marker identity, not by comparing contents: two distinct markers are
// never "equal".
package host

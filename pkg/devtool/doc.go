// Package devtool defines the structured diagnostic events emitted by
// the bridge and a set of composable sinks for consuming them.
//
// The bridge accepts a single devtool callback (a Func). Sinks in this
// package adapt that callback to common backends:
//
//   - SlogSink forwards events to a *slog.Logger
//   - Metrics counts events in Prometheus collectors
//   - Tracing records events on OpenTelemetry spans
//   - Hub broadcasts events as JSON over WebSocket for live tooling
//
// Sinks are observation-only: they must never feed back into the
// scheduler or alter update decisions, and the bridge guarantees core
// behavior is identical whether or not a devtool callback is configured.
package devtool

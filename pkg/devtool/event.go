package devtool

import (
	"sync/atomic"
	"time"

	"github.com/reobserve/reobserve/pkg/host"
)

// Kind classifies a diagnostic event.
type Kind string

const (
	// KindMutation fires when a tracked dependency notifies an instance.
	KindMutation Kind = "mutation"

	// KindSchedule fires when an instance enters the pending set.
	KindSchedule Kind = "schedule"

	// KindFlush fires when a scheduler flush delivers an update request.
	KindFlush Kind = "flush"

	// KindRender fires when an update is approved and a render runs.
	KindRender Kind = "render"

	// KindVeto fires when an update is rejected.
	KindVeto Kind = "veto"

	// KindUnmount fires when an instance tears down.
	KindUnmount Kind = "unmount"
)

// RenderType distinguishes what triggered an update decision.
type RenderType string

const (
	// RenderReactive marks updates triggered by observed-state mutation,
	// signaled by a state-marker identity change.
	RenderReactive RenderType = "reactive"

	// RenderNormal marks updates triggered by prop changes.
	RenderNormal RenderType = "normal"
)

// Event is one structured diagnostic record.
type Event struct {
	// Kind is the event class.
	Kind Kind `json:"kind"`

	// Render is set on render/veto events to indicate the trigger.
	Render RenderType `json:"render,omitempty"`

	// Component names the component the event belongs to.
	Component string `json:"component,omitempty"`

	// Field names the observable field for mutation events.
	Field string `json:"field,omitempty"`

	// OldProps and NewProps are attached to prop-driven decisions.
	OldProps host.Props `json:"old_props,omitempty"`
	NewProps host.Props `json:"new_props,omitempty"`

	// Marker is the state-marker sequence for reactive decisions.
	Marker uint64 `json:"marker,omitempty"`

	// Seq is a process-wide monotonic event sequence number.
	Seq uint64 `json:"seq"`

	// Time is when the event was emitted.
	Time time.Time `json:"time"`
}

// Func consumes diagnostic events. A nil Func is valid and means
// diagnostics are disabled.
type Func func(Event)

var eventSeq atomic.Uint64

// Stamp fills the bookkeeping fields of an event and returns it.
// Emitters call this once per event before fanning out to sinks.
func Stamp(e Event) Event {
	e.Seq = eventSeq.Add(1)
	e.Time = time.Now()
	return e
}

// Nop is a Func that discards events.
func Nop(Event) {}

// Multi fans one event out to several sinks in order. Nil entries are
// skipped.
func Multi(fns ...Func) Func {
	return func(e Event) {
		for _, fn := range fns {
			if fn != nil {
				fn(e)
			}
		}
	}
}

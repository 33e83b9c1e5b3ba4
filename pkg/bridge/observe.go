package bridge

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync/atomic"

	"github.com/reobserve/reobserve/pkg/devtool"
	"github.com/reobserve/reobserve/pkg/host"
	"github.com/reobserve/reobserve/pkg/scheduler"
	"github.com/reobserve/reobserve/pkg/track"
)

// instanceIDCounter is used to generate unique instance IDs.
var instanceIDCounter atomic.Uint64

// Instance is a mounted, observed component. It implements
// host.Lifecycle toward the framework and scheduler.Callback toward the
// update scheduler.
type Instance struct {
	id        uint64
	component host.Component
	rt        host.Runtime
	sched     *scheduler.Scheduler
	mech      track.Mechanism

	name    string
	devtool devtool.Func
	logger  *slog.Logger

	// tracked is the wrapped render function. Wired lazily on first
	// Render so no tracking work happens before the first execution.
	tracked track.TrackedFunc

	// props and state are the committed values the next update decision
	// compares against.
	props host.Props
	state *host.Marker

	// dirty coalesces mutations between flushes into one scheduled update.
	dirty atomic.Bool

	// unmounted gates all work after teardown.
	unmounted atomic.Bool
}

var (
	_ host.Lifecycle     = (*Instance)(nil)
	_ scheduler.Callback = (*Instance)(nil)
)

// Option configures an Instance.
type Option func(*Instance)

// WithDevtool sets the diagnostic callback. Events describe renders,
// update decisions, scheduling and teardown; the callback never alters
// bridge behavior.
func WithDevtool(fn devtool.Func) Option {
	return func(i *Instance) {
		i.devtool = fn
	}
}

// WithLogger sets a structured logger for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Instance) {
		i.logger = logger
	}
}

// WithName overrides the component name used in diagnostics.
// Defaults to the component's type name.
func WithName(name string) Option {
	return func(i *Instance) {
		i.name = name
	}
}

// Observe wraps component into an observed instance bound to the given
// runtime, scheduler and observation mechanism.
func Observe(component host.Component, rt host.Runtime, sched *scheduler.Scheduler, mech track.Mechanism, opts ...Option) *Instance {
	i := &Instance{
		id:        instanceIDCounter.Add(1),
		component: component,
		rt:        rt,
		sched:     sched,
		mech:      mech,
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.name == "" {
		i.name = componentName(component)
	}
	return i
}

// ID implements scheduler.Callback.
func (i *Instance) ID() uint64 {
	return i.id
}

// Name returns the diagnostic name of the instance.
func (i *Instance) Name() string {
	return i.name
}

// Props returns the committed props.
func (i *Instance) Props() host.Props {
	return i.props
}

// Render executes the component's render function under tracking.
// The first call wires the tracked wrapper; every call re-derives the
// dependency set from the reads of that execution.
func (i *Instance) Render() any {
	if i.unmounted.Load() {
		return nil
	}

	if i.tracked == nil {
		i.tracked = i.mech.WrapWithTracking(i.component.Render, track.Options{
			Scheduler: track.SchedulerPair{
				Enqueue: i.enqueue,
				Cancel:  i.cancel,
			},
			Devtool: i.devtool,
			Name:    i.name,
			Lazy:    true,
		})
	}

	return i.tracked.Call()
}

// enqueue is the stable per-instance change callback handed to the
// observation mechanism. Mutations between flushes coalesce: only the
// first transition to dirty enters the scheduler's pending set.
func (i *Instance) enqueue(track.TrackedFunc) {
	if i.unmounted.Load() {
		return
	}

	if i.dirty.CompareAndSwap(false, true) {
		i.sched.Add(i)
		i.emit(devtool.Event{Kind: devtool.KindSchedule, Component: i.name})
		if i.logger != nil {
			i.logger.Debug("scheduled reactive update", "component", i.name)
		}
	}
}

// cancel withdraws any pending update for the instance.
func (i *Instance) cancel(track.TrackedFunc) {
	i.sched.Remove(i)
	i.dirty.Store(false)
}

// Invoke implements scheduler.Callback: a flush delivers the pending
// update by proposing a fresh state marker to the host. The marker's
// identity is what the update decision later recognizes as the reactive
// trigger.
func (i *Instance) Invoke() {
	if i.unmounted.Load() {
		return
	}

	i.dirty.Store(false)

	marker := host.NewMarker()
	i.emit(devtool.Event{Kind: devtool.KindFlush, Component: i.name, Marker: marker.Seq()})
	i.rt.RequestUpdate(i, marker)
}

// ShouldUpdate decides whether a proposed update proceeds:
//
//  1. The component's own veto, if implemented, wins over everything.
//  2. A state-marker identity change accepts unconditionally; the cause
//     is external-store mutation, so prop comparison is bypassed.
//  3. Otherwise props are compared shallowly by key set and value
//     identity.
func (i *Instance) ShouldUpdate(nextProps host.Props, nextState *host.Marker) bool {
	trigger := devtool.RenderNormal
	if nextState != nil && nextState != i.state {
		trigger = devtool.RenderReactive
	}

	if vetoer, ok := i.component.(host.UpdateVetoer); ok {
		if !vetoer.ShouldUpdate(nextProps) {
			i.emit(devtool.Event{
				Kind:      devtool.KindVeto,
				Render:    trigger,
				Component: i.name,
				OldProps:  i.props,
				NewProps:  nextProps,
				Marker:    nextState.Seq(),
			})
			return false
		}
	}

	if trigger == devtool.RenderReactive {
		i.emit(devtool.Event{
			Kind:      devtool.KindRender,
			Render:    devtool.RenderReactive,
			Component: i.name,
			Marker:    nextState.Seq(),
		})
		return true
	}

	if host.ShallowEqual(i.props, nextProps) {
		i.emit(devtool.Event{
			Kind:      devtool.KindVeto,
			Render:    devtool.RenderNormal,
			Component: i.name,
			OldProps:  i.props,
			NewProps:  nextProps,
		})
		return false
	}

	i.emit(devtool.Event{
		Kind:      devtool.KindRender,
		Render:    devtool.RenderNormal,
		Component: i.name,
		OldProps:  i.props,
		NewProps:  nextProps,
	})
	return true
}

// WillReceiveProps runs the component's derive hook, if implemented,
// with the raw forms of its tracked fields. Raw values bypass tracking,
// so the hook can mutate observable-derived state without scheduling a
// re-entrant update.
func (i *Instance) WillReceiveProps(next host.Props) {
	deriver, ok := i.component.(host.PropsDeriver)
	if !ok {
		return
	}
	deriver.DeriveFromProps(next, i.rawFields())
}

// Commit stores the proposed props and marker as current.
func (i *Instance) Commit(nextProps host.Props, nextState *host.Marker) {
	if nextProps != nil {
		i.props = nextProps
	}
	if nextState != nil {
		i.state = nextState
	}
}

// WillUnmount tears the instance down: its pending update is cancelled
// synchronously, all tracking is removed, and any later mutation of a
// previously-tracked dependency is ignored. The component's own
// Unmounter hook, if implemented, runs last.
func (i *Instance) WillUnmount() {
	if i.unmounted.Swap(true) {
		return
	}

	i.sched.Remove(i)
	i.dirty.Store(false)
	if i.tracked != nil {
		i.mech.StopTracking(i.tracked)
		i.tracked = nil
	}

	i.emit(devtool.Event{Kind: devtool.KindUnmount, Component: i.name})
	if i.logger != nil {
		i.logger.Debug("unmounted", "component", i.name)
	}

	if unmounter, ok := i.component.(host.Unmounter); ok {
		unmounter.WillUnmount()
	}
}

// rawFields collects the raw forms of the component's tracked exported
// struct fields, in declaration order.
func (i *Instance) rawFields() []any {
	v := reflect.ValueOf(i.component)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	var raw []any
	for f := 0; f < v.NumField(); f++ {
		field := v.Field(f)
		if !field.CanInterface() {
			continue
		}
		val := field.Interface()
		if i.mech.IsTrackedValue(val) {
			raw = append(raw, i.mech.UnwrapToRaw(val))
		}
	}
	return raw
}

// emit stamps and delivers a diagnostic event.
func (i *Instance) emit(e devtool.Event) {
	if i.devtool == nil {
		return
	}
	i.devtool(devtool.Stamp(e))
}

// componentName derives a diagnostic name from the component type.
func componentName(c host.Component) string {
	if c == nil {
		return "<nil>"
	}
	t := reflect.TypeOf(c)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return fmt.Sprintf("%T", c)
}

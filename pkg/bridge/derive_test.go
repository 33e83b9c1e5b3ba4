package bridge

import (
	"testing"

	"github.com/reobserve/reobserve/pkg/host"
	"github.com/reobserve/reobserve/pkg/obstest"
)

// derivingReader mirrors a prop into an observable field before each
// render, through the raw (untracked) handle.
type derivingReader struct {
	Value *obstest.Ref

	rawSeen int
}

func (c *derivingReader) Render() any {
	return c.Value.Get()
}

func (c *derivingReader) DeriveFromProps(next host.Props, raw []any) {
	c.rawSeen = len(raw)
	v, ok := next["value"]
	if !ok {
		return
	}
	raw[0].(*obstest.Raw).Set(v)
}

// unmountingReader records its own teardown hook.
type unmountingReader struct {
	fieldReader
	unmounted int
}

func (c *unmountingReader) WillUnmount() {
	c.unmounted++
}

func TestDeriveFromPropsGetsRawHandles(t *testing.T) {
	h := obstest.NewHarness()

	comp := &derivingReader{Value: h.Store.Ref("mirror")}
	inst := Observe(comp, h, h.Scheduler, h.Store)
	m := h.Mount(inst, host.Props{"value": 1})

	if comp.rawSeen != 1 {
		t.Fatalf("expected 1 raw handle for 1 tracked field, got %d", comp.rawSeen)
	}
	if m.LastOutput() != 1 {
		t.Errorf("derive hook should run before the first render, got output %v", m.LastOutput())
	}

	m.SetProps(host.Props{"value": 2})

	if m.Renders() != 2 {
		t.Fatalf("changed props should re-render, got %d renders", m.Renders())
	}
	if m.LastOutput() != 2 {
		t.Errorf("render should observe the derived value, got %v", m.LastOutput())
	}

	// The raw write must not have scheduled a reactive update: the
	// render the hook ran in is the only one.
	if h.Tick.Pending() != 0 {
		t.Errorf("derive hook scheduled %d re-entrant flushes", h.Tick.Pending())
	}
	if h.Scheduler.Len() != 0 {
		t.Errorf("derive hook left %d pending callbacks", h.Scheduler.Len())
	}
}

func TestDeriveRawWriteStillObservable(t *testing.T) {
	h := obstest.NewHarness()

	comp := &derivingReader{Value: h.Store.Ref("mirror")}
	inst := Observe(comp, h, h.Scheduler, h.Store)

	// No "value" prop, so the derive hook leaves the field alone.
	m := h.Mount(inst, host.Props{})

	// A tracked write to the same field still triggers reactively.
	comp.Value.Set("external")
	h.StepAll()

	if m.Renders() != 2 {
		t.Errorf("tracked write should re-render, got %d renders", m.Renders())
	}
	if m.LastOutput() != "external" {
		t.Errorf("expected output from tracked write, got %v", m.LastOutput())
	}
}

func TestUnmountChainsComponentHook(t *testing.T) {
	h := obstest.NewHarness()
	h.Store.Set("x", 1)

	comp := &unmountingReader{fieldReader: fieldReader{store: h.Store, field: "x"}}
	inst := Observe(comp, h, h.Scheduler, h.Store)
	m := h.Mount(inst, nil)

	m.Unmount()
	if comp.unmounted != 1 {
		t.Errorf("expected component unmount hook to run once, got %d", comp.unmounted)
	}

	// Teardown is idempotent.
	inst.WillUnmount()
	if comp.unmounted != 1 {
		t.Errorf("second WillUnmount must be a no-op, hook ran %d times", comp.unmounted)
	}
}

func TestRenderAfterUnmountIsInert(t *testing.T) {
	h := obstest.NewHarness()
	h.Store.Set("x", 1)

	comp := &fieldReader{store: h.Store, field: "x"}
	inst := Observe(comp, h, h.Scheduler, h.Store)
	m := h.Mount(inst, nil)
	m.Unmount()

	if out := inst.Render(); out != nil {
		t.Errorf("render after unmount should be inert, got %v", out)
	}
	if h.Store.Subscribers("x") != 0 {
		t.Errorf("render after unmount re-established tracking: %d subscribers", h.Store.Subscribers("x"))
	}
}

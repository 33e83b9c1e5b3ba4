package obstest

import (
	"sync"

	"github.com/reobserve/reobserve/pkg/host"
	"github.com/reobserve/reobserve/pkg/scheduler"
)

// Harness is a minimal host runtime for tests. It owns a Store, a
// Scheduler driven by a ManualTick, and the mounted instances, and it
// drives lifecycles the way a framework would.
type Harness struct {
	Store     *Store
	Tick      *scheduler.ManualTick
	Scheduler *scheduler.Scheduler

	mu      sync.Mutex
	mounted map[host.Lifecycle]*Mounted
}

var _ host.Runtime = (*Harness)(nil)

// NewHarness creates a harness with a fresh store and scheduler.
func NewHarness() *Harness {
	tick := &scheduler.ManualTick{}
	return &Harness{
		Store:     NewStore(),
		Tick:      tick,
		Scheduler: scheduler.New(tick.Tick),
		mounted:   make(map[host.Lifecycle]*Mounted),
	}
}

// Mounted tracks one mounted lifecycle and the observations a test
// asserts on.
type Mounted struct {
	h *Harness
	l host.Lifecycle

	mu         sync.Mutex
	props      host.Props
	renders    int
	decisions  []bool
	lastOutput any
}

// Mount commits the initial props and runs the first render.
func (h *Harness) Mount(l host.Lifecycle, initial host.Props) *Mounted {
	if initial == nil {
		initial = host.Props{}
	}

	m := &Mounted{h: h, l: l, props: initial}

	h.mu.Lock()
	h.mounted[l] = m
	h.mu.Unlock()

	l.Commit(initial, nil)
	l.WillReceiveProps(initial)
	m.recordRender(l.Render())
	return m
}

// RequestUpdate implements host.Runtime: the no-op state assignment
// that funnels a reactive update through the decision logic.
func (h *Harness) RequestUpdate(l host.Lifecycle, marker *host.Marker) {
	h.mu.Lock()
	m := h.mounted[l]
	h.mu.Unlock()

	if m == nil {
		// Unmounted instances get no update pass.
		return
	}

	props := m.currentProps()
	accepted := l.ShouldUpdate(props, marker)
	m.recordDecision(accepted)
	if accepted {
		l.WillReceiveProps(props)
		m.recordRender(l.Render())
	}
	l.Commit(props, marker)
}

// Step runs one scheduler flush cycle. Returns false if no flush was
// pending.
func (h *Harness) Step() bool {
	return h.Tick.Step()
}

// StepAll runs flush cycles until none are pending and returns how many
// ran.
func (h *Harness) StepAll() int {
	n := 0
	for h.Step() {
		n++
	}
	return n
}

// SetProps proposes new props the way a parent re-render would.
func (m *Mounted) SetProps(next host.Props) {
	if next == nil {
		next = host.Props{}
	}

	accepted := m.l.ShouldUpdate(next, nil)
	m.recordDecision(accepted)
	if accepted {
		m.l.WillReceiveProps(next)
		m.recordRender(m.l.Render())
	}
	m.l.Commit(next, nil)

	m.mu.Lock()
	m.props = next
	m.mu.Unlock()
}

// Unmount tears the lifecycle down and forgets the mount.
func (m *Mounted) Unmount() {
	m.h.mu.Lock()
	delete(m.h.mounted, m.l)
	m.h.mu.Unlock()

	m.l.WillUnmount()
}

// Renders returns how many times the component rendered.
func (m *Mounted) Renders() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.renders
}

// Decisions returns the recorded ShouldUpdate outcomes in order.
func (m *Mounted) Decisions() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]bool, len(m.decisions))
	copy(out, m.decisions)
	return out
}

// LastOutput returns the most recent render output.
func (m *Mounted) LastOutput() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastOutput
}

func (m *Mounted) currentProps() host.Props {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.props
}

func (m *Mounted) recordRender(out any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renders++
	m.lastOutput = out
}

func (m *Mounted) recordDecision(accepted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, accepted)
}

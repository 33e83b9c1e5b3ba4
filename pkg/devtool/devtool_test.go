package devtool

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/reobserve/reobserve/pkg/host"
)

func TestStampSequencesEvents(t *testing.T) {
	a := Stamp(Event{Kind: KindRender})
	b := Stamp(Event{Kind: KindRender})

	if a.Seq == 0 || b.Seq == 0 {
		t.Error("stamped events must carry a sequence number")
	}
	if b.Seq <= a.Seq {
		t.Errorf("sequence numbers must be monotonic, got %d then %d", a.Seq, b.Seq)
	}
	if a.Time.IsZero() {
		t.Error("stamped events must carry a timestamp")
	}
}

func TestMultiFansOutInOrder(t *testing.T) {
	var got []string
	sink := Multi(
		func(Event) { got = append(got, "first") },
		nil,
		func(Event) { got = append(got, "second") },
	)

	sink(Event{Kind: KindFlush})

	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("expected ordered fan-out skipping nil sinks, got %v", got)
	}
}

func TestSlogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	sink := SlogSink(logger)
	sink(Stamp(Event{
		Kind:      KindRender,
		Render:    RenderNormal,
		Component: "Counter",
		OldProps:  host.Props{"a": 1},
		NewProps:  host.Props{"a": 2},
	}))

	out := buf.String()
	if !bytes.Contains(buf.Bytes(), []byte("kind=render")) {
		t.Errorf("expected kind attribute in log output, got %q", out)
	}
	if !bytes.Contains(buf.Bytes(), []byte("component=Counter")) {
		t.Errorf("expected component attribute in log output, got %q", out)
	}
	if !bytes.Contains(buf.Bytes(), []byte("old_props=map[a:1]")) {
		t.Errorf("expected old props values in log output, got %q", out)
	}
	if !bytes.Contains(buf.Bytes(), []byte("new_props=map[a:2]")) {
		t.Errorf("expected new props values in log output, got %q", out)
	}
}

func TestMetricsSinkCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := Metrics(WithRegistry(reg), WithNamespace("test"), WithSubsystem("bridge"))

	sink(Stamp(Event{Kind: KindRender, Render: RenderReactive}))
	sink(Stamp(Event{Kind: KindRender, Render: RenderNormal}))
	sink(Stamp(Event{Kind: KindVeto, Render: RenderNormal}))
	sink(Stamp(Event{Kind: KindSchedule}))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	totals := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			totals[mf.GetName()] += m.GetCounter().GetValue()
		}
	}

	if totals["test_bridge_events_total"] != 4 {
		t.Errorf("expected 4 events counted, got %v", totals["test_bridge_events_total"])
	}
	if totals["test_bridge_renders_total"] != 2 {
		t.Errorf("expected 2 renders counted, got %v", totals["test_bridge_renders_total"])
	}
	if totals["test_bridge_vetoes_total"] != 1 {
		t.Errorf("expected 1 veto counted, got %v", totals["test_bridge_vetoes_total"])
	}
}

func TestTracingSinkNoopProvider(t *testing.T) {
	// With no tracer provider configured the global provider is a no-op;
	// the sink must still be safe to call.
	sink := Tracing(WithTracerName("test"))
	sink(Stamp(Event{Kind: KindRender, Render: RenderReactive, Component: "C", Marker: 3}))
	sink(Stamp(Event{Kind: KindSchedule})) // filtered out by default
}

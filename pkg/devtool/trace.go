package devtool

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for the bridge.
const defaultTracerName = "reobserve"

// TraceConfig configures the OpenTelemetry sink.
type TraceConfig struct {
	// TracerName is the name of the tracer (default: "reobserve").
	TracerName string

	// Context supplies the parent context for spans. If nil,
	// context.Background() is used; callers that want events attached
	// to a request span should pass that span's context here.
	Context context.Context

	// Filter decides which events become spans. Return true to record.
	// If nil, render, veto and unmount events are recorded.
	Filter func(e Event) bool

	tracer trace.Tracer
}

// TraceOption configures the OpenTelemetry sink.
type TraceOption func(*TraceConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TraceOption {
	return func(c *TraceConfig) {
		c.TracerName = name
	}
}

// WithTraceContext sets the parent context for spans.
func WithTraceContext(ctx context.Context) TraceOption {
	return func(c *TraceConfig) {
		c.Context = ctx
	}
}

// WithTraceFilter sets a filter function for events.
func WithTraceFilter(filter func(e Event) bool) TraceOption {
	return func(c *TraceConfig) {
		c.Filter = filter
	}
}

func defaultTraceConfig() TraceConfig {
	return TraceConfig{
		TracerName: defaultTracerName,
		Context:    context.Background(),
	}
}

func defaultTraceFilter(e Event) bool {
	switch e.Kind {
	case KindRender, KindVeto, KindUnmount:
		return true
	default:
		return false
	}
}

// Tracing returns a Func that records events as spans via the global
// OpenTelemetry tracer provider. Configure the provider in main()
// before mounting components:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
//
// Each recorded event becomes a zero-duration span named
// "reobserve.<kind>" carrying the component, trigger type and marker
// sequence as attributes.
func Tracing(opts ...TraceOption) Func {
	config := defaultTraceConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Filter == nil {
		config.Filter = defaultTraceFilter
	}

	// Resolve tracer from global provider
	config.tracer = otel.Tracer(config.TracerName)

	return func(e Event) {
		if !config.Filter(e) {
			return
		}

		attrs := []attribute.KeyValue{
			attribute.String("reobserve.kind", string(e.Kind)),
			attribute.String("reobserve.component", e.Component),
			attribute.Int64("reobserve.seq", int64(e.Seq)),
		}
		if e.Render != "" {
			attrs = append(attrs, attribute.String("reobserve.render", string(e.Render)))
		}
		if e.Marker != 0 {
			attrs = append(attrs, attribute.Int64("reobserve.marker", int64(e.Marker)))
		}

		_, span := config.tracer.Start(
			config.Context,
			"reobserve."+string(e.Kind),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(attrs...),
			trace.WithTimestamp(e.Time),
		)
		span.End(trace.WithTimestamp(e.Time))
	}
}

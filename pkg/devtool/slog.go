package devtool

import "log/slog"

// SlogSink returns a Func that logs every event at debug level with
// structured attributes. A nil logger uses slog.Default().
func SlogSink(logger *slog.Logger) Func {
	if logger == nil {
		logger = slog.Default()
	}
	return func(e Event) {
		attrs := []any{
			"kind", string(e.Kind),
			"component", e.Component,
			"seq", e.Seq,
		}
		if e.Render != "" {
			attrs = append(attrs, "render", string(e.Render))
		}
		if e.Marker != 0 {
			attrs = append(attrs, "marker", e.Marker)
		}
		if e.Field != "" {
			attrs = append(attrs, "field", e.Field)
		}
		if e.OldProps != nil || e.NewProps != nil {
			attrs = append(attrs,
				slog.Any("old_props", e.OldProps),
				slog.Any("new_props", e.NewProps))
		}
		logger.Debug("devtool event", attrs...)
	}
}

package hzlog

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

type attrsKey struct{}

// ContextWith returns ctx carrying attrs. Loggers built by Build add them to every
// record logged with this context.
func ContextWith(ctx context.Context, attrs ...slog.Attr) context.Context {
	oldAttrs := getAttrs(ctx)

	newAttrs := make([]slog.Attr, 0, len(oldAttrs)+len(attrs))
	newAttrs = append(newAttrs, oldAttrs...)
	newAttrs = append(newAttrs, attrs...)

	return context.WithValue(ctx, attrsKey{}, newAttrs)
}

func getAttrs(ctx context.Context) []slog.Attr {
	currentAttrs := ctx.Value(attrsKey{})
	if currentAttrs == nil {
		return nil
	}

	// cannot panic
	return currentAttrs.([]slog.Attr)
}

// TraceID returns the id of the trace recorded in ctx.
func TraceID(ctx context.Context) (string, bool) {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return "", false
	}

	return sc.TraceID().String(), true
}

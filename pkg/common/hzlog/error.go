package hzlog

import (
	"log/slog"

	"github.com/HazyCorp/hazyerr/pkg/hazyerr"
)

// Error returns an "error" attribute for err. Internal errors are expanded to their
// module, detail and cause, so they can be filtered on in the log storage.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}

	attrs := []slog.Attr{
		slog.String("message", err.Error()),
		slog.String("category", hazyerr.CategoryOf(err).String()),
	}

	if ie, ok := hazyerr.As(err); ok {
		attrs = append(attrs, slog.String("module", ie.Module()))
		if ie.Detail() != "" {
			attrs = append(attrs, slog.String("detail", ie.Detail()))
		}
		if ie.Cause() != nil {
			attrs = append(attrs, slog.String("cause", ie.Cause().Error()))
		}
	}

	return slog.Attr{Key: "error", Value: slog.GroupValue(attrs...)}
}

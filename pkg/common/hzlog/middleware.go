package hzlog

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// RequestIDMiddleware puts the chi request id into the log context of the request.
// Must be mounted after middleware.RequestID.
func RequestIDMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		rID := middleware.GetReqID(ctx)
		lgCtx := ContextWith(ctx, slog.String("request_id", rID))

		h.ServeHTTP(w, r.WithContext(lgCtx))
	})
}

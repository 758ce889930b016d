package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"hrperf/internal/transport/http/api"
)

// Recoverer turns a handler panic into a 500 envelope.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			slog.Error("handler panic", "requestId", GetRequestID(r.Context()), "panic", rec, "stack", string(debug.Stack()))
			api.Fail(w, http.StatusInternalServerError, "internal", "internal server error", GetRequestID(r.Context()))
		}()
		next.ServeHTTP(w, r)
	})
}

package middleware

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"hrperf/internal/platform/idempotency"
	"hrperf/internal/transport/http/api"
)

type bufferingWriter struct {
	*statusRecorder
	buf bytes.Buffer
}

func (b *bufferingWriter) Write(p []byte) (int, error) {
	b.buf.Write(p)
	return b.statusRecorder.Write(p)
}

// Idempotent replays the stored response when a request repeats an
// Idempotency-Key with the same body. Requests without the header, or from
// anonymous callers, run normally. Only 2xx responses are stored.
func Idempotent(store idempotency.Store, endpoint string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("Idempotency-Key")
			actor, ok := GetActor(r.Context())
			if store == nil || key == "" || !ok {
				next.ServeHTTP(w, r)
				return
			}
			requestID := GetRequestID(r.Context())
			raw, err := io.ReadAll(r.Body)
			if err != nil {
				api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(raw))
			hash := idempotency.RequestHash(append([]byte(r.URL.Path+"\n"), raw...))

			status, stored, found, err := store.Check(r.Context(), actor.ID, endpoint, key, hash)
			if errors.Is(err, idempotency.ErrConflict) {
				api.Fail(w, http.StatusConflict, "idempotency_conflict", err.Error(), requestID)
				return
			}
			if err != nil {
				slog.Warn("idempotency check failed", "endpoint", endpoint, "err", err)
			}
			if found {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Idempotent-Replay", "true")
				w.WriteHeader(status)
				_, _ = w.Write(stored)
				return
			}

			rec := &bufferingWriter{statusRecorder: recorderFor(w)}
			next.ServeHTTP(rec, r)
			if rec.status < 200 || rec.status >= 300 {
				return
			}
			if err := store.Save(r.Context(), actor.ID, endpoint, key, hash, rec.status, rec.buf.Bytes()); err != nil {
				slog.Warn("idempotency save failed", "endpoint", endpoint, "err", err)
			}
		})
	}
}

package middleware

import (
	"net/http"
	"time"
)

type MetricsRecorder interface {
	Record(status int, duration time.Duration)
}

func Metrics(m MetricsRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := recorderFor(w)
			next.ServeHTTP(recorder, r)
			m.Record(recorder.status, time.Since(start))
		})
	}
}

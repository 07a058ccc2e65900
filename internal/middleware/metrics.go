package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mmynk/splitcheck/internal/metrics"
)

// Metrics records request counts and latency by route template.
func Metrics(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			m.ObserveRequest(r.Method, route(r), rec.code(), time.Since(start).Seconds())
		})
	}
}

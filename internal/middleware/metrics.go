package middleware

import (
	"net/http"
	"time"

	"github.com/templatehub/backend/internal/metrics"
)

const unmatchedRoute = "unmatched"

// Instrument records request counts and latencies labelled by the ServeMux
// pattern that handled the request. It must wrap the mux directly because the
// mux stores the matched pattern on the request it receives.
func Instrument(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w}

			defer func() {
				rec := recover()
				status := wrapped.Status()
				if rec != nil {
					status = http.StatusInternalServerError
				}
				route := r.Pattern
				if route == "" {
					route = unmatchedRoute
				}
				m.ObserveRequest(r.Method, route, status, time.Since(start))
				if rec != nil {
					panic(rec)
				}
			}()

			next.ServeHTTP(wrapped, r)
		})
	}
}

// Chain applies middlewares so that the first one listed runs outermost.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

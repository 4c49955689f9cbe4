package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/aimtune/pkg/metrics"
)

// instrument returns middleware that records request count, latency and error
// class for endpoint. The label is fixed per route so path parameters never
// reach the metric cardinality.
func instrument(endpoint string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			code := strconv.Itoa(status)
			elapsed := float64(time.Since(start).Microseconds()) / 1000

			metrics.RecordHTTPRequest(endpoint, r.Method, code)
			metrics.RecordHTTPRequestDuration(endpoint, r.Method, code, elapsed)
			if kind := errorClass(status); kind != "" {
				metrics.RecordErrorByEndpoint(endpoint, r.Method, kind)
				metrics.RecordErrorByComponent("http", kind)
			}
		})
	}
}

// errorClass buckets a status code for the error counters. Successful
// statuses have no class.
func errorClass(status int) string {
	switch {
	case status < http.StatusBadRequest:
		return ""
	case status == http.StatusTooManyRequests:
		return "backpressure"
	case status == http.StatusServiceUnavailable:
		return "unavailable"
	case status == http.StatusNotFound:
		return "not_found"
	case status >= http.StatusInternalServerError:
		return "server_error"
	default:
		return "rejected"
	}
}

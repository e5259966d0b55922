// Copyright (c) 2025 BVK Chaitanya

package httputil

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "cryptowatch_http_request_duration_seconds",
		Help:    "Latency of http requests by method and status code.",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method", "status"},
)

type statusRecorder struct {
	http.ResponseWriter

	status int
	bytes  int
}

func (w *statusRecorder) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// LogLevel returns the log level for a response status code.
func LogLevel(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// LogRequests logs every request with its method, path, status and latency
// and records the latency in the request duration histogram.
func LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		latency := time.Since(start)
		requestDuration.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Observe(latency.Seconds())
		slog.Log(r.Context(), LogLevel(rec.status), "http request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "bytes", rec.bytes, "latency", latency, "remote", r.RemoteAddr)
	})
}

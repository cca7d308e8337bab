// Package metrics provides Prometheus metrics for the Feishu client.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/feishukit/feishukit/internal/logging"
)

var (
	// Remote API metrics
	apiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feishukit_api_requests_total",
			Help: "Total number of Feishu open API requests",
		},
		[]string{"op", "status"},
	)

	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feishukit_api_request_duration_seconds",
			Help:    "Feishu open API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	tokenRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feishukit_token_refreshes_total",
			Help: "Total tenant access token fetches",
		},
		[]string{"result"},
	)

	// Navigation metrics
	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feishukit_dir_cache_lookups_total",
			Help: "Directory cache lookups",
		},
		[]string{"mode", "result"},
	)

	cacheInvalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feishukit_dir_cache_invalidations_total",
			Help: "Directory cache entries invalidated",
		},
		[]string{"mode"},
	)

	ancestorWalkDepth = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feishukit_ancestor_walk_depth",
			Help:    "Number of get_node calls per ancestor-chain reconstruction",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		},
	)

	ancestorWalkOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feishukit_ancestor_walk_total",
			Help: "Ancestor-chain reconstructions by outcome",
		},
		[]string{"outcome"},
	)

	bookmarkOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feishukit_bookmark_operations_total",
			Help: "Bookmark store operations",
		},
		[]string{"op", "status"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logging.Info("metrics endpoint listening", logging.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// RecordAPIRequest records one remote API call. status is the HTTP status,
// or 0 when the request never got a response.
func RecordAPIRequest(op string, status int, duration time.Duration) {
	apiRequestsTotal.WithLabelValues(op, strconv.Itoa(status)).Inc()
	apiRequestDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordTokenRefresh records a tenant token fetch.
func RecordTokenRefresh(success bool) {
	tokenRefreshesTotal.WithLabelValues(result(success)).Inc()
}

// RecordCacheLookup records a directory cache hit or miss.
func RecordCacheLookup(mode string, hit bool) {
	r := "miss"
	if hit {
		r = "hit"
	}
	cacheLookupsTotal.WithLabelValues(mode, r).Inc()
}

// RecordCacheInvalidation records one invalidated cache entry.
func RecordCacheInvalidation(mode string) {
	cacheInvalidationsTotal.WithLabelValues(mode).Inc()
}

// RecordAncestorWalk records a finished ancestor-chain reconstruction.
// outcome is one of "complete", "cycle", "broken".
func RecordAncestorWalk(calls int, outcome string) {
	ancestorWalkDepth.Observe(float64(calls))
	ancestorWalkOutcomes.WithLabelValues(outcome).Inc()
}

// RecordBookmarkOp records a bookmark store load/save.
func RecordBookmarkOp(op string, success bool) {
	bookmarkOpsTotal.WithLabelValues(op, result(success)).Inc()
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// Package metrics exposes Prometheus collectors for the crawler and its HTTP
// driver.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	cacheLookupsTotal          *prometheus.CounterVec
	fetchDurationSeconds       *prometheus.HistogramVec
	fetchErrorsTotal           *prometheus.CounterVec
	fetchBytesTotal            *prometheus.CounterVec
	runsTotal                  *prometheus.CounterVec
	titlesTotal                prometheus.Counter
	rateLimitDelaysSeconds     *prometheus.HistogramVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		cacheLookupsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boxoffice_cache_lookups_total",
				Help: "Total page cache lookups, labeled by result (hit or miss).",
			},
			[]string{"result"},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "boxoffice_fetch_duration_seconds",
				Help:    "Histogram of network fetch latencies, labeled by driver.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"driver"},
		)

		fetchErrorsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boxoffice_fetch_errors_total",
				Help: "Total failed fetches, labeled by driver.",
			},
			[]string{"driver"},
		)

		fetchBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boxoffice_fetch_bytes_total",
				Help: "Total bytes fetched from the network, labeled by site.",
			},
			[]string{"site"},
		)

		runsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boxoffice_runs_total",
				Help: "Total pipeline runs, labeled by request kind and status.",
			},
			[]string{"kind", "status"},
		)

		titlesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "boxoffice_titles_total",
				Help: "Total titles enriched with detail records.",
			},
		)

		rateLimitDelaysSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "boxoffice_rate_limit_delays_seconds",
				Help:    "Histogram of rate limit wait durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"site"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

// ObserveCacheLookup counts one cache hit or miss.
func ObserveCacheLookup(result string) {
	Init()
	cacheLookupsTotal.WithLabelValues(result).Inc()
}

// ObserveFetch records one network fetch. Failed fetches count as errors and
// contribute no bytes.
func ObserveFetch(driver, rawURL string, bytesFetched int, duration time.Duration, err error) {
	Init()
	fetchDurationSeconds.WithLabelValues(driver).Observe(duration.Seconds())
	if err != nil {
		fetchErrorsTotal.WithLabelValues(driver).Inc()
		return
	}
	if bytesFetched > 0 {
		fetchBytesTotal.WithLabelValues(SanitizeSite(rawURL)).Add(float64(bytesFetched))
	}
}

// ObserveRun counts a finished pipeline run.
func ObserveRun(kind, status string) {
	Init()
	runsTotal.WithLabelValues(kind, status).Inc()
}

// ObserveTitle counts one enriched title.
func ObserveTitle() {
	Init()
	titlesTotal.Inc()
}

// ObserveRateLimitDelay records the duration of a rate limit wait.
func ObserveRateLimitDelay(site string, duration time.Duration) {
	Init()
	rateLimitDelaysSeconds.WithLabelValues(site).Observe(duration.Seconds())
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

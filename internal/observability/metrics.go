package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is nil-safe: every method on a nil *Metrics is a no-op so
// services can be constructed without a registry in tests.
type Metrics struct {
	registry *prometheus.Registry

	cacheOps     *prometheus.CounterVec
	feedBuild    *prometheus.HistogramVec
	feedItems    *prometheus.HistogramVec
	suggestions  prometheus.Histogram
	apiRequests  *prometheus.CounterVec
	apiLatency   *prometheus.HistogramVec
	breakerState *prometheus.GaugeVec
	interactions *prometheus.CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Init builds the process-wide metrics once.
func Init() *Metrics {
	initOnce.Do(func() {
		instance = NewMetrics(prometheus.NewRegistry(), true)
	})
	return instance
}

func Current() *Metrics {
	return instance
}

func NewMetrics(reg *prometheus.Registry, withRuntime bool) *Metrics {
	m := &Metrics{
		registry: reg,
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "socialfeed",
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Cache operations by kind and result.",
		}, []string{"kind", "op", "result"}),
		feedBuild: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "socialfeed",
			Subsystem: "feed",
			Name:      "build_duration_seconds",
			Help:      "Time to build a feed page.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"feed", "source"}),
		feedItems: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "socialfeed",
			Subsystem: "feed",
			Name:      "items",
			Help:      "Items returned per feed page.",
			Buckets:   []float64{0, 1, 5, 10, 20, 30, 50},
		}, []string{"feed"}),
		suggestions: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "socialfeed",
			Subsystem: "social",
			Name:      "suggestion_candidates",
			Help:      "Friend-of-friend candidates scored per suggestion request.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "socialfeed",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "socialfeed",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "socialfeed",
			Subsystem: "cache",
			Name:      "circuit_breaker_state",
			Help:      "0 closed, 1 half-open, 2 open.",
		}, []string{"name"}),
		interactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "socialfeed",
			Subsystem: "preference",
			Name:      "interactions_total",
			Help:      "Recorded interactions by action.",
		}, []string{"action"}),
	}
	reg.MustRegister(
		m.cacheOps, m.feedBuild, m.feedItems, m.suggestions,
		m.apiRequests, m.apiLatency, m.breakerState, m.interactions,
	)
	if withRuntime {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// CacheOp records a cache get/set. result is one of hit, miss, error, ok.
func (m *Metrics) CacheOp(kind, op, result string) {
	if m == nil {
		return
	}
	m.cacheOps.WithLabelValues(kind, op, result).Inc()
}

func (m *Metrics) ObserveFeed(feed, source string, started time.Time, items int) {
	if m == nil {
		return
	}
	m.feedBuild.WithLabelValues(feed, source).Observe(time.Since(started).Seconds())
	m.feedItems.WithLabelValues(feed).Observe(float64(items))
}

func (m *Metrics) ObserveSuggestionCandidates(n int) {
	if m == nil {
		return
	}
	m.suggestions.Observe(float64(n))
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) SetBreakerState(name string, state float64) {
	if m == nil {
		return
	}
	m.breakerState.WithLabelValues(name).Set(state)
}

func (m *Metrics) Interaction(action string) {
	if m == nil {
		return
	}
	m.interactions.WithLabelValues(action).Inc()
}

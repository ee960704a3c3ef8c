// Package metrics exposes pipeline counters and histograms to Prometheus.
// All recording methods are safe on a nil *Metrics so components can run
// without instrumentation.
package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "demandscope"

// Batch and run outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeFailed   = "failed"
	OutcomePartial  = "partial"
	OutcomeRejected = "rejected"
)

// Metrics holds the collectors for one process.
type Metrics struct {
	reg *prometheus.Registry

	batches         *prometheus.CounterVec
	keywords        *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
	runs            *prometheus.CounterVec
	runCost         *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
}

// New creates a Metrics backed by its own registry, with Go runtime and
// process collectors attached.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Provider batches executed, by market and outcome.",
		}, []string{"market", "outcome"}),
		keywords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keywords_requested_total",
			Help:      "Keywords submitted to the provider, by market.",
		}, []string{"market"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Latency of provider calls.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"outcome"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs, by test type and outcome.",
		}, []string{"test_type", "outcome"}),
		runCost: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_cost_dollars_total",
			Help:      "Provider spend attributed to completed runs.",
		}, []string{"api_mode"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Keyword cache lookups, by outcome.",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route and status.",
		}, []string{"method", "route", "status"}),
	}
	m.reg.MustRegister(
		m.batches, m.keywords, m.providerLatency, m.runs,
		m.runCost, m.cacheLookups, m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry, mainly for tests and custom collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// ObserveBatch records one provider batch.
func (m *Metrics) ObserveBatch(market string, keywords int, err error, took time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeFailed
	}
	m.batches.WithLabelValues(market, outcome).Inc()
	m.keywords.WithLabelValues(market).Add(float64(keywords))
	m.providerLatency.WithLabelValues(outcome).Observe(took.Seconds())
}

// ObserveRun records a finished or rejected run.
func (m *Metrics) ObserveRun(testType, outcome, apiMode string, cost float64) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(testType, outcome).Inc()
	if cost > 0 {
		m.runCost.WithLabelValues(apiMode).Add(cost)
	}
}

// CacheLookup records a keyword cache hit, miss or error.
func (m *Metrics) CacheLookup(outcome string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(outcome).Inc()
}

// HTTPRequest records one served request.
func (m *Metrics) HTTPRequest(method, route string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

var storedRunsDesc = prometheus.NewDesc(
	namespace+"_stored_runs",
	"Runs currently persisted in the result store, by test type.",
	[]string{"test_type"},
	nil,
)

// RunCounter reports how many runs are stored per test type.
type RunCounter interface {
	CountByType(ctx context.Context) (map[string]int, error)
}

// StoreCollector reads stored-run counts from the result store on each scrape.
type StoreCollector struct {
	Store  RunCounter
	Logger *slog.Logger
}

// Describe sends the metric descriptor to the channel.
func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- storedRunsDesc
}

// Collect lists the store and emits one gauge per test type.
func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	counts, err := c.Store.CountByType(ctx)
	if err != nil {
		logger := c.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("failed to collect stored run metrics", "error", err)
		return
	}
	for typ, n := range counts {
		ch <- prometheus.MustNewConstMetric(storedRunsDesc, prometheus.GaugeValue, float64(n), typ)
	}
}

// WatchStore registers a StoreCollector for the given store.
func (m *Metrics) WatchStore(store RunCounter, logger *slog.Logger) {
	if m == nil {
		return
	}
	m.reg.MustRegister(&StoreCollector{Store: store, Logger: logger})
}

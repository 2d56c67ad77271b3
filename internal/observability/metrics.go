package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so that every binary (and every test) gets
// its own collector set. All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	ingestRecords  *prometheus.CounterVec
	ingestWarnings prometheus.Counter
	graphUpserts   *prometheus.CounterVec
	recommend      *prometheus.CounterVec
	bookCache      *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bookgraph_api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bookgraph_api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"method", "route", "status"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "bookgraph_api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		ingestRecords: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bookgraph_ingest_records_total",
			Help: "Ingested records by outcome (ok, failed).",
		}, []string{"status"}),
		ingestWarnings: f.NewCounter(prometheus.CounterOpts{
			Name: "bookgraph_ingest_parse_warnings_total",
			Help: "Non-fatal parser warnings emitted during ingestion.",
		}),
		graphUpserts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bookgraph_graph_upserts_total",
			Help: "Graph upserts by operation (node, edge) and outcome.",
		}, []string{"op", "status"}),
		recommend: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bookgraph_recommend_requests_total",
			Help: "Recommendation searches by outcome (hit, empty, error).",
		}, []string{"outcome"}),
		bookCache: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bookgraph_book_cache_lookups_total",
			Help: "Book view cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the prometheus exposition format for this registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	code := strconv.Itoa(status)
	m.apiRequests.WithLabelValues(method, route, code).Inc()
	m.apiLatency.WithLabelValues(method, route, code).Observe(dur.Seconds())
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) IncIngestRecord(ok bool) {
	if m == nil {
		return
	}
	m.ingestRecords.WithLabelValues(statusLabel(ok)).Inc()
}

func (m *Metrics) AddIngestWarnings(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ingestWarnings.Add(float64(n))
}

func (m *Metrics) IncGraphUpsert(op string, ok bool) {
	if m == nil {
		return
	}
	m.graphUpserts.WithLabelValues(op, statusLabel(ok)).Inc()
}

func (m *Metrics) IncRecommend(outcome string) {
	if m == nil {
		return
	}
	m.recommend.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncBookCache(result string) {
	if m == nil {
		return
	}
	m.bookCache.WithLabelValues(result).Inc()
}

func statusLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}

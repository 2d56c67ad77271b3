package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsExposition(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("GET", "/books", 200, 15*time.Millisecond)
	m.IncIngestRecord(true)
	m.IncIngestRecord(false)
	m.AddIngestWarnings(2)
	m.IncGraphUpsert("edge", true)
	m.IncRecommend("hit")
	m.IncBookCache("miss")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`bookgraph_api_requests_total{method="GET",route="/books",status="200"} 1`,
		`bookgraph_ingest_records_total{status="failed"} 1`,
		`bookgraph_ingest_parse_warnings_total 2`,
		`bookgraph_graph_upserts_total{op="edge",status="ok"} 1`,
		`bookgraph_recommend_requests_total{outcome="hit"} 1`,
		`bookgraph_book_cache_lookups_total{result="miss"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("missing %q in exposition", want)
		}
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", 200, time.Second)
	m.APIInflightInc()
	m.APIInflightDec()
	m.IncIngestRecord(true)
	m.IncGraphUpsert("node", false)
	m.IncRecommend("error")
	m.IncBookCache("hit")
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("nil metrics handler: want=404 got=%d", rec.Code)
	}
}

func TestNewMetricsIsolatedRegistries(t *testing.T) {
	a, b := NewMetrics(), NewMetrics()
	if a.Registry() == b.Registry() {
		t.Fatalf("registries must not be shared")
	}
}

func TestParseRatio(t *testing.T) {
	tests := map[string]float64{"0.5": 0.5, "-1": 0, "3": 1, "abc": 0.1}
	for in, want := range tests {
		if got := parseRatio(in, 0.1); got != want {
			t.Fatalf("parseRatio(%q): want=%v got=%v", in, want, got)
		}
	}
}

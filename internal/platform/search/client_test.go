package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/yungbote/bookgraph/internal/platform/logger"
)

func TestMatchRequestShape(t *testing.T) {
	var captured map[string]any
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodPost {
			t.Fatalf("method: want=%s got=%s", http.MethodPost, r.Method)
		}
		if r.URL.Path != "/book/_search" {
			t.Fatalf("path: want=%q got=%q", "/book/_search", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return jsonResponse(t, http.StatusOK, map[string]any{
			"hits": map[string]any{
				"hits": []any{
					map[string]any{"_id": "b1", "_score": 3.2, "_source": map[string]any{"name": "红楼梦"}},
					map[string]any{"_id": "b2", "_score": 1.1, "_source": map[string]any{"name": "红楼梦新证"}},
				},
			},
		}), nil
	})

	hits, err := c.Match(context.Background(), "name", "红楼梦", 2)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(hits) != 2 || hits[0].ID != "b1" || hits[1].ID != "b2" {
		t.Fatalf("unexpected hits: %+v", hits)
	}
	if captured["size"] != float64(2) {
		t.Fatalf("size: got=%v", captured["size"])
	}
	query := captured["query"].(map[string]any)["match"].(map[string]any)
	if query["name"] != "红楼梦" {
		t.Fatalf("match clause: got=%v", query)
	}
}

func TestMatchZeroSizeSkipsBackend(t *testing.T) {
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		t.Fatalf("backend should not be called")
		return nil, nil
	})
	hits, err := c.Match(context.Background(), "name", "x", 0)
	if err != nil || hits != nil {
		t.Fatalf("want (nil, nil), got (%v, %v)", hits, err)
	}
}

func TestGetNotFound(t *testing.T) {
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/book/_doc/missing" {
			t.Fatalf("path: got=%q", r.URL.Path)
		}
		return jsonResponse(t, http.StatusNotFound, map[string]any{"_id": "missing", "found": false}), nil
	})
	_, err := c.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got=%v", err)
	}
}

func TestGetFound(t *testing.T) {
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(t, http.StatusOK, map[string]any{
			"_id":     "b1",
			"found":   true,
			"_source": map[string]any{"name": "红楼梦", "author": "曹雪芹"},
		}), nil
	})
	hit, err := c.Get(context.Background(), "b1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	var src struct {
		Author string `json:"author"`
	}
	if err := json.Unmarshal(hit.Source, &src); err != nil || src.Author != "曹雪芹" {
		t.Fatalf("source: %s (%v)", hit.Source, err)
	}
}

func TestCreateConflict(t *testing.T) {
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodPut || r.URL.Path != "/book/_create/b1" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		return jsonResponse(t, http.StatusConflict, map[string]any{"error": map[string]any{"type": "version_conflict_engine_exception"}}), nil
	})
	err := c.Create(context.Background(), "b1", map[string]string{"name": "红楼梦"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("want ErrConflict, got=%v", err)
	}
}

func TestServerErrorIsOperationError(t *testing.T) {
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(t, http.StatusInternalServerError, map[string]any{"error": "shard failure"}), nil
	})
	_, err := c.Match(context.Background(), "name", "x", 1)
	var oe *OperationError
	if !errors.As(err, &oe) {
		t.Fatalf("want OperationError, got=%T %v", err, err)
	}
	if oe.StatusCode != http.StatusInternalServerError || oe.Code != OperationErrorRequestFailed {
		t.Fatalf("unexpected error: %+v", oe)
	}
}

func TestTransportErrorClassified(t *testing.T) {
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return nil, context.DeadlineExceeded
	})
	_, err := c.Get(context.Background(), "b1")
	var oe *OperationError
	if !errors.As(err, &oe) || oe.Code != OperationErrorTimeout {
		t.Fatalf("want timeout OperationError, got=%v", err)
	}
}

func TestIndexExists(t *testing.T) {
	status := http.StatusNotFound
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodHead || r.URL.Path != "/book" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		return &http.Response{StatusCode: status, Header: elasticHeader(), Body: io.NopCloser(bytes.NewReader(nil))}, nil
	})
	ok, err := c.IndexExists(context.Background())
	if err != nil || ok {
		t.Fatalf("want (false, nil), got (%v, %v)", ok, err)
	}
	status = http.StatusOK
	ok, err = c.IndexExists(context.Background())
	if err != nil || !ok {
		t.Fatalf("want (true, nil), got (%v, %v)", ok, err)
	}
}

func TestCreateIndexSendsBody(t *testing.T) {
	var captured map[string]any
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodPut || r.URL.Path != "/book" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return jsonResponse(t, http.StatusOK, map[string]any{"acknowledged": true}), nil
	})
	body := map[string]any{"mappings": map[string]any{"properties": map[string]any{"name": map[string]any{"type": "text"}}}}
	if err := c.CreateIndex(context.Background(), body); err != nil {
		t.Fatalf("CreateIndex: %v", err)
	}
	if _, ok := captured["mappings"]; !ok {
		t.Fatalf("mappings missing from body: %v", captured)
	}
}

func TestBasicAuthForwarded(t *testing.T) {
	c, err := New(logger.Nop(), Config{
		URL:      "http://search.local",
		Index:    "book",
		Username: "elastic",
		Password: "changeme",
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			user, pass, ok := r.BasicAuth()
			if !ok || user != "elastic" || pass != "changeme" {
				t.Fatalf("basic auth: ok=%v user=%q", ok, user)
			}
			return jsonResponse(t, http.StatusOK, map[string]any{"_id": "b1", "found": true, "_source": map[string]any{}}), nil
		}),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Get(context.Background(), "b1"); err != nil {
		t.Fatalf("Get: %v", err)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		cfg  Config
		code ConfigErrorCode
	}{
		{Config{Index: "book"}, ConfigErrorMissingURL},
		{Config{URL: "localhost", Index: "book"}, ConfigErrorInvalidURL},
		{Config{URL: "http://localhost:9200"}, ConfigErrorMissingIndex},
	}
	for _, tt := range tests {
		err := ValidateConfig(tt.cfg)
		var ce *ConfigError
		if !errors.As(err, &ce) || ce.Code != tt.code {
			t.Fatalf("cfg %+v: want code %s, got %v", tt.cfg, tt.code, err)
		}
	}
	if err := ValidateConfig(Config{URL: "http://localhost:9200", Index: "book"}); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func newTestClient(t *testing.T, roundTrip func(*http.Request) (*http.Response, error)) *Client {
	t.Helper()
	c, err := New(logger.Nop(), Config{
		URL:       "http://search.local",
		Index:     "book",
		Transport: roundTripFunc(roundTrip),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func jsonResponse(t *testing.T, status int, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return &http.Response{
		StatusCode: status,
		Header:     elasticHeader(),
		Body:       io.NopCloser(bytes.NewReader(raw)),
	}
}

func elasticHeader() http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	h.Set("X-Elastic-Product", "Elasticsearch")
	return h
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

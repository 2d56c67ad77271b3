package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/yungbote/bookgraph/internal/platform/ctxutil"
	"github.com/yungbote/bookgraph/internal/platform/logger"
)

const (
	maxErrorBodyBytes = 1024
	defaultTimeout    = 10 * time.Second
)

// Client runs document and search requests against one Elasticsearch index.
type Client struct {
	log     *logger.Logger
	cfg     Config
	timeout time.Duration
	es      *elasticsearch.Client
}

// Hit is one document returned by a search or a point lookup.
type Hit struct {
	ID     string          `json:"_id"`
	Score  float64         `json:"_score"`
	Source json.RawMessage `json:"_source"`
}

type searchResponse struct {
	Hits struct {
		Hits []Hit `json:"hits"`
	} `json:"hits"`
}

type getResponse struct {
	ID     string          `json:"_id"`
	Found  bool            `json:"found"`
	Source json.RawMessage `json:"_source"`
}

func New(log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	addr := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    []string{addr},
		Username:     cfg.Username,
		Password:     cfg.Password,
		Transport:    cfg.Transport,
		MaxRetries:   cfg.MaxRetries,
		DisableRetry: cfg.MaxRetries <= 0,
	})
	if err != nil {
		return nil, &ConfigError{Code: ConfigErrorInvalidURL, Value: cfg.URL, Cause: err}
	}
	c := &Client{
		log:     log.With("client", "Search"),
		cfg:     cfg,
		timeout: timeout,
		es:      es,
	}
	log.Info("Search backend selected", "url", addr, "index", cfg.Index)
	return c, nil
}

// Match runs a match query on field and returns at most size hits in relevance order.
func (c *Client) Match(ctx context.Context, field, query string, size int) ([]Hit, error) {
	const op = "match"
	if size <= 0 {
		return nil, nil
	}
	body, err := encodeBody(op, map[string]any{
		"size": size,
		"query": map[string]any{
			"match": map[string]any{field: query},
		},
	})
	if err != nil {
		return nil, err
	}
	ctx, cancel := c.opContext(ctx)
	defer cancel()

	res, err := esapi.SearchRequest{Index: []string{c.cfg.Index}, Body: body}.Do(ctx, c.es)
	if err != nil {
		return nil, classifyHTTPCallError(op, "search request failed", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, statusError(op, res)
	}
	var out searchResponse
	if err := decodeBody(op, res, &out); err != nil {
		return nil, err
	}
	hits := out.Hits.Hits
	if len(hits) > size {
		hits = hits[:size]
	}
	return hits, nil
}

// Get fetches one document by id. A missing document yields ErrNotFound.
func (c *Client) Get(ctx context.Context, id string) (Hit, error) {
	const op = "get"
	ctx, cancel := c.opContext(ctx)
	defer cancel()

	res, err := esapi.GetRequest{Index: c.cfg.Index, DocumentID: id}.Do(ctx, c.es)
	if err != nil {
		return Hit{}, classifyHTTPCallError(op, "search request failed", err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return Hit{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if res.IsError() {
		return Hit{}, statusError(op, res)
	}
	var out getResponse
	if err := decodeBody(op, res, &out); err != nil {
		return Hit{}, err
	}
	if !out.Found {
		return Hit{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return Hit{ID: out.ID, Source: out.Source}, nil
}

// Create indexes doc under id. An existing document with that id yields ErrConflict.
func (c *Client) Create(ctx context.Context, id string, doc any) error {
	const op = "create"
	body, err := encodeBody(op, doc)
	if err != nil {
		return err
	}
	ctx, cancel := c.opContext(ctx)
	defer cancel()

	res, err := esapi.CreateRequest{Index: c.cfg.Index, DocumentID: id, Body: body}.Do(ctx, c.es)
	if err != nil {
		return classifyHTTPCallError(op, "search request failed", err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusConflict {
		return fmt.Errorf("%w: %s", ErrConflict, id)
	}
	if res.IsError() {
		return statusError(op, res)
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}

func (c *Client) IndexExists(ctx context.Context) (bool, error) {
	const op = "index_exists"
	ctx, cancel := c.opContext(ctx)
	defer cancel()

	res, err := esapi.IndicesExistsRequest{Index: []string{c.cfg.Index}}.Do(ctx, c.es)
	if err != nil {
		return false, classifyHTTPCallError(op, "search request failed", err)
	}
	defer res.Body.Close()
	switch {
	case res.StatusCode == http.StatusNotFound:
		return false, nil
	case !res.IsError():
		return true, nil
	default:
		return false, &OperationError{Code: OperationErrorRequestFailed, Operation: op, StatusCode: res.StatusCode}
	}
}

// CreateIndex creates the index with the given settings/mappings body.
func (c *Client) CreateIndex(ctx context.Context, body map[string]any) error {
	const op = "create_index"
	rd, err := encodeBody(op, body)
	if err != nil {
		return err
	}
	ctx, cancel := c.opContext(ctx)
	defer cancel()

	res, err := esapi.IndicesCreateRequest{Index: c.cfg.Index, Body: rd}.Do(ctx, c.es)
	if err != nil {
		return classifyHTTPCallError(op, "search request failed", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return statusError(op, res)
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}

func (c *Client) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctxutil.Default(ctx), c.timeout)
}

func encodeBody(op string, in any) (io.Reader, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(in); err != nil {
		return nil, opErr(op, OperationErrorEncodeFailed, "encode request failed", err)
	}
	return &buf, nil
}

func decodeBody(op string, res *esapi.Response, out any) error {
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return opErr(op, OperationErrorDecodeFailed, "decode response failed", err)
	}
	return nil
}

func statusError(op string, res *esapi.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBodyBytes))
	return &OperationError{
		Code:       OperationErrorRequestFailed,
		Operation:  op,
		StatusCode: res.StatusCode,
		Message:    fmt.Sprintf("search http status=%d body=%q", res.StatusCode, strings.TrimSpace(string(raw))),
	}
}

func classifyHTTPCallError(op, message string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return opErr(op, OperationErrorTimeout, message, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return opErr(op, OperationErrorTimeout, message, err)
	}
	return opErr(op, OperationErrorTransportFailed, message, err)
}

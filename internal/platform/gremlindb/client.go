package gremlindb

import (
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	gremlingo "github.com/apache/tinkerpop/gremlin-go/v3/driver"

	"github.com/yungbote/bookgraph/internal/platform/logger"
)

type Config struct {
	// URL is the websocket endpoint, e.g. wss://<neptune-host>:8182/gremlin.
	URL             string
	TraversalSource string
	ConnectTimeout  time.Duration
	InsecureTLS     bool
}

// Client owns one remote connection and the traversal source bound to it.
type Client struct {
	conn *gremlingo.DriverRemoteConnection
	G    *gremlingo.GraphTraversalSource
	log  *logger.Logger
}

func New(log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("gremlindb: logger required")
	}
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, fmt.Errorf("gremlindb: url required")
	}
	source := strings.TrimSpace(cfg.TraversalSource)
	if source == "" {
		source = "g"
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	conn, err := gremlingo.NewDriverRemoteConnection(url, func(s *gremlingo.DriverRemoteConnectionSettings) {
		s.TraversalSource = source
		s.ConnectionTimeout = timeout
		s.LogVerbosity = gremlingo.Warning
		if cfg.InsecureTLS {
			s.TlsConfig = &tls.Config{InsecureSkipVerify: true}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("gremlindb: connect %s: %w", url, err)
	}

	log.Info("Gremlin connected", "url", url, "traversal_source", source)
	return &Client{
		conn: conn,
		G:    gremlingo.Traversal_().WithRemote(conn),
		log:  log.With("client", "GremlinDB"),
	}, nil
}

func (c *Client) Close() {
	if c == nil || c.conn == nil {
		return
	}
	c.conn.Close()
	c.conn = nil
}

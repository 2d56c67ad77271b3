package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/bookgraph/internal/platform/envutil"
)

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	s := strings.TrimSpace(value.Value)
	if s == "" || value.Tag == "!!null" {
		d.Duration = 0
		return nil
	}
	if value.Tag == "!!int" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("duration must be a string like \"5s\" or int nanoseconds: %w", err)
		}
		d.Duration = time.Duration(n)
		return nil
	}
	dd, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = dd
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return d.Duration.String(), nil
}

func defaultConfig() *Config {
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: Duration{5 * time.Second},
			IdleTimeout:       Duration{2 * time.Minute},
			ShutdownTimeout:   Duration{15 * time.Second},
			CORSOrigins:       []string{"*"},
		},
		Graph: GraphConfig{
			Backend: "neo4j",
			Neo4j: Neo4jConfig{
				URI:            "neo4j://localhost:7687",
				User:           "neo4j",
				ConnectTimeout: Duration{10 * time.Second},
				MaxPoolSize:    50,
			},
			Gremlin: GremlinConfig{
				TraversalSource: "g",
				ConnectTimeout:  Duration{10 * time.Second},
			},
		},
		Search: SearchConfig{
			URL:            "http://localhost:9200",
			Index:          "book",
			Timeout:        Duration{10 * time.Second},
			MaxRetries:     3,
			Analyzer:       "ik_max_word",
			SearchAnalyzer: "ik_smart",
		},
		Redis: RedisConfig{TTL: Duration{time.Hour}},
		Embedding: EmbeddingConfig{
			IDsPath:       "data/entities.tsv",
			VectorsPath:   "data/entity_embedding.npy",
			CandidatePool: 500,
		},
		Ingest: IngestConfig{ProgressEvery: 100},
	}
}

// Load applies defaults, then the YAML file (BOOKGRAPH_CONFIG_PATH or ./config/config.yaml
// when present), then environment overrides, and validates the result.
func Load() (*Config, error) {
	cfg := defaultConfig()

	cfgPath := envutil.String("BOOKGRAPH_CONFIG_PATH", "")
	if cfgPath == "" {
		if wd, err := os.Getwd(); err == nil {
			p := filepath.Join(wd, "config", "config.yaml")
			if _, err := os.Stat(p); err == nil {
				cfgPath = p
			}
		}
	}
	if cfgPath != "" {
		if err := loadFile(cfgPath, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Env = envutil.String("LOG_MODE", cfg.Env)
	cfg.HTTP.Addr = envutil.String("HTTP_ADDR", cfg.HTTP.Addr)
	if v := envutil.String("CORS_ORIGINS", ""); v != "" {
		cfg.HTTP.CORSOrigins = splitList(v)
	}

	cfg.Graph.Backend = envutil.String("GRAPH_BACKEND", cfg.Graph.Backend)
	cfg.Graph.Neo4j.URI = envutil.String("NEO4J_URI", cfg.Graph.Neo4j.URI)
	cfg.Graph.Neo4j.User = envutil.String("NEO4J_USER", cfg.Graph.Neo4j.User)
	cfg.Graph.Neo4j.Password = envutil.String("NEO4J_PASSWORD", cfg.Graph.Neo4j.Password)
	cfg.Graph.Neo4j.Database = envutil.String("NEO4J_DATABASE", cfg.Graph.Neo4j.Database)
	cfg.Graph.Gremlin.URL = envutil.String("GREMLIN_URL", cfg.Graph.Gremlin.URL)
	cfg.Graph.Gremlin.InsecureTLS = envutil.Bool("GREMLIN_INSECURE_TLS", cfg.Graph.Gremlin.InsecureTLS)

	cfg.Search.URL = envutil.String("SEARCH_URL", cfg.Search.URL)
	cfg.Search.Index = envutil.String("SEARCH_INDEX", cfg.Search.Index)
	cfg.Search.Username = envutil.String("SEARCH_USERNAME", cfg.Search.Username)
	cfg.Search.Password = envutil.String("SEARCH_PASSWORD", cfg.Search.Password)
	cfg.Search.Timeout.Duration = envutil.Duration("SEARCH_TIMEOUT", cfg.Search.Timeout.Duration)
	cfg.Search.MaxRetries = envutil.Int("SEARCH_MAX_RETRIES", cfg.Search.MaxRetries)
	cfg.Search.Analyzer = envutil.String("SEARCH_ANALYZER", cfg.Search.Analyzer)
	cfg.Search.SearchAnalyzer = envutil.String("SEARCH_QUERY_ANALYZER", cfg.Search.SearchAnalyzer)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = envutil.String("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = envutil.Int("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.TTL.Duration = envutil.Duration("REDIS_BOOK_TTL", cfg.Redis.TTL.Duration)

	cfg.Embedding.IDsPath = envutil.String("EMBEDDING_IDS_PATH", cfg.Embedding.IDsPath)
	cfg.Embedding.VectorsPath = envutil.String("EMBEDDING_VECTORS_PATH", cfg.Embedding.VectorsPath)
	cfg.Embedding.CandidatePool = envutil.Int("EMBEDDING_CANDIDATE_POOL", cfg.Embedding.CandidatePool)

	cfg.Ingest.ProgressEvery = envutil.Int("INGEST_PROGRESS_EVERY", cfg.Ingest.ProgressEvery)
	cfg.Ingest.ContinueOnError = envutil.Bool("INGEST_CONTINUE_ON_ERROR", cfg.Ingest.ContinueOnError)
}

// Validate normalizes fields and rejects values no component can run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Env) == "" {
		c.Env = "development"
	}
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return errors.New("http.addr is required")
	}
	c.Graph.Backend = strings.ToLower(strings.TrimSpace(c.Graph.Backend))
	switch c.Graph.Backend {
	case "neo4j":
		if strings.TrimSpace(c.Graph.Neo4j.URI) == "" {
			return errors.New("graph.neo4j.uri is required for the neo4j backend")
		}
	case "gremlin":
		if strings.TrimSpace(c.Graph.Gremlin.URL) == "" {
			return errors.New("graph.gremlin.url is required for the gremlin backend")
		}
	case "memory":
	default:
		return fmt.Errorf("invalid graph.backend=%q (want neo4j, gremlin or memory)", c.Graph.Backend)
	}
	if strings.TrimSpace(c.Search.Index) == "" {
		return errors.New("search.index is required")
	}
	if c.Embedding.CandidatePool <= 0 {
		return fmt.Errorf("invalid embedding.candidate_pool=%d", c.Embedding.CandidatePool)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("invalid redis.db=%d", c.Redis.DB)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

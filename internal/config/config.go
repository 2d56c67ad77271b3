package config

import "time"

// Duration decodes from a Go duration string ("5s") or integer nanoseconds.
type Duration struct {
	time.Duration
}

type HTTPConfig struct {
	Addr              string   `yaml:"addr"`
	ReadHeaderTimeout Duration `yaml:"read_header_timeout"`
	IdleTimeout       Duration `yaml:"idle_timeout"`
	ShutdownTimeout   Duration `yaml:"shutdown_timeout"`
	CORSOrigins       []string `yaml:"cors_origins"`
}

type Neo4jConfig struct {
	URI            string   `yaml:"uri"`
	User           string   `yaml:"user"`
	Password       string   `yaml:"password"`
	Database       string   `yaml:"database"`
	ConnectTimeout Duration `yaml:"connect_timeout"`
	MaxPoolSize    int      `yaml:"max_pool_size"`
}

type GremlinConfig struct {
	URL             string   `yaml:"url"`
	TraversalSource string   `yaml:"traversal_source"`
	ConnectTimeout  Duration `yaml:"connect_timeout"`
	InsecureTLS     bool     `yaml:"insecure_tls"`
}

type GraphConfig struct {
	// Backend is one of neo4j, gremlin or memory.
	Backend string        `yaml:"backend"`
	Neo4j   Neo4jConfig   `yaml:"neo4j"`
	Gremlin GremlinConfig `yaml:"gremlin"`
}

type SearchConfig struct {
	URL      string   `yaml:"url"`
	Index    string   `yaml:"index"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	Timeout  Duration `yaml:"timeout"`
	// MaxRetries is the retry budget for 502/503/504 and connection failures.
	MaxRetries int `yaml:"max_retries"`
	// Analyzer and SearchAnalyzer are applied to the text fields when the index is created.
	Analyzer       string `yaml:"analyzer"`
	SearchAnalyzer string `yaml:"search_analyzer"`
}

type RedisConfig struct {
	// Addr empty disables the book view cache.
	Addr     string   `yaml:"addr"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
	TTL      Duration `yaml:"ttl"`
}

type EmbeddingConfig struct {
	IDsPath       string `yaml:"ids_path"`
	VectorsPath   string `yaml:"vectors_path"`
	CandidatePool int    `yaml:"candidate_pool"`
}

type IngestConfig struct {
	ProgressEvery   int  `yaml:"progress_every"`
	ContinueOnError bool `yaml:"continue_on_error"`
}

type Config struct {
	Env       string          `yaml:"env"`
	HTTP      HTTPConfig      `yaml:"http"`
	Graph     GraphConfig     `yaml:"graph"`
	Search    SearchConfig    `yaml:"search"`
	Redis     RedisConfig     `yaml:"redis"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Ingest    IngestConfig    `yaml:"ingest"`
}

package search

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Config struct {
	URL      string
	Index    string
	Username string
	Password string
	Timeout  time.Duration
	// MaxRetries bounds retries on 502/503/504 and connection failures; zero disables them.
	MaxRetries int
	// Transport overrides the HTTP round tripper used by the Elasticsearch client.
	Transport http.RoundTripper
}

type ConfigErrorCode string

const (
	ConfigErrorMissingURL   ConfigErrorCode = "missing_url"
	ConfigErrorInvalidURL   ConfigErrorCode = "invalid_url"
	ConfigErrorMissingIndex ConfigErrorCode = "missing_index"
)

type ConfigError struct {
	Code  ConfigErrorCode
	Value string
	Cause error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "invalid search config"
	}
	switch e.Code {
	case ConfigErrorMissingURL:
		return "search url is required"
	case ConfigErrorInvalidURL:
		return fmt.Sprintf("invalid search url %q; expected absolute URL like http://localhost:9200", e.Value)
	case ConfigErrorMissingIndex:
		return "search index is required"
	default:
		return "invalid search config"
	}
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.URL) == "" {
		return &ConfigError{Code: ConfigErrorMissingURL}
	}
	parsed, err := url.Parse(cfg.URL)
	if err != nil || strings.TrimSpace(parsed.Scheme) == "" || strings.TrimSpace(parsed.Host) == "" {
		return &ConfigError{Code: ConfigErrorInvalidURL, Value: cfg.URL, Cause: err}
	}
	if strings.TrimSpace(cfg.Index) == "" {
		return &ConfigError{Code: ConfigErrorMissingIndex}
	}
	return nil
}

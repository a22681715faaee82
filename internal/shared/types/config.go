package types

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultAPIBaseURL     = "http://localhost:8080/api"
	DefaultPageSize       = 10
	DefaultRequestTimeout = 15
	DefaultCurrency       = "INR"

	SessionBackendFile   = "file"
	SessionBackendSQLite = "sqlite"
)

// Config represents the application configuration that can be loaded from a file.
type Config struct {
	APIBaseURL     string   `json:"api_base_url" yaml:"api_base_url" toml:"api_base_url"`
	PageSize       int      `json:"page_size" yaml:"page_size" toml:"page_size"`
	RequestTimeout int      `json:"request_timeout_seconds" yaml:"request_timeout_seconds" toml:"request_timeout_seconds"`
	SessionBackend string   `json:"session_backend" yaml:"session_backend" toml:"session_backend"`
	SessionPath    string   `json:"session_path" yaml:"session_path" toml:"session_path"`
	Currency       string   `json:"currency" yaml:"currency" toml:"currency"`
	ReportName     string   `json:"report_name" yaml:"report_name" toml:"report_name"`
	ReportType     []string `json:"report_type" yaml:"report_type" toml:"report_type"`
	Dir            string   `json:"dir" yaml:"dir" toml:"dir"`
	LogLevel       string   `json:"log_level" yaml:"log_level" toml:"log_level"`
}

// DefaultConfig returns the configuration used when no file or environment overrides exist.
func DefaultConfig() Config {
	return Config{
		APIBaseURL:     DefaultAPIBaseURL,
		PageSize:       DefaultPageSize,
		RequestTimeout: DefaultRequestTimeout,
		SessionBackend: SessionBackendFile,
		Currency:       DefaultCurrency,
		ReportType:     []string{"csv"},
		LogLevel:       "warn",
	}
}

// Timeout returns the per-request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// Merge overlays every non-zero field of other onto c.
func (c *Config) Merge(other Config) {
	if other.APIBaseURL != "" {
		c.APIBaseURL = other.APIBaseURL
	}
	if other.PageSize != 0 {
		c.PageSize = other.PageSize
	}
	if other.RequestTimeout != 0 {
		c.RequestTimeout = other.RequestTimeout
	}
	if other.SessionBackend != "" {
		c.SessionBackend = other.SessionBackend
	}
	if other.SessionPath != "" {
		c.SessionPath = other.SessionPath
	}
	if other.Currency != "" {
		c.Currency = other.Currency
	}
	if other.ReportName != "" {
		c.ReportName = other.ReportName
	}
	if len(other.ReportType) > 0 {
		c.ReportType = other.ReportType
	}
	if other.Dir != "" {
		c.Dir = other.Dir
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if u, err := url.Parse(c.APIBaseURL); err != nil {
		errs = append(errs, fmt.Sprintf("invalid api base url '%s': %v", c.APIBaseURL, err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, fmt.Sprintf("invalid api base url scheme '%s': must be 'http' or 'https'", u.Scheme))
	}

	if c.PageSize < 1 || c.PageSize > 100 {
		errs = append(errs, fmt.Sprintf("invalid page size %d: must be between 1 and 100", c.PageSize))
	}

	if c.RequestTimeout < 1 || c.RequestTimeout > 300 {
		errs = append(errs, fmt.Sprintf("invalid request timeout %ds: must be between 1 and 300 seconds", c.RequestTimeout))
	}

	switch c.SessionBackend {
	case SessionBackendFile, SessionBackendSQLite:
	default:
		errs = append(errs, fmt.Sprintf("invalid session backend '%s': must be one of [%s %s]",
			c.SessionBackend, SessionBackendFile, SessionBackendSQLite))
	}

	if len(strings.TrimSpace(c.Currency)) != 3 {
		errs = append(errs, fmt.Sprintf("invalid currency '%s': must be an ISO 4217 code", c.Currency))
	}

	for _, rt := range c.ReportType {
		switch rt {
		case "csv", "json", "pdf":
		default:
			errs = append(errs, fmt.Sprintf("invalid report type '%s': must be csv, json or pdf", rt))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

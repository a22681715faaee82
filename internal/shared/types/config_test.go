package types

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Timeout() != 15*time.Second {
		t.Errorf("Timeout() = %v", cfg.Timeout())
	}
}

func TestConfigValidateAggregatesProblems(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIBaseURL = "ftp://example.com"
	cfg.PageSize = 0
	cfg.SessionBackend = "redis"
	cfg.Currency = "EURO"
	cfg.ReportType = []string{"csv", "xlsx"}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"scheme 'ftp'", "page size 0", "session backend 'redis'", "currency 'EURO'", "report type 'xlsx'"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q:\n%v", want, err)
		}
	}
}

func TestConfigMerge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Merge(Config{
		APIBaseURL:     "https://finance.example.com/api",
		SessionBackend: SessionBackendSQLite,
		ReportType:     []string{"pdf"},
	})

	if cfg.APIBaseURL != "https://finance.example.com/api" || cfg.SessionBackend != SessionBackendSQLite {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.PageSize != DefaultPageSize || cfg.Currency != DefaultCurrency {
		t.Errorf("zero fields must not override defaults: %+v", cfg)
	}
	if len(cfg.ReportType) != 1 || cfg.ReportType[0] != "pdf" {
		t.Errorf("report type = %v", cfg.ReportType)
	}
}

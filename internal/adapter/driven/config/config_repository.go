package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"github.com/diillson/finance-dashboard-go/internal/domain/repository"
	"github.com/diillson/finance-dashboard-go/internal/shared/types"
)

// Environment variables recognised by ApplyEnv.
const (
	EnvAPIURL         = "FINANCE_API_URL"
	EnvPageSize       = "FINANCE_PAGE_SIZE"
	EnvRequestTimeout = "FINANCE_REQUEST_TIMEOUT"
	EnvSessionBackend = "FINANCE_SESSION_BACKEND"
	EnvSessionPath    = "FINANCE_SESSION_PATH"
	EnvCurrency       = "FINANCE_CURRENCY"
	EnvLogLevel       = "FINANCE_LOG_LEVEL"
	EnvReportDir      = "FINANCE_REPORT_DIR"
)

// ConfigRepositoryImpl implements repository.ConfigRepository.
type ConfigRepositoryImpl struct {
	envFile string
	lookup  func(string) (string, bool)
}

// NewConfigRepository reads the process environment and ./.env.
func NewConfigRepository() repository.ConfigRepository {
	return &ConfigRepositoryImpl{envFile: ".env", lookup: os.LookupEnv}
}

// NewConfigRepositoryWithEnv uses a custom .env path and variable lookup.
func NewConfigRepositoryWithEnv(envFile string, lookup func(string) (string, bool)) *ConfigRepositoryImpl {
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}
	return &ConfigRepositoryImpl{envFile: envFile, lookup: lookup}
}

// LoadConfigFile loads a TOML, YAML or JSON configuration file.
func (r *ConfigRepositoryImpl) LoadConfigFile(filePath string) (*types.Config, error) {
	fileExtension := strings.ToLower(filepath.Ext(filePath))

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error accessing config file: %w", err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", filePath)
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config types.Config

	switch fileExtension {
	case ".toml":
		if err := toml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing TOML file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing YAML file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing JSON file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", fileExtension)
	}

	return &config, nil
}

// ApplyEnv overlays environment variables on cfg. Values from the process
// environment win over the .env file; a missing .env file is ignored.
func (r *ConfigRepositoryImpl) ApplyEnv(cfg *types.Config) error {
	dotenv := map[string]string{}
	if r.envFile != "" {
		values, err := godotenv.Read(r.envFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("error reading %s: %w", r.envFile, err)
		}
		if values != nil {
			dotenv = values
		}
	}

	get := func(key string) (string, bool) {
		if v, ok := r.lookup(key); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok && v != ""
	}

	var problems []string

	if v, ok := get(EnvAPIURL); ok {
		cfg.APIBaseURL = v
	}
	if v, ok := get(EnvPageSize); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s=%q is not a number", EnvPageSize, v))
		} else {
			cfg.PageSize = n
		}
	}
	if v, ok := get(EnvRequestTimeout); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s=%q is not a number of seconds", EnvRequestTimeout, v))
		} else {
			cfg.RequestTimeout = n
		}
	}
	if v, ok := get(EnvSessionBackend); ok {
		cfg.SessionBackend = strings.ToLower(v)
	}
	if v, ok := get(EnvSessionPath); ok {
		cfg.SessionPath = v
	}
	if v, ok := get(EnvCurrency); ok {
		cfg.Currency = strings.ToUpper(v)
	}
	if v, ok := get(EnvLogLevel); ok {
		cfg.LogLevel = v
	}
	if v, ok := get(EnvReportDir); ok {
		cfg.Dir = v
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid environment:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

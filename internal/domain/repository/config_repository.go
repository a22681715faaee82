package repository

import (
	"github.com/diillson/finance-dashboard-go/internal/shared/types"
)

// ConfigRepository defines the interface for loading configuration.
type ConfigRepository interface {
	LoadConfigFile(filePath string) (*types.Config, error)
	// ApplyEnv overlays FINANCE_* environment variables (and a .env file, if present) on cfg.
	ApplyEnv(cfg *types.Config) error
}

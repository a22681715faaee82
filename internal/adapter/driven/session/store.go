// Package session persists the signed-in credential between runs.
package session

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/diillson/finance-dashboard-go/internal/domain/repository"
	"github.com/diillson/finance-dashboard-go/internal/shared/types"
)

// Storage keys. The token key matches the one used by the web client.
const (
	KeyToken    = "jwtToken"
	KeyUsername = "username"
	KeyEmail    = "email"
)

// DefaultPath returns the credential location for backend under the user config directory.
func DefaultPath(backend string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config directory: %w", err)
	}
	name := "session.json"
	if backend == types.SessionBackendSQLite {
		name = "session.db"
	}
	return filepath.Join(dir, "finance-dashboard", name), nil
}

// Open returns the credential repository configured by cfg.
func Open(cfg types.Config) (repository.CredentialRepository, error) {
	path := cfg.SessionPath
	if path == "" {
		p, err := DefaultPath(cfg.SessionBackend)
		if err != nil {
			return nil, err
		}
		path = p
	}

	switch cfg.SessionBackend {
	case types.SessionBackendSQLite:
		return NewSQLiteStore(path)
	case types.SessionBackendFile, "":
		return NewFileStore(path), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}

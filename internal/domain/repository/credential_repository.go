package repository

import "github.com/diillson/finance-dashboard-go/internal/domain/entity"

// CredentialRepository persists the session credential across restarts.
// Load returns a zero Credential and no error when nothing is stored.
type CredentialRepository interface {
	Load() (entity.Credential, error)
	Save(cred entity.Credential) error
	Clear() error
}

package repository

import (
	"context"

	"github.com/diillson/finance-dashboard-go/internal/domain/entity"
)

// AuthRepository exchanges identity proofs for credentials with the remote service.
type AuthRepository interface {
	Authenticate(ctx context.Context, proof entity.IdentityProof) (entity.Credential, error)
	Register(ctx context.Context, proof entity.IdentityProof) (entity.Credential, error)
}

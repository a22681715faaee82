package api

import (
	"context"

	"github.com/diillson/finance-dashboard-go/internal/domain/entity"
	"github.com/diillson/finance-dashboard-go/internal/shared/types"
)

// AuthRepository implements repository.AuthRepository over the auth endpoints.
type AuthRepository struct {
	client *Client
}

// NewAuthRepository creates a new auth repository.
func NewAuthRepository(client *Client) *AuthRepository {
	return &AuthRepository{client: client}
}

// Authenticate exchanges a password or Google proof for a credential.
func (r *AuthRepository) Authenticate(ctx context.Context, proof entity.IdentityProof) (entity.Credential, error) {
	var (
		path string
		body any
	)
	switch proof.Kind {
	case entity.ProofGoogle:
		path, body = "/auth/authenticate-google", googleAuthRequest{Token: proof.GoogleToken}
	case entity.ProofRegistration:
		return r.Register(ctx, proof)
	default:
		path, body = "/auth/authenticate", authRequest{Username: proof.Username, Password: proof.Password}
	}
	return r.exchange(ctx, path, body, proof)
}

// Register creates an account and returns its credential.
func (r *AuthRepository) Register(ctx context.Context, proof entity.IdentityProof) (entity.Credential, error) {
	body := registerRequest{Username: proof.Username, Email: proof.Email, Password: proof.Password}
	return r.exchange(ctx, "/auth/register", body, proof)
}

func (r *AuthRepository) exchange(ctx context.Context, path string, body any, proof entity.IdentityProof) (entity.Credential, error) {
	var resp authResponse
	if err := r.client.postJSON(ctx, path, "", types.KindAuthRejected, body, &resp); err != nil {
		return entity.Credential{}, err
	}
	if resp.Token == "" {
		msg := resp.Message
		if msg == "" {
			msg = "authentication response did not contain a token"
		}
		return entity.Credential{}, types.NewError(types.KindMalformedResponse, msg, nil)
	}

	cred := entity.Credential{Token: resp.Token, Username: resp.Username, Email: resp.Email}
	if cred.Username == "" {
		cred.Username = proof.Username
	}
	return cred, nil
}

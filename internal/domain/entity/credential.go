package entity

import "strings"

// DefaultIdentity is shown when neither the server nor the token names the user.
const DefaultIdentity = "User"

// Credential is the authenticated session artifact held by the client.
// Identity may be unknown right after a restore; it is resolved on the first sync.
type Credential struct {
	Token    string `json:"token"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// IsZero reports whether the credential carries no usable token.
func (c Credential) IsZero() bool {
	return strings.TrimSpace(c.Token) == ""
}

// Identity returns the best known label for the signed-in user, or "" if unknown.
func (c Credential) Identity() string {
	if c.Username != "" {
		return c.Username
	}
	return c.Email
}

// ProofKind selects the authentication endpoint used by a sign-in.
type ProofKind int

const (
	ProofPassword ProofKind = iota
	ProofGoogle
	ProofRegistration
)

// IdentityProof is what the user hands over to obtain a Credential.
type IdentityProof struct {
	Kind        ProofKind
	Username    string
	Email       string
	Password    string
	GoogleToken string
}

// PasswordProof builds a username/password proof.
func PasswordProof(username, password string) IdentityProof {
	return IdentityProof{Kind: ProofPassword, Username: username, Password: password}
}

// GoogleProof builds a third-party proof. An empty token uses the mock token the service accepts.
func GoogleProof(token string) IdentityProof {
	if token == "" {
		token = "mock-google-token"
	}
	return IdentityProof{Kind: ProofGoogle, GoogleToken: token}
}

// RegistrationProof builds a sign-up proof.
func RegistrationProof(username, email, password string) IdentityProof {
	return IdentityProof{Kind: ProofRegistration, Username: username, Email: email, Password: password}
}

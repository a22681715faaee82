package usecase

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/diillson/finance-dashboard-go/internal/domain/entity"
	"github.com/diillson/finance-dashboard-go/internal/shared/types"
)

// DecodeTokenSubject reads the subject claim from a JWT payload without verifying
// the signature; the server remains the authority on token validity.
func DecodeTokenSubject(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", types.NewError(types.KindMalformedResponse, "token payload could not be decoded", err)
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return "", types.NewError(types.KindMalformedResponse, "token subject is not a string", err)
	}
	if sub == "" {
		return "", types.NewError(types.KindMalformedResponse, "token has no subject", nil)
	}
	return sub, nil
}

// ResolveIdentity picks the label shown for the signed-in user: the summary's username,
// then the one returned at sign-in, then the token subject, then "User".
func ResolveIdentity(summary entity.SummarySnapshot, cred entity.Credential, log zerolog.Logger) string {
	if summary.Username != "" {
		return summary.Username
	}
	if id := cred.Identity(); id != "" {
		return id
	}
	sub, err := DecodeTokenSubject(cred.Token)
	if err != nil {
		log.Debug().Err(err).Msg("falling back to default identity")
		return entity.DefaultIdentity
	}
	return sub
}

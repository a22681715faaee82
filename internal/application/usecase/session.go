package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/diillson/finance-dashboard-go/internal/domain/entity"
	"github.com/diillson/finance-dashboard-go/internal/domain/repository"
	"github.com/diillson/finance-dashboard-go/internal/shared/types"
)

// SessionStore owns the credential lifecycle. Every sign-in and sign-out bumps a
// generation counter; authenticated callers capture (credential, generation) and
// report authorization failures against that generation, so a stale failure or a
// late success can never touch a newer session.
type SessionStore struct {
	auth  repository.AuthRepository
	store repository.CredentialRepository
	log   zerolog.Logger

	mu   sync.RWMutex
	cred entity.Credential
	gen  uint64

	listenersMu sync.Mutex
	listeners   []func(signedIn bool)
}

// NewSessionStore creates a session store. Call Restore to pick up a persisted credential.
func NewSessionStore(auth repository.AuthRepository, store repository.CredentialRepository, log zerolog.Logger) *SessionStore {
	return &SessionStore{
		auth:  auth,
		store: store,
		log:   log.With().Str("component", "session").Logger(),
	}
}

// Restore loads the persisted credential without validating it against the server.
func (s *SessionStore) Restore() (entity.Credential, bool) {
	cred, err := s.store.Load()
	if err != nil {
		s.log.Warn().Err(err).Msg("could not restore session, starting signed out")
		return entity.Credential{}, false
	}
	if cred.IsZero() {
		return entity.Credential{}, false
	}

	s.mu.Lock()
	s.cred = cred
	s.gen++
	s.mu.Unlock()

	s.log.Debug().Str("identity", cred.Identity()).Msg("session restored")
	return cred, true
}

// SignIn exchanges proof for a credential and persists it. On failure the current session is untouched.
func (s *SessionStore) SignIn(ctx context.Context, proof entity.IdentityProof) (entity.Credential, error) {
	if err := validateProof(proof); err != nil {
		return entity.Credential{}, err
	}

	var (
		cred entity.Credential
		err  error
	)
	if proof.Kind == entity.ProofRegistration {
		cred, err = s.auth.Register(ctx, proof)
	} else {
		cred, err = s.auth.Authenticate(ctx, proof)
	}
	if err != nil {
		return entity.Credential{}, err
	}

	s.mu.Lock()
	if err := s.store.Save(cred); err != nil {
		s.mu.Unlock()
		return entity.Credential{}, types.NewError(types.KindUnknown, "signed in but could not save the session", err)
	}
	s.cred = cred
	s.gen++
	s.mu.Unlock()

	s.log.Info().Str("identity", cred.Identity()).Msg("signed in")
	s.notify(true)
	return cred, nil
}

// Register creates an account and signs in with it.
func (s *SessionStore) Register(ctx context.Context, username, email, password string) (entity.Credential, error) {
	return s.SignIn(ctx, entity.RegistrationProof(username, email, password))
}

// SignOut clears the in-memory and persisted credential. It never fails and is idempotent.
func (s *SessionStore) SignOut() {
	s.mu.Lock()
	wasSignedIn := s.clearLocked()
	s.mu.Unlock()

	if wasSignedIn {
		s.log.Info().Msg("signed out")
		s.notify(false)
	}
}

// Invalidate signs out only if gen is still the current generation. It reports whether
// this call cleared the session, which happens at most once per generation.
func (s *SessionStore) Invalidate(gen uint64) bool {
	s.mu.Lock()
	if gen != s.gen || s.cred.IsZero() {
		s.mu.Unlock()
		return false
	}
	s.clearLocked()
	s.mu.Unlock()

	s.log.Warn().Uint64("generation", gen).Msg("session invalidated by authorization failure")
	s.notify(false)
	return true
}

func (s *SessionStore) clearLocked() bool {
	wasSignedIn := !s.cred.IsZero()
	s.cred = entity.Credential{}
	s.gen++
	if err := s.store.Clear(); err != nil {
		s.log.Warn().Err(err).Msg("could not remove persisted session")
	}
	return wasSignedIn
}

// IsAuthenticated reports whether a non-empty token is held.
func (s *SessionStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.cred.IsZero()
}

// Current returns the credential together with its generation.
func (s *SessionStore) Current() (entity.Credential, uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred, s.gen, !s.cred.IsZero()
}

// Generation returns the current session generation.
func (s *SessionStore) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// IfCurrent runs fn while holding the session read lock, only if gen is still current.
// Sign-outs wait for fn to return.
func (s *SessionStore) IfCurrent(gen uint64, fn func()) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if gen != s.gen || s.cred.IsZero() {
		return false
	}
	fn()
	return true
}

// SetIdentity records a resolved identity label for generation gen. It does not bump the generation.
func (s *SessionStore) SetIdentity(gen uint64, identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.cred.IsZero() || identity == "" || s.cred.Username == identity {
		return
	}
	s.cred.Username = identity
	if err := s.store.Save(s.cred); err != nil {
		s.log.Warn().Err(err).Msg("could not persist resolved identity")
	}
}

// OnChange registers fn to be called after every sign-in and sign-out.
func (s *SessionStore) OnChange(fn func(signedIn bool)) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *SessionStore) notify(signedIn bool) {
	s.listenersMu.Lock()
	listeners := append([]func(bool){}, s.listeners...)
	s.listenersMu.Unlock()
	for _, fn := range listeners {
		fn(signedIn)
	}
}

func validateProof(proof entity.IdentityProof) error {
	var missing []string
	switch proof.Kind {
	case entity.ProofGoogle:
		if strings.TrimSpace(proof.GoogleToken) == "" {
			missing = append(missing, "google token")
		}
	case entity.ProofRegistration:
		if strings.TrimSpace(proof.Username) == "" {
			missing = append(missing, "username")
		}
		if strings.TrimSpace(proof.Email) == "" {
			missing = append(missing, "email")
		}
		if proof.Password == "" {
			missing = append(missing, "password")
		}
	default:
		if strings.TrimSpace(proof.Username) == "" {
			missing = append(missing, "username")
		}
		if proof.Password == "" {
			missing = append(missing, "password")
		}
	}
	if len(missing) > 0 {
		return types.NewError(types.KindValidation, strings.Join(missing, ", ")+" required", nil)
	}
	return nil
}

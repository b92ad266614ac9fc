package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/authflow/internal/logging"
)

// SessionGuard owns the sign-up-in-progress flag.
type SessionGuard struct {
	signingUp atomic.Bool
}

// BeginSignUp raises the flag and returns the function that clears it.
// Call the returned function exactly once, typically with defer.
func (g *SessionGuard) BeginSignUp() (end func()) {
	g.signingUp.Store(true)
	var once sync.Once
	return func() { once.Do(g.EndSignUp) }
}

// EndSignUp clears the flag; callers use it to drop a stale flag before
// starting a new flow.
func (g *SessionGuard) EndSignUp() {
	g.signingUp.Store(false)
}

func (g *SessionGuard) SignUpInProgress() bool {
	return g.signingUp.Load()
}

// RememberMeStore is the preference used at cold start.
type RememberMeStore interface {
	RememberMe(ctx context.Context) (bool, error)
	SetRememberMe(ctx context.Context, enabled bool) error
	Clear(ctx context.Context) error
}

// SessionService ends sessions on explicit user request.
type SessionService struct {
	prefs     RememberMeStore
	auth      *AuthService
	federated *FederatedService
	log       logging.Logger
}

func NewSessionService(prefs RememberMeStore, auth *AuthService, federated *FederatedService, log logging.Logger) *SessionService {
	return &SessionService{prefs: prefs, auth: auth, federated: federated, log: log}
}

// Logout clears remember-me, signs out and forgets the picker account.
// Sign-out happens even if clearing the preference fails.
func (s *SessionService) Logout(ctx context.Context) error {
	var errs []error
	if err := s.prefs.Clear(ctx); err != nil {
		s.log.Error(ctx, "clear remember-me failed", "error", err)
		errs = append(errs, err)
	}
	s.auth.SignOut()
	if s.federated != nil {
		s.federated.ClearSession()
	}
	s.log.Info(ctx, "logged out")
	return errors.Join(errs...)
}

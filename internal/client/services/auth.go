// Package services contains application services for the client: credential
// operations, federated sign-in, the profile store, and session helpers.
// Credential operations never hand raw provider errors to the UI; every
// failure is classified by autherr and published to an ErrorReporter.
package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/authflow/internal/client/autherr"
	"github.com/dmitrijs2005/authflow/internal/client/backend"
	"github.com/dmitrijs2005/authflow/internal/logging"
	"github.com/go-playground/validator/v10"
)

// ErrorReporter receives classified failures for display.
type ErrorReporter interface {
	ReportAuthError(ctx context.Context, err *autherr.Error)
}

// ReporterFunc adapts a function to ErrorReporter.
type ReporterFunc func(ctx context.Context, err *autherr.Error)

func (f ReporterFunc) ReportAuthError(ctx context.Context, err *autherr.Error) { f(ctx, err) }

type credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type signUpForm struct {
	Email       string `validate:"required,email"`
	Password    string `validate:"required"`
	DisplayName string `validate:"required"`
}

type resetForm struct {
	Email string `validate:"required,email"`
}

// AuthService wraps the provider's credential operations.
type AuthService struct {
	auth     backend.AuthProvider
	report   ErrorReporter
	validate *validator.Validate
	log      logging.Logger
}

func NewAuthService(auth backend.AuthProvider, report ErrorReporter, log logging.Logger) *AuthService {
	return &AuthService{auth: auth, report: report, validate: validator.New(), log: log}
}

// fail classifies err, publishes it and returns the classified value.
func (s *AuthService) fail(ctx context.Context, op string, err error) error {
	ae := autherr.Classify(err)
	s.log.Warn(ctx, op+" failed", "kind", ae.Kind.String(), "error", err)
	s.report.ReportAuthError(ctx, ae)
	return ae
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if err := s.validate.Struct(credentials{Email: email, Password: password}); err != nil {
		return s.fail(ctx, "sign in", err)
	}
	if err := s.auth.SignIn(ctx, email, password); err != nil {
		return s.fail(ctx, "sign in", err)
	}
	s.log.Info(ctx, "signed in", "email", email)
	return nil
}

// SignUp creates the account, sets its display name, sends the
// verification mail and signs the new identity out again. A nil result
// means all steps completed. An account created before a later step
// failed is left in place.
func (s *AuthService) SignUp(ctx context.Context, email, password, displayName string) error {
	email = strings.TrimSpace(email)
	displayName = strings.TrimSpace(displayName)
	form := signUpForm{Email: email, Password: password, DisplayName: displayName}
	if err := s.validate.Struct(form); err != nil {
		return s.fail(ctx, "sign up", err)
	}

	id, err := s.auth.SignUp(ctx, email, password)
	if err != nil {
		return s.fail(ctx, "sign up", err)
	}
	if err := s.auth.UpdateProfile(ctx, backend.ProfileChanges{DisplayName: &displayName}); err != nil {
		return s.fail(ctx, "sign up: set display name", err)
	}
	if err := s.auth.SendEmailVerification(ctx); err != nil {
		return s.fail(ctx, "sign up: send verification", err)
	}
	s.auth.SignOut()

	s.log.Info(ctx, "account created", "uid", backend.UIDOf(id))
	return nil
}

// SendPasswordReset never reveals whether email is registered: an
// unknown-user answer is treated as success.
func (s *AuthService) SendPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := s.validate.Struct(resetForm{Email: email}); err != nil {
		return s.fail(ctx, "password reset", err)
	}
	err := s.auth.SendPasswordReset(ctx, email)
	if err == nil {
		return nil
	}
	if autherr.Classify(err).Kind == autherr.UserNotFound {
		s.log.Debug(ctx, "password reset for unknown address suppressed")
		return nil
	}
	return s.fail(ctx, "password reset", err)
}

// SignOut is a no-op without a current identity.
func (s *AuthService) SignOut() {
	if s.auth.CurrentIdentity() == nil {
		return
	}
	s.auth.SignOut()
}

package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/authflow/internal/client/autherr"
	"github.com/dmitrijs2005/authflow/internal/client/backend"
	"github.com/dmitrijs2005/authflow/internal/logging"
)

// FederatedService signs in with an ID token obtained from an external
// account picker.
type FederatedService struct {
	auth     backend.AuthProvider
	picker   backend.IDTokenSource
	clientID string
	report   ErrorReporter
	log      logging.Logger
}

func NewFederatedService(auth backend.AuthProvider, picker backend.IDTokenSource, clientID string, report ErrorReporter, log logging.Logger) *FederatedService {
	return &FederatedService{auth: auth, picker: picker, clientID: clientID, report: report, log: log}
}

// SignIn returns an informational *autherr.Error when the user closes
// the picker.
func (s *FederatedService) SignIn(ctx context.Context) error {
	if s.clientID == "" || s.picker == nil {
		return s.publish(ctx, autherr.WithMessage(autherr.ConfigurationError, "Google Sign-In is not configured correctly."))
	}

	token, err := s.picker.SignIn(ctx)
	switch {
	case errors.Is(err, backend.ErrCancelled):
		ae := autherr.WithMessage(autherr.Unknown, "Google sign-in was cancelled.")
		ae.Informational = true
		ae.Err = err
		return s.publish(ctx, ae)
	case err != nil:
		ae := autherr.WithMessage(autherr.NetworkError, "Google sign-in failed.")
		ae.Err = err
		return s.publish(ctx, ae)
	case token == "":
		return s.publish(ctx, autherr.WithMessage(autherr.CredentialInvalid, "Google authentication failed. Please try again."))
	}

	if err := s.auth.SignInWithIDToken(ctx, backend.ProviderGoogle, token); err != nil {
		ae := autherr.Classify(err)
		var be *backend.Error
		if ae.Category() != autherr.CategoryNetwork && errors.As(err, &be) && be.Message != "" {
			ae = autherr.WithMessage(autherr.Unknown, be.Message)
			ae.Err = err
		}
		return s.publish(ctx, ae)
	}
	s.log.Info(ctx, "signed in with google")
	return nil
}

func (s *FederatedService) publish(ctx context.Context, ae *autherr.Error) error {
	if ae.Informational {
		s.log.Info(ctx, "federated sign-in", "outcome", ae.Message)
	} else {
		s.log.Warn(ctx, "federated sign-in failed", "kind", ae.Kind.String(), "error", ae)
	}
	s.report.ReportAuthError(ctx, ae)
	return ae
}

// ClearSession forgets the picker's account so the next sign-in asks again.
func (s *FederatedService) ClearSession() {
	if s.picker == nil {
		return
	}
	s.picker.SignOut()
	s.picker.Disconnect()
}

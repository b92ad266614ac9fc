package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/authflow/internal/client/autherr"
	"github.com/dmitrijs2005/authflow/internal/client/services"
	"github.com/dmitrijs2005/authflow/internal/client/ui"
	"github.com/dmitrijs2005/authflow/internal/logging"
)

// ErrMissingInput is returned when a form is rejected before any backend
// call; the user has already seen a popup.
var ErrMissingInput = errors.New("missing input")

type Credentials interface {
	SignIn(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password, displayName string) error
	SendPasswordReset(ctx context.Context, email string) error
}

type FederatedSignIn interface {
	SignIn(ctx context.Context) error
}

type RememberMePref interface {
	RememberMe(ctx context.Context) (bool, error)
	SetRememberMe(ctx context.Context, enabled bool) error
}

type SignUpGuard interface {
	BeginSignUp() (end func())
	EndSignUp()
}

// LoginController holds the login screen's actions. Auth failures are shown
// by the services' ErrorReporter (see AuthErrorPopups), not here.
type LoginController struct {
	creds     Credentials
	federated FederatedSignIn
	prefs     RememberMePref
	guard     SignUpGuard
	presenter ui.Presenter
	loader    ui.Loader
	log       logging.Logger
}

func NewLoginController(creds Credentials, federated FederatedSignIn, prefs RememberMePref, guard SignUpGuard,
	presenter ui.Presenter, loader ui.Loader, log logging.Logger) *LoginController {
	return &LoginController{
		creds:     creds,
		federated: federated,
		prefs:     prefs,
		guard:     guard,
		presenter: presenter,
		loader:    loader,
		log:       log,
	}
}

// AuthErrorPopups shows classified auth failures. Informational results,
// such as a closed account picker, are not errors.
func AuthErrorPopups(p ui.Presenter) services.ReporterFunc {
	return func(_ context.Context, err *autherr.Error) {
		if err.Informational {
			p.ShowInfo("Sign-In", err.Message)
			return
		}
		p.ShowError("Authentication Error", err.Message)
	}
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// RememberMe is the toggle's initial state.
func (c *LoginController) RememberMe(ctx context.Context) bool {
	on, err := c.prefs.RememberMe(ctx)
	if err != nil {
		c.log.Warn(ctx, "read remember-me failed", "error", err)
	}
	return on
}

func (c *LoginController) saveRememberMe(ctx context.Context, on bool) {
	if err := c.prefs.SetRememberMe(ctx, on); err != nil {
		c.log.Error(ctx, "save remember-me failed", "error", err)
	}
}

// SignIn leaves blank fields to the credential validator, which reports a
// validation error without calling the backend. Remember-me is saved only
// for complete forms.
func (c *LoginController) SignIn(ctx context.Context, email, password string, remember bool) error {
	if !blank(email) && !blank(password) {
		c.saveRememberMe(ctx, remember)
		c.loader.Show()
		defer c.loader.Hide()
	}

	return c.creds.SignIn(ctx, strings.TrimSpace(email), password)
}

func (c *LoginController) SignInWithGoogle(ctx context.Context, remember bool) error {
	c.saveRememberMe(ctx, remember)
	c.loader.Show()
	defer c.loader.Hide()

	return c.federated.SignIn(ctx)
}

// SignUp keeps the sign-up flag raised for the whole sequence so the
// router leaves the temporarily signed-in, unverified account alone.
func (c *LoginController) SignUp(ctx context.Context, email, username, password, confirm string) error {
	if blank(email) || blank(username) || blank(password) {
		c.presenter.ShowError("Missing Information", "Email, username, and password are required.")
		return ErrMissingInput
	}
	if password != confirm {
		c.presenter.ShowError("Sign Up Failed", "Passwords do not match.")
		return ErrMissingInput
	}

	c.loader.Show()
	defer c.loader.Hide()
	c.guard.EndSignUp()
	end := c.guard.BeginSignUp()
	defer end()

	if err := c.creds.SignUp(ctx, strings.TrimSpace(email), password, strings.TrimSpace(username)); err != nil {
		return err
	}

	c.presenter.ShowConfirmation(ui.PopupInfo, "Verification Email Sent",
		"Please verify your email address before logging in.\n\nCheck your inbox.", nil, nil)
	return nil
}

// ForgotPassword reports success whether or not the address is registered.
func (c *LoginController) ForgotPassword(ctx context.Context, email string) error {
	if blank(email) {
		c.presenter.ShowError("Missing Information", "Please enter your email address.")
		return ErrMissingInput
	}

	c.loader.Show()
	defer c.loader.Hide()

	if err := c.creds.SendPasswordReset(ctx, strings.TrimSpace(email)); err != nil {
		return err
	}
	c.presenter.ShowConfirmation(ui.PopupInfo, "Email Sent",
		"If an account exists for this email, a password reset link has been sent.", nil, nil)
	return nil
}

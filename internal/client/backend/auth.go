package backend

import "context"

// ProfileChanges lists identity display fields to update; nil leaves a
// field unchanged.
type ProfileChanges struct {
	DisplayName *string
	PhotoURL    *string
}

type AuthProvider interface {
	// CheckDependencies verifies the backend is reachable and restores any
	// persisted session.
	CheckDependencies(ctx context.Context) error
	CurrentIdentity() *Identity
	// Subscribe returns a channel that receives a tick after every
	// authentication state change, and a function that ends the
	// subscription.
	Subscribe() (<-chan struct{}, func())

	SignIn(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password string) (*Identity, error)
	SignInWithIDToken(ctx context.Context, provider, idToken string) error
	UpdateProfile(ctx context.Context, changes ProfileChanges) error
	Reload(ctx context.Context) error
	SignOut()
	SendEmailVerification(ctx context.Context) error
	SendPasswordReset(ctx context.Context, email string) error
}

// IDTokenSource is an external account picker.
type IDTokenSource interface {
	// SignIn returns an ID token, or ErrCancelled if the user closed the
	// picker.
	SignIn(ctx context.Context) (string, error)
	SignOut()
	Disconnect()
}

package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/authflow/internal/client/backend"
	"github.com/dmitrijs2005/authflow/internal/client/backend/health"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuth() *Auth {
	return NewAuth(WithBcryptCost(bcrypt.MinCost))
}

func requireCode(t *testing.T, err error, want backend.Code) {
	t.Helper()
	require.Error(t, err)
	code, ok := backend.CodeOf(err)
	require.True(t, ok, "expected *backend.Error, got %T", err)
	assert.Equal(t, want, code)
}

func drained(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	case <-time.After(50 * time.Millisecond):
		return false
	}
}

func TestSignUp_CreatesUnverifiedPasswordAccountAndNotifies(t *testing.T) {
	a := newAuth()
	ch, unsub := a.Subscribe()
	defer unsub()

	id, err := a.SignUp(context.Background(), " Ann@Example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", id.Email)
	assert.False(t, id.EmailVerified)
	assert.True(t, id.HasProvider(backend.ProviderPassword))
	assert.NotEmpty(t, id.UID)

	assert.True(t, drained(ch))
	assert.Equal(t, id.UID, a.CurrentIdentity().UID)
}

func TestSignUp_Errors(t *testing.T) {
	a := newAuth()
	ctx := context.Background()

	_, err := a.SignUp(ctx, "", "secret1")
	requireCode(t, err, backend.CodeMissingEmail)
	_, err = a.SignUp(ctx, "not-an-email", "secret1")
	requireCode(t, err, backend.CodeInvalidEmail)
	_, err = a.SignUp(ctx, "a@b.io", "")
	requireCode(t, err, backend.CodeMissingPassword)
	_, err = a.SignUp(ctx, "a@b.io", "123")
	requireCode(t, err, backend.CodeWeakPassword)

	_, err = a.SignUp(ctx, "a@b.io", "secret1")
	require.NoError(t, err)
	_, err = a.SignUp(ctx, "A@B.io", "secret2")
	requireCode(t, err, backend.CodeEmailAlreadyInUse)
}

func TestSignIn(t *testing.T) {
	a := newAuth()
	ctx := context.Background()
	_, err := a.SignUp(ctx, "a@b.io", "secret1")
	require.NoError(t, err)
	a.SignOut()
	require.Nil(t, a.CurrentIdentity())

	requireCode(t, a.SignIn(ctx, "nobody@b.io", "secret1"), backend.CodeUserNotFound)
	requireCode(t, a.SignIn(ctx, "a@b.io", "wrong!"), backend.CodeWrongPassword)
	requireCode(t, a.SignIn(ctx, "a@b.io", ""), backend.CodeMissingPassword)

	require.NoError(t, a.SignIn(ctx, "a@b.io", "secret1"))
	assert.Equal(t, "a@b.io", a.CurrentIdentity().Email)

	a.Disable("a@b.io")
	requireCode(t, a.Reload(ctx), backend.CodeUserDisabled)
	a.SignOut()
	requireCode(t, a.SignIn(ctx, "a@b.io", "secret1"), backend.CodeUserDisabled)
}

func TestSignOut_NoIdentityDoesNotNotify(t *testing.T) {
	a := newAuth()
	ch, unsub := a.Subscribe()
	defer unsub()

	a.SignOut()
	assert.False(t, drained(ch))
}

func TestSubscribe_CoalescesAndUnsubscribeCloses(t *testing.T) {
	a := newAuth()
	ctx := context.Background()
	ch, unsub := a.Subscribe()

	_, err := a.SignUp(ctx, "a@b.io", "secret1")
	require.NoError(t, err)
	a.SignOut()

	assert.True(t, drained(ch))
	assert.False(t, drained(ch), "full buffer drops extra ticks")

	unsub()
	unsub()
	_, open := <-ch
	assert.False(t, open)
}

func TestVerificationFlow_VisibleAfterReload(t *testing.T) {
	a := newAuth()
	ctx := context.Background()
	_, err := a.SignUp(ctx, "a@b.io", "secret1")
	require.NoError(t, err)

	require.NoError(t, a.SendEmailVerification(ctx))
	mails := a.Outbox()
	require.Len(t, mails, 1)
	assert.Equal(t, MailVerifyEmail, mails[0].Kind)

	requireCode(t, a.ApplyActionCode("bogus"), backend.CodeInvalidCredential)
	require.NoError(t, a.ApplyActionCode(mails[0].Code))
	assert.False(t, a.CurrentIdentity().EmailVerified, "stale until reload")

	require.NoError(t, a.Reload(ctx))
	assert.True(t, a.CurrentIdentity().EmailVerified)

	requireCode(t, a.ApplyActionCode(mails[0].Code), backend.CodeInvalidCredential)
}

func TestSendPasswordReset_DoesNotRevealRegistration(t *testing.T) {
	a := newAuth()
	ctx := context.Background()
	_, err := a.SignUp(ctx, "a@b.io", "secret1")
	require.NoError(t, err)
	a.SignOut()

	require.NoError(t, a.SendPasswordReset(ctx, "ghost@b.io"))
	assert.Empty(t, a.Outbox())

	require.NoError(t, a.SendPasswordReset(ctx, "a@b.io"))
	mails := a.Outbox()
	require.Len(t, mails, 1)

	require.NoError(t, a.ConfirmPasswordReset(mails[0].Code, "brandnew"))
	require.NoError(t, a.SignIn(ctx, "a@b.io", "brandnew"))

	requireCode(t, a.SendPasswordReset(ctx, "nope"), backend.CodeInvalidEmail)
}

func TestUpdateProfileAndNoSession(t *testing.T) {
	a := newAuth()
	ctx := context.Background()
	name := "Ann"

	requireCode(t, a.UpdateProfile(ctx, backend.ProfileChanges{DisplayName: &name}), backend.CodeNoSession)
	requireCode(t, a.Reload(ctx), backend.CodeNoSession)
	requireCode(t, a.SendEmailVerification(ctx), backend.CodeNoSession)

	_, err := a.SignUp(ctx, "a@b.io", "secret1")
	require.NoError(t, err)
	photo := "https://img/1.png"
	require.NoError(t, a.UpdateProfile(ctx, backend.ProfileChanges{DisplayName: &name, PhotoURL: &photo}))

	cur := a.CurrentIdentity()
	assert.Equal(t, "Ann", cur.DisplayName)
	assert.Equal(t, photo, cur.PhotoURL)
}

func googleToken(t *testing.T, email string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "g-1", "email": email, "name": "Gee", "picture": "https://img/g.png",
	})
	s, err := tok.SignedString([]byte("k"))
	require.NoError(t, err)
	return s
}

func TestSignInWithIDToken(t *testing.T) {
	a := newAuth()
	ctx := context.Background()

	requireCode(t, a.SignInWithIDToken(ctx, "github.com", googleToken(t, "g@b.io")), backend.CodeOperationNotAllowed)
	requireCode(t, a.SignInWithIDToken(ctx, backend.ProviderGoogle, "garbage"), backend.CodeInvalidCredential)
	requireCode(t, a.SignInWithIDToken(ctx, backend.ProviderGoogle, googleToken(t, "")), backend.CodeInvalidCredential)

	require.NoError(t, a.SignInWithIDToken(ctx, backend.ProviderGoogle, googleToken(t, "g@b.io")))
	cur := a.CurrentIdentity()
	assert.True(t, cur.EmailVerified)
	assert.True(t, cur.HasProvider(backend.ProviderGoogle))
	assert.Equal(t, "Gee", cur.DisplayName)

	a.SignOut()
	require.NoError(t, a.SignInWithIDToken(ctx, backend.ProviderGoogle, googleToken(t, "g@b.io")))
	assert.Equal(t, cur.UID, a.CurrentIdentity().UID, "same account on second sign-in")

	_, err := a.SignUp(ctx, "p@b.io", "secret1")
	require.NoError(t, err)
	requireCode(t, a.SignInWithIDToken(ctx, backend.ProviderGoogle, googleToken(t, "p@b.io")), backend.CodeAccountExistsWithDifferentCredential)
	requireCode(t, a.SignIn(ctx, "g@b.io", "whatever"), backend.CodeAccountExistsWithDifferentCredential)
}

func TestOfflineAndDependencies(t *testing.T) {
	boom := errors.New("health down")
	a := NewAuth(WithBcryptCost(bcrypt.MinCost), WithHealthChecker(health.CheckerFunc(func(context.Context) error { return boom })))
	ctx := context.Background()

	assert.ErrorIs(t, a.CheckDependencies(ctx), boom)

	a.SetOffline(true)
	err := a.CheckDependencies(ctx)
	assert.ErrorIs(t, err, backend.ErrNetwork)
	assert.ErrorIs(t, a.SignIn(ctx, "a@b.io", "secret1"), backend.ErrNetwork)

	a.SetOffline(false)
	_, err = a.SignUp(ctx, "a@b.io", "secret1")
	require.NoError(t, err)
	a.SetOffline(true)
	assert.ErrorIs(t, a.Reload(ctx), backend.ErrNetwork)
	assert.NotNil(t, a.CurrentIdentity(), "network failure keeps the session")
}

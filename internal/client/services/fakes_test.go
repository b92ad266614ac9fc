package services

import (
	"context"

	"github.com/dmitrijs2005/authflow/internal/client/autherr"
	"github.com/dmitrijs2005/authflow/internal/client/backend"
)

// fakeAuth implements backend.AuthProvider for unit tests.
type fakeAuth struct {
	Current *backend.Identity

	SignInErr          error
	SignUpErr          error
	SignUpRet          *backend.Identity
	UpdateProfileErr   error
	ReloadErr          error
	SendVerifyErr      error
	SendResetErr       error
	SignInIDTokenErr   error
	CheckDependencyErr error

	Calls []string

	LastEmail       string
	LastPassword    string
	LastChanges     backend.ProfileChanges
	LastProvider    string
	LastIDToken     string
	SignOutCalls    int
	VerifyMailCalls int
}

func (f *fakeAuth) CheckDependencies(context.Context) error { return f.CheckDependencyErr }
func (f *fakeAuth) CurrentIdentity() *backend.Identity     { return f.Current.Clone() }
func (f *fakeAuth) Subscribe() (<-chan struct{}, func()) {
	return make(chan struct{}), func() {}
}

func (f *fakeAuth) SignIn(_ context.Context, email, password string) error {
	f.Calls = append(f.Calls, "SignIn")
	f.LastEmail, f.LastPassword = email, password
	return f.SignInErr
}

func (f *fakeAuth) SignUp(_ context.Context, email, password string) (*backend.Identity, error) {
	f.Calls = append(f.Calls, "SignUp")
	f.LastEmail, f.LastPassword = email, password
	if f.SignUpErr != nil {
		return nil, f.SignUpErr
	}
	f.Current = f.SignUpRet
	return f.SignUpRet.Clone(), nil
}

func (f *fakeAuth) SignInWithIDToken(_ context.Context, provider, idToken string) error {
	f.Calls = append(f.Calls, "SignInWithIDToken")
	f.LastProvider, f.LastIDToken = provider, idToken
	return f.SignInIDTokenErr
}

func (f *fakeAuth) UpdateProfile(_ context.Context, changes backend.ProfileChanges) error {
	f.Calls = append(f.Calls, "UpdateProfile")
	f.LastChanges = changes
	return f.UpdateProfileErr
}

func (f *fakeAuth) Reload(context.Context) error {
	f.Calls = append(f.Calls, "Reload")
	return f.ReloadErr
}

func (f *fakeAuth) SignOut() {
	f.Calls = append(f.Calls, "SignOut")
	f.SignOutCalls++
	f.Current = nil
}

func (f *fakeAuth) SendEmailVerification(context.Context) error {
	f.Calls = append(f.Calls, "SendEmailVerification")
	f.VerifyMailCalls++
	return f.SendVerifyErr
}

func (f *fakeAuth) SendPasswordReset(_ context.Context, email string) error {
	f.Calls = append(f.Calls, "SendPasswordReset")
	f.LastEmail = email
	return f.SendResetErr
}

// recorder collects reported errors.
type recorder struct {
	Reported []*autherr.Error
}

func (r *recorder) ReportAuthError(_ context.Context, err *autherr.Error) {
	r.Reported = append(r.Reported, err)
}

func (r *recorder) last() *autherr.Error {
	if len(r.Reported) == 0 {
		return nil
	}
	return r.Reported[len(r.Reported)-1]
}

// fakePicker implements backend.IDTokenSource.
type fakePicker struct {
	Token           string
	Err             error
	SignInCalls     int
	SignOutCalls    int
	DisconnectCalls int
}

func (p *fakePicker) SignIn(context.Context) (string, error) {
	p.SignInCalls++
	return p.Token, p.Err
}
func (p *fakePicker) SignOut()    { p.SignOutCalls++ }
func (p *fakePicker) Disconnect() { p.DisconnectCalls++ }

// fakePrefs implements RememberMeStore.
type fakePrefs struct {
	Value      bool
	Err        error
	ClearErr   error
	ClearCalls int
}

func (p *fakePrefs) RememberMe(context.Context) (bool, error) { return p.Value, p.Err }
func (p *fakePrefs) SetRememberMe(_ context.Context, v bool) error {
	p.Value = v
	return p.Err
}
func (p *fakePrefs) Clear(context.Context) error {
	p.ClearCalls++
	p.Value = false
	return p.ClearErr
}

package cli

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/authflow/internal/client/backend"
	"github.com/dmitrijs2005/authflow/internal/client/services"
	"github.com/dmitrijs2005/authflow/internal/client/ui"
)

type shown struct {
	kind  ui.PopupKind
	title string
	msg   string
}

// recPresenter records popups; confirmations are answered by calling the
// stored callbacks directly.
type recPresenter struct {
	mu        sync.Mutex
	popups    []shown
	onConfirm func()
	onCancel  func()
}

func (p *recPresenter) add(k ui.PopupKind, title, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.popups = append(p.popups, shown{k, title, msg})
}

func (p *recPresenter) ShowInfo(title, msg string)    { p.add(ui.PopupInfo, title, msg) }
func (p *recPresenter) ShowWarning(title, msg string) { p.add(ui.PopupWarning, title, msg) }
func (p *recPresenter) ShowError(title, msg string)   { p.add(ui.PopupError, title, msg) }
func (p *recPresenter) ShowConfirmation(k ui.PopupKind, title, msg string, onConfirm, onCancel func()) {
	p.add(k, title, msg)
	p.mu.Lock()
	p.onConfirm, p.onCancel = onConfirm, onCancel
	p.mu.Unlock()
}

func (p *recPresenter) last() shown {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.popups) == 0 {
		return shown{}
	}
	return p.popups[len(p.popups)-1]
}

type fakeCreds struct {
	SignInErr, SignUpErr, ResetErr error

	Calls           []string
	LastEmail       string
	LastPassword    string
	LastDisplayName string
	GuardDuringCall bool

	guard *services.SessionGuard
}

func (f *fakeCreds) SignIn(_ context.Context, email, password string) error {
	f.Calls = append(f.Calls, "SignIn")
	f.LastEmail, f.LastPassword = email, password
	return f.SignInErr
}

func (f *fakeCreds) SignUp(_ context.Context, email, password, displayName string) error {
	f.Calls = append(f.Calls, "SignUp")
	f.LastEmail, f.LastPassword, f.LastDisplayName = email, password, displayName
	if f.guard != nil {
		f.GuardDuringCall = f.guard.SignUpInProgress()
	}
	return f.SignUpErr
}

func (f *fakeCreds) SendPasswordReset(_ context.Context, email string) error {
	f.Calls = append(f.Calls, "SendPasswordReset")
	f.LastEmail = email
	return f.ResetErr
}

type fakeFederated struct {
	Err   error
	Calls int
}

func (f *fakeFederated) SignIn(context.Context) error {
	f.Calls++
	return f.Err
}

type fakeRemember struct {
	On       bool
	ReadErr  error
	SetCalls []bool
}

func (f *fakeRemember) RememberMe(context.Context) (bool, error) { return f.On, f.ReadErr }
func (f *fakeRemember) SetRememberMe(_ context.Context, on bool) error {
	f.SetCalls = append(f.SetCalls, on)
	f.On = on
	return nil
}

type fakeProfiles struct {
	Profile   *services.Profile
	GetErr    error
	UpdateErr error
	GetCalls  int
	LastUID   string
	LastName  string
	LastPhoto string

	// entered and block, when set, pause UpdateDisplayName.
	entered chan struct{}
	block   chan struct{}
}

func (f *fakeProfiles) GetCurrentProfile(_ context.Context, uid string) (*services.Profile, error) {
	f.GetCalls++
	f.LastUID = uid
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	p := *f.Profile
	return &p, nil
}

func (f *fakeProfiles) UpdateDisplayName(_ context.Context, uid, name string) error {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.LastUID, f.LastName = uid, name
	return f.UpdateErr
}

func (f *fakeProfiles) UpdatePhotoURL(_ context.Context, uid, url string) error {
	f.LastUID, f.LastPhoto = uid, url
	return f.UpdateErr
}

type fakeLogout struct{ Calls int }

func (f *fakeLogout) Logout(context.Context) error {
	f.Calls++
	return nil
}

type staticIdentity struct{ id *backend.Identity }

func (s staticIdentity) CurrentIdentity() *backend.Identity { return s.id.Clone() }

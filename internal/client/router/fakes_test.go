package router

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/authflow/internal/client/backend"
	"github.com/dmitrijs2005/authflow/internal/client/ui"
)

var errBoom = errors.New("boom")

// fakeAuth is a goroutine-safe backend.AuthProvider. Reload blocks on
// ReloadGate when it is set.
type fakeAuth struct {
	mu      sync.Mutex
	current *backend.Identity

	checkErrs     []error
	reloadErr     error
	sendVerifyErr error

	reloadGate    chan struct{}
	reloadStarted chan struct{}

	checks     int
	reloads    int
	signOuts   int
	sendVerify int

	bus backend.Broadcaster
}

func (f *fakeAuth) CheckDependencies(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checks++
	if len(f.checkErrs) == 0 {
		return nil
	}
	err := f.checkErrs[0]
	f.checkErrs = f.checkErrs[1:]
	return err
}

func (f *fakeAuth) CurrentIdentity() *backend.Identity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current.Clone()
}

func (f *fakeAuth) Subscribe() (<-chan struct{}, func()) { return f.bus.Subscribe() }

func (f *fakeAuth) SignIn(context.Context, string, string) error { return nil }
func (f *fakeAuth) SignUp(context.Context, string, string) (*backend.Identity, error) {
	return nil, errBoom
}
func (f *fakeAuth) SignInWithIDToken(context.Context, string, string) error    { return nil }
func (f *fakeAuth) UpdateProfile(context.Context, backend.ProfileChanges) error { return nil }
func (f *fakeAuth) SendPasswordReset(context.Context, string) error             { return nil }

func (f *fakeAuth) Reload(context.Context) error {
	f.mu.Lock()
	f.reloads++
	gate, started, err := f.reloadGate, f.reloadStarted, f.reloadErr
	f.mu.Unlock()
	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	return err
}

func (f *fakeAuth) SignOut() {
	f.mu.Lock()
	f.signOuts++
	had := f.current != nil
	f.current = nil
	f.mu.Unlock()
	if had {
		f.bus.Notify()
	}
}

func (f *fakeAuth) SendEmailVerification(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendVerify++
	return f.sendVerifyErr
}

// set replaces the identity without notifying subscribers.
func (f *fakeAuth) set(id *backend.Identity) {
	f.mu.Lock()
	f.current = id
	f.mu.Unlock()
}

// change replaces the identity and notifies subscribers.
func (f *fakeAuth) change(id *backend.Identity) {
	f.set(id)
	f.bus.Notify()
}

func (f *fakeAuth) counts() (checks, reloads, signOuts, sendVerify int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.checks, f.reloads, f.signOuts, f.sendVerify
}

type fakeProfiles struct {
	mu    sync.Mutex
	err   error
	panic bool
	uids  []string
}

func (p *fakeProfiles) EnsureProfileExistsAndTouchLogin(_ context.Context, uid string, _ *backend.Identity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.panic {
		panic("profile store exploded")
	}
	p.uids = append(p.uids, uid)
	return p.err
}

func (p *fakeProfiles) calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.uids...)
}

type fakePrefs struct {
	remember bool
	err      error
}

func (p fakePrefs) RememberMe(context.Context) (bool, error) { return p.remember, p.err }

type fakeGuard bool

func (g fakeGuard) SignUpInProgress() bool { return bool(g) }

type popup struct {
	kind      ui.PopupKind
	title     string
	msg       string
	onConfirm func()
	onCancel  func()
}

type fakePresenter struct {
	mu     sync.Mutex
	popups []popup
}

func (p *fakePresenter) add(pp popup) {
	p.mu.Lock()
	p.popups = append(p.popups, pp)
	p.mu.Unlock()
}

func (p *fakePresenter) ShowInfo(title, msg string) {
	p.add(popup{kind: ui.PopupInfo, title: title, msg: msg})
}
func (p *fakePresenter) ShowWarning(title, msg string) {
	p.add(popup{kind: ui.PopupWarning, title: title, msg: msg})
}
func (p *fakePresenter) ShowError(title, msg string) {
	p.add(popup{kind: ui.PopupError, title: title, msg: msg})
}
func (p *fakePresenter) ShowConfirmation(kind ui.PopupKind, title, msg string, onConfirm, onCancel func()) {
	p.add(popup{kind: kind, title: title, msg: msg, onConfirm: onConfirm, onCancel: onCancel})
}

func (p *fakePresenter) titles() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, pp := range p.popups {
		out = append(out, pp.title)
	}
	return out
}

func (p *fakePresenter) last() popup {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.popups[len(p.popups)-1]
}

type fakeNav struct {
	mu     sync.Mutex
	active ui.Screen
	loads  []ui.Screen
}

func (n *fakeNav) ActiveScreen() ui.Screen {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.active
}

func (n *fakeNav) LoadScreen(s ui.Screen) {
	n.mu.Lock()
	n.active = s
	n.loads = append(n.loads, s)
	n.mu.Unlock()
}

func (n *fakeNav) history() []ui.Screen {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]ui.Screen(nil), n.loads...)
}

package router

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/authflow/internal/client/autherr"
	"github.com/dmitrijs2005/authflow/internal/client/backend"
	"github.com/dmitrijs2005/authflow/internal/client/ui"
	"github.com/dmitrijs2005/authflow/internal/logging"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

const (
	titleConnection   = "Connection Error"
	msgConnection     = "Unable to connect to server.\n\nPlease check your internet connection and try again."
	titleUnverified   = "Email Not Verified"
	msgUnverified     = "You need to verify your email.\nWould you like us to resend the verification email?"
	titleVerifyFailed = "Verification Failed"
	msgVerifyFailed   = "We couldn't send the verification email.\n\nPlease try again later."
	titleStartup      = "Startup Error"
	msgStartup        = "Something went wrong while starting the app."
)

type ProfileEnsurer interface {
	EnsureProfileExistsAndTouchLogin(ctx context.Context, uid string, snapshot *backend.Identity) error
}

type Preferences interface {
	RememberMe(ctx context.Context) (bool, error)
}

type SignUpState interface {
	SignUpInProgress() bool
}

// Deps are the router's collaborators. All are required.
type Deps struct {
	Auth      backend.AuthProvider
	Profiles  ProfileEnsurer
	Prefs     Preferences
	Guard     SignUpState
	Presenter ui.Presenter
	Navigator ui.Navigator
	Loader    ui.Loader
}

type Option func(*Router)

func WithLogger(l logging.Logger) Option {
	return func(r *Router) { r.log = l }
}

// WithDependencyRetry bounds the dependency check to retries extra
// attempts on network errors, backing off exponentially from base.
func WithDependencyRetry(retries uint64, base time.Duration) Option {
	return func(r *Router) {
		r.retries = retries
		r.backoff = base
	}
}

// WithQuit sets what the connection popup's cancel button does.
func WithQuit(quit func()) Option {
	return func(r *Router) { r.quit = quit }
}

type Router struct {
	Deps
	log     logging.Logger
	retries uint64
	backoff time.Duration
	quit    func()

	mu          sync.Mutex
	phase       Phase
	previousUID string
	unsubscribe func()
	wg          sync.WaitGroup
}

func New(deps Deps, opts ...Option) *Router {
	r := &Router{
		Deps:    deps,
		log:     logging.Nop(),
		retries: 2,
		backoff: 500 * time.Millisecond,
		quit:    func() {},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Router) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Start is a no-op unless the router is uninitialized.
func (r *Router) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.phase != PhaseUninitialized {
		r.mu.Unlock()
		return nil
	}
	r.phase = PhaseInitializing
	r.mu.Unlock()

	r.Loader.Show()
	err := r.checkDependencies(ctx)
	r.Loader.Hide()

	if err != nil {
		r.mu.Lock()
		r.phase = PhaseUninitialized
		r.mu.Unlock()

		r.log.Error(ctx, "dependency check failed", "error", err)
		r.Presenter.ShowConfirmation(ui.PopupError, titleConnection, msgConnection,
			func() { _ = r.Start(ctx) },
			r.quit)
		return fmt.Errorf("dependency check: %w", err)
	}

	ch, unsubscribe := r.Auth.Subscribe()
	r.mu.Lock()
	r.unsubscribe = unsubscribe
	r.previousUID = backend.UIDOf(r.Auth.CurrentIdentity())
	r.phase = PhaseColdStart
	r.mu.Unlock()

	r.wg.Add(1)
	go r.watch(ctx, ch)

	r.log.Info(ctx, "router started")
	r.Route(ctx)
	return nil
}

func (r *Router) checkDependencies(ctx context.Context) error {
	b := retry.WithMaxRetries(r.retries, retry.NewExponential(r.backoff))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := r.Auth.CheckDependencies(ctx)
		if err != nil && autherr.IsNetwork(err) {
			r.log.Warn(ctx, "backend unreachable, retrying", "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
}

func (r *Router) watch(ctx context.Context, ch <-chan struct{}) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			r.onAuthStateChanged(ctx)
		}
	}
}

func (r *Router) onAuthStateChanged(ctx context.Context) {
	uid := backend.UIDOf(r.Auth.CurrentIdentity())

	r.mu.Lock()
	if !r.phase.Ready() || uid == r.previousUID {
		r.mu.Unlock()
		r.log.Debug(ctx, "auth state change ignored", "uid", uid)
		return
	}
	r.previousUID = uid
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.Route(ctx)
	}()
}

// claim moves the router into PhaseRouting. coldStart is true for the one
// decision that consumes the cold-start gate.
func (r *Router) claim() (coldStart bool, outcome Outcome, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.phase {
	case PhaseColdStart:
		r.phase = PhaseRouting
		return true, 0, true
	case PhaseIdle:
		r.phase = PhaseRouting
		return false, 0, true
	case PhaseRouting:
		return false, OutcomeDropped, false
	}
	return false, OutcomeNotReady, false
}

func (r *Router) release() {
	r.mu.Lock()
	if r.phase == PhaseRouting {
		r.phase = PhaseIdle
	}
	r.mu.Unlock()
}

// Route runs one routing decision for the current identity and returns
// its outcome. A call made while another decision runs is dropped.
func (r *Router) Route(ctx context.Context) (outcome Outcome) {
	log := r.log.With("decision_id", uuid.NewString())

	coldStart, outcome, ok := r.claim()
	if !ok {
		log.Debug(ctx, "routing trigger skipped", "outcome", outcome.String())
		return outcome
	}
	defer r.release()

	defer func() {
		if p := recover(); p != nil {
			outcome = r.fail(ctx, log, fmt.Errorf("panic: %v", p))
		}
	}()

	outcome, err := r.decide(ctx, log, coldStart)
	if err != nil {
		return r.fail(ctx, log, err)
	}
	log.Info(ctx, "routing decision", "outcome", outcome.String(), "cold_start", coldStart)
	return outcome
}

func (r *Router) fail(ctx context.Context, log logging.Logger, err error) Outcome {
	log.Error(ctx, "routing failed", "error", err)
	r.Presenter.ShowError(titleStartup, msgStartup)
	ui.NavigateIfNeeded(r.Navigator, ui.ScreenLogin)
	return OutcomeFailed
}

func (r *Router) toLogin() Outcome {
	ui.NavigateIfNeeded(r.Navigator, ui.ScreenLogin)
	return OutcomeLogin
}

func (r *Router) signOutToLogin() Outcome {
	r.Auth.SignOut()
	return r.toLogin()
}

func (r *Router) decide(ctx context.Context, log logging.Logger, coldStart bool) (Outcome, error) {
	current := r.Auth.CurrentIdentity()

	if coldStart {
		remember, err := r.Prefs.RememberMe(ctx)
		if err != nil {
			log.Warn(ctx, "remember-me unreadable, treating as off", "error", err)
		}
		if !remember {
			if current != nil {
				r.Auth.SignOut()
			}
			return r.toLogin(), nil
		}
	}

	if current == nil {
		return r.toLogin(), nil
	}

	if err := r.Auth.Reload(ctx); err != nil {
		if !autherr.IsNetwork(err) {
			log.Warn(ctx, "identity reload rejected, signing out", "error", err)
			return r.signOutToLogin(), nil
		}
		log.Warn(ctx, "identity reload failed on network, using cached identity", "error", err)
	} else {
		fresh := r.Auth.CurrentIdentity()
		if fresh == nil || fresh.UID != current.UID {
			return r.toLogin(), nil
		}
		current = fresh
	}

	if current.HasProvider(backend.ProviderPassword) && !current.EmailVerified {
		if r.Guard.SignUpInProgress() {
			log.Debug(ctx, "unverified account owned by sign-up flow")
			return OutcomeSignUpPending, nil
		}
		r.Presenter.ShowConfirmation(ui.PopupWarning, titleUnverified, msgUnverified,
			func() { r.resendVerification(ctx, log) },
			func() { r.signOutToLogin() })
		return OutcomeAwaitingChoice, nil
	}

	if err := r.Profiles.EnsureProfileExistsAndTouchLogin(ctx, current.UID, current); err != nil {
		return 0, fmt.Errorf("reconcile profile: %w", err)
	}
	ui.NavigateIfNeeded(r.Navigator, ui.ScreenProfile)
	return OutcomeProfile, nil
}

// resendVerification signs out and returns to login whatever the send
// outcome.
func (r *Router) resendVerification(ctx context.Context, log logging.Logger) {
	defer r.signOutToLogin()
	if err := r.Auth.SendEmailVerification(ctx); err != nil {
		log.Warn(ctx, "resend verification failed", "error", err)
		r.Presenter.ShowError(titleVerifyFailed, msgVerifyFailed)
	}
}

// Shutdown stops watching for state changes, waits for running decisions
// and signs out unless remember-me is on.
func (r *Router) Shutdown(ctx context.Context) {
	r.mu.Lock()
	unsubscribe := r.unsubscribe
	r.unsubscribe = nil
	r.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
	r.wg.Wait()

	r.mu.Lock()
	r.phase = PhaseUninitialized
	r.mu.Unlock()

	remember, err := r.Prefs.RememberMe(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		r.log.Warn(ctx, "remember-me unreadable at shutdown", "error", err)
	}
	if !remember && r.Auth.CurrentIdentity() != nil {
		r.log.Info(ctx, "remember-me off, ending session")
		r.Auth.SignOut()
	}
}

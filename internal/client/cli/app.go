package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/dmitrijs2005/authflow/internal/client/autherr"
	"github.com/dmitrijs2005/authflow/internal/client/backend"
	"github.com/dmitrijs2005/authflow/internal/client/backend/health"
	"github.com/dmitrijs2005/authflow/internal/client/backend/memory"
	"github.com/dmitrijs2005/authflow/internal/client/backend/rest"
	"github.com/dmitrijs2005/authflow/internal/client/config"
	"github.com/dmitrijs2005/authflow/internal/client/prefs"
	"github.com/dmitrijs2005/authflow/internal/client/repositories/documents"
	"github.com/dmitrijs2005/authflow/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/authflow/internal/client/router"
	"github.com/dmitrijs2005/authflow/internal/client/services"
	"github.com/dmitrijs2005/authflow/internal/client/storage"
	"github.com/dmitrijs2005/authflow/internal/client/ui"
	"github.com/dmitrijs2005/authflow/internal/common"
	"github.com/dmitrijs2005/authflow/internal/filex"
	"github.com/dmitrijs2005/authflow/internal/logging"
)

// getSimpleText, getPassword and getYesNo are indirections used to
// facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getYesNo      = GetYesNo
)

// MailBox is the memory backend's outbox and action-code handling.
type MailBox interface {
	Outbox() []memory.Mail
	ApplyActionCode(code string) error
	ConfirmPasswordReset(code, newPassword string) error
}

type App struct {
	cfg    *config.Config
	log    logging.Logger
	out    io.Writer
	reader *bufio.Reader

	term    *Terminal
	auth    backend.AuthProvider
	router  *router.Router
	login   *LoginController
	profile *ProfileController
	mail    MailBox

	quit    atomic.Bool
	closers []io.Closer
}

// NewApp opens local storage, builds the configured backend and wires the
// screens to the router.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	a := &App{cfg: c, log: log, out: os.Stdout, reader: bufio.NewReader(os.Stdin)}
	if err := a.openStack(ctx); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *App) openStack(ctx context.Context) error {
	dir, err := filex.EnsureDir(a.cfg.DataDir)
	if err != nil {
		return err
	}
	db, err := storage.OpenLocal(ctx, filepath.Join(dir, a.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("open local database: %w", err)
	}
	a.closers = append(a.closers, db)
	kv := metadata.NewSQLiteRepository(db)

	checker, err := health.New(a.cfg.HealthCheck, health.Options{
		HTTPURL:    strings.TrimRight(a.cfg.BackendURL, "/") + "/health",
		APIKey:     a.cfg.APIKey,
		HTTPClient: &http.Client{Timeout: a.cfg.RequestTimeout},
		GRPCAddr:   a.cfg.HealthGRPCAddr,
	})
	if err != nil {
		return err
	}
	if c, ok := checker.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}

	prompt := func(label string) (string, error) { return getSimpleText(a.reader, label, a.out) }
	clientID := a.cfg.GoogleClientID

	var (
		auth   backend.AuthProvider
		picker backend.IDTokenSource
	)
	switch a.cfg.Backend {
	case config.BackendMemory:
		m := memory.NewAuth(memory.WithHealthChecker(checker))
		auth, a.mail = m, m
		picker = NewDevTokenSource(prompt)
		if clientID == "" {
			clientID = "memory"
		}
	case config.BackendREST:
		auth = rest.New(a.cfg.BackendURL, a.cfg.APIKey, kv,
			rest.WithHealthChecker(checker),
			rest.WithLogger(a.log),
			rest.WithTimeout(a.cfg.RequestTimeout))
		picker = NewPromptTokenSource(prompt)
	default:
		return fmt.Errorf("%w %q", common.ErrUnknownBackend, a.cfg.Backend)
	}

	var docs backend.DocumentStore = memory.NewDocuments(time.Now)
	if a.cfg.ProfilesDSN != "" {
		pg, err := storage.OpenProfiles(ctx, a.cfg.ProfilesDSN)
		if err != nil {
			return fmt.Errorf("open profiles database: %w", err)
		}
		a.closers = append(a.closers, pg)
		docs = documents.NewPostgresStore(pg)
	}

	a.wire(auth, docs, prefs.NewStore(kv), picker, clientID)
	return nil
}

func (a *App) wire(auth backend.AuthProvider, docs backend.DocumentStore, store *prefs.Store, picker backend.IDTokenSource, clientID string) {
	a.auth = auth
	a.term = NewTerminal(a.out)
	a.out = a.term.Writer()

	report := AuthErrorPopups(a.term)
	authSvc := services.NewAuthService(auth, report, a.log)
	federated := services.NewFederatedService(auth, picker, clientID, report, a.log)
	profiles := services.NewProfileService(auth, docs)
	session := services.NewSessionService(store, authSvc, federated, a.log)
	guard := &services.SessionGuard{}

	a.login = NewLoginController(authSvc, federated, store, guard, a.term, a.term, a.log)
	a.profile = NewProfileController(profiles, session, auth, a.term, a.term, a.out, a.log)
	a.router = router.New(router.Deps{
		Auth:      auth,
		Profiles:  profiles,
		Prefs:     store,
		Guard:     guard,
		Presenter: a.term,
		Navigator: a.term,
		Loader:    a.term,
	},
		router.WithLogger(a.log),
		router.WithDependencyRetry(a.cfg.DependencyRetries, a.cfg.DependencyBackoff),
		router.WithQuit(a.Quit),
	)
}

// start loads the profile whenever its screen opens and makes the first
// routing decision.
func (a *App) start(ctx context.Context) {
	a.term.OnScreen(func(s ui.Screen) {
		if s == ui.ScreenProfile {
			_ = a.profile.Load(ctx)
		}
	})
	if err := a.router.Start(ctx); err != nil {
		a.log.Warn(ctx, "startup incomplete", "error", err)
	}
}

func (a *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run blocks until the user exits or the process is signalled. Either way
// the router's quit hook runs before local storage is closed.
func (a *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer a.close()

	a.initSignalHandler(cancelFunc)

	printlnFn("Welcome to authflow (type 'help' for commands)")
	a.start(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		runREPL(ctx, a, a.getStatus, a.reader)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		a.log.Info(ctx, "interrupted")
	}
	a.router.Shutdown(context.WithoutCancel(ctx))
}

// Quit makes the REPL stop after the current command.
func (a *App) Quit() { a.quit.Store(true) }

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.log.Warn(context.Background(), "close failed", "error", err)
		}
	}
	a.closers = nil
}

func (a *App) getStatus() string {
	s := string(a.term.ActiveScreen())
	if id := a.auth.CurrentIdentity(); id != nil {
		s = strings.TrimSpace(s + " " + id.Email)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) screen() ui.Screen    { return a.term.ActiveScreen() }
func (a *App) awaitingAnswer() bool { return a.term.Pending() }
func (a *App) answer(yes bool)      { a.term.Answer(yes) }
func (a *App) quitting() bool       { return a.quit.Load() }
func (a *App) hasMail() bool        { return a.mail != nil }

func (a *App) SignIn(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	remember, err := getYesNo(a.reader, "Remember me?", a.login.RememberMe(ctx), a.out)
	if err != nil {
		return err
	}
	return a.login.SignIn(ctx, email, password, remember)
}

func (a *App) Google(ctx context.Context) error {
	remember, err := getYesNo(a.reader, "Remember me?", a.login.RememberMe(ctx), a.out)
	if err != nil {
		return err
	}
	return a.login.SignInWithGoogle(ctx, remember)
}

func (a *App) SignUp(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	confirm, err := getPassword(a.reader, "Confirm password", a.out)
	if err != nil {
		return err
	}
	return a.login.SignUp(ctx, email, username, password, confirm)
}

func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	return a.login.ForgotPassword(ctx, email)
}

func (a *App) ShowProfile(ctx context.Context) error {
	if a.profile.Current() == nil {
		return a.profile.Load(ctx)
	}
	a.profile.Print()
	return nil
}

func (a *App) Rename(ctx context.Context, name string) error  { return a.profile.Rename(ctx, name) }
func (a *App) SetPhoto(ctx context.Context, url string) error { return a.profile.SetPhoto(ctx, url) }
func (a *App) Logout(ctx context.Context) error               { return a.profile.Logout(ctx) }

var errNoMailBox = errors.New("backend has no local outbox")

func (a *App) Mail(ctx context.Context) error {
	if a.mail == nil {
		return errNoMailBox
	}
	box := a.mail.Outbox()
	if len(box) == 0 {
		fmt.Fprintln(a.out, "No mail.")
		return nil
	}
	for i, m := range box {
		fmt.Fprintf(a.out, "%d. %s to %s, code %s\n", i+1, m.Kind, m.To, m.Code)
	}
	return nil
}

func (a *App) Verify(ctx context.Context, code string) error {
	if a.mail == nil {
		return errNoMailBox
	}
	if err := a.mail.ApplyActionCode(code); err != nil {
		a.term.ShowError("Verification Failed", autherr.Classify(err).Message)
		return err
	}
	a.term.ShowInfo("Email Verified", "Your email address has been verified. You can sign in now.")
	return nil
}

func (a *App) ResetPassword(ctx context.Context, code string) error {
	if a.mail == nil {
		return errNoMailBox
	}
	password, err := getPassword(a.reader, "New password", a.out)
	if err != nil {
		return err
	}
	if err := a.mail.ConfirmPasswordReset(code, password); err != nil {
		a.term.ShowError("Password Reset Failed", autherr.Classify(err).Message)
		return err
	}
	a.term.ShowInfo("Password Changed", "You can sign in with your new password.")
	return nil
}

package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/dmitrijs2005/authflow/internal/client/backend"
	"github.com/dmitrijs2005/authflow/internal/client/backend/health"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

// MailKind tells what an outbox message is for.
type MailKind string

const (
	MailVerifyEmail   MailKind = "verify-email"
	MailPasswordReset MailKind = "password-reset"
)

// Mail is a message the provider would have sent.
type Mail struct {
	Kind MailKind
	To   string
	Code string
}

type account struct {
	identity     backend.Identity
	passwordHash []byte
	disabled     bool
}

type Option func(*Auth)

// WithHealthChecker makes CheckDependencies run c.
func WithHealthChecker(c health.Checker) Option {
	return func(a *Auth) { a.checker = c }
}

// WithBcryptCost overrides the hashing cost.
func WithBcryptCost(cost int) Option {
	return func(a *Auth) { a.cost = cost }
}

type Auth struct {
	mu       sync.Mutex
	byEmail  map[string]*account
	byUID    map[string]*account
	current  *backend.Identity
	outbox   []Mail
	codes    map[string]Mail
	events   backend.Broadcaster
	offline  bool
	checker  health.Checker
	cost     int
	validate *validator.Validate
}

func NewAuth(opts ...Option) *Auth {
	a := &Auth{
		byEmail:  make(map[string]*account),
		byUID:    make(map[string]*account),
		codes:    make(map[string]Mail),
		checker:  health.None,
		cost:     bcrypt.DefaultCost,
		validate: validator.New(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// SetOffline makes every remote call fail with a network error.
func (a *Auth) SetOffline(offline bool) {
	a.mu.Lock()
	a.offline = offline
	a.mu.Unlock()
}

func (a *Auth) networkErr() error {
	if a.offline {
		return backend.NewError(backend.CodeNetworkRequestFailed, "backend unreachable")
	}
	return nil
}

func (a *Auth) CheckDependencies(ctx context.Context) error {
	a.mu.Lock()
	err := a.networkErr()
	a.mu.Unlock()
	if err != nil {
		return err
	}
	return a.checker.Check(ctx)
}

func (a *Auth) CurrentIdentity() *backend.Identity {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current.Clone()
}

func (a *Auth) Subscribe() (<-chan struct{}, func()) {
	return a.events.Subscribe()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (a *Auth) checkEmail(email string) error {
	if email == "" {
		return backend.NewError(backend.CodeMissingEmail, "email is required")
	}
	if a.validate.Var(email, "email") != nil {
		return backend.NewError(backend.CodeInvalidEmail, "malformed email")
	}
	return nil
}

func (a *Auth) SignIn(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if err := a.checkEmail(email); err != nil {
		return err
	}
	if password == "" {
		return backend.NewError(backend.CodeMissingPassword, "password is required")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.networkErr(); err != nil {
		return err
	}
	acc, ok := a.byEmail[email]
	if !ok {
		return backend.NewError(backend.CodeUserNotFound, "no user record")
	}
	if acc.passwordHash == nil {
		return backend.NewError(backend.CodeAccountExistsWithDifferentCredential, "account uses another sign-in method")
	}
	if bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)) != nil {
		return backend.NewError(backend.CodeWrongPassword, "password is invalid")
	}
	if acc.disabled {
		return backend.NewError(backend.CodeUserDisabled, "account disabled")
	}
	a.current = acc.identity.Clone()
	a.events.Notify()
	return nil
}

// SignUp creates an unverified password account and signs it in.
func (a *Auth) SignUp(ctx context.Context, email, password string) (*backend.Identity, error) {
	email = normalizeEmail(email)
	if err := a.checkEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, backend.NewError(backend.CodeMissingPassword, "password is required")
	}
	if len(password) < minPasswordLen {
		return nil, backend.NewError(backend.CodeWeakPassword, "password should be at least 6 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return nil, backend.NewError(backend.CodeInternal, err.Error())
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.networkErr(); err != nil {
		return nil, err
	}
	if _, exists := a.byEmail[email]; exists {
		return nil, backend.NewError(backend.CodeEmailAlreadyInUse, "email already registered")
	}
	acc := &account{
		identity: backend.Identity{
			UID:       uuid.NewString(),
			Email:     email,
			Providers: []string{backend.ProviderPassword},
		},
		passwordHash: hash,
	}
	a.byEmail[email] = acc
	a.byUID[acc.identity.UID] = acc
	a.current = acc.identity.Clone()
	a.events.Notify()
	return acc.identity.Clone(), nil
}

type idTokenClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// SignInWithIDToken trusts the token's claims without verifying its
// signature. Unknown emails get a new verified account.
func (a *Auth) SignInWithIDToken(ctx context.Context, provider, idToken string) error {
	if provider != backend.ProviderGoogle {
		return backend.NewError(backend.CodeOperationNotAllowed, "provider not enabled: "+provider)
	}
	var claims idTokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, &claims); err != nil {
		return backend.NewError(backend.CodeInvalidCredential, err.Error())
	}
	email := normalizeEmail(claims.Email)
	if email == "" {
		return backend.NewError(backend.CodeInvalidCredential, "id token has no email")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.networkErr(); err != nil {
		return err
	}
	acc, ok := a.byEmail[email]
	switch {
	case !ok:
		acc = &account{identity: backend.Identity{
			UID:           uuid.NewString(),
			Email:         email,
			DisplayName:   claims.Name,
			PhotoURL:      claims.Picture,
			EmailVerified: true,
			Providers:     []string{backend.ProviderGoogle},
		}}
		a.byEmail[email] = acc
		a.byUID[acc.identity.UID] = acc
	case !acc.identity.HasProvider(backend.ProviderGoogle):
		return backend.NewError(backend.CodeAccountExistsWithDifferentCredential, "account uses another sign-in method")
	case acc.disabled:
		return backend.NewError(backend.CodeUserDisabled, "account disabled")
	}
	a.current = acc.identity.Clone()
	a.events.Notify()
	return nil
}

func (a *Auth) currentAccountLocked() (*account, error) {
	if a.current == nil {
		return nil, backend.NewError(backend.CodeNoSession, "no user is signed in")
	}
	acc, ok := a.byUID[a.current.UID]
	if !ok {
		return nil, backend.NewError(backend.CodeUserNotFound, "user record deleted")
	}
	return acc, nil
}

func (a *Auth) UpdateProfile(ctx context.Context, changes backend.ProfileChanges) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.networkErr(); err != nil {
		return err
	}
	acc, err := a.currentAccountLocked()
	if err != nil {
		return err
	}
	if changes.DisplayName != nil {
		acc.identity.DisplayName = *changes.DisplayName
		a.current.DisplayName = *changes.DisplayName
	}
	if changes.PhotoURL != nil {
		acc.identity.PhotoURL = *changes.PhotoURL
		a.current.PhotoURL = *changes.PhotoURL
	}
	return nil
}

// Reload refreshes the current snapshot from the account record.
func (a *Auth) Reload(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.networkErr(); err != nil {
		return err
	}
	acc, err := a.currentAccountLocked()
	if err != nil {
		return err
	}
	if acc.disabled {
		return backend.NewError(backend.CodeUserDisabled, "account disabled")
	}
	a.current = acc.identity.Clone()
	return nil
}

func (a *Auth) SignOut() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return
	}
	a.current = nil
	a.events.Notify()
}

func (a *Auth) SendEmailVerification(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.networkErr(); err != nil {
		return err
	}
	acc, err := a.currentAccountLocked()
	if err != nil {
		return err
	}
	a.sendLocked(MailVerifyEmail, acc.identity.Email)
	return nil
}

// SendPasswordReset succeeds for unknown addresses without sending mail.
func (a *Auth) SendPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := a.checkEmail(email); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.networkErr(); err != nil {
		return err
	}
	if acc, ok := a.byEmail[email]; ok && acc.passwordHash != nil {
		a.sendLocked(MailPasswordReset, email)
	}
	return nil
}

func (a *Auth) sendLocked(kind MailKind, to string) {
	m := Mail{Kind: kind, To: to, Code: uuid.NewString()}
	a.outbox = append(a.outbox, m)
	a.codes[m.Code] = m
}

// Outbox returns the mails sent so far.
func (a *Auth) Outbox() []Mail {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Mail(nil), a.outbox...)
}

// ApplyActionCode consumes a verification code and marks the address
// verified. The signed-in snapshot changes only on the next Reload.
func (a *Auth) ApplyActionCode(code string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	m, ok := a.codes[code]
	if !ok || m.Kind != MailVerifyEmail {
		return backend.NewError(backend.CodeInvalidCredential, "invalid action code")
	}
	delete(a.codes, code)
	acc, ok := a.byEmail[m.To]
	if !ok {
		return backend.NewError(backend.CodeUserNotFound, "no user record")
	}
	acc.identity.EmailVerified = true
	return nil
}

// ConfirmPasswordReset consumes a reset code and sets a new password.
func (a *Auth) ConfirmPasswordReset(code, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return backend.NewError(backend.CodeWeakPassword, "password should be at least 6 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), a.cost)
	if err != nil {
		return backend.NewError(backend.CodeInternal, err.Error())
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	m, ok := a.codes[code]
	if !ok || m.Kind != MailPasswordReset {
		return backend.NewError(backend.CodeInvalidCredential, "invalid action code")
	}
	delete(a.codes, code)
	acc, ok := a.byEmail[m.To]
	if !ok {
		return backend.NewError(backend.CodeUserNotFound, "no user record")
	}
	acc.passwordHash = hash
	return nil
}

// Disable blocks further sign-ins and reloads for email.
func (a *Auth) Disable(email string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if acc, ok := a.byEmail[normalizeEmail(email)]; ok {
		acc.disabled = true
	}
}

var _ backend.AuthProvider = (*Auth)(nil)

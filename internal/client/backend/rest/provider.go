package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/authflow/internal/client/backend"
	"github.com/dmitrijs2005/authflow/internal/client/backend/health"
	"github.com/dmitrijs2005/authflow/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/authflow/internal/common"
	"github.com/dmitrijs2005/authflow/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

const refreshLeeway = 30 * time.Second

type Option func(*Provider)

func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.http = c }
}

func WithHealthChecker(c health.Checker) Option {
	return func(p *Provider) { p.checker = c }
}

func WithLogger(l logging.Logger) Option {
	return func(p *Provider) { p.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

// WithTimeout bounds calls that have no caller context (SignOut).
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) { p.timeout = d }
}

type Provider struct {
	baseURL string
	apiKey  string
	store   metadata.Repository
	http    *http.Client
	checker health.Checker
	log     logging.Logger
	now     func() time.Time
	timeout time.Duration

	mu      sync.Mutex
	sess    *session
	current *backend.Identity
	events  backend.Broadcaster
}

// New returns a provider for the auth API rooted at baseURL
// (e.g. https://project.supabase.co/auth/v1).
func New(baseURL, apiKey string, store metadata.Repository, opts ...Option) *Provider {
	p := &Provider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		store:   store,
		http:    http.DefaultClient,
		checker: health.None,
		log:     logging.Nop(),
		now:     time.Now,
		timeout: 10 * time.Second,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// call performs one request. token "" authenticates with the api key.
func (p *Provider) call(ctx context.Context, method, path string, payload any, token string) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if token == "" {
		token = p.apiKey
	}
	req.Header.Set("apikey", p.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, backend.NetworkError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, backend.NetworkError(err)
	}
	if resp.StatusCode >= 400 {
		return nil, parseError(resp.StatusCode, data)
	}
	return data, nil
}

func (p *Provider) CheckDependencies(ctx context.Context) error {
	if err := p.checker.Check(ctx); err != nil {
		return err
	}

	p.mu.Lock()
	restored := p.sess != nil || p.current != nil
	p.mu.Unlock()
	if restored {
		return nil
	}

	raw, err := p.store.Get(ctx, common.RefreshTokenKey)
	if errors.Is(err, common.ErrNotFound) || len(raw) == 0 {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load refresh token: %w", err)
	}

	s, err := p.refresh(ctx, string(raw))
	if errors.Is(err, backend.ErrNetwork) {
		return err
	}
	if err != nil {
		p.log.Warn(ctx, "stored session rejected", "error", err)
		p.forgetRefreshToken(ctx)
		return nil
	}
	p.establish(ctx, s)
	return nil
}

func (p *Provider) CurrentIdentity() *backend.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current.Clone()
}

func (p *Provider) Subscribe() (<-chan struct{}, func()) {
	return p.events.Subscribe()
}

func (p *Provider) grant(ctx context.Context, grantType string, payload any) (*session, error) {
	data, err := p.call(ctx, http.MethodPost, "/token?grant_type="+grantType, payload, "")
	if err != nil {
		return nil, err
	}
	s, _ := parseSession(data)
	if s == nil {
		return nil, backend.NewError(backend.CodeInternal, "token response without session")
	}
	return s, nil
}

func (p *Provider) refresh(ctx context.Context, refreshToken string) (*session, error) {
	return p.grant(ctx, "refresh_token", map[string]string{"refresh_token": refreshToken})
}

// establish installs s as the live session and announces it.
func (p *Provider) establish(ctx context.Context, s *session) {
	p.mu.Lock()
	p.sess = s
	p.current = s.user.Clone()
	p.mu.Unlock()

	p.saveRefreshToken(ctx, s.refreshToken)
	p.flushPendingProfile(ctx, s)
	p.events.Notify()
}

func (p *Provider) saveRefreshToken(ctx context.Context, token string) {
	if err := p.store.Set(ctx, common.RefreshTokenKey, []byte(token)); err != nil {
		p.log.Warn(ctx, "persist refresh token failed", "error", err)
	}
}

func (p *Provider) forgetRefreshToken(ctx context.Context) {
	if err := p.store.Delete(ctx, common.RefreshTokenKey); err != nil {
		p.log.Warn(ctx, "clear refresh token failed", "error", err)
	}
}

func (p *Provider) SignIn(ctx context.Context, email, password string) error {
	s, err := p.grant(ctx, "password", map[string]string{"email": email, "password": password})
	if err != nil {
		return err
	}
	p.establish(ctx, s)
	return nil
}

func (p *Provider) SignUp(ctx context.Context, email, password string) (*backend.Identity, error) {
	data, err := p.call(ctx, http.MethodPost, "/signup", map[string]string{"email": email, "password": password}, "")
	if err != nil {
		return nil, err
	}
	s, user := parseSession(data)
	if s != nil {
		p.establish(ctx, s)
		return s.user.Clone(), nil
	}

	p.mu.Lock()
	p.sess = nil
	p.current = user.Clone()
	p.mu.Unlock()
	p.events.Notify()
	return user, nil
}

func (p *Provider) SignInWithIDToken(ctx context.Context, provider, idToken string) error {
	name, ok := providerNames[provider]
	if !ok {
		return backend.NewError(backend.CodeOperationNotAllowed, "provider not supported: "+provider)
	}
	s, err := p.grant(ctx, "id_token", map[string]string{"provider": name, "id_token": idToken})
	if err != nil {
		return err
	}
	p.establish(ctx, s)
	return nil
}

// accessToken returns a usable access token, refreshing it if it is about
// to expire. ok is false for a token-less (unconfirmed) identity.
func (p *Provider) accessToken(ctx context.Context) (token string, ok bool, err error) {
	p.mu.Lock()
	s, cur := p.sess, p.current
	p.mu.Unlock()

	if cur == nil {
		return "", false, backend.NewError(backend.CodeNoSession, "no user is signed in")
	}
	if s == nil {
		return "", false, nil
	}
	if !p.expiring(s.accessToken) {
		return s.accessToken, true, nil
	}

	fresh, err := p.refresh(ctx, s.refreshToken)
	if err != nil {
		return "", false, err
	}
	p.mu.Lock()
	if p.sess == s {
		p.sess = fresh
	}
	p.mu.Unlock()
	p.saveRefreshToken(ctx, fresh.refreshToken)
	return fresh.accessToken, true, nil
}

// expiring reports whether the JWT's exp claim is missing, unreadable or
// within refreshLeeway of now.
func (p *Provider) expiring(accessToken string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return !p.now().Add(refreshLeeway).Before(exp.Time)
}

func metadataPayload(changes backend.ProfileChanges) map[string]string {
	data := map[string]string{}
	if changes.DisplayName != nil {
		data["full_name"] = *changes.DisplayName
	}
	if changes.PhotoURL != nil {
		data["avatar_url"] = *changes.PhotoURL
	}
	return data
}

func (p *Provider) UpdateProfile(ctx context.Context, changes backend.ProfileChanges) error {
	token, ok, err := p.accessToken(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return p.stagePendingProfile(ctx, changes)
	}

	data, err := p.call(ctx, http.MethodPut, "/user", map[string]any{"data": metadataPayload(changes)}, token)
	if err != nil {
		return err
	}
	_, user := parseSession(data)
	p.mu.Lock()
	if p.current != nil && p.current.UID == user.UID {
		p.current = user
	}
	p.mu.Unlock()
	return nil
}

func (p *Provider) stagePendingProfile(ctx context.Context, changes backend.ProfileChanges) error {
	p.mu.Lock()
	cur := p.current
	if changes.DisplayName != nil {
		cur.DisplayName = *changes.DisplayName
	}
	if changes.PhotoURL != nil {
		cur.PhotoURL = *changes.PhotoURL
	}
	email := cur.Email
	p.mu.Unlock()

	key := common.PendingProfilePrefix + strings.ToLower(email)
	staged := map[string]string{}
	if raw, err := p.store.Get(ctx, key); err == nil {
		_ = json.Unmarshal(raw, &staged)
	}
	for k, v := range metadataPayload(changes) {
		staged[k] = v
	}
	raw, err := json.Marshal(staged)
	if err != nil {
		return err
	}
	if err := p.store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("stage profile: %w", err)
	}
	return nil
}

func (p *Provider) flushPendingProfile(ctx context.Context, s *session) {
	key := common.PendingProfilePrefix + strings.ToLower(s.user.Email)
	raw, err := p.store.Get(ctx, key)
	if err != nil {
		return
	}
	var staged map[string]string
	if err := json.Unmarshal(raw, &staged); err != nil || len(staged) == 0 {
		p.deletePending(ctx, key)
		return
	}

	data, err := p.call(ctx, http.MethodPut, "/user", map[string]any{"data": staged}, s.accessToken)
	if err != nil {
		p.log.Warn(ctx, "push staged profile failed", "error", err)
		return
	}
	_, user := parseSession(data)
	p.mu.Lock()
	if p.sess == s {
		p.current = user
	}
	p.mu.Unlock()
	p.deletePending(ctx, key)
}

func (p *Provider) deletePending(ctx context.Context, key string) {
	if err := p.store.Delete(ctx, key); err != nil {
		p.log.Warn(ctx, "drop staged profile failed", "error", err)
	}
}

func (p *Provider) Reload(ctx context.Context) error {
	token, ok, err := p.accessToken(ctx)
	if err != nil || !ok {
		return err
	}
	data, err := p.call(ctx, http.MethodGet, "/user", nil, token)
	if err != nil {
		return err
	}
	_, user := parseSession(data)
	p.mu.Lock()
	if p.current != nil {
		p.current = user
	}
	p.mu.Unlock()
	return nil
}

// SignOut drops the local session at once; the server-side logout is best
// effort.
func (p *Provider) SignOut() {
	p.mu.Lock()
	s, had := p.sess, p.current != nil
	p.sess, p.current = nil, nil
	p.mu.Unlock()
	if !had {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	p.forgetRefreshToken(ctx)
	p.events.Notify()

	if s != nil {
		if _, err := p.call(ctx, http.MethodPost, "/logout", nil, s.accessToken); err != nil {
			p.log.Debug(ctx, "remote logout failed", "error", err)
		}
	}
}

func (p *Provider) SendEmailVerification(ctx context.Context) error {
	cur := p.CurrentIdentity()
	if cur == nil {
		return backend.NewError(backend.CodeNoSession, "no user is signed in")
	}
	_, err := p.call(ctx, http.MethodPost, "/resend", map[string]string{"type": "signup", "email": cur.Email}, "")
	return err
}

func (p *Provider) SendPasswordReset(ctx context.Context, email string) error {
	_, err := p.call(ctx, http.MethodPost, "/recover", map[string]string{"email": email}, "")
	return err
}

var _ backend.AuthProvider = (*Provider)(nil)

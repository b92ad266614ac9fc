package cli

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/authflow/internal/client/backend"
	"github.com/golang-jwt/jwt/v5"
)

// Prompt reads one line of user input after showing label.
type Prompt func(label string) (string, error)

// PromptTokenSource is an account picker that asks the user to paste an ID
// token obtained elsewhere (e.g. from a browser sign-in).
type PromptTokenSource struct {
	prompt Prompt
}

func NewPromptTokenSource(prompt Prompt) *PromptTokenSource {
	return &PromptTokenSource{prompt: prompt}
}

func (s *PromptTokenSource) SignIn(ctx context.Context) (string, error) {
	token, err := s.prompt("Paste Google ID token (empty line cancels)")
	if err != nil {
		return "", err
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", backend.ErrCancelled
	}
	return token, nil
}

func (s *PromptTokenSource) SignOut()    {}
func (s *PromptTokenSource) Disconnect() {}

// DevTokenSource is the picker used with the memory backend: it asks for
// an email and mints a token carrying it. The memory backend does not
// verify signatures.
type DevTokenSource struct {
	prompt Prompt
	key    []byte
	now    func() time.Time
}

func NewDevTokenSource(prompt Prompt) *DevTokenSource {
	key := make([]byte, 32)
	_, _ = rand.Read(key)
	return &DevTokenSource{prompt: prompt, key: key, now: time.Now}
}

func (s *DevTokenSource) SignIn(ctx context.Context) (string, error) {
	email, err := s.prompt("Google account email (empty line cancels)")
	if err != nil {
		return "", err
	}
	if email = strings.TrimSpace(email); email == "" {
		return "", backend.ErrCancelled
	}

	name, _, _ := strings.Cut(email, "@")
	now := s.now()
	claims := jwt.MapClaims{
		"iss":   "authflow-dev",
		"sub":   email,
		"email": email,
		"name":  name,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("mint dev token: %w", err)
	}
	return token, nil
}

func (s *DevTokenSource) SignOut()    {}
func (s *DevTokenSource) Disconnect() {}

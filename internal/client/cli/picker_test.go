package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/authflow/internal/client/backend"
	"github.com/dmitrijs2005/authflow/internal/client/backend/memory"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func answer(s string, err error) Prompt {
	return func(string) (string, error) { return s, err }
}

func TestPromptTokenSource(t *testing.T) {
	tok, err := NewPromptTokenSource(answer(" abc.def.ghi \n", nil)).SignIn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)

	_, err = NewPromptTokenSource(answer("  ", nil)).SignIn(context.Background())
	assert.ErrorIs(t, err, backend.ErrCancelled)

	boom := errors.New("stdin closed")
	_, err = NewPromptTokenSource(answer("", boom)).SignIn(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestDevTokenSource_Claims(t *testing.T) {
	src := NewDevTokenSource(answer("ada@example.com", nil))
	src.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	tok, err := src.SignIn(context.Background())
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", claims["email"])
	assert.Equal(t, "ada", claims["name"])

	_, err = NewDevTokenSource(answer("", nil)).SignIn(context.Background())
	assert.ErrorIs(t, err, backend.ErrCancelled)
}

func TestDevTokenSource_AcceptedByMemoryBackend(t *testing.T) {
	auth := memory.NewAuth(memory.WithBcryptCost(4))
	tok, err := NewDevTokenSource(answer("grace@example.com", nil)).SignIn(context.Background())
	require.NoError(t, err)

	require.NoError(t, auth.SignInWithIDToken(context.Background(), backend.ProviderGoogle, tok))
	id := auth.CurrentIdentity()
	require.NotNil(t, id)
	assert.Equal(t, "grace@example.com", id.Email)
	assert.True(t, id.EmailVerified)
}

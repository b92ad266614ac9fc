// Package prefs holds the user's session preferences.
package prefs

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authflow/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/authflow/internal/common"
)

// Store persists the remember-me flag under common.RememberMeKey as "1" or
// "0". An absent key reads as false.
type Store struct {
	repo metadata.Repository
}

func NewStore(repo metadata.Repository) *Store {
	return &Store{repo: repo}
}

func (s *Store) RememberMe(ctx context.Context) (bool, error) {
	v, err := s.repo.Get(ctx, common.RememberMeKey)
	if errors.Is(err, common.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read remember-me: %w", err)
	}
	return string(v) == "1", nil
}

func (s *Store) SetRememberMe(ctx context.Context, enabled bool) error {
	v := "0"
	if enabled {
		v = "1"
	}
	if err := s.repo.Set(ctx, common.RememberMeKey, []byte(v)); err != nil {
		return fmt.Errorf("save remember-me: %w", err)
	}
	return nil
}

// Clear removes the flag so the next read returns the default.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.repo.Delete(ctx, common.RememberMeKey); err != nil {
		return fmt.Errorf("clear remember-me: %w", err)
	}
	return nil
}

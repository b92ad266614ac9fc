package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/authflow/internal/client/autherr"
	"github.com/dmitrijs2005/authflow/internal/client/backend"
	"github.com/dmitrijs2005/authflow/internal/common"
	"github.com/go-playground/validator/v10"
)

// Profile document fields.
const (
	fieldUID         = "uid"
	fieldEmail       = "email"
	fieldDisplayName = "displayName"
	fieldPhotoURL    = "photoUrl"
	fieldCreatedAt   = "createdAt"
	fieldLastLoginAt = "lastLoginAt"
)

// Profile is the application's record of a user, stored at users/{uid}.
type Profile struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
	CreatedAt   time.Time
	LastLoginAt time.Time
}

func profileFromDocument(doc backend.Document) *Profile {
	return &Profile{
		UID:         doc.String(fieldUID),
		Email:       doc.String(fieldEmail),
		DisplayName: doc.String(fieldDisplayName),
		PhotoURL:    doc.String(fieldPhotoURL),
		CreatedAt:   doc.Time(fieldCreatedAt),
		LastLoginAt: doc.Time(fieldLastLoginAt),
	}
}

type photoForm struct {
	PhotoURL string `validate:"omitempty,url"`
}

type ProfileService struct {
	auth     backend.AuthProvider
	docs     backend.DocumentStore
	validate *validator.Validate
}

func NewProfileService(auth backend.AuthProvider, docs backend.DocumentStore) *ProfileService {
	return &ProfileService{auth: auth, docs: docs, validate: validator.New()}
}

// EnsureProfileExistsAndTouchLogin creates users/{uid} from snapshot when
// it is missing and stamps lastLoginAt in every case. Existing fields other
// than lastLoginAt are never overwritten.
func (s *ProfileService) EnsureProfileExistsAndTouchLogin(ctx context.Context, uid string, snapshot *backend.Identity) error {
	if uid == "" {
		return common.ErrNoIdentity
	}
	_, err := s.docs.Get(ctx, common.UsersCollection, uid)
	absent := errors.Is(err, common.ErrNotFound)
	if err != nil && !absent {
		return fmt.Errorf("read profile %s: %w", uid, err)
	}

	doc := backend.Document{fieldLastLoginAt: backend.ServerTimestamp}
	if absent {
		doc[fieldUID] = uid
		doc[fieldCreatedAt] = backend.ServerTimestamp
		doc[fieldEmail] = ""
		doc[fieldDisplayName] = ""
		doc[fieldPhotoURL] = ""
		if snapshot != nil {
			doc[fieldEmail] = snapshot.Email
			doc[fieldDisplayName] = snapshot.DisplayName
			doc[fieldPhotoURL] = snapshot.PhotoURL
		}
	}

	if err := s.docs.Set(ctx, common.UsersCollection, uid, doc, backend.SetOptions{Merge: true}); err != nil {
		return fmt.Errorf("write profile %s: %w", uid, err)
	}
	return nil
}

// GetCurrentProfile returns common.ErrNotFound when uid has no profile.
func (s *ProfileService) GetCurrentProfile(ctx context.Context, uid string) (*Profile, error) {
	if uid == "" {
		return nil, common.ErrNoIdentity
	}
	doc, err := s.docs.Get(ctx, common.UsersCollection, uid)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("read profile %s: %w", uid, err)
	}
	return profileFromDocument(doc), nil
}

// UpdateDisplayName writes the trimmed name to the identity and then to the
// profile. The writes are independent; a failure of the second leaves the
// first in place and is returned.
func (s *ProfileService) UpdateDisplayName(ctx context.Context, uid, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return autherr.New(autherr.MissingDisplayName)
	}
	if err := s.auth.UpdateProfile(ctx, backend.ProfileChanges{DisplayName: &name}); err != nil {
		return fmt.Errorf("update identity name: %w", err)
	}
	if err := s.docs.Update(ctx, common.UsersCollection, uid, backend.Document{fieldDisplayName: name}); err != nil {
		return fmt.Errorf("update profile name: %w", err)
	}
	return nil
}

// UpdatePhotoURL rejects malformed URLs before either write. An empty url
// clears the photo.
func (s *ProfileService) UpdatePhotoURL(ctx context.Context, uid, url string) error {
	url = strings.TrimSpace(url)
	if err := s.validate.Struct(photoForm{PhotoURL: url}); err != nil {
		return autherr.Classify(err)
	}
	if err := s.auth.UpdateProfile(ctx, backend.ProfileChanges{PhotoURL: &url}); err != nil {
		return fmt.Errorf("update identity photo: %w", err)
	}
	if err := s.docs.Update(ctx, common.UsersCollection, uid, backend.Document{fieldPhotoURL: url}); err != nil {
		return fmt.Errorf("update profile photo: %w", err)
	}
	return nil
}

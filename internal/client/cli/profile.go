package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/authflow/internal/client/autherr"
	"github.com/dmitrijs2005/authflow/internal/client/backend"
	"github.com/dmitrijs2005/authflow/internal/client/services"
	"github.com/dmitrijs2005/authflow/internal/client/ui"
	"github.com/dmitrijs2005/authflow/internal/logging"
)

const dateLayout = "02/01/06 15:04"

var (
	ErrNoProfile = errors.New("profile not loaded")
	ErrSaving    = errors.New("save already in progress")
)

type Profiles interface {
	GetCurrentProfile(ctx context.Context, uid string) (*services.Profile, error)
	UpdateDisplayName(ctx context.Context, uid, name string) error
	UpdatePhotoURL(ctx context.Context, uid, url string) error
}

type Logouter interface {
	Logout(ctx context.Context) error
}

type IdentitySource interface {
	CurrentIdentity() *backend.Identity
}

// ProfileController holds the profile screen's actions.
type ProfileController struct {
	profiles  Profiles
	session   Logouter
	identity  IdentitySource
	presenter ui.Presenter
	loader    ui.Loader
	out       io.Writer
	log       logging.Logger

	mu      sync.Mutex
	current *services.Profile
	saving  bool
}

func NewProfileController(profiles Profiles, session Logouter, identity IdentitySource,
	presenter ui.Presenter, loader ui.Loader, out io.Writer, log logging.Logger) *ProfileController {
	return &ProfileController{
		profiles:  profiles,
		session:   session,
		identity:  identity,
		presenter: presenter,
		loader:    loader,
		out:       out,
		log:       log,
	}
}

// Load fetches and prints the signed-in user's profile. A missing profile
// is a failure: the user may retry or log out.
func (c *ProfileController) Load(ctx context.Context) error {
	c.loader.Show()
	defer c.loader.Hide()

	uid := backend.UIDOf(c.identity.CurrentIdentity())
	p, err := c.profiles.GetCurrentProfile(ctx, uid)
	if err != nil {
		c.log.Error(ctx, "load profile failed", "uid", uid, "error", err)
		c.setCurrent(nil)
		c.presenter.ShowConfirmation(ui.PopupError, "Profile Error",
			"Failed to load your profile.\nWould you like to retry?",
			func() { _ = c.Load(ctx) },
			func() { _ = c.Logout(ctx) })
		return err
	}

	c.setCurrent(p)
	c.Print()
	return nil
}

func (c *ProfileController) setCurrent(p *services.Profile) {
	c.mu.Lock()
	c.current = p
	c.mu.Unlock()
}

// Current returns a copy of the loaded profile, or nil.
func (c *ProfileController) Current() *services.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	p := *c.current
	return &p
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(dateLayout)
}

func (c *ProfileController) Print() {
	p := c.Current()
	if p == nil {
		fmt.Fprintln(c.out, "No profile loaded.")
		return
	}
	photo := p.PhotoURL
	if photo == "" {
		photo = "(default avatar)"
	}
	fmt.Fprintf(c.out, "Name:       %s\n", p.DisplayName)
	fmt.Fprintf(c.out, "Email:      %s\n", p.Email)
	fmt.Fprintf(c.out, "Photo:      %s\n", photo)
	fmt.Fprintf(c.out, "Created:    %s\n", formatDate(p.CreatedAt))
	fmt.Fprintf(c.out, "Last login: %s\n", formatDate(p.LastLoginAt))
}

// beginSave claims the single in-flight save slot.
func (c *ProfileController) beginSave() (*services.Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil, ErrNoProfile
	}
	if c.saving {
		return nil, ErrSaving
	}
	c.saving = true
	p := *c.current
	return &p, nil
}

func (c *ProfileController) endSave(apply func(p *services.Profile)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saving = false
	if apply != nil && c.current != nil {
		apply(c.current)
	}
}

func (c *ProfileController) Rename(ctx context.Context, name string) error {
	if blank(name) {
		c.presenter.ShowError("Invalid Name", "Display name cannot be empty.")
		return ErrMissingInput
	}
	p, err := c.beginSave()
	if err != nil {
		return err
	}

	c.loader.Show()
	defer c.loader.Hide()

	name = strings.TrimSpace(name)
	if err := c.profiles.UpdateDisplayName(ctx, p.UID, name); err != nil {
		c.endSave(nil)
		c.log.Error(ctx, "update display name failed", "uid", p.UID, "error", err)
		c.presenter.ShowError("Update Failed", "Failed to update display name. Please try again.")
		return err
	}
	c.endSave(func(p *services.Profile) { p.DisplayName = name })
	c.Print()
	return nil
}

func (c *ProfileController) SetPhoto(ctx context.Context, url string) error {
	p, err := c.beginSave()
	if err != nil {
		return err
	}

	c.loader.Show()
	defer c.loader.Hide()

	url = strings.TrimSpace(url)
	if err := c.profiles.UpdatePhotoURL(ctx, p.UID, url); err != nil {
		c.endSave(nil)
		var ae *autherr.Error
		if errors.As(err, &ae) && ae.Category() == autherr.CategoryValidation {
			c.presenter.ShowError("Invalid URL", ae.Message)
			return err
		}
		c.log.Error(ctx, "update photo failed", "uid", p.UID, "error", err)
		c.presenter.ShowError("Update Failed", "Failed to update profile photo. Please try again.")
		return err
	}
	c.endSave(func(p *services.Profile) { p.PhotoURL = url })
	c.Print()
	return nil
}

// Logout leaves navigation to the router, which reacts to the sign-out.
func (c *ProfileController) Logout(ctx context.Context) error {
	c.setCurrent(nil)
	return c.session.Logout(ctx)
}

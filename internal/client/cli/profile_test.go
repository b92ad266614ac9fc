package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/authflow/internal/client/autherr"
	"github.com/dmitrijs2005/authflow/internal/client/backend"
	"github.com/dmitrijs2005/authflow/internal/client/services"
	"github.com/dmitrijs2005/authflow/internal/client/ui"
	"github.com/dmitrijs2005/authflow/internal/common"
	"github.com/dmitrijs2005/authflow/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profileFixture struct {
	profiles *fakeProfiles
	session  *fakeLogout
	pres     *recPresenter
	loader   *ui.CountingLoader
	out      *bytes.Buffer
	c        *ProfileController
}

func newProfileFixture() *profileFixture {
	f := &profileFixture{
		profiles: &fakeProfiles{Profile: &services.Profile{
			UID:         "u1",
			Email:       "ada@example.com",
			DisplayName: "Ada",
			CreatedAt:   time.Date(2026, 3, 4, 5, 6, 0, 0, time.UTC),
			LastLoginAt: time.Date(2026, 10, 17, 21, 45, 0, 0, time.UTC),
		}},
		session: &fakeLogout{},
		pres:    &recPresenter{},
		loader:  &ui.CountingLoader{},
		out:     &bytes.Buffer{},
	}
	id := staticIdentity{&backend.Identity{UID: "u1"}}
	f.c = NewProfileController(f.profiles, f.session, id, f.pres, f.loader, f.out, logging.Nop())
	return f
}

func TestProfile_LoadPrints(t *testing.T) {
	f := newProfileFixture()

	require.NoError(t, f.c.Load(context.Background()))

	assert.Equal(t, "u1", f.profiles.LastUID)
	assert.Equal(t, "Ada", f.c.Current().DisplayName)
	assert.Equal(t, ""+
		"Name:       Ada\n"+
		"Email:      ada@example.com\n"+
		"Photo:      (default avatar)\n"+
		"Created:    04/03/26 05:06\n"+
		"Last login: 17/10/26 21:45\n", f.out.String())
	assert.False(t, f.loader.Visible())
}

func TestProfile_LoadFailureOffersRetryOrLogout(t *testing.T) {
	f := newProfileFixture()
	f.profiles.GetErr = common.ErrNotFound

	err := f.c.Load(context.Background())

	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Nil(t, f.c.Current())
	assert.Equal(t, shown{ui.PopupError, "Profile Error", "Failed to load your profile.\nWould you like to retry?"}, f.pres.last())

	// retry succeeds once the profile exists
	f.profiles.GetErr = nil
	f.pres.onConfirm()
	assert.Equal(t, 2, f.profiles.GetCalls)
	assert.NotNil(t, f.c.Current())

	f.pres.onCancel()
	assert.Equal(t, 1, f.session.Calls)
	assert.Nil(t, f.c.Current())
}

func TestProfile_Rename(t *testing.T) {
	f := newProfileFixture()
	require.NoError(t, f.c.Load(context.Background()))

	require.NoError(t, f.c.Rename(context.Background(), "  Ada L. "))

	assert.Equal(t, "Ada L.", f.profiles.LastName)
	assert.Equal(t, "u1", f.profiles.LastUID)
	assert.Equal(t, "Ada L.", f.c.Current().DisplayName)
}

func TestProfile_RenameValidation(t *testing.T) {
	f := newProfileFixture()
	require.NoError(t, f.c.Load(context.Background()))

	err := f.c.Rename(context.Background(), "   ")

	assert.ErrorIs(t, err, ErrMissingInput)
	assert.Equal(t, shown{ui.PopupError, "Invalid Name", "Display name cannot be empty."}, f.pres.last())
	assert.Empty(t, f.profiles.LastName)
}

func TestProfile_RenameWithoutProfile(t *testing.T) {
	f := newProfileFixture()
	assert.ErrorIs(t, f.c.Rename(context.Background(), "Ada"), ErrNoProfile)
}

func TestProfile_RenameFailure(t *testing.T) {
	f := newProfileFixture()
	require.NoError(t, f.c.Load(context.Background()))
	f.profiles.UpdateErr = errors.New("write failed")

	require.Error(t, f.c.Rename(context.Background(), "Grace"))

	assert.Equal(t, shown{ui.PopupError, "Update Failed", "Failed to update display name. Please try again."}, f.pres.last())
	assert.Equal(t, "Ada", f.c.Current().DisplayName)

	// the save slot is free again
	f.profiles.UpdateErr = nil
	require.NoError(t, f.c.Rename(context.Background(), "Grace"))
}

func TestProfile_SingleSaveInFlight(t *testing.T) {
	f := newProfileFixture()
	require.NoError(t, f.c.Load(context.Background()))
	f.profiles.entered = make(chan struct{})
	f.profiles.block = make(chan struct{})

	done := make(chan error)
	go func() { done <- f.c.Rename(context.Background(), "First") }()
	<-f.profiles.entered

	assert.ErrorIs(t, f.c.Rename(context.Background(), "Second"), ErrSaving)
	close(f.profiles.block)
	require.NoError(t, <-done)
	assert.Equal(t, "First", f.c.Current().DisplayName)
}

func TestProfile_SetPhoto(t *testing.T) {
	f := newProfileFixture()
	require.NoError(t, f.c.Load(context.Background()))
	f.out.Reset()

	require.NoError(t, f.c.SetPhoto(context.Background(), " https://img.example/a.png "))

	assert.Equal(t, "https://img.example/a.png", f.profiles.LastPhoto)
	assert.Contains(t, f.out.String(), "Photo:      https://img.example/a.png\n")

	f.profiles.UpdateErr = errors.New("write failed")
	require.Error(t, f.c.SetPhoto(context.Background(), ""))
	assert.Equal(t, "Update Failed", f.pres.last().title)
	assert.Equal(t, "https://img.example/a.png", f.c.Current().PhotoURL)
}

func TestProfile_SetPhotoInvalidURL(t *testing.T) {
	f := newProfileFixture()
	require.NoError(t, f.c.Load(context.Background()))
	f.profiles.UpdateErr = autherr.New(autherr.InvalidPhotoURL)

	require.Error(t, f.c.SetPhoto(context.Background(), "not a url"))
	assert.Equal(t, shown{ui.PopupError, "Invalid URL", "The photo URL is not valid."}, f.pres.last())

	f.profiles.UpdateErr = nil
	require.NoError(t, f.c.SetPhoto(context.Background(), "https://img.example/b.png"), "a rejected save releases the slot")
}

func TestProfile_Logout(t *testing.T) {
	f := newProfileFixture()
	require.NoError(t, f.c.Load(context.Background()))

	require.NoError(t, f.c.Logout(context.Background()))
	assert.Equal(t, 1, f.session.Calls)
	assert.Nil(t, f.c.Current())
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "-", formatDate(time.Time{}))
	loc := time.FixedZone("X", 2*60*60)
	assert.Equal(t, "31/12/25 23:30", formatDate(time.Date(2026, 1, 1, 1, 30, 0, 0, loc)))
}

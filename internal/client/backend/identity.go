package backend

import "slices"

// Provider ids as reported in Identity.Providers.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google.com"
)

// Identity is a snapshot of the signed-in account.
type Identity struct {
	UID           string
	Email         string
	DisplayName   string
	PhotoURL      string
	EmailVerified bool
	Providers     []string
}

func (i *Identity) HasProvider(id string) bool {
	if i == nil {
		return false
	}
	return slices.Contains(i.Providers, id)
}

// Clone returns a deep copy; nil stays nil.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	c.Providers = slices.Clone(i.Providers)
	return &c
}

// UIDOf returns the uid of i or "" for nil.
func UIDOf(i *Identity) string {
	if i == nil {
		return ""
	}
	return i.UID
}

// Package autherr classifies authentication failures into a closed
// taxonomy with user-facing messages.
package autherr

// Category groups kinds for presentation.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryValidation
	CategoryAccountState
	CategoryCredential
	CategoryNetwork
	CategoryConfiguration
)

func (c Category) String() string {
	switch c {
	case CategoryValidation:
		return "validation"
	case CategoryAccountState:
		return "account-state"
	case CategoryCredential:
		return "credential"
	case CategoryNetwork:
		return "network"
	case CategoryConfiguration:
		return "configuration"
	}
	return "unknown"
}

type Kind int

const (
	Unknown Kind = iota

	InvalidEmail
	MissingEmail
	MissingPassword
	UnverifiedEmail
	WeakPassword
	PasswordMismatch
	MissingDisplayName
	InvalidPhotoURL

	UserNotFound
	EmailAlreadyInUse
	UserDisabled
	OperationNotAllowed

	WrongPassword
	CredentialInvalid
	CredentialAlreadyInUse
	AccountExistsWithDifferentCredential

	NetworkError
	TooManyRequests

	ConfigurationError
)

type kindInfo struct {
	name     string
	category Category
	message  string
}

var kinds = map[Kind]kindInfo{
	Unknown: {"unknown", CategoryUnknown, "Authentication failed. Please try again."},

	InvalidEmail:       {"invalid-email", CategoryValidation, "The email address is not valid."},
	MissingEmail:       {"missing-email", CategoryValidation, "Email address is required."},
	MissingPassword:    {"missing-password", CategoryValidation, "Password is required."},
	UnverifiedEmail:    {"unverified-email", CategoryValidation, "Email is not verified."},
	WeakPassword:       {"weak-password", CategoryValidation, "Password is too weak."},
	PasswordMismatch:   {"password-mismatch", CategoryValidation, "Passwords do not match."},
	MissingDisplayName: {"missing-display-name", CategoryValidation, "Display name cannot be empty."},
	InvalidPhotoURL:    {"invalid-photo-url", CategoryValidation, "The photo URL is not valid."},

	UserNotFound:        {"user-not-found", CategoryAccountState, "No account found with this email."},
	EmailAlreadyInUse:   {"email-already-in-use", CategoryAccountState, "This email is already in use."},
	UserDisabled:        {"user-disabled", CategoryAccountState, "This account has been disabled."},
	OperationNotAllowed: {"operation-not-allowed", CategoryAccountState, "This authentication method is not enabled."},

	WrongPassword:                        {"wrong-password", CategoryCredential, "Incorrect password."},
	CredentialInvalid:                    {"credential-invalid", CategoryCredential, "The authentication credential is invalid or expired."},
	CredentialAlreadyInUse:               {"credential-already-in-use", CategoryCredential, "This credential is already associated with another account."},
	AccountExistsWithDifferentCredential: {"account-exists-with-different-credential", CategoryCredential, "An account already exists with a different sign-in method."},

	NetworkError:    {"network-error", CategoryNetwork, "Network error. Please check your internet connection."},
	TooManyRequests: {"too-many-requests", CategoryNetwork, "Too many attempts. Please try again later."},

	ConfigurationError: {"configuration-error", CategoryConfiguration, "Authentication is not configured correctly."},
}

func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return kinds[Unknown].name
}

func (k Kind) Category() Category {
	return kinds[k].category
}

// Message is the default user-facing text for k.
func (k Kind) Message() string {
	if info, ok := kinds[k]; ok {
		return info.message
	}
	return kinds[Unknown].message
}

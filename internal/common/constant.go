package common

// Metadata keys persisted in the local key-value store.
const (
	// RememberMeKey holds "1" when auto sign-in on cold start is allowed.
	RememberMeKey = "REMEMBER_ME_ENABLED"

	// RefreshTokenKey holds the REST provider's refresh token between launches.
	RefreshTokenKey = "session.refresh_token"

	// PendingProfilePrefix + email holds display changes made before the
	// account's first session (REST provider with email confirmation on).
	PendingProfilePrefix = "signup.pending_profile."
)

// UsersCollection is the document collection holding profile records (users/{uid}).
const UsersCollection = "users"

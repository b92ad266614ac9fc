// Package common defines sentinel errors and storage keys shared by the
// client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Session-level errors.
	ErrNoIdentity = errors.New("no authenticated identity")

	// Configuration errors.
	ErrUnknownBackend = errors.New("unknown backend")
)

// Package rest implements backend.AuthProvider against a GoTrue-compatible
// HTTP auth API (the one served by Supabase under /auth/v1).
//
// # Session
//
// Password, ID-token and refresh grants all return an access token (JWT)
// and a refresh token. The refresh token is written to the local metadata
// store so CheckDependencies can restore the session on the next launch.
// The access token's exp claim is read without verification; once it is
// within refreshLeeway of expiry the next call refreshes it first.
//
// # Sign-up without a session
//
// When the server requires email confirmation, /signup returns only the
// user. The provider then holds a token-less identity until SignOut.
// Profile changes made meanwhile are kept in the metadata store and pushed
// to the server after the first real session is established.
//
// # Errors
//
// Non-2xx answers are decoded with gjson into *backend.Error, mapping
// GoTrue error_code values onto backend codes. Transport failures and 5xx
// gateway answers become network errors.
package rest

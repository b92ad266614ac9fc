// Package backend defines the contracts the client core consumes from the
// backend-as-a-service it runs on.
//
// # Overview
//
// Two collaborators are modelled:
//  1. AuthProvider: the identity service. It exposes the currently signed-in
//     Identity, credential operations, and a subscription that ticks on every
//     authentication state change. Ticks carry no payload; consumers re-read
//     CurrentIdentity.
//  2. DocumentStore: keyed documents grouped in collections, with a merge
//     write mode and a ServerTimestamp placeholder resolved by the store.
//
// IDTokenSource describes an external account picker (Google sign-in) that
// yields an ID token for AuthProvider.SignInWithIDToken.
//
// # Error Handling
//
// Provider failures are returned as *Error carrying a Code. Transport
// failures match ErrNetwork with errors.Is. A picker closed by the user
// returns ErrCancelled.
//
// Implementations live in the sub-packages memory (in-process) and rest
// (GoTrue-compatible HTTP API); health holds dependency checkers.
package backend

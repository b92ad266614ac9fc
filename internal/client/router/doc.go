// Package router decides which screen the user must see.
//
// # Lifecycle
//
// Start checks backend dependencies (with bounded retries), subscribes to
// authentication state changes and makes the first routing decision. A
// failed check shows a retry/quit popup and leaves the router
// uninitialized, so Start can be called again. Shutdown ends the
// subscription, waits for in-flight decisions and, when remember-me is off,
// signs the user out.
//
// # Decisions
//
// The router's state is a single Phase guarded by a mutex:
//
//	Uninitialized -> Initializing -> ColdStart -> Routing <-> Idle
//
// A decision claims the Routing phase; a trigger that finds it taken is
// dropped, not queued. Claiming from ColdStart consumes the one-time
// remember-me gate, so it fires on exactly one decision per process.
//
// State-change ticks are deduplicated by the uid of the current identity
// (no identity is ""). The previous uid is updated even when the resulting
// decision is dropped.
//
// Each decision runs, in order: cold-start gate, unauthenticated check,
// identity reload (network failures tolerated), verification gate for
// email/password accounts, profile reconciliation. Failures in the later
// steps show a startup-error popup and fall back to the login screen.
package router

// Package memory is an in-process backend: an AuthProvider with bcrypt
// password hashes and a mail outbox, and a DocumentStore kept in maps.
//
// It backs the "memory" backend mode of the CLI and is safe for concurrent
// use. Nothing survives the process.
package memory

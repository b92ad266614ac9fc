// Package documents persists profile documents in PostgreSQL.
//
// # Overview
//
// PostgresStore implements backend.DocumentStore over a single table
// documents(collection, id, data JSONB). It talks to the database through
// dbx.DBTX, normally a *sql.DB opened with the pgx stdlib driver.
//
// # Writes
//
// Literal fields are sent as one JSON object. Fields holding
// backend.ServerTimestamp are sent by name and filled in SQL with now(),
// so every placeholder in one statement gets the same transaction time.
// Merge writes use the jsonb || operator and never drop existing keys.
//
// Timestamps come back from Get as RFC 3339 strings; read them with
// backend.Document.Time.
//
// Typical Usage
//
//	store := documents.NewPostgresStore(db)
//	err := store.Set(ctx, "users", uid, doc, backend.SetOptions{Merge: true})
package documents

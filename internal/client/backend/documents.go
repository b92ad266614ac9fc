package backend

import (
	"context"
	"maps"
	"time"
)

type serverTimestamp struct{}

// ServerTimestamp is a Document value replaced by the store with its own
// clock. Every occurrence in one write receives the same instant.
var ServerTimestamp any = serverTimestamp{}

type Document map[string]any

type SetOptions struct {
	// Merge keeps fields absent from the written document.
	Merge bool
}

type DocumentStore interface {
	// Get returns common.ErrNotFound when the document does not exist.
	Get(ctx context.Context, collection, id string) (Document, error)
	Set(ctx context.Context, collection, id string, doc Document, opts SetOptions) error
	// Update merges fields into an existing document and returns
	// common.ErrNotFound when there is none.
	Update(ctx context.Context, collection, id string, fields Document) error
}

// Split separates ServerTimestamp placeholders from literal values.
func (d Document) Split() (values Document, stamped []string) {
	values = make(Document, len(d))
	for k, v := range d {
		if v == ServerTimestamp {
			stamped = append(stamped, k)
			continue
		}
		values[k] = v
	}
	return values, stamped
}

// Resolve returns a copy with every placeholder replaced by now.
func (d Document) Resolve(now time.Time) Document {
	out := maps.Clone(d)
	for k, v := range out {
		if v == ServerTimestamp {
			out[k] = now
		}
	}
	return out
}

func (d Document) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// Time reads a timestamp stored either as time.Time or as an RFC 3339
// string (the JSON form).
func (d Document) Time(key string) time.Time {
	switch v := d[key].(type) {
	case time.Time:
		return v
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}
		}
		return t
	}
	return time.Time{}
}

package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/dmitrijs2005/authflow/internal/client/backend"
	"github.com/dmitrijs2005/authflow/internal/common"
)

type Documents struct {
	mu    sync.RWMutex
	data  map[string]map[string]backend.Document
	clock func() time.Time
}

// NewDocuments returns an empty store; clock may be nil for time.Now.
func NewDocuments(clock func() time.Time) *Documents {
	if clock == nil {
		clock = time.Now
	}
	return &Documents{data: make(map[string]map[string]backend.Document), clock: clock}
}

func (d *Documents) Get(ctx context.Context, collection, id string) (backend.Document, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	doc, ok := d.data[collection][id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return maps.Clone(doc), nil
}

func (d *Documents) Set(ctx context.Context, collection, id string, doc backend.Document, opts backend.SetOptions) error {
	resolved := doc.Resolve(d.clock().UTC())

	d.mu.Lock()
	defer d.mu.Unlock()
	coll, ok := d.data[collection]
	if !ok {
		coll = make(map[string]backend.Document)
		d.data[collection] = coll
	}
	existing, ok := coll[id]
	if !opts.Merge || !ok {
		coll[id] = resolved
		return nil
	}
	maps.Copy(existing, resolved)
	return nil
}

func (d *Documents) Update(ctx context.Context, collection, id string, fields backend.Document) error {
	resolved := fields.Resolve(d.clock().UTC())

	d.mu.Lock()
	defer d.mu.Unlock()
	existing, ok := d.data[collection][id]
	if !ok {
		return common.ErrNotFound
	}
	maps.Copy(existing, resolved)
	return nil
}

var _ backend.DocumentStore = (*Documents)(nil)

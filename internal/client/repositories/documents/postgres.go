package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authflow/internal/client/backend"
	"github.com/dmitrijs2005/authflow/internal/common"
	"github.com/dmitrijs2005/authflow/internal/dbx"
)

// payloadSQL builds the JSONB value from literal fields ($3) and the names
// of server-stamped fields ($4, a JSON array).
const payloadSQL = `($3::jsonb || (
	SELECT COALESCE(jsonb_object_agg(k, to_jsonb(now())), '{}'::jsonb)
	FROM jsonb_array_elements_text($4::jsonb) AS k
))`

const (
	getSQL = `SELECT data FROM documents WHERE collection = $1 AND id = $2`

	setMergeSQL = `INSERT INTO documents (collection, id, data, updated_at)
VALUES ($1, $2, ` + payloadSQL + `, now())
ON CONFLICT (collection, id) DO UPDATE
SET data = documents.data || EXCLUDED.data, updated_at = now()`

	setReplaceSQL = `INSERT INTO documents (collection, id, data, updated_at)
VALUES ($1, $2, ` + payloadSQL + `, now())
ON CONFLICT (collection, id) DO UPDATE
SET data = EXCLUDED.data, updated_at = now()`

	updateSQL = `UPDATE documents
SET data = data || ` + payloadSQL + `, updated_at = now()
WHERE collection = $1 AND id = $2`
)

type PostgresStore struct {
	db dbx.DBTX
}

func NewPostgresStore(db dbx.DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (backend.Document, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, getSQL, collection, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	doc := backend.Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

func encode(doc backend.Document) (values, stamped []byte, err error) {
	lit, names := doc.Split()
	if names == nil {
		names = []string{}
	}
	if values, err = json.Marshal(lit); err != nil {
		return nil, nil, err
	}
	if stamped, err = json.Marshal(names); err != nil {
		return nil, nil, err
	}
	return values, stamped, nil
}

func (s *PostgresStore) Set(ctx context.Context, collection, id string, doc backend.Document, opts backend.SetOptions) error {
	values, stamped, err := encode(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	q := setReplaceSQL
	if opts.Merge {
		q = setMergeSQL
	}
	if _, err := s.db.ExecContext(ctx, q, collection, id, string(values), string(stamped)); err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields backend.Document) error {
	values, stamped, err := encode(fields)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	res, err := s.db.ExecContext(ctx, updateSQL, collection, id, string(values), string(stamped))
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return dbx.RequireAffected(res)
}

var _ backend.DocumentStore = (*PostgresStore)(nil)

// Package storage opens the databases used by the client and brings their
// schema up to date with the embedded goose migrations.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/authflow/internal/client/migrations"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Migrate applies every pending migration found under dir of fsys.
func Migrate(ctx context.Context, db *sql.DB, dialect goose.Dialect, fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return fmt.Errorf("migrations %s: %w", dir, err)
	}
	p, err := goose.NewProvider(dialect, db, sub)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// OpenLocal opens (creating if needed) the local sqlite database at path
// and migrates it.
func OpenLocal(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite serialises writers anyway; one connection keeps :memory: usable.
	db.SetMaxOpenConns(1)

	if err := Migrate(ctx, db, goose.DialectSQLite3, migrations.SQLite, "sqlite"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenProfiles connects to the postgres profile database through the pgx
// database/sql driver and migrates it.
func OpenProfiles(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping profiles db: %w", err)
	}
	if err := Migrate(ctx, db, goose.DialectPostgres, migrations.Postgres, "postgres"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

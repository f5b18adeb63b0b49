package vault

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// SQLite is a vault backed by a local SQLite database. It implements both
// SecretStore and BlobStore.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite creates or opens a vault database at the given path.
// Applies required pragmas and the schema automatically; safe to call on
// an existing database.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vault database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to vault database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply vault schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the secret stored under name.
func (s *SQLite) Get(ctx context.Context, name string) (Secret, error) {
	var value, updated string
	err := s.db.QueryRowContext(ctx,
		`SELECT value, updated_at FROM secrets WHERE name = ?`, name,
	).Scan(&value, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Secret{}, ErrNotFound
	}
	if err != nil {
		return Secret{}, fmt.Errorf("get secret %s: %w", name, err)
	}

	updatedAt, err := time.Parse(time.RFC3339Nano, updated)
	if err != nil {
		return Secret{}, fmt.Errorf("get secret %s: bad updated_at %q: %w", name, updated, err)
	}

	return Secret{Value: value, Updated: updatedAt}, nil
}

// Set stores value under name, refreshing updated_at.
func (s *SQLite) Set(ctx context.Context, name, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO secrets (name, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, name, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("set secret %s: %w", name, err)
	}
	return nil
}

// List returns the names of all stored secrets in sorted order.
func (s *SQLite) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM secrets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list secrets: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list secrets: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list secrets: %w", err)
	}
	return names, nil
}

// Download returns the blob stored under name.
func (s *SQLite) Download(ctx context.Context, name string) (Blob, error) {
	var data []byte
	var modified, etag string
	err := s.db.QueryRowContext(ctx,
		`SELECT data, modified_at, etag FROM blobs WHERE name = ?`, name,
	).Scan(&data, &modified, &etag)
	if errors.Is(err, sql.ErrNoRows) {
		return Blob{}, ErrNotFound
	}
	if err != nil {
		return Blob{}, fmt.Errorf("download blob %s: %w", name, err)
	}

	modifiedAt, err := time.Parse(time.RFC3339Nano, modified)
	if err != nil {
		return Blob{}, fmt.Errorf("download blob %s: bad modified_at %q: %w", name, modified, err)
	}

	return Blob{Data: data, Modified: modifiedAt, ETag: etag}, nil
}

// Upload stores data under name. A non-empty etag must match the stored
// revision; each successful upload assigns a fresh etag.
func (s *SQLite) Upload(ctx context.Context, name string, data []byte, modified time.Time, etag string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upload blob %s: %w", name, err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT etag FROM blobs WHERE name = ?`, name).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		current = ""
	case err != nil:
		return fmt.Errorf("upload blob %s: %w", name, err)
	}

	if etag != "" && etag != current {
		return fmt.Errorf("upload blob %s: etag mismatch (have %q, want %q)", name, etag, current)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO blobs (name, data, modified_at, etag)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			data = excluded.data,
			modified_at = excluded.modified_at,
			etag = excluded.etag
	`, name, data, modified.UTC().Format(time.RFC3339Nano), uuid.NewString())
	if err != nil {
		return fmt.Errorf("upload blob %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upload blob %s: %w", name, err)
	}
	return nil
}

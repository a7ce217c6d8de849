// Package sqlite provides a single-file ObjectStore backend for local and
// offline use. Objects live in one blob table keyed by object key.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/opendaw/opendaw-mcp/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS objects (
    key TEXT PRIMARY KEY,
    body BLOB NOT NULL,
    content_type TEXT NOT NULL,
    last_modified TEXT NOT NULL
);
`

// Store is a SQLite-backed ObjectStore.
type Store struct {
	db *sql.DB
}

// New opens (and if needed initializes) the blob store at path.
// Use ":memory:" for an ephemeral store.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open object store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize object store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Put(ctx context.Context, key string, body []byte, contentType string) error {
	query := `
		INSERT INTO objects (key, body, content_type, last_modified)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			body = excluded.body,
			content_type = excluded.content_type,
			last_modified = excluded.last_modified
	`
	_, err := s.db.ExecContext(ctx, query, key, body, contentType, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("put %q: %w: %v", key, store.ErrUnavailable, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM objects WHERE key = ?`, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w: %v", key, store.ErrUnavailable, err)
	}
	return body, nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]store.ObjectInfo, error) {
	query := `
		SELECT key, length(body), last_modified
		FROM objects
		WHERE key >= ? AND key < ?
		ORDER BY key
	`
	// Range scan over the key index; object keys never contain 0xFF.
	rows, err := s.db.QueryContext(ctx, query, prefix, prefix+"\xff")
	if err != nil {
		return nil, fmt.Errorf("list %q: %w: %v", prefix, store.ErrUnavailable, err)
	}
	defer rows.Close()

	var infos []store.ObjectInfo
	for rows.Next() {
		var info store.ObjectInfo
		var modified string
		if err := rows.Scan(&info.Key, &info.Size, &modified); err != nil {
			return nil, fmt.Errorf("list %q: %w: %v", prefix, store.ErrUnavailable, err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, modified); err == nil {
			info.LastModified = ts
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %q: %w: %v", prefix, store.ErrUnavailable, err)
	}
	return infos, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM objects WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %q: %w: %v", key, store.ErrUnavailable, err)
	}
	return nil
}

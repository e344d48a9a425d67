package resolver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists the resolution cache on disk so several skill
// instances (or restarts) share the learned vocabulary.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite pragmas: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS resolution_cache (
		namespace TEXT NOT NULL,
		utterance TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		PRIMARY KEY (namespace, utterance)
	);`); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate resolution cache: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, namespace, utterance string) (string, bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT entity_id FROM resolution_cache WHERE namespace = ? AND utterance = ?`,
		namespace, utterance).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read resolution cache: %w", err)
	}
	return id, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, namespace, utterance, id string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO resolution_cache (namespace, utterance, entity_id) VALUES (?, ?, ?)
		 ON CONFLICT (namespace, utterance) DO UPDATE SET entity_id = excluded.entity_id`,
		namespace, utterance, id)
	if err != nil {
		return fmt.Errorf("write resolution cache: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, namespace, utterance string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM resolution_cache WHERE namespace = ? AND utterance = ?`,
		namespace, utterance)
	if err != nil {
		return fmt.Errorf("evict resolution cache: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

package kvstore

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresBackend persists keys in a Postgres table shared by every server
// instance. The schema is applied by the migrate command.
type PostgresBackend struct {
	db *sql.DB
}

// NewPostgresBackend wraps an open Postgres connection.
func NewPostgresBackend(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

// Get returns the value under key, or ErrNotFound.
func (p *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT value FROM kv_entries WHERE key = $1`
	var value []byte
	err := p.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

// Set stores value under key, replacing any prior value.
func (p *PostgresBackend) Set(ctx context.Context, key string, value []byte) error {
	const query = `
		INSERT INTO kv_entries (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = now()`
	_, err := p.db.ExecContext(ctx, query, key, value)
	return err
}

// Delete removes key. Deleting an unset key is a no-op.
func (p *PostgresBackend) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM kv_entries WHERE key = $1`
	_, err := p.db.ExecContext(ctx, query, key)
	return err
}

// Close closes the underlying database.
func (p *PostgresBackend) Close() error {
	return p.db.Close()
}

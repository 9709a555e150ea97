package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createTable = `
CREATE TABLE IF NOT EXISTS susdigest_entries (
	subject_key  TEXT PRIMARY KEY,
	content_hash TEXT NOT NULL DEFAULT '',
	entry        JSONB NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS susdigest_entries_hash ON susdigest_entries (content_hash);`

// PostgresStore keeps entries as JSONB rows keyed by lowercased subject.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects, pings and creates the table if needed.
func NewPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.ConnConfig.RuntimeParams["application_name"] = "susdigest"

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(dialCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := pool.Exec(dialCtx, createTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Put(ctx context.Context, e Entry) error {
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO susdigest_entries (subject_key, content_hash, entry, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (subject_key) DO UPDATE
		SET content_hash = EXCLUDED.content_hash, entry = EXCLUDED.entry, updated_at = EXCLUDED.updated_at`,
		key(e.Subject), e.ContentHash, data, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, subject string) (Entry, error) {
	return s.one(ctx, `SELECT entry FROM susdigest_entries WHERE subject_key = $1`, key(subject))
}

func (s *PostgresStore) FindByHash(ctx context.Context, hash string) (Entry, error) {
	return s.one(ctx, `SELECT entry FROM susdigest_entries WHERE content_hash = $1 ORDER BY updated_at DESC LIMIT 1`, hash)
}

func (s *PostgresStore) one(ctx context.Context, query string, arg string) (Entry, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, query, arg).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("query entry: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("unmarshal entry: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, `SELECT entry FROM susdigest_entries ORDER BY subject_key`)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		var e Entry
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, subject string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM susdigest_entries WHERE subject_key = $1`, key(subject))
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping reports database health.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

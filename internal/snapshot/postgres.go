package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/venkeey/viscanvas-sub000/internal/document"
	"github.com/venkeey/viscanvas-sub000/internal/typeid"
)

const schema = `
CREATE TABLE IF NOT EXISTS canvas_snapshots (
	id          TEXT PRIMARY KEY,
	document_id TEXT NOT NULL,
	version     INTEGER NOT NULL,
	document    JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (document_id, version)
)`

// PostgresStore keeps every snapshot version in one table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to databaseURL and creates the table if needed.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Save(ctx context.Context, snap *document.Snapshot) error {
	if snap.DocumentID == "" {
		return fmt.Errorf("%w: empty", ErrInvalidDocumentID)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	// Get current version to increment
	var nextVersion int
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM canvas_snapshots WHERE document_id = $1`,
		snap.DocumentID,
	).Scan(&nextVersion)
	if err != nil {
		return fmt.Errorf("next version: %w", err)
	}

	snap.ID = typeid.NewSnapshotID()
	snap.Version = nextVersion
	docJSON, err := document.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO canvas_snapshots (id, document_id, version, document) VALUES ($1, $2, $3, $4)`,
		snap.ID, snap.DocumentID, snap.Version, docJSON,
	)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) Latest(ctx context.Context, documentID string) (*document.Snapshot, error) {
	var docJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT document FROM canvas_snapshots WHERE document_id = $1 ORDER BY version DESC LIMIT 1`,
		documentID,
	).Scan(&docJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return document.Unmarshal(docJSON)
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

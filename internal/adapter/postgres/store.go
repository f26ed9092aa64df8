package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/couchcryptid/quake-risk-etl/internal/domain"
)

// schemaSQL is embedded so the service can self-bootstrap its tables.
//
//go:embed schema.sql
var schemaSQL string

const snapshotID = "latest"

const upsertSnapshotSQL = `
INSERT INTO analysis_snapshots (id, document, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`

const insertRunSQL = `
INSERT INTO run_history (id, status, run_at, triggered_by, event_count, error)
VALUES ($1, $2, $3, $4, $5, $6)`

// execer is the subset of pgxpool.Pool the store writes through.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store persists the latest analysis document and the run history in Postgres.
// It implements pipeline.ResultStore.
type Store struct {
	db   execer
	pool *pgxpool.Pool
}

// NewStore creates a connection pool and fails fast if the database is unreachable.
func NewStore(ctx context.Context, dbURL string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{db: pool, pool: pool}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveLatest replaces the single "latest" analysis document.
func (s *Store) SaveLatest(ctx context.Context, report domain.Report) error {
	doc, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("serialize analysis report: %w", err)
	}
	if _, err := s.db.Exec(ctx, upsertSnapshotSQL, snapshotID, string(doc), report.UpdatedAt); err != nil {
		return fmt.Errorf("save latest analysis: %w", err)
	}
	return nil
}

// AppendRun inserts one run-history row.
func (s *Store) AppendRun(ctx context.Context, record domain.RunRecord) error {
	var errMsg *string
	if record.Error != "" {
		errMsg = &record.Error
	}
	if _, err := s.db.Exec(ctx, insertRunSQL,
		record.ID, string(record.Status), record.Timestamp, record.TriggeredBy, record.EventCount, errMsg,
	); err != nil {
		return fmt.Errorf("append run record: %w", err)
	}
	return nil
}

// Close shuts down the connection pool.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

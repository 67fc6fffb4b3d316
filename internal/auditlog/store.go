// Package auditlog persists one record per dispatch or admin registry
// mutation. It deliberately does not reconstruct registries at
// startup — it is a trail, not a source of truth for C2's mutable state.
package auditlog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Entry is one audit record: a dispatch (chat/embedding/image) or an admin
// registry mutation (admin_load/admin_unload).
type Entry struct {
	TraceID    string
	Kind       string // dispatch | admin_load | admin_unload
	Capability string // chat | embedding | image | llm | multimodal
	Model      string
	CacheHit   bool
	Latency    time.Duration
	Err        string
	CreatedAt  time.Time
}

// Writer persists audit entries. The engine ignores a Write failure: it is
// neither logged nor propagated into the dispatch path (audit is
// best-effort).
type Writer interface {
	Write(ctx context.Context, entry Entry) error
}

// NoopWriter discards every entry; it's the Engine default when no DSN is
// configured.
type NoopWriter struct{}

// Write implements Writer.
func (NoopWriter) Write(context.Context, Entry) error { return nil }

// SQLWriter persists entries to SQLite or Postgres, selected by dialect.
type SQLWriter struct {
	db      *sql.DB
	dialect string
}

// NewSQLiteWriter opens (creating if needed) a SQLite-backed audit log at
// dsn, defaulting to a local file when dsn is blank.
func NewSQLiteWriter(dsn string) (*SQLWriter, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = "inference-gateway-audit.db"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite audit writer: %w", err)
	}
	w := &SQLWriter{db: db, dialect: "sqlite"}
	if err := w.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

// NewPostgresWriter opens a Postgres-backed audit log at dsn, which must be
// non-empty.
func NewPostgresWriter(dsn string) (*SQLWriter, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres audit writer: %w", err)
	}
	w := &SQLWriter{db: db, dialect: "postgres"}
	if err := w.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

func (w *SQLWriter) init() error {
	if err := w.db.Ping(); err != nil {
		return fmt.Errorf("ping %s audit writer: %w", w.dialect, err)
	}

	ddl := `
CREATE TABLE IF NOT EXISTS audit_events (
	id INTEGER PRIMARY KEY,
	trace_id TEXT,
	kind TEXT NOT NULL,
	capability TEXT NOT NULL,
	model TEXT,
	cache_hit INTEGER NOT NULL,
	latency_ms INTEGER NOT NULL,
	error_message TEXT,
	created_at TIMESTAMP NOT NULL
);`
	if w.dialect == "postgres" {
		ddl = `
CREATE TABLE IF NOT EXISTS audit_events (
	id BIGSERIAL PRIMARY KEY,
	trace_id TEXT,
	kind TEXT NOT NULL,
	capability TEXT NOT NULL,
	model TEXT,
	cache_hit BOOLEAN NOT NULL,
	latency_ms BIGINT NOT NULL,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL
);`
	}

	if _, err := w.db.Exec(ddl); err != nil {
		return fmt.Errorf("initialize audit schema: %w", err)
	}
	return nil
}

// Write implements Writer.
func (w *SQLWriter) Write(ctx context.Context, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO audit_events(trace_id, kind, capability, model, cache_hit, latency_ms, error_message, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?)`
	if w.dialect == "postgres" {
		query = `INSERT INTO audit_events(trace_id, kind, capability, model, cache_hit, latency_ms, error_message, created_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8)`
	}

	_, err := w.db.ExecContext(ctx, query,
		entry.TraceID,
		entry.Kind,
		entry.Capability,
		entry.Model,
		entry.CacheHit,
		entry.Latency.Milliseconds(),
		entry.Err,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("write audit event: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (w *SQLWriter) Close() error {
	if w == nil || w.db == nil {
		return nil
	}
	return w.db.Close()
}

// NewFromEnv selects a Writer based on AUDIT_SQLITE_DSN / AUDIT_POSTGRES_DSN
//. Postgres takes precedence if both are set. Neither set yields a
// NoopWriter.
func NewFromEnv(sqliteDSN, postgresDSN string) (Writer, error) {
	switch {
	case postgresDSN != "":
		return NewPostgresWriter(postgresDSN)
	case sqliteDSN != "":
		return NewSQLiteWriter(sqliteDSN)
	default:
		return NoopWriter{}, nil
	}
}

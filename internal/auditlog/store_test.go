package auditlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestSQLiteWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	w, err := NewSQLiteWriter(path)
	if err != nil {
		t.Fatalf("new sqlite writer: %v", err)
	}
	t.Cleanup(func() {
		_ = w.Close()
	})

	entries := []Entry{
		{Kind: "dispatch", Capability: "chat", Model: "dummy-model", Latency: 5 * time.Millisecond},
		{Kind: "dispatch", Capability: "embedding", Model: "dummy-embedding", CacheHit: false},
		{Kind: "admin_load", Capability: "llm", Model: "local-gguf"},
	}
	for _, entry := range entries {
		if err := w.Write(context.Background(), entry); err != nil {
			t.Fatalf("write audit entry: %v", err)
		}
	}

	var count int
	if err := w.db.QueryRow("SELECT COUNT(*) FROM audit_events").Scan(&count); err != nil {
		t.Fatalf("count audit events: %v", err)
	}
	if count != len(entries) {
		t.Fatalf("expected %d rows, got %d", len(entries), count)
	}
}

func TestNewFromEnv(t *testing.T) {
	w, err := NewFromEnv("", "")
	if err != nil {
		t.Fatalf("new from env: %v", err)
	}
	if _, ok := w.(NoopWriter); !ok {
		t.Fatalf("expected NoopWriter when no DSN set, got %T", w)
	}

	path := filepath.Join(t.TempDir(), "audit2.db")
	w2, err := NewFromEnv(path, "")
	if err != nil {
		t.Fatalf("new from env with sqlite dsn: %v", err)
	}
	sw, ok := w2.(*SQLWriter)
	if !ok {
		t.Fatalf("expected *SQLWriter, got %T", w2)
	}
	defer sw.Close()
}

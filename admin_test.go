package dispatch

import (
	"context"
	"testing"
)

// Property 7: admin load/unload round-trip.
func TestAdminLoadUnloadRoundTrip(t *testing.T) {
	e := newTestEngine(t)

	if err := e.LoadModel(context.Background(), "embedding", "custom-embed", LoadOptions{}); err != nil {
		t.Fatalf("load model: %v", err)
	}

	models := e.ListModels()
	if !contains(models.Embedding, "custom-embed") {
		t.Fatalf("expected custom-embed in %v after load", models.Embedding)
	}

	if err := e.UnloadModel(context.Background(), "embedding", "custom-embed"); err != nil {
		t.Fatalf("unload model: %v", err)
	}

	models = e.ListModels()
	if contains(models.Embedding, "custom-embed") {
		t.Fatalf("expected custom-embed removed from %v after unload", models.Embedding)
	}
}

func TestAdminLoadUnknownKind(t *testing.T) {
	e := newTestEngine(t)
	if err := e.LoadModel(context.Background(), "bogus", "x", LoadOptions{}); err == nil {
		t.Fatal("expected an error for an unknown load kind")
	}
}

func TestAdminUnloadUnknownNameIsNoop(t *testing.T) {
	e := newTestEngine(t)
	if err := e.UnloadModel(context.Background(), "embedding", "does-not-exist"); err != nil {
		t.Fatalf("expected unloading an absent name to be a no-op, got %v", err)
	}
}

func contains(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}

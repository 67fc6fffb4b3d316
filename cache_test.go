package dispatch

import (
	"context"
	"testing"

	"github.com/dispatchlabs/inference-gateway/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Property 10: cache idempotence.
func TestBufferedChatCacheIdempotence(t *testing.T) {
	e := newTestEngine(t)
	req := ChatRequest{
		Model:    "dummy-model",
		Messages: []Message{{Role: "user", Text: "hello"}},
	}

	before := testutil.ToFloat64(metrics.CacheHits)

	first, err := e.SubmitChatBuffered(context.Background(), req)
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second, err := e.SubmitChatBuffered(context.Background(), req)
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}

	if first.Choices[0].Message.Content != second.Choices[0].Message.Content {
		t.Fatalf("expected identical content, got %q and %q",
			first.Choices[0].Message.Content, second.Choices[0].Message.Content)
	}

	after := testutil.ToFloat64(metrics.CacheHits)
	if after != before+1 {
		t.Fatalf("expected exactly one cache hit increment, before=%v after=%v", before, after)
	}
}

// Property 11: streaming never caches.
func TestStreamingNeverCaches(t *testing.T) {
	e := newTestEngine(t)
	req := ChatRequest{
		Model:    "dummy-model",
		Messages: []Message{{Role: "user", Text: "hello"}},
		Stream:   true,
	}

	for i := 0; i < 2; i++ {
		ch, err := e.SubmitChatStream(context.Background(), req)
		if err != nil {
			t.Fatalf("submit stream %d: %v", i, err)
		}
		var frames int
		for range ch {
			frames++
		}
		if frames == 0 {
			t.Fatalf("expected a non-empty stream on iteration %d", i)
		}
	}

	if n := e.cache.len(); n != 0 {
		t.Fatalf("expected response cache to remain empty after streaming, got %d entries", n)
	}
}

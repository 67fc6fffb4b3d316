package dispatch

import (
	"context"
	"math"
	"testing"
)

// Property 5: embedding shape.
func TestEmbeddingShape(t *testing.T) {
	e := newTestEngine(t)
	resp, err := e.SubmitEmbedding(context.Background(), EmbeddingRequest{
		Model: "dummy-embedding",
		Input: []string{"hello", "world"},
	})
	if err != nil {
		t.Fatalf("submit embedding: %v", err)
	}
	if resp.Object != "list" || resp.Model != "dummy-embedding" {
		t.Fatalf("unexpected response shape: %+v", resp)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(resp.Data))
	}
	for _, d := range resp.Data {
		if len(d.Embedding) == 0 {
			t.Fatalf("expected a non-empty embedding vector")
		}
		var sumSquares float64
		for _, v := range d.Embedding {
			sumSquares += float64(v) * float64(v)
		}
		norm := math.Sqrt(sumSquares)
		if math.Abs(norm-1.0) > 1e-3 {
			t.Fatalf("expected L2-normalized vector, got norm %v", norm)
		}
	}
}

// Property 6: image shape.
func TestImageShape(t *testing.T) {
	e := newTestEngine(t)
	resp, err := e.SubmitImage(context.Background(), ImageRequest{
		Model:  "dummy-image",
		Prompt: "a cute cat",
		N:      2,
		Size:   "256x256",
	})
	if err != nil {
		t.Fatalf("submit image: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("expected 2 images, got %d", len(resp.Data))
	}
	for _, d := range resp.Data {
		if d.B64JSON == "" {
			t.Fatalf("expected a non-empty b64_json")
		}
	}
}

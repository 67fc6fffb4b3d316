package runtime

import (
	"context"
	"math"
	"math/bits"
)

// DummyEmbeddingDimension is the vector width produced by
// DummyEmbeddingRuntime, installed under "dummy-embedding" at startup.
const DummyEmbeddingDimension = 384

// DummyEmbeddingRuntime produces a deterministic pseudo-embedding for each
// input string: an FNV-1a hash of the bytes seeds a per-dimension value via
// bit rotation, and the resulting vector is L2-normalized. No tokenizer or
// model weights are involved — this exists so the embedding dispatch path
// and its callers can be exercised without a real backend.
type DummyEmbeddingRuntime struct {
	dimension int
}

// NewDummyEmbeddingRuntime constructs a dummy embedder of the given
// dimensionality.
func NewDummyEmbeddingRuntime(dimension int) *DummyEmbeddingRuntime {
	return &DummyEmbeddingRuntime{dimension: dimension}
}

const (
	fnvOffsetBasis uint64 = 1469598103934665603
	fnvPrime       uint64 = 1099511628211
)

// Embed implements Embedder.
func (d *DummyEmbeddingRuntime) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	results := make([][]float32, len(inputs))
	for idx, text := range inputs {
		hash := fnvOffsetBasis
		for i := 0; i < len(text); i++ {
			hash ^= uint64(text[i])
			hash *= fnvPrime
		}

		vec := make([]float32, d.dimension)
		for i := 0; i < d.dimension; i++ {
			rotated := bits.RotateLeft64(hash, i%64)
			vec[i] = float32(rotated%1000) / 1000.0
		}

		var sumSquares float64
		for _, v := range vec {
			sumSquares += float64(v) * float64(v)
		}
		norm := math.Sqrt(sumSquares)
		if norm > 0 {
			for i := range vec {
				vec[i] = float32(float64(vec[i]) / norm)
			}
		}

		results[idx] = vec
	}
	return results, nil
}

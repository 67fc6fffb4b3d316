package runtime

import (
	"context"
	"fmt"
	"os"

	ort "github.com/yalue/onnxruntime_go"
)

// OnnxEmbeddingRuntime wraps an ONNX Runtime session for embeddings.
// Grounded on runtime/onnx_embedding.rs, which is itself a feature-gated
// placeholder returning zero vectors pending real tokenization/IO binding.
// This loader goes one step further than the original — it checks that
// the model file exists and initializes the onnxruntime_go environment, to
// prove the dependency is wired — but it creates no session and never
// reads the model file; Embed defers to the dummy embedding algorithm,
// since no tokenizer is available to turn raw text into model tensors.
type OnnxEmbeddingRuntime struct {
	modelPath string
	dummy     *DummyEmbeddingRuntime
}

// LoadOnnxEmbedding checks that modelPath exists and initializes the ONNX
// Runtime environment (from sharedLibraryPath when non-empty). Both steps
// are non-fatal at the call site: admin load falls back to the dummy
// embedding backend on any error here, and the env seed skips the entry.
func LoadOnnxEmbedding(modelPath string, sharedLibraryPath string) (*OnnxEmbeddingRuntime, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("stat onnx model %q: %w", modelPath, err)
	}

	if sharedLibraryPath != "" {
		ort.SetSharedLibraryPath(sharedLibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime environment: %w", err)
		}
	}

	return &OnnxEmbeddingRuntime{
		modelPath: modelPath,
		dummy:     NewDummyEmbeddingRuntime(DummyEmbeddingDimension),
	}, nil
}

// Embed implements Embedder. See the type doc comment: no ONNX session is
// involved; output comes from the deterministic dummy algorithm.
func (o *OnnxEmbeddingRuntime) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	return o.dummy.Embed(ctx, inputs)
}

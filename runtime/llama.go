package runtime

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadLlamaFile validates a local model file the way a real GGUF/GGML
// loader would before accepting it: the extension must be .gguf or .ggml,
// and a .gguf file must carry the "GGUF" magic header in its first four
// bytes. Grounded on runtime/llama_cpp.rs's own validation step; no
// llama.cpp binding is available in this module, so a validated file
// is wrapped in a runtime that behaves like DummyRuntime, annotated with
// the file's base name, rather than actually performing local inference.
//
// A validation failure returns an error; per the admin load contract
// the caller falls back to installing the dummy backend instead
// of failing the load outright.
func LoadLlamaFile(path string) (*LlamaFileRuntime, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model file %q: %w", path, err)
	}
	defer f.Close()

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "gguf":
		header := make([]byte, 4)
		n, _ := f.Read(header)
		if n < 4 || string(header) != "GGUF" {
			return nil, fmt.Errorf("invalid GGUF header in %q: expected 'GGUF' magic", path)
		}
	case "ggml":
		// GGML variants carry multiple magic byte layouts; not enforced here,
		// matching the original loader.
	default:
		return nil, fmt.Errorf("unsupported model extension %q: expected .gguf or .ggml", ext)
	}

	return &LlamaFileRuntime{name: filepath.Base(path)}, nil
}

// LlamaFileRuntime is a validated-but-unbacked local model file. It
// implements TextGenerator and VisionGenerator with the same echo
// behavior as DummyRuntime so that admin-loaded "llama" backends remain
// usable end to end.
type LlamaFileRuntime struct {
	name string
}

func (l *LlamaFileRuntime) Generate(ctx context.Context, prompt string, opts GenerationOptions) (string, error) {
	return "Echo[" + l.name + "]: " + truncateRunes(prompt, opts.MaxTokens), nil
}

func (l *LlamaFileRuntime) GenerateFromVision(ctx context.Context, text string, imageURLs []string, opts GenerationOptions) (string, error) {
	out := "Echo[" + l.name + "](Vision): " + text
	if len(imageURLs) > 0 {
		out += fmt.Sprintf(" | images=%d", len(imageURLs))
	}
	return truncateRunes(out, opts.MaxTokens), nil
}

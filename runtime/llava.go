package runtime

import (
	"context"
	"fmt"
)

// LlavaRuntime is a vision-runtime skeleton: vision-encode, prompt-augment,
// then call an LLM. Grounded on runtime/llava.rs, which is itself an
// unfinished placeholder in the original source.
type LlavaRuntime struct {
	path string
}

// LoadLlava accepts a model path the way the original constructor does
// (vision encoder / projection / llama paths, here collapsed to one) and
// returns a runtime that will echo rather than actually run vision
// inference.
//
// TODO: wire a real vision encoder session (and projection + LLM call)
// instead of echoing; the original source stops at the same point.
func LoadLlava(path string) (*LlavaRuntime, error) {
	return &LlavaRuntime{path: path}, nil
}

// GenerateFromVision implements VisionGenerator.
func (l *LlavaRuntime) GenerateFromVision(_ context.Context, text string, imageURLs []string, opts GenerationOptions) (string, error) {
	out := fmt.Sprintf("[LLaVA] %s", text)
	if len(imageURLs) > 0 {
		out += fmt.Sprintf(" (%d images)", len(imageURLs))
	}
	return truncateRunes(out, opts.MaxTokens), nil
}

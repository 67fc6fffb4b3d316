package runtime

import (
	"context"
	"strconv"
)

// DummyRuntime is the text/vision backend installed under "dummy-model" in
// both the llm and multimodal registries at startup. It echoes its input,
// truncated to max_tokens characters — deterministic, no external
// dependency, and cheap enough to run inline on every worker.
type DummyRuntime struct{}

// NewDummyRuntime constructs the preload text/vision backend.
func NewDummyRuntime() *DummyRuntime { return &DummyRuntime{} }

// Generate implements TextGenerator.
func (d *DummyRuntime) Generate(_ context.Context, prompt string, opts GenerationOptions) (string, error) {
	return "Echo: " + truncateRunes(prompt, opts.MaxTokens), nil
}

// GenerateFromVision implements VisionGenerator. The image count is folded
// into the echoed text before truncation, matching the original runtime's
// "Echo(Vision): <text> | images=<n>" shape.
func (d *DummyRuntime) GenerateFromVision(_ context.Context, text string, imageURLs []string, opts GenerationOptions) (string, error) {
	out := "Echo(Vision): " + text
	if len(imageURLs) > 0 {
		out += " | images=" + strconv.Itoa(len(imageURLs))
	}
	return truncateRunes(out, opts.MaxTokens), nil
}

// truncateRunes returns the first n runes of s, or s unchanged if it has
// fewer than n runes. max_tokens is treated as a character budget here —
// the dummy runtime has no tokenizer of its own.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

package dispatch

import (
	"context"
	"sort"
	"testing"
	"time"

	rt "github.com/dispatchlabs/inference-gateway/runtime"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(Config{Workers: 2})
	t.Cleanup(e.Close)
	return e
}

// Property 1: registry preload.
func TestRegistryPreload(t *testing.T) {
	e := newTestEngine(t)
	models := e.ListModels()

	assertContains(t, models.LLM, "dummy-model")
	assertContains(t, models.Multimodal, "dummy-model")
	assertContains(t, models.Embedding, "dummy-embedding")
	assertContains(t, models.Image, "dummy-image")
}

func assertContains(t *testing.T, names []string, want string) {
	t.Helper()
	sort.Strings(names)
	for _, n := range names {
		if n == want {
			return
		}
	}
	t.Fatalf("expected %q in %v", want, names)
}

// Property 2: buffered echo.
func TestBufferedEcho(t *testing.T) {
	e := newTestEngine(t)
	maxTokens := 3
	req := ChatRequest{
		Model:     "dummy-model",
		Messages:  []Message{{Role: "user", Text: "hello"}},
		MaxTokens: &maxTokens,
	}

	resp, err := e.SubmitChatBuffered(context.Background(), req)
	if err != nil {
		t.Fatalf("submit buffered: %v", err)
	}
	if resp.Object != "chat.completion" || resp.Model != "dummy-model" || resp.ID == "" {
		t.Fatalf("unexpected response shape: %+v", resp)
	}
	content := resp.Choices[0].Message.Content
	if len(content) == 0 || content[:6] != "Echo: " {
		t.Fatalf("expected content to start with %q, got %q", "Echo: ", content)
	}
	if len(content) > len("Echo: ")+3 {
		t.Fatalf("content %q exceeds max_tokens-bounded length", content)
	}
}

// Property 3: streamed echo.
func TestStreamedEcho(t *testing.T) {
	e := newTestEngine(t)
	req := ChatRequest{
		Model:    "dummy-model",
		Messages: []Message{{Role: "user", Text: "hello"}},
		Stream:   true,
	}

	ch, err := e.SubmitChatStream(context.Background(), req)
	if err != nil {
		t.Fatalf("submit stream: %v", err)
	}

	var frames []string
	for frame := range ch {
		frames = append(frames, frame)
	}

	var sawChunk, sawDone bool
	for _, f := range frames {
		if containsSubstring(f, "chat.completion.chunk") {
			sawChunk = true
		}
		if f == "[DONE]" {
			sawDone = true
		}
	}
	if !sawChunk || !sawDone {
		t.Fatalf("expected both chat.completion.chunk and [DONE] in frames: %v", frames)
	}
}

func containsSubstring(s, substr string) bool {
	return len(s) >= len(substr) && indexOf(s, substr) >= 0
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}

// Property 4: multimodal routing.
func TestMultimodalRouting(t *testing.T) {
	e := newTestEngine(t)
	maxTokens := 50
	req := ChatRequest{
		Model: "dummy-model",
		Messages: []Message{{
			Role: "user",
			Parts: []ContentPart{
				{Type: "text", Text: "look at this"},
				{Type: "image_url", ImageURL: &ImageURL{URL: "https://example.com/img.jpg"}},
			},
		}},
		MaxTokens: &maxTokens,
	}

	resp, err := e.SubmitChatBuffered(context.Background(), req)
	if err != nil {
		t.Fatalf("submit buffered: %v", err)
	}
	content := resp.Choices[0].Message.Content
	const prefix = "Echo(Vision): "
	if len(content) < len(prefix) || content[:len(prefix)] != prefix {
		t.Fatalf("expected content to start with %q, got %q", prefix, content)
	}
	if !containsSubstring(content, "images=1") {
		t.Fatalf("expected content to contain images=1, got %q", content)
	}
}

// Property 12: concurrency bound.
type sleepingRuntime struct{ sleep time.Duration }

func (s sleepingRuntime) Generate(ctx context.Context, prompt string, opts rt.GenerationOptions) (string, error) {
	time.Sleep(s.sleep)
	return "slept", nil
}

func TestConcurrencyBoundSingleWorker(t *testing.T) {
	e := NewEngine(Config{Workers: 1})
	t.Cleanup(e.Close)
	e.llm.Insert("sleepy", sleepingRuntime{sleep: 50 * time.Millisecond})

	start := time.Now()
	done := make(chan struct{}, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, _ = e.SubmitChatBuffered(context.Background(), ChatRequest{
				Model:    "sleepy",
				Messages: []Message{{Role: "user", Text: "x"}},
			})
			done <- struct{}{}
		}()
	}
	<-done
	<-done
	elapsed := time.Since(start)
	if elapsed < 95*time.Millisecond {
		t.Fatalf("expected serialized execution to take at least ~2x sleep, got %v", elapsed)
	}
}

func TestConcurrencyBoundTwoWorkers(t *testing.T) {
	e := NewEngine(Config{Workers: 2})
	t.Cleanup(e.Close)
	e.llm.Insert("sleepy", sleepingRuntime{sleep: 50 * time.Millisecond})

	start := time.Now()
	done := make(chan struct{}, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, _ = e.SubmitChatBuffered(context.Background(), ChatRequest{
				Model:    "sleepy",
				Messages: []Message{{Role: "user", Text: "x"}},
			})
			done <- struct{}{}
		}()
	}
	<-done
	<-done
	elapsed := time.Since(start)
	if elapsed > 90*time.Millisecond {
		t.Fatalf("expected parallel execution to take ~1x sleep, got %v", elapsed)
	}
}

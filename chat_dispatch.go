package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dispatchlabs/inference-gateway/internal/auditlog"
	"github.com/dispatchlabs/inference-gateway/internal/metrics"
	rt "github.com/dispatchlabs/inference-gateway/runtime"
	"github.com/google/uuid"
)

// SubmitChatBuffered runs the full chat path for a non-streaming request:
// gate check is assumed already done by the HTTP layer; this consults the
// cache, then on a miss enqueues and awaits the buffered reply.
func (e *Engine) SubmitChatBuffered(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	start := time.Now()
	fp := computeFingerprint(req)

	if cached, ok := e.cache.get(fp); ok {
		metrics.CacheHits.Inc()
		return cached, nil
	}
	metrics.CacheMisses.Inc()

	env := &chatEnvelope{
		request: req,
		opts:    resolveOptions(req),
		replyCh: make(chan chatReply, 1),
	}

	if err := e.queue.push(env); err != nil {
		return nil, errInternal("enqueue chat request: %v", err)
	}

	reply := <-env.replyCh
	metrics.RequestDuration.WithLabelValues("chat", req.Model).Observe(time.Since(start).Seconds())
	if reply.err != nil {
		metrics.RequestsTotal.WithLabelValues("chat", req.Model, "error").Inc()
		return nil, reply.err
	}

	metrics.RequestsTotal.WithLabelValues("chat", req.Model, "success").Inc()
	e.cache.set(fp, reply.response)
	e.audit.Write(ctx, auditlog.Entry{Kind: "dispatch", Capability: "chat", Model: req.Model, Latency: time.Since(start)})
	return reply.response, nil
}

// SubmitChatStream runs the streaming chat path: no cache lookup ever
// happens, and frames are delivered on the returned channel as
// they're produced by the worker. The channel is closed once the sentinel
// has been sent. An unknown model, or a text-only request against a
// multimodal-only model, is rejected here as a typed error before anything
// is enqueued.
func (e *Engine) SubmitChatStream(ctx context.Context, req ChatRequest) (<-chan string, error) {
	_, imageURLs := extractPrompt(req)
	_, hasLLM := e.llm.Lookup(req.Model)
	_, hasMM := e.multimodal.Lookup(req.Model)
	if !hasLLM && !hasMM {
		return nil, errNotFound("model %s not found", req.Model)
	}
	if len(imageURLs) == 0 && !hasLLM {
		return nil, errBadRequest("model %s requires image input", req.Model)
	}

	env := &chatEnvelope{
		request:  req,
		opts:     resolveOptions(req),
		streamCh: make(chan string, 8),
	}
	if err := e.queue.push(env); err != nil {
		return nil, errInternal("enqueue chat request: %v", err)
	}
	return env.streamCh, nil
}

// resolveOptions defaults absent request fields.
func resolveOptions(req ChatRequest) rt.GenerationOptions {
	opts := rt.DefaultGenerationOptions()
	if req.MaxTokens != nil {
		opts.MaxTokens = *req.MaxTokens
	}
	if req.Temperature != nil {
		opts.Temperature = *req.Temperature
	}
	if req.TopP != nil {
		opts.TopP = *req.TopP
	}
	return opts
}

// extractPrompt pulls the prompt out of the terminal message: text
// content supplies the prompt verbatim; parts content concatenates all
// text parts in order and collects image URLs in order; a missing
// terminal message yields an empty prompt and no images.
func extractPrompt(req ChatRequest) (prompt string, imageURLs []string) {
	if len(req.Messages) == 0 {
		return "", nil
	}
	last := req.Messages[len(req.Messages)-1]
	if len(last.Parts) == 0 {
		return last.Text, nil
	}

	var text string
	for _, part := range last.Parts {
		switch part.Type {
		case "image_url":
			if part.ImageURL != nil {
				imageURLs = append(imageURLs, part.ImageURL.URL)
			}
		default:
			text += part.Text
		}
	}
	return text, imageURLs
}

// runChat executes one chat envelope end to end: routes to the correct
// runtime for the request's model and content shape, then assembles
// either a buffered response or a four-frame SSE stream.
func (e *Engine) runChat(ctx context.Context, env *chatEnvelope) {
	prompt, imageURLs := extractPrompt(env.request)

	llmHandle, hasLLM := e.llm.Lookup(env.request.Model)
	mmHandle, hasMM := e.multimodal.Lookup(env.request.Model)

	if !hasLLM && !hasMM {
		e.finishChat(env, "", errNotFound("model %s not found", env.request.Model))
		return
	}

	var (
		text string
		err  error
	)
	switch {
	case len(imageURLs) == 0 && hasLLM:
		text, err = llmHandle.Generate(ctx, prompt, env.opts)
	case len(imageURLs) == 0 && !hasLLM && hasMM:
		e.finishChat(env, "", errBadRequest("model %s requires image input", env.request.Model))
		return
	case len(imageURLs) > 0 && hasMM:
		text, err = mmHandle.GenerateFromVision(ctx, prompt, imageURLs, env.opts)
	case len(imageURLs) > 0 && hasLLM:
		// Compatibility fallback: image URLs present but only a text
		// backend is installed — ignore the images.
		text, err = llmHandle.Generate(ctx, prompt, env.opts)
	default:
		e.finishChat(env, "", errNotFound("model %s not found", env.request.Model))
		return
	}

	if err != nil {
		metrics.BackendErrors.WithLabelValues("chat").Inc()
	}
	e.finishChat(env, text, err)
}

// finishChat delivers the generated text, or the backend error under the
// lossy-buffered / embedded-in-stream rules below, to whichever reply
// mechanism the envelope carries.
func (e *Engine) finishChat(env *chatEnvelope, text string, err error) {
	id := uuid.NewString()
	created := time.Now().Unix()

	if env.replyCh != nil {
		// Buffered mode: a routing/not-found/bad-request error propagates to
		// the caller; a genuine backend failure degrades silently to empty
		// content instead of surfacing as an error.
		if de, ok := err.(*Error); ok {
			trySendChatReply(env.replyCh, chatReply{err: de})
			return
		}
		if err != nil {
			text = ""
		}
		resp := &ChatResponse{
			ID:      id,
			Object:  "chat.completion",
			Created: created,
			Model:   env.request.Model,
			Choices: []ChatChoice{{
				Index:        0,
				Message:      &ResponseMessage{Role: "assistant", Content: text},
				FinishReason: "stop",
			}},
		}
		trySendChatReply(env.replyCh, chatReply{response: resp})
		return
	}

	// Streaming mode: any error — a backend failure, or a routing error from
	// a registry change between SubmitChatStream's check and execution — is
	// carried as "[error: ...]" in the content chunk; the role chunk, done
	// chunk and sentinel are still sent, since there is no separate "stream
	// rejected" terminal state.
	content := text
	if de, ok := err.(*Error); ok {
		content = fmt.Sprintf("[error: %s]", de.Message)
	} else if err != nil {
		content = fmt.Sprintf("[error: %s]", err.Error())
	}
	emitStream(env.streamCh, id, created, env.request.Model, content)
}

func trySendChatReply(ch chan chatReply, r chatReply) {
	select {
	case ch <- r:
	default:
		// The reply channel is buffered for exactly one reply, so a caller
		// that stopped waiting never blocks this send; a second reply
		// finding the buffer full is dropped silently.
	}
}

// emitStream sends the three ordered chunks and the sentinel frame, then
// closes the channel. Every send is non-blocking: a frame that finds the
// buffer full is dropped. The channel is sized to hold all four frames, so
// a consumer that has stopped reading never causes a drop or a stall.
func emitStream(ch chan string, id string, created int64, model string, content string) {
	defer close(ch)

	roleChunk := ChatChunk{
		ID: id, Object: "chat.completion.chunk", Created: created, Model: model,
		Choices: []StreamChoice{{Index: 0, Delta: StreamDelta{Role: "assistant"}}},
	}
	sendChunk(ch, roleChunk)

	contentChunk := ChatChunk{
		ID: id, Object: "chat.completion.chunk", Created: created, Model: model,
		Choices: []StreamChoice{{Index: 0, Delta: StreamDelta{Content: content}}},
	}
	sendChunk(ch, contentChunk)

	finish := "stop"
	doneChunk := ChatChunk{
		ID: id, Object: "chat.completion.chunk", Created: created, Model: model,
		Choices: []StreamChoice{{Index: 0, Delta: StreamDelta{}, FinishReason: &finish}},
	}
	sendChunk(ch, doneChunk)

	trySendFrame(ch, "[DONE]")
}

func sendChunk(ch chan string, chunk ChatChunk) {
	data, err := json.Marshal(chunk)
	if err != nil {
		return
	}
	trySendFrame(ch, string(data))
}

func trySendFrame(ch chan string, frame string) {
	select {
	case ch <- frame:
	default:
		// Downstream has stopped reading; drop rather than block forever.
	}
}

package dispatch

import "github.com/dispatchlabs/inference-gateway/runtime"

// envelope is the tagged unit of work carried by the dispatch queue (C3).
// Exactly one of the three concrete kinds is ever enqueued per request;
// each carries its own single-shot reply mechanism so the worker handling
// it needs nothing beyond the envelope itself.
type envelope interface {
	isEnvelope()
}

// chatEnvelope carries a chat request through to completion. Exactly one
// of replyCh (buffered mode) or streamCh (streaming mode) is non-nil,
// mirroring the request's own stream field.
type chatEnvelope struct {
	request  ChatRequest
	opts     runtime.GenerationOptions
	replyCh  chan chatReply // buffered mode: exactly one send
	streamCh chan string    // streaming mode: role/content/done/"[DONE]" frames
}

func (chatEnvelope) isEnvelope() {}

type chatReply struct {
	response *ChatResponse
	err      error
}

// embeddingEnvelope carries an embedding request through to completion.
type embeddingEnvelope struct {
	request ChatEmbeddingRequest
	replyCh chan embeddingReply
}

func (embeddingEnvelope) isEnvelope() {}

// ChatEmbeddingRequest aliases EmbeddingRequest; named distinctly here so
// the envelope's field reads clearly against chatEnvelope/imageEnvelope.
type ChatEmbeddingRequest = EmbeddingRequest

type embeddingReply struct {
	response *EmbeddingResponse
	err      error
}

// imageEnvelope carries an image-generation request through to completion.
type imageEnvelope struct {
	request ImageRequest
	replyCh chan imageReply
}

func (imageEnvelope) isEnvelope() {}

type imageReply struct {
	images [][]byte
	err    error
}

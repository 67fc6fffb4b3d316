package dispatch

import (
	"encoding/json"
	"fmt"
)

// ContentPart is one element of a chat message's multipart content: either
// a text fragment or an image reference. Grounded on providers.Message's
// custom JSON handling in providers/provider.go, which accepts the same
// string-or-parts union on the wire.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL is the image_url part of a ContentPart.
type ImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

// Message is one chat message. Content arrives on the wire as either a
// plain string or an array of ContentPart objects; UnmarshalJSON accepts
// both and normalizes into Text/Parts so the rest of the dispatcher never
// has to re-sniff the wire shape.
type Message struct {
	Role  string        `json:"role"`
	Text  string        `json:"-"`
	Parts []ContentPart `json:"-"`
}

// MarshalJSON re-emits whichever shape was parsed: a bare string if Parts
// is empty, otherwise the parts array.
func (m Message) MarshalJSON() ([]byte, error) {
	type wire struct {
		Role    string      `json:"role"`
		Content interface{} `json:"content"`
	}
	if len(m.Parts) > 0 {
		return json.Marshal(wire{Role: m.Role, Content: m.Parts})
	}
	return json.Marshal(wire{Role: m.Role, Content: m.Text})
}

// UnmarshalJSON accepts content as either a string or a parts array.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	m.Role = raw.Role

	if len(raw.Content) == 0 {
		return nil
	}

	var asString string
	if err := json.Unmarshal(raw.Content, &asString); err == nil {
		m.Text = asString
		return nil
	}

	var asParts []ContentPart
	if err := json.Unmarshal(raw.Content, &asParts); err != nil {
		return fmt.Errorf("message content is neither a string nor a part array: %w", err)
	}
	m.Parts = asParts
	return nil
}

// OptionalGenerationParams groups the optional sampling fields (max_tokens,
// temperature, top_p) of a request; a nil field means absent. Defaults for
// absent fields are applied by resolveOptions in chat_dispatch.go.
type OptionalGenerationParams struct {
	MaxTokens   *int
	Temperature *float32
	TopP        *float32
}

// ChatRequest is the decoded /v1/chat/completions body. Temperature and
// TopP are f32 per §3/§4.1.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
	Temperature *float32  `json:"temperature,omitempty"`
	TopP        *float32  `json:"top_p,omitempty"`
}

// ChatChoice is one entry of a buffered chat response's choices array.
type ChatChoice struct {
	Index        int             `json:"index"`
	Message      *ResponseMessage `json:"message"`
	FinishReason string          `json:"finish_reason"`
}

// ResponseMessage is the assistant message inside a buffered ChatChoice.
type ResponseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage is always zeroed in this gateway — no backend here reports real
// token counts, matching the observed source behavior.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is the buffered (non-streaming) /v1/chat/completions body.
type ChatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   Usage        `json:"usage"`
}

// StreamDelta is the partial-message payload inside a streaming chunk.
type StreamDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// StreamChoice is one entry of a streaming chat chunk's choices array.
type StreamChoice struct {
	Index        int          `json:"index"`
	Delta        StreamDelta  `json:"delta"`
	FinishReason *string      `json:"finish_reason"`
}

// ChatChunk is one SSE data frame's JSON payload for streaming chat (the
// role/content/done chunks of §4.5).
type ChatChunk struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []StreamChoice `json:"choices"`
}

// EmbeddingRequest is the decoded /v1/embeddings body.
type EmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// EmbeddingObject is one entry of an EmbeddingResponse's data array.
type EmbeddingObject struct {
	Object    string    `json:"object"`
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

// EmbeddingResponse is the /v1/embeddings response body.
type EmbeddingResponse struct {
	Object string            `json:"object"`
	Data   []EmbeddingObject `json:"data"`
	Model  string            `json:"model"`
	Usage  Usage             `json:"usage"`
}

// ImageRequest is the decoded /v1/images/generations body.
type ImageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

// ImageDatum is one entry of an ImageResponse's data array.
type ImageDatum struct {
	B64JSON string `json:"b64_json"`
}

// ImageResponse is the /v1/images/generations response body.
type ImageResponse struct {
	Created int64        `json:"created"`
	Data    []ImageDatum `json:"data"`
}

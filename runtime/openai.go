package runtime

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIRuntime backs the llm and embedding capabilities with OpenAI's
// real chat-completions and embeddings APIs. Grounded on
// providers/openai.go; trimmed to the two capabilities this gateway's
// registries need (no tool calls, no streaming — the dispatch engine
// does its own streaming framing around a single buffered Generate call).
type OpenAIRuntime struct {
	client openai.Client
	model  string
}

// LoadOpenAI constructs an OpenAI-backed runtime for the given model name.
// baseURL overrides the API endpoint when non-empty (Azure-compatible or
// self-hosted gateways in front of the OpenAI wire format).
func LoadOpenAI(apiKey, model, baseURL string) (*OpenAIRuntime, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: OPENAI_API_KEY not set")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIRuntime{client: openai.NewClient(opts...), model: model}, nil
}

// Generate implements TextGenerator by issuing a single-message chat
// completion request and returning its first choice's text.
func (o *OpenAIRuntime) Generate(ctx context.Context, prompt string, opts GenerationOptions) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       o.model,
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		MaxTokens:   openai.Int(int64(opts.MaxTokens)),
		Temperature: openai.Float(float64(opts.Temperature)),
		TopP:        openai.Float(float64(opts.TopP)),
	}
	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai generate: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", nil
	}
	return completion.Choices[0].Message.Content, nil
}

// Embed implements Embedder.
func (o *OpenAIRuntime) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	params := openai.EmbeddingNewParams{
		Model: o.model,
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: inputs},
	}
	result, err := o.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai embed: %w", err)
	}
	out := make([][]float32, len(result.Data))
	for i, d := range result.Data {
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		out[i] = vec
	}
	return out, nil
}

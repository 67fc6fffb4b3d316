package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2/clientcredentials"
)

// CloudRuntime backs the llm capability with a generic OAuth2-secured HTTP
// inference endpoint: client-credentials grant for a token, then a plain
// POST of {prompt, max_tokens, temperature, top_p} expecting back
// {"text": "..."}. Wires golang.org/x/oauth2 — a teacher dependency with
// no use anywhere in the copied tree — into a real request path.
type CloudRuntime struct {
	httpClient *http.Client
	endpoint   string
}

// LoadCloudRuntime builds the client-credentials token source and returns
// a runtime that authenticates every request with it. Any of the four
// inputs being empty is treated as "not configured" and returned as an
// error; the env seed then leaves the llm registry unchanged.
func LoadCloudRuntime(ctx context.Context, tokenURL, clientID, clientSecret, endpoint string) (*CloudRuntime, error) {
	if tokenURL == "" || clientID == "" || clientSecret == "" || endpoint == "" {
		return nil, fmt.Errorf("cloud runtime: token URL, client ID, client secret, and endpoint are all required")
	}
	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	return &CloudRuntime{
		httpClient: cfg.Client(ctx),
		endpoint:   endpoint,
	}, nil
}

type cloudGenerateRequest struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

type cloudGenerateResponse struct {
	Text string `json:"text"`
}

// Generate implements TextGenerator.
func (c *CloudRuntime) Generate(ctx context.Context, prompt string, opts GenerationOptions) (string, error) {
	body, err := json.Marshal(cloudGenerateRequest{
		Prompt:      prompt,
		MaxTokens:   opts.MaxTokens,
		Temperature: float64(opts.Temperature),
		TopP:        float64(opts.TopP),
	})
	if err != nil {
		return "", fmt.Errorf("marshal cloud request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build cloud request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("cloud request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("cloud endpoint returned %d: %s", resp.StatusCode, string(data))
	}

	var out cloudGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode cloud response: %w", err)
	}
	return out.Text, nil
}

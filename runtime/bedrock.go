package runtime

import (
	"context"
	"encoding/json"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// BedrockRuntime backs the llm capability with AWS Bedrock's InvokeModel
// API, targeting Amazon Titan's text-generation wire format. Grounded on
// providers/bedrock.go, trimmed to the single model family needed to
// exercise the dependency — Titan's request/response shape is the
// simplest of the three the teacher supports (Anthropic/Titan/Llama) and
// needs no per-vendor branching.
type BedrockRuntime struct {
	client  *bedrockruntime.Client
	modelID string
}

// LoadBedrock loads the default AWS configuration for region and
// constructs a runtime for modelID. A failure to load that configuration
// is returned as an error, and the env seed then leaves the llm registry
// unchanged. Credentials themselves are first used by InvokeModel, so
// missing credentials surface as a Generate error, not here.
func LoadBedrock(ctx context.Context, region, modelID string) (*BedrockRuntime, error) {
	if region == "" {
		region = "us-east-1"
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &BedrockRuntime{
		client:  bedrockruntime.NewFromConfig(cfg),
		modelID: modelID,
	}, nil
}

type bedrockTitanRequest struct {
	InputText            string `json:"inputText"`
	TextGenerationConfig struct {
		MaxTokenCount int     `json:"maxTokenCount,omitempty"`
		Temperature   float64 `json:"temperature,omitempty"`
		TopP          float64 `json:"topP,omitempty"`
	} `json:"textGenerationConfig"`
}

type bedrockTitanResponse struct {
	Results []struct {
		OutputText string `json:"outputText"`
	} `json:"results"`
}

// Generate implements TextGenerator.
func (b *BedrockRuntime) Generate(ctx context.Context, prompt string, opts GenerationOptions) (string, error) {
	reqBody := bedrockTitanRequest{InputText: prompt}
	reqBody.TextGenerationConfig.MaxTokenCount = opts.MaxTokens
	reqBody.TextGenerationConfig.Temperature = float64(opts.Temperature)
	reqBody.TextGenerationConfig.TopP = float64(opts.TopP)

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal bedrock request: %w", err)
	}

	out, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &b.modelID,
		ContentType: strPtr("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("bedrock invoke model: %w", err)
	}

	var resp bedrockTitanResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", fmt.Errorf("decode bedrock response: %w", err)
	}
	if len(resp.Results) == 0 {
		return "", nil
	}
	return resp.Results[0].OutputText, nil
}

func strPtr(s string) *string { return &s }

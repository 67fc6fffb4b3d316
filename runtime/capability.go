// Package runtime defines the capability contracts every loaded backend
// implements (text generation, vision generation, embedding, image
// generation) along with the dummy backends used to preload the gateway's
// registries and a set of optional provider loaders that back them with
// real inference services when credentials or model files are available.
//
// A capability contract is intentionally narrow: the dispatcher never
// reflects on a backend beyond the methods declared here.
package runtime

import "context"

// GenerationOptions carries the sampling parameters threaded through every
// text/vision generation call. Fields absent from a request are filled with
// the documented defaults before a runtime is invoked; a value the client
// sent explicitly, including zero, is passed through unchanged.
type GenerationOptions struct {
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// DefaultGenerationOptions returns the spec-mandated defaults: 100 max
// tokens, temperature 1.0, top_p 1.0.
func DefaultGenerationOptions() GenerationOptions {
	return GenerationOptions{MaxTokens: 100, Temperature: 1.0, TopP: 1.0}
}

// TextGenerator is the text-generation capability: a prompt in, a
// completion string out.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, opts GenerationOptions) (string, error)
}

// VisionGenerator is the vision-generation capability: text plus an
// ordered list of image URLs in, a completion string out.
type VisionGenerator interface {
	GenerateFromVision(ctx context.Context, text string, imageURLs []string, opts GenerationOptions) (string, error)
}

// Embedder is the embedding capability. Output length must equal input
// length; every vector returned by a single backend shares its
// dimensionality.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// ImageGenerator is the image-generation capability. Output length must
// equal n.
type ImageGenerator interface {
	GenerateImages(ctx context.Context, prompt string, n int, size string) ([][]byte, error)
}

// Handle is an untyped reference to a loaded backend. A concrete backend
// implements whichever of the four capability interfaces apply to it; the
// dispatch registries are typed by those capability interfaces and do not
// store Handle values.
type Handle interface{}

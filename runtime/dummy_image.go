package runtime

import (
	"context"
	"fmt"
)

// DummyImageRuntime is the image-generation backend installed under
// "dummy-image" at startup. It ignores the prompt and returns n copies of a
// placeholder byte payload tagged with the requested size.
type DummyImageRuntime struct{}

// NewDummyImageRuntime constructs the preload image backend.
func NewDummyImageRuntime() *DummyImageRuntime { return &DummyImageRuntime{} }

// GenerateImages implements ImageGenerator.
func (d *DummyImageRuntime) GenerateImages(_ context.Context, _ string, n int, size string) ([][]byte, error) {
	payload := []byte(fmt.Sprintf("DUMMY_PNG:%s:", size))
	out := make([][]byte, n)
	for i := range out {
		out[i] = payload
	}
	return out, nil
}

package dispatch

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
)

// Fingerprint is the 32-byte content-addressed cache key for a buffered
// chat request. Streaming requests never produce one.
type Fingerprint [32]byte

// computeFingerprint hashes, in order: the model name; for each message,
// its role followed by all text bytes (from plain content or from text
// parts) and any image URL bytes; then the little-endian encodings of
// max_tokens, temperature, and top_p when present on the request.
//
// Note this mixes image URLs into the digest but never the bytes an image
// URL ultimately resolves to — two requests that differ only in what a
// shared URL serves will collide in the cache. This is a deliberate,
// documented tradeoff rather than an oversight; see DESIGN.md.
func computeFingerprint(req ChatRequest) Fingerprint {
	h := sha256.New()
	h.Write([]byte(req.Model))

	for _, msg := range req.Messages {
		h.Write([]byte(msg.Role))
		if len(msg.Parts) > 0 {
			for _, part := range msg.Parts {
				h.Write([]byte(part.Text))
				if part.ImageURL != nil {
					h.Write([]byte(part.ImageURL.URL))
				}
			}
		} else {
			h.Write([]byte(msg.Text))
		}
	}

	if req.MaxTokens != nil {
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], uint32(*req.MaxTokens))
		h.Write(buf[:])
	}
	if req.Temperature != nil {
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(*req.Temperature))
		h.Write(buf[:])
	}
	if req.TopP != nil {
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(*req.TopP))
		h.Write(buf[:])
	}

	var out Fingerprint
	copy(out[:], h.Sum(nil))
	return out
}

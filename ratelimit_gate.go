package dispatch

import (
	"strings"

	"github.com/dispatchlabs/inference-gateway/internal/metrics"
	"github.com/dispatchlabs/inference-gateway/internal/ratelimit"
)

// defaultRateLimitPerMinute is the quota applied to each accepted API
// token, per §4.9.
const defaultRateLimitPerMinute = 60

// gate is the auth + rate-limit checkpoint (C10). Grounded on
// api/auth.rs's authorize_request: an empty key list disables auth
// entirely; a non-empty list requires a matching bearer token, checked
// strictly before the rate limiter is consulted.
type gate struct {
	keys    map[string]struct{} // empty => auth disabled
	limiter *ratelimit.Store
}

// newGate builds a gate from a comma-separated API_KEYS value and a
// requests-per-minute quota (§4.9 default: 60).
func newGate(apiKeysCSV string, perMinute int) *gate {
	keys := make(map[string]struct{})
	for _, tok := range strings.Split(apiKeysCSV, ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			keys[tok] = struct{}{}
		}
	}
	if perMinute <= 0 {
		perMinute = defaultRateLimitPerMinute
	}
	// ratelimit.Store is configured in requests/second with a burst; a
	// per-minute quota is expressed as rate=quota/60 with burst=quota so a
	// full minute's allowance is available immediately and refills smoothly.
	return &gate{
		keys:    keys,
		limiter: ratelimit.NewStore(float64(perMinute)/60.0, float64(perMinute)),
	}
}

// authorize checks the Authorization header against the configured key
// set, then (only for an accepted token) the per-token rate limiter.
// Returns the bearer token on success.
func (g *gate) authorize(authorizationHeader string) (string, error) {
	if len(g.keys) == 0 {
		return "", nil
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(authorizationHeader, prefix) {
		return "", errAuth("missing or malformed Authorization header")
	}
	token := strings.TrimPrefix(authorizationHeader, prefix)
	if _, ok := g.keys[token]; !ok {
		return "", errAuth("invalid API key")
	}

	if !g.limiter.Allow(token) {
		metrics.RateLimitRejections.WithLabelValues("api_key").Inc()
		return "", errRateLimited("rate limit exceeded")
	}

	return token, nil
}

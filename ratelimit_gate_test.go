package dispatch

import "testing"

// Property 8: auth.
func TestAuthDisabledWhenKeysEmpty(t *testing.T) {
	g := newGate("", 0)
	if _, err := g.authorize(""); err != nil {
		t.Fatalf("expected auth disabled to allow any request, got %v", err)
	}
	if _, err := g.authorize("Bearer whatever"); err != nil {
		t.Fatalf("expected auth disabled to allow any request, got %v", err)
	}
}

func TestAuthRejectsMissingOrWrongToken(t *testing.T) {
	g := newGate("good-key", 60)

	if _, err := g.authorize(""); err == nil {
		t.Fatal("expected an error for a missing Authorization header")
	}
	if _, err := g.authorize("Bearer wrong-key"); err == nil {
		t.Fatal("expected an error for an unrecognized key")
	}
	if _, err := g.authorize("Bearer good-key"); err != nil {
		t.Fatalf("expected the configured key to be accepted, got %v", err)
	}
}

// Property 9: rate limit.
func TestRateLimitRejectsNPlusOne(t *testing.T) {
	g := newGate("token-a,token-b", 2)

	if _, err := g.authorize("Bearer token-a"); err != nil {
		t.Fatalf("request 1 should be allowed: %v", err)
	}
	if _, err := g.authorize("Bearer token-a"); err != nil {
		t.Fatalf("request 2 should be allowed: %v", err)
	}
	_, err := g.authorize("Bearer token-a")
	if err == nil {
		t.Fatal("expected the 3rd request from the same token to be rejected")
	}
	de, ok := err.(*Error)
	if !ok || de.Reason != "rate_limited" {
		t.Fatalf("expected a rate_limited error, got %#v", err)
	}

	// A different token's quota is untouched by token-a's exhaustion.
	if _, err := g.authorize("Bearer token-b"); err != nil {
		t.Fatalf("token-b's first request should be allowed: %v", err)
	}
}

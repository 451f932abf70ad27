// Package testutil holds deterministic helpers shared by package tests and
// the conformance harness.
package testutil

// FixedSessionGenerator returns the same session id every time.
//
// A runtime asks for a new session on every Reset; with this generator a
// scenario run twice produces byte-identical traces. Unlike
// trace.FixedGenerator it never runs out.
type FixedSessionGenerator struct {
	token string
}

// NewFixedSessionGenerator creates a generator for token.
// If token is empty, Generate returns "test-session-default".
func NewFixedSessionGenerator(token string) *FixedSessionGenerator {
	if token == "" {
		token = "test-session-default"
	}
	return &FixedSessionGenerator{token: token}
}

// Generate returns the fixed session id.
func (g *FixedSessionGenerator) Generate() string {
	return g.token
}

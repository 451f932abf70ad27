package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func body(member string) map[string]any {
	return map[string]any{
		"op":            "send",
		"receiver_type": "Box<int>",
		"member":        member,
		"arg_types":     []any{},
		"outcome":       "ok",
		"error_code":    "",
	}
}

func TestEventID_Deterministic(t *testing.T) {
	a := MustEventID("s", 1, body("get"))
	b := MustEventID("s", 1, body("get"))

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestEventID_Distinguishes(t *testing.T) {
	base := MustEventID("s", 1, body("get"))

	assert.NotEqual(t, base, MustEventID("s", 2, body("get")), "seq")
	assert.NotEqual(t, base, MustEventID("t", 1, body("get")), "session")
	assert.NotEqual(t, base, MustEventID("s", 1, body("set")), "body")
}

func TestEventID_RejectsFloat(t *testing.T) {
	_, err := EventID("s", 1, map[string]any{"x": 1.5})
	require.Error(t, err)
	assert.Panics(t, func() { MustEventID("s", 1, map[string]any{"x": 1.5}) })
}

func TestHashWithDomain_Separation(t *testing.T) {
	data := []byte(`{"a":1}`)
	assert.NotEqual(t, hashWithDomain(DomainEvent, data), hashWithDomain(DomainTrace, data))
}

func TestTraceDigest(t *testing.T) {
	a, err := TraceDigest([]map[string]any{body("get"), body("set")})
	require.NoError(t, err)
	b, err := TraceDigest([]map[string]any{body("get"), body("set")})
	require.NoError(t, err)
	c, err := TraceDigest([]map[string]any{body("set"), body("get")})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c, "order matters")
}

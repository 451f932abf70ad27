package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. The version suffix leaves
// room for a future encoding change.
const (
	DomainEvent = "rtype/event/v1"
	DomainTrace = "rtype/trace/v1"
)

// hashWithDomain computes SHA256(domain || 0x00 || data). The separator
// keeps domain and data from running into each other.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// EventID computes the id of one recorded dispatch. It is stable across
// runs given the same session, sequence number and event body.
func EventID(session string, seq int64, body map[string]any) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"session": session,
		"seq":     seq,
		"body":    body,
	})
	if err != nil {
		return "", fmt.Errorf("EventID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainEvent, canonical), nil
}

// MustEventID is like EventID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustEventID(session string, seq int64, body map[string]any) string {
	id, err := EventID(session, seq, body)
	if err != nil {
		panic(err)
	}
	return id
}

// TraceDigest hashes an ordered list of event bodies. Two runs of the same
// scenario produce the same digest regardless of session ids.
func TraceDigest(bodies []map[string]any) (string, error) {
	list := make([]any, len(bodies))
	for i, b := range bodies {
		list[i] = b
	}
	canonical, err := MarshalCanonical(list)
	if err != nil {
		return "", fmt.Errorf("TraceDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTrace, canonical), nil
}

// Package ir provides the canonical encoding of recorded dispatch traces.
//
// MarshalCanonical produces RFC 8785 style canonical JSON: keys sorted by
// UTF-16 code units, strings NFC normalized, no HTML escaping, no floats.
// Event ids and trace digests are SHA-256 hashes of that encoding with a
// domain prefix, so the same dispatch recorded twice gets the same id.
//
// ir imports nothing internal.
package ir

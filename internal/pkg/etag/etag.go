// Package etag derives optimistic-concurrency tokens from resource state.
//
// A token is the SHA-256 hex digest of the JSON encoding of a significant-
// fields struct. Struct field order fixes the serialization order, so the
// same state always yields the same token and any significant-field change
// yields a different one. The token itself is never part of the input.
package etag

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

func Compute(significant any) string {
	data, err := json.Marshal(significant)
	if err != nil {
		// Significant-field structs contain only plain values; Marshal
		// cannot fail for them. Panic rather than hand out an empty token.
		panic("etag: unmarshalable significant fields: " + err.Error())
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Match compares a client-supplied precondition token byte-for-byte against
// the current token. Surrounding quotes from If-Match style headers are
// tolerated.
func Match(supplied, current string) bool {
	return trimQuotes(supplied) == current
}

func trimQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

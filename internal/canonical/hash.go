// Package canonical computes content hashes over JSON-like values.
package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash serializes payload to canonical JSON and returns the lowercase hex
// SHA-256 of the bytes. encoding/json emits map keys in sorted order at every
// nesting level with no extra whitespace, so two payloads with the same keys
// and values hash identically regardless of the key order they arrived in.
// The payload must be a decoded JSON value (maps, slices, scalars, nil).
func Hash(payload interface{}) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

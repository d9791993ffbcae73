package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// hashKey joins kind with the digest of the JSON-encoded parts, giving
// keys like "analysis:3f2a...". The full 256-bit digest is kept.
func hashKey(kind string, parts ...any) string {
	data, err := json.Marshal(parts)
	if err != nil {
		// Parts are hashes and option structs; an unencodable value is a bug.
		panic(fmt.Sprintf("cache: key parts for %s: %v", kind, err))
	}
	var b strings.Builder
	b.Grow(len(kind) + 1 + 2*sha256.Size)
	b.WriteString(kind)
	b.WriteByte(':')
	b.WriteString(Hash(data))
	return b.String()
}

// Hash returns the hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashJSON hashes the JSON encoding of v. Struct fields encode in
// declaration order and map keys sorted, so equal values hash equally.
func HashJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}
	return Hash(data), nil
}

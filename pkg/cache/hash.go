package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// KeyType returns the prefix a key was generated with, ignoring any scope
// prefix added by [ScopedKeyer].
func KeyType(key string) string {
	for _, p := range []string{PrefixLayout, PrefixArtifact, PrefixTyping} {
		if strings.HasPrefix(key, p+":") || strings.Contains(key, ":"+p+":") {
			return p
		}
	}
	return "other"
}

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for the embedding cache
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from the text that was embedded. Keys are
// content hashes, so identical text always hits the same entry regardless
// of which document or query it came from.
func Key(text string) string {
	hash := sha256.Sum256([]byte(text))
	return "neurobridge:v1:" + hex.EncodeToString(hash[:])
}

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for memoising model replies
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from the parts that determine a reply
// (provider, model, prompt). Parts are length-prefixed so that
// ("ab", "c") and ("a", "bc") hash differently.
func Key(parts ...string) string {
	h := sha256.New()
	var lenBuf [8]byte
	for _, p := range parts {
		n := uint64(len(p))
		for i := range lenBuf {
			lenBuf[i] = byte(n >> (8 * i))
		}
		h.Write(lenBuf[:])
		h.Write([]byte(p))
	}
	return "rumorlens:v1:" + hex.EncodeToString(h.Sum(nil))
}

// New builds the cache described by dir: memory only when dir is empty,
// memory in front of disk otherwise
func New(ttl time.Duration, dir string) Cache {
	if dir == "" {
		return NewMemoryCache(ttl, 10*time.Minute)
	}
	return NewLayeredCache(ttl, dir, ttl)
}

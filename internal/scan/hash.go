package scan

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// HashFile returns the BLAKE2b-256 digest of a file's content as hex.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(data)
	return fmt.Sprintf("%x", sum), nil
}

// HashCache remembers per-file content digests across watch iterations so
// editor saves that do not change content can be ignored.
type HashCache struct {
	mu     sync.Mutex
	hashes map[string]string
}

// NewHashCache creates an empty cache
func NewHashCache() *HashCache {
	return &HashCache{hashes: make(map[string]string)}
}

// Changed reports whether a file's content differs from the last call for
// the same path, and records the new digest. Unreadable files (deleted,
// permission change) always count as changed and are dropped from the cache.
func (c *HashCache) Changed(path string) bool {
	hash, err := HashFile(path)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		delete(c.hashes, path)
		return true
	}

	prev, seen := c.hashes[path]
	c.hashes[path] = hash
	return !seen || prev != hash
}

// Forget drops a path from the cache
func (c *HashCache) Forget(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.hashes, path)
}

package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DiskCache is the persistent tier. Each entry is one file: an 8-byte
// big-endian expiry (unix seconds) followed by the raw payload. Vectors are
// already binary, so there is no envelope format to parse.
type DiskCache struct {
	dir string
	ttl time.Duration
}

// NewDiskCache creates a disk cache rooted at dir with a default TTL.
func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	return &DiskCache{
		dir: dir,
		ttl: ttl,
	}
}

const expiryHeaderLen = 8

// Get retrieves a value from the disk cache. Expired or malformed entries
// are removed and reported as misses.
func (c *DiskCache) Get(key string) ([]byte, bool) {
	path := c.path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	if len(data) < expiryHeaderLen {
		_ = os.Remove(path)
		return nil, false
	}

	expiry := int64(binary.BigEndian.Uint64(data[:expiryHeaderLen]))
	if time.Now().Unix() > expiry {
		_ = os.Remove(path)
		return nil, false
	}

	return data[expiryHeaderLen:], true
}

// Set stores a value in the disk cache. A zero ttl uses the cache default.
func (c *DiskCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	entry := make([]byte, expiryHeaderLen+len(value))
	binary.BigEndian.PutUint64(entry[:expiryHeaderLen], uint64(time.Now().Add(ttl).Unix()))
	copy(entry[expiryHeaderLen:], value)

	if err := os.WriteFile(c.path(key), entry, 0o644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}

	return nil
}

// Delete removes a value from the disk cache.
func (c *DiskCache) Delete(key string) error {
	return os.Remove(c.path(key))
}

// Clear removes all cached files.
func (c *DiskCache) Clear() error {
	return os.RemoveAll(c.dir)
}

// path maps a cache key to a file name. Keys carry colons and other
// separator characters, so the file name is a digest of the key.
func (c *DiskCache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:16])+".vec")
}

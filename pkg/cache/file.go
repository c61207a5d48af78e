package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// FileCache stores entries as JSON files under an XDG cache directory.
// It backs the CLI, where geometry results survive between invocations.
type FileCache struct {
	dir string
}

// NewFileCache creates a file cache rooted at dir, creating it if needed.
func NewFileCache(dir string) (Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// fileEntry is the on-disk envelope for a cached value.
type fileEntry struct {
	Payload []byte    `json:"payload"`
	Expiry  time.Time `json:"expiry,omitzero"`
}

func (e fileEntry) expired() bool {
	return !e.Expiry.IsZero() && time.Now().After(e.Expiry)
}

// Get retrieves a value. Corrupt or expired entry files are removed and
// reported as a miss.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.entryPath(key)

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry fileEntry
	if err := json.Unmarshal(raw, &entry); err != nil || entry.expired() {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return entry.Payload, true, nil
}

// Set stores a value. A non-positive ttl means the entry never expires.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entry := fileEntry{Payload: data}
	if ttl > 0 {
		entry.Expiry = time.Now().Add(ttl)
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	path := c.entryPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0644)
}

// Delete removes a value. An absent entry is not an error.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.entryPath(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close does nothing for the file cache.
func (c *FileCache) Close() error { return nil }

// entryPath maps a cache key to a file path. Entries are sharded into
// two-character subdirectories so a busy cache dir stays browsable.
func (c *FileCache) entryPath(key string) string {
	sum := Hash([]byte(key))
	return filepath.Join(c.dir, sum[:2], sum[2:]+".json")
}

var _ Cache = (*FileCache)(nil)

package mirror

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Cache persists a store snapshot to disk so a client can paint the last
// known rows before its first refetch completes. It is a display cache, not
// an offline queue: nothing written here is ever replayed to the backend.
// A file lock guards against concurrent processes sharing the same path.
type Cache[T any] struct {
	path string
	lock *flock.Flock
}

// NewCache builds a cache at path, creating parent directories on save.
func NewCache[T any](path string) *Cache[T] {
	return &Cache[T]{path: path, lock: flock.New(path + ".lock")}
}

// Save writes the snapshot, replacing any previous one atomically.
func (c *Cache[T]) Save(rows []T) error {
	if err := c.lock.Lock(); err != nil {
		return err
	}
	defer c.lock.Unlock()

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}

// Load reads the last snapshot. A missing file is not an error; it returns
// nil rows.
func (c *Cache[T]) Load() ([]T, error) {
	if err := c.lock.RLock(); err != nil {
		return nil, err
	}
	defer c.lock.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var rows []T
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

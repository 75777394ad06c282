// Package cache persists catalog responses and card artwork between runs.
// Entries are keyed files under a fixed directory, written with a
// temp-file-then-rename replace so a crash mid-write never leaves a
// readable half-written entry. There is no expiry: staleness is resolved
// only by explicit invalidation.
package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dfiru/simulchip/internal/aio"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Key identifies a cache entry by resource kind and identifier.
// Kind-only keys (e.g. "cards") map to a single file, keys with an ID
// (e.g. "decklist"/"12345") map to a file inside a kind directory.
type Key struct {
	Kind string
	ID   string
	Ext  string
}

func NewKey(kind string) Key {
	return Key{Kind: kind, Ext: "json"}
}

func NewEntryKey(kind, id string) Key {
	return Key{Kind: kind, ID: id, Ext: "json"}
}

func (k Key) WithExt(ext string) Key {
	k.Ext = ext

	return k
}

func (k Key) String() string {
	if k.ID == "" {
		return k.Kind
	}

	return k.Kind + "/" + k.ID
}

// WriteError reports a failed cache persist. The cache is left at its
// last-known-good state when this is returned.
type WriteError struct {
	Key Key
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write cache entry %s, %v", e.Key, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

type Stats struct {
	Entries   int
	SizeBytes int64
}

func (s Stats) SizeMB() float64 {
	return float64(s.SizeBytes) / (1024 * 1024)
}

type Cache struct {
	dir string
}

func New(location string) (*Cache, error) {
	if err := os.MkdirAll(location, 0750); err != nil {
		return nil, fmt.Errorf("failed to create cache dir %s, %w", location, err)
	}

	return &Cache{dir: filepath.Clean(location)}, nil
}

func (c *Cache) Location() string {
	return c.dir
}

// EntryPath returns the absolute on-disk path for the given key. The
// path is always confined to the cache directory.
func (c *Cache) EntryPath(key Key) (string, error) {
	if strings.TrimSpace(key.Kind) == "" {
		return "", fmt.Errorf("cache key without kind")
	}

	name := key.Kind
	if key.ID != "" {
		name = filepath.Join(key.Kind, key.ID)
	}
	if key.Ext != "" {
		name += "." + key.Ext
	}

	path := filepath.Clean(filepath.Join(c.dir, name))
	if !strings.HasPrefix(path, c.dir+string(filepath.Separator)) {
		return "", fmt.Errorf("cache key %s escapes cache dir %s", key, c.dir)
	}

	return path, nil
}

// Contains reports whether a complete entry exists for the key.
func (c *Cache) Contains(key Key) bool {
	path, err := c.EntryPath(key)
	if err != nil {
		return false
	}

	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}

// GetOrFetch returns the persisted entry for key. On a miss it invokes
// fetch exactly once, persists the result durably and returns it. A
// failed fetch leaves the cache untouched.
func (c *Cache) GetOrFetch(ctx context.Context, key Key, fetch func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	path, err := c.EntryPath(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err == nil {
		log.Debug().Str("key", key.String()).Msg("cache hit")

		return data, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read cache entry %s, %w", key, err)
	}

	data, err = fetch(ctx)
	if err != nil {
		return nil, err
	}

	if err = c.persist(key, path, data); err != nil {
		return nil, err
	}

	return data, nil
}

func (c *Cache) persist(key Key, path string, data []byte) (err error) {
	if mkErr := os.MkdirAll(filepath.Dir(path), 0750); mkErr != nil {
		return &WriteError{Key: key, Err: mkErr}
	}

	// temp file in the target dir so the rename stays on one filesystem
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return &WriteError{Key: key, Err: err}
	}
	defer func() {
		if err != nil {
			if rmErr := os.Remove(tmp.Name()); rmErr != nil && !os.IsNotExist(rmErr) {
				err = errors.Wrap(err, rmErr.Error())
			}
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		aio.Close(tmp)

		return &WriteError{Key: key, Err: err}
	}

	if err = tmp.Sync(); err != nil {
		aio.Close(tmp)

		return &WriteError{Key: key, Err: err}
	}

	if err = tmp.Close(); err != nil {
		return &WriteError{Key: key, Err: err}
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return &WriteError{Key: key, Err: err}
	}

	return nil
}

// Invalidate removes the entry for key. Missing entries are not an error.
func (c *Cache) Invalidate(key Key) error {
	path, err := c.EntryPath(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to invalidate cache entry %s, %w", key, err)
	}

	return nil
}

// Reset removes every entry while keeping the cache directory itself.
func (c *Cache) Reset() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("failed to list cache dir %s, %w", c.dir, err)
	}

	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(c.dir, e.Name())); err != nil {
			return fmt.Errorf("failed to remove cache entry %s, %w", e.Name(), err)
		}
	}

	return nil
}

// Stats walks the cache directory and sums entry count and size.
func (c *Cache) Stats() (Stats, error) {
	var stats Stats

	err := filepath.WalkDir(c.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		stats.Entries++
		stats.SizeBytes += info.Size()

		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("failed to collect cache stats, %w", err)
	}

	return stats, nil
}

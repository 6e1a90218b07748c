// Package rulecache stores compiled validation rules on disk, keyed by a
// hash of the rule content and a discriminator. Stores are idempotent and
// the last writer wins, so concurrent compilers of the same rules never
// conflict.
package rulecache

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// ============================================================================
// Store Interface
// ============================================================================

// Store is the compiled-rule cache capability used by rule-based scrapers.
// Implementations must be safe for concurrent use.
type Store interface {
	// Lookup returns the artifact path for key and whether it exists.
	Lookup(key Key) (string, bool)

	// Path returns where the artifact for key lives, whether or not it exists.
	Path(key Key) string

	// Put moves the file at src into the cache under key and returns the
	// artifact path. An existing artifact is replaced.
	Put(key Key, src string) (string, error)

	// WithWorkDir runs fn with a fresh scratch directory that is removed when
	// fn returns, on every path.
	WithWorkDir(fn func(dir string) error) error
}

// Statistics contains cache usage counters.
type Statistics struct {
	Hits   int64
	Misses int64
	Stores int64
}

// ============================================================================
// Disk Cache Implementation
// ============================================================================

// DiskCache is a Store backed by a directory.
type DiskCache struct {
	dir string

	hits   atomic.Int64
	misses atomic.Int64
	stores atomic.Int64
}

var _ Store = (*DiskCache)(nil)

// NewDiskCache creates the cache directory if needed. A leading "~/" is
// expanded to the user's home directory.
func NewDiskCache(dir string) (*DiskCache, error) {
	dir, err := ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create cache directory %s", dir)
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *DiskCache) Dir() string {
	return c.dir
}

// Path implements Store.
func (c *DiskCache) Path(key Key) string {
	return filepath.Join(c.dir, key.Filename())
}

// Lookup implements Store.
func (c *DiskCache) Lookup(key Key) (string, bool) {
	path := c.Path(key)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() == 0 {
		c.misses.Add(1)
		return "", false
	}
	c.hits.Add(1)
	return path, true
}

// Put implements Store. The artifact appears atomically: readers see either
// the previous artifact or the new one.
func (c *DiskCache) Put(key Key, src string) (string, error) {
	dst := c.Path(key)
	if err := os.Rename(src, dst); err != nil {
		return "", errors.Wrapf(err, "store compiled rules %s", key)
	}
	c.stores.Add(1)
	return dst, nil
}

// WithWorkDir implements Store. Work directories live inside the cache
// directory so Put can rename across them.
func (c *DiskCache) WithWorkDir(fn func(dir string) error) (err error) {
	dir, err := os.MkdirTemp(c.dir, ".work-")
	if err != nil {
		return errors.Wrap(err, "create work directory")
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil && err == nil {
			err = errors.Wrapf(rmErr, "remove work directory %s", dir)
		}
	}()
	return fn(dir)
}

// Stats returns usage counters.
func (c *DiskCache) Stats() Statistics {
	return Statistics{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Stores: c.stores.Load(),
	}
}

// Clear removes every cached artifact.
func (c *DiskCache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return errors.Wrapf(err, "read cache directory %s", c.dir)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ArtifactSuffix) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "remove %s", e.Name())
		}
	}
	return nil
}

// ExpandHome expands a leading "~/" to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve home directory")
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

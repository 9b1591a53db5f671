package detector

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mcgeq/mcg/pkg/manager"
)

// CacheEntry remembers the manager detected for a project directory.
type CacheEntry struct {
	Dir  string
	Kind manager.Kind
}

// Cache holds at most one entry. It answers for the cached directory and for
// every directory beneath it. Safe for concurrent use.
type Cache struct {
	mu    sync.Mutex
	entry *CacheEntry
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Get returns the cached kind when dir is the cached directory or one of its
// descendants.
func (c *Cache) Get(dir string) (manager.Kind, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entry == nil || !within(dir, c.entry.Dir) {
		return "", false
	}
	return c.entry.Kind, true
}

// Set replaces the entry.
func (c *Cache) Set(dir string, kind manager.Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = &CacheEntry{Dir: filepath.Clean(dir), Kind: kind}
}

// Clear drops the entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = nil
}

// Entry returns a copy of the current entry, or nil.
func (c *Cache) Entry() *CacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry == nil {
		return nil
	}
	e := *c.entry
	return &e
}

// within reports whether dir equals root or lies beneath it. Matching is on
// whole path elements: /src/app2 is not within /src/app.
func within(dir, root string) bool {
	dir = filepath.Clean(dir)
	if dir == root {
		return true
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(os.PathSeparator)) {
		prefix += string(os.PathSeparator)
	}
	return strings.HasPrefix(dir, prefix)
}

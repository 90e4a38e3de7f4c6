// Package mtime caches file modification times for the duration of one build
// run. Stamps are what the dependency store records: the mtime of a dependency
// at the moment its dependent finished building.
package mtime

import (
	"os"
	"sync"
)

// Stamp is a modification time in seconds since the epoch, or Missing for a
// file that did not exist when it was stat'ed.
type Stamp float64

// Missing marks a file that was absent. It must stay negative: real mtimes are
// non-negative, and -1 survives a JSON round trip (NaN would not).
const Missing Stamp = -1

func (s Stamp) IsMissing() bool { return s < 0 }

// Equal reports whether two stamps denote the same observed mtime. A missing
// stamp never equals anything, itself included, so a dependency that is absent
// in consecutive runs still counts as changed.
func (s Stamp) Equal(o Stamp) bool {
	if s.IsMissing() || o.IsMissing() {
		return false
	}
	return s == o
}

// Cache answers mtime queries, stat'ing each path at most once until it is
// invalidated. All queries within one run see the same value.
type Cache struct {
	mu    sync.Mutex
	known map[string]Stamp
}

func NewCache() *Cache {
	return &Cache{known: make(map[string]Stamp)}
}

// Get returns the cached stamp for path, stat'ing on first use.
func (c *Cache) Get(path string) Stamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.known[path]; ok {
		return s
	}
	s := stat(path)
	c.known[path] = s
	return s
}

// Invalidate drops the cached stamp for path. Rules call this after writing
// their output so that dependents stamp the fresh mtime.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.known, path)
}

func stat(path string) Stamp {
	fi, err := os.Stat(path)
	if err != nil {
		return Missing
	}
	return Stamp(float64(fi.ModTime().UnixNano()) / 1e9)
}

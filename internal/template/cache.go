package template

import (
	"path/filepath"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes loaded templates by canonical path. Entries are never
// invalidated; failed loads are not cached. Safe for concurrent use.
type Cache struct {
	entries sync.Map // canonical path -> *Template
	group   singleflight.Group
	load    func(path string) (*Template, error)
	loads   atomic.Int64
}

// NewCache returns an empty cache backed by Load.
func NewCache() *Cache {
	return &Cache{load: Load}
}

// Get returns the template at path, loading it at most once.
func (c *Cache) Get(path string) (*Template, error) {
	key := canonical(path)
	if tpl, ok := c.entries.Load(key); ok {
		return tpl.(*Template), nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if tpl, ok := c.entries.Load(key); ok {
			return tpl, nil
		}
		tpl, err := c.load(key)
		if err != nil {
			return nil, err
		}
		c.loads.Add(1)
		c.entries.Store(key, tpl)
		return tpl, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Template), nil
}

// Loads reports how many templates were actually read from disk.
func (c *Cache) Loads() int64 {
	return c.loads.Load()
}

func canonical(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

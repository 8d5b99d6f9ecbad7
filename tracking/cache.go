package tracking

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"
)

// DefaultPathCacheSize bounds a PathCache created with a non-positive size.
const DefaultPathCacheSize = 1024

type pathKey struct {
	vehicleID string
	date      string
}

type pin struct {
	path Path
	refs int
}

// PathCache memoizes generated paths per (vehicle, date). At most size paths
// are kept, least recently used first out. Paths pinned with Acquire are held
// outside the LRU until released, so a sequence in use is never regenerated.
//
// Thread safety: safe for concurrent use.
type PathCache struct {
	mu        sync.Mutex
	generator *Generator
	recent    *lru.Cache[pathKey, Path]
	pinned    map[pathKey]*pin
}

// NewPathCache wraps a generator with an LRU of size paths.
func NewPathCache(g *Generator, size int) *PathCache {
	if size <= 0 {
		size = DefaultPathCacheSize
	}
	recent, err := lru.New[pathKey, Path](size)
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}
	return &PathCache{
		generator: g,
		recent:    recent,
		pinned:    make(map[pathKey]*pin),
	}
}

// Get returns the cached path, generating it on a miss.
func (c *PathCache) Get(vehicleID, date string) (Path, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(pathKey{vehicleID: vehicleID, date: date})
}

func (c *PathCache) getLocked(key pathKey) (Path, error) {
	if p, ok := c.pinned[key]; ok {
		return p.path, nil
	}
	if p, ok := c.recent.Get(key); ok {
		return p, nil
	}
	p, err := c.generator.GeneratePath(key.vehicleID, key.date)
	if err != nil {
		return Path{}, err
	}
	if c.recent.Add(key, p) {
		log.WithField("cached", c.recent.Len()).Debug("path cache evicted least recently used path")
	}
	return p, nil
}

// Acquire returns the path like Get and pins it until release is called.
// release is idempotent.
func (c *PathCache) Acquire(vehicleID, date string) (Path, func(), error) {
	key := pathKey{vehicleID: vehicleID, date: date}

	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.getLocked(key)
	if err != nil {
		return Path{}, func() {}, err
	}
	held, ok := c.pinned[key]
	if !ok {
		held = &pin{path: p}
		c.pinned[key] = held
	}
	held.refs++

	var once sync.Once
	release := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if held.refs--; held.refs <= 0 {
				delete(c.pinned, key)
			}
		})
	}
	return p, release, nil
}

// Invalidate drops one entry from the LRU. A pinned path stays until released.
func (c *PathCache) Invalidate(vehicleID, date string) {
	c.mu.Lock()
	c.recent.Remove(pathKey{vehicleID: vehicleID, date: date})
	c.mu.Unlock()
}

// Clear drops every unpinned entry.
func (c *PathCache) Clear() {
	c.mu.Lock()
	c.recent.Purge()
	c.mu.Unlock()
}

// Len returns the number of paths in the LRU.
func (c *PathCache) Len() int {
	return c.recent.Len()
}

// Pinned returns the number of distinct paths held by Acquire.
func (c *PathCache) Pinned() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pinned)
}

package pubfs

import (
	"sync"

	"github.com/eringen/pubfs/content"
	"github.com/eringen/pubfs/feed"
)

// DocumentCache keeps the encoded feeds and sitemap of one index version.
// A request against a newer index drops every entry and rebuilds on
// demand; a request against an older index than the cached one builds
// without caching.
type DocumentCache struct {
	mu      sync.RWMutex
	version uint64
	docs    map[string]feed.Document
}

// NewDocumentCache creates an empty DocumentCache.
func NewDocumentCache() *DocumentCache {
	return &DocumentCache{docs: make(map[string]feed.Document)}
}

func (c *DocumentCache) lookup(kind string, version uint64) (feed.Document, bool) {
	if c.version != version {
		return feed.Document{}, false
	}
	doc, ok := c.docs[kind]
	return doc, ok
}

// Get returns the kind document for idx, building it with build when the
// cache holds none for idx's version.
// It tries a read lock first; only takes a write lock if a build is needed.
func (c *DocumentCache) Get(kind string, idx *content.Index, build func(*content.Index) (feed.Document, error)) (feed.Document, error) {
	v := idx.Version()

	c.mu.RLock()
	doc, ok := c.lookup(kind, v)
	c.mu.RUnlock()
	if ok {
		return doc, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if doc, ok := c.lookup(kind, v); ok {
		return doc, nil
	}
	doc, err := build(idx)
	if err != nil {
		return feed.Document{}, err
	}
	switch {
	case v > c.version:
		c.version = v
		c.docs = map[string]feed.Document{kind: doc}
	case v == c.version:
		c.docs[kind] = doc
	}
	return doc, nil
}

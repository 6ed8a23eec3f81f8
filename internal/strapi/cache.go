package strapi

import "sync"

// ContentTypeCache memoizes discovered content-type descriptors for the
// lifetime of the process. Discovery can probe many candidate collection
// names, so repeated calls within one session must not re-probe. There is no
// TTL: invalidation is explicit via Clear, triggered by the cache-clear tool
// and by schema-mutating operations.
type ContentTypeCache struct {
	mu    sync.RWMutex
	types []ContentType
}

// NewContentTypeCache returns an empty cache.
func NewContentTypeCache() *ContentTypeCache {
	return &ContentTypeCache{}
}

// Get returns the cached descriptors, or nil when the cache is empty.
func (c *ContentTypeCache) Get() []ContentType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.types) == 0 {
		return nil
	}
	out := make([]ContentType, len(c.types))
	copy(out, c.types)
	return out
}

// Set replaces the cached descriptors. Last write wins; racing rebuilds are
// acceptable because discovery is idempotent.
func (c *ContentTypeCache) Set(types []ContentType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.types = make([]ContentType, len(types))
	copy(c.types, types)
}

// Clear empties the cache, forcing re-discovery on the next call.
func (c *ContentTypeCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.types = nil
}

// Lookup finds a cached descriptor by UID.
func (c *ContentTypeCache) Lookup(uid string) (ContentType, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, ct := range c.types {
		if ct.UID == uid {
			return ct, true
		}
	}
	return ContentType{}, false
}

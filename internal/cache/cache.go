// Package cache keeps an in-process picture of remote state so "did this
// record change since we last touched it remotely" is a local comparison
// instead of a network call. Re-listing a prefix is one round trip, but
// re-uploading unchanged payloads wastes bandwidth and risks clobbering
// remote data with stale local state.
package cache

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/shelfsync/internal/models"
)

// DefaultFreshness is the window during which a cached list result is served
// without re-listing the prefix.
const DefaultFreshness = 60 * time.Second

// Entry pairs a remote object's metadata with the last-known significant
// snapshot of its record. A nil Snapshot means "we know the object exists
// remotely but have not inspected its content".
type Entry struct {
	Object   models.RemoteObject
	Snapshot *models.SignificantFields
}

// Cache is a map from remote object key to Entry, time-boxed per prefix.
// Safe for concurrent use.
type Cache struct {
	mu        sync.Mutex
	freshness time.Duration
	now       func() time.Time

	prefix   string
	entries  map[string]Entry
	listedAt time.Time
}

// New returns a Cache with the given freshness window; zero or negative
// falls back to DefaultFreshness.
func New(freshness time.Duration) *Cache {
	if freshness <= 0 {
		freshness = DefaultFreshness
	}
	return &Cache{
		freshness: freshness,
		now:       time.Now,
		entries:   make(map[string]Entry),
	}
}

// GetFresh returns the cached objects for prefix if the last successful list
// for this exact prefix happened within the freshness window. ok is false on
// a miss.
func (c *Cache) GetFresh(prefix string) ([]models.RemoteObject, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.prefix != prefix || c.listedAt.IsZero() {
		return nil, false
	}
	if c.now().Sub(c.listedAt) > c.freshness {
		return nil, false
	}

	objects := make([]models.RemoteObject, 0, len(c.entries))
	for _, e := range c.entries {
		objects = append(objects, e.Object)
	}
	return objects, true
}

// RecordListResult replaces the cache contents for prefix with the given
// listing. Keys previously cached but absent from the new result were
// deleted remotely by another client and are evicted; surviving keys get
// their object metadata refreshed while keeping any existing snapshot.
func (c *Cache) RecordListResult(prefix string, objects []models.RemoteObject) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make(map[string]Entry, len(objects))
	for _, obj := range objects {
		e := Entry{Object: obj}
		if c.prefix == prefix {
			if prev, ok := c.entries[obj.Key]; ok {
				e.Snapshot = prev.Snapshot
			}
		}
		next[obj.Key] = e
	}

	c.prefix = prefix
	c.entries = next
	c.listedAt = c.now()
}

// RecordSnapshot attaches or overwrites the significant-fields snapshot for
// key. Called once a record's content has actually been parsed.
func (c *Cache) RecordSnapshot(key string, snap models.SignificantFields) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		e = Entry{}
	}
	e.Snapshot = &snap
	c.entries[key] = e
}

// RecordUpload refreshes one entry after a successful put so the cached
// object metadata never lags behind the store's view of that key.
func (c *Cache) RecordUpload(obj models.RemoteObject, snap models.SignificantFields) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[obj.Key] = Entry{Object: obj, Snapshot: &snap}
}

// Lookup returns the entry for key, if any.
func (c *Cache) Lookup(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	return e, ok
}

// InvalidateFreshness forces the next GetFresh to miss. Called after any put
// or delete against the active prefix.
func (c *Cache) InvalidateFreshness() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.listedAt = time.Time{}
}

// Evict removes one entry. Called after a confirmed delete.
func (c *Cache) Evict(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

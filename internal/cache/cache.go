// Package cache implements the UTXO core's C1: a TTL-scoped mapping from
// (address, network) to an enriched UTXO list.
package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/cosmasken/kaspa402/internal/model"
)

// Stats summarizes the cache's current state.
type Stats struct {
	Size    int
	Expired int
}

// Cache wraps ttlcache.Cache with the expiry-on-read and explicit-sweep
// semantics the UTXO core requires. ttlcache itself filters expired entries
// out of every public read (Get, Items, Keys, Len) before returning them, so
// there is no supported way to observe "present but past expiry" through
// those APIs. expiresAt mirrors each key's deadline independently so Cleanup
// and Stats can answer that question without the library's help.
type Cache struct {
	ttl *ttlcache.Cache[string, []model.EnrichedUTXO]

	mu        sync.Mutex
	expiresAt map[string]time.Time
}

func New() *Cache {
	return &Cache{
		ttl: ttlcache.New[string, []model.EnrichedUTXO](
			ttlcache.WithDisableTouchOnHit[string, []model.EnrichedUTXO](),
		),
		expiresAt: make(map[string]time.Time),
	}
}

func key(address string, network model.Network) string {
	return fmt.Sprintf("%s:%s", network, address)
}

// Get returns the cached list for (address, network), or nil, false on a
// miss. A read past expiry is a miss and removes the expired entry.
func (c *Cache) Get(address string, network model.Network) ([]model.EnrichedUTXO, bool) {
	k := key(address, network)
	item := c.ttl.Get(k)
	if item == nil {
		c.mu.Lock()
		exp, tracked := c.expiresAt[k]
		expired := tracked && exp.Before(time.Now())
		if expired {
			delete(c.expiresAt, k)
		}
		c.mu.Unlock()
		if expired {
			c.ttl.Delete(k)
		}
		return nil, false
	}
	return item.Value(), true
}

// Set stores utxos for (address, network), stamping expiry at now+ttl.
func (c *Cache) Set(address string, network model.Network, utxos []model.EnrichedUTXO, ttl time.Duration) {
	k := key(address, network)
	c.ttl.Set(k, utxos, ttl)

	c.mu.Lock()
	c.expiresAt[k] = time.Now().Add(ttl)
	c.mu.Unlock()
}

// Has is definitionally Get != miss; it triggers the same expiry side effect.
func (c *Cache) Has(address string, network model.Network) bool {
	_, ok := c.Get(address, network)
	return ok
}

// Invalidate removes a single (address, network) entry.
func (c *Cache) Invalidate(address string, network model.Network) {
	k := key(address, network)
	c.ttl.Delete(k)

	c.mu.Lock()
	delete(c.expiresAt, k)
	c.mu.Unlock()
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.ttl.DeleteAll()

	c.mu.Lock()
	c.expiresAt = make(map[string]time.Time)
	c.mu.Unlock()
}

// Cleanup deletes every entry past expiry and returns how many were removed.
func (c *Cache) Cleanup() uint32 {
	now := time.Now()

	c.mu.Lock()
	var expired []string
	for k, exp := range c.expiresAt {
		if exp.Before(now) {
			expired = append(expired, k)
		}
	}
	for _, k := range expired {
		delete(c.expiresAt, k)
	}
	c.mu.Unlock()

	for _, k := range expired {
		c.ttl.Delete(k)
	}
	return uint32(len(expired))
}

// Size returns the number of entries currently tracked (including entries
// past expiry that have not yet been read or swept).
func (c *Cache) Size() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return uint32(len(c.expiresAt))
}

// Stats reports the current size and how many entries are past expiry,
// without removing them.
func (c *Cache) Stats() Stats {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	expired := 0
	for _, exp := range c.expiresAt {
		if exp.Before(now) {
			expired++
		}
	}
	return Stats{Size: len(c.expiresAt), Expired: expired}
}

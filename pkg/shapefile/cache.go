package shapefile

import (
	"container/list"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// LayerCache manages loaded layers with LRU eviction and content
// fingerprinting.
//
// The cache stores fully decoded layers in memory and evicts
// least-recently-used layers when the memory limit is exceeded. Each entry
// carries a fingerprint of the file's header and size; a hit whose
// fingerprint no longer matches the file on disk is discarded and reloaded,
// so a rewritten shapefile is never served stale.
//
// Memory accounting is approximate, based on feature and coordinate counts.
type LayerCache struct {
	maxMemory  int64
	usedMemory int64
	layers     map[string]*cacheEntry
	lru        *list.List // most recent at front
	mu         sync.RWMutex
}

// cacheEntry tracks a cached layer and its metadata.
type cacheEntry struct {
	path         string
	layer        *Layer
	fingerprint  uint64
	memorySize   int64
	element      *list.Element
	lastAccessed time.Time
	accessCount  int
}

// NewLayerCache creates a cache with the given memory limit in bytes. Set to
// 0 for an unbounded cache.
func NewLayerCache(maxMemoryBytes int64) *LayerCache {
	return &LayerCache{
		maxMemory: maxMemoryBytes,
		layers:    make(map[string]*cacheEntry),
		lru:       list.New(),
	}
}

// Get retrieves the layer for path from cache, or loads it with loader on a
// miss. A cached entry whose fingerprint no longer matches the file is
// treated as a miss.
func (c *LayerCache) Get(path string, loader func() (*Layer, error)) (*Layer, error) {
	fp, err := fingerprintFile(path)
	if err != nil {
		return nil, fmt.Errorf("fingerprint %s: %w", path, err)
	}

	c.mu.RLock()
	entry, ok := c.layers[path]
	c.mu.RUnlock()
	if ok && entry.fingerprint == fp {
		c.mu.Lock()
		entry.lastAccessed = time.Now()
		entry.accessCount++
		c.lru.MoveToFront(entry.element)
		c.mu.Unlock()
		return entry.layer, nil
	}
	if ok {
		// Stale entry: the file changed underneath us.
		c.Remove(path)
	}

	layer, err := loader()
	if err != nil {
		return nil, fmt.Errorf("load layer: %w", err)
	}

	if err := c.add(path, layer, fp); err != nil {
		// Too large to cache; hand it back uncached.
		return layer, nil
	}
	return layer, nil
}

// add inserts a layer, evicting LRU entries until it fits.
func (c *LayerCache) add(path string, layer *Layer, fp uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.layers[path]; ok {
		c.usedMemory -= entry.memorySize
		entry.layer = layer
		entry.fingerprint = fp
		entry.memorySize = estimateLayerMemory(layer)
		c.usedMemory += entry.memorySize
		entry.lastAccessed = time.Now()
		entry.accessCount++
		c.lru.MoveToFront(entry.element)
		return nil
	}

	memSize := estimateLayerMemory(layer)
	if c.maxMemory > 0 && memSize > c.maxMemory {
		return fmt.Errorf("layer too large for cache (%d bytes > %d bytes max)",
			memSize, c.maxMemory)
	}

	if c.maxMemory > 0 {
		for c.usedMemory+memSize > c.maxMemory && c.lru.Len() > 0 {
			c.evictLRU()
		}
	}

	entry := &cacheEntry{
		path:         path,
		layer:        layer,
		fingerprint:  fp,
		memorySize:   memSize,
		lastAccessed: time.Now(),
		accessCount:  1,
	}
	entry.element = c.lru.PushFront(entry)
	c.layers[path] = entry
	c.usedMemory += memSize
	return nil
}

// evictLRU removes the least recently used layer. Must be called with c.mu
// locked.
func (c *LayerCache) evictLRU() {
	elem := c.lru.Back()
	if elem == nil {
		return
	}
	entry := elem.Value.(*cacheEntry)
	c.lru.Remove(elem)
	delete(c.layers, entry.path)
	c.usedMemory -= entry.memorySize
}

// Remove explicitly removes a layer from the cache.
func (c *LayerCache) Remove(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.layers[path]; ok {
		c.lru.Remove(entry.element)
		delete(c.layers, path)
		c.usedMemory -= entry.memorySize
	}
}

// Clear removes all layers from the cache.
func (c *LayerCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.layers = make(map[string]*cacheEntry)
	c.lru.Init()
	c.usedMemory = 0
}

// Stats returns cache statistics.
func (c *LayerCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	totalAccess := 0
	for _, entry := range c.layers {
		totalAccess += entry.accessCount
	}
	return CacheStats{
		LayerCount:  len(c.layers),
		UsedMemory:  c.usedMemory,
		MaxMemory:   c.maxMemory,
		TotalAccess: totalAccess,
	}
}

// CacheStats holds cache performance metrics.
type CacheStats struct {
	LayerCount  int   // number of layers currently cached
	UsedMemory  int64 // estimated memory usage in bytes
	MaxMemory   int64 // memory limit in bytes, 0 if unbounded
	TotalAccess int   // accesses across all cached layers
}

// fingerprintFile hashes the file's 100-byte header and its size. That is
// enough to catch any rewrite: the header embeds the declared file length
// and extent, both of which change when records do.
func fingerprintFile(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}

	head := make([]byte, HeaderLength)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return 0, err
	}

	h := xxhash.New()
	h.Write(head[:n])
	var size [8]byte
	binary.LittleEndian.PutUint64(size[:], uint64(info.Size()))
	h.Write(size[:])
	return h.Sum64(), nil
}

// estimateLayerMemory estimates a layer's memory footprint: a fixed base,
// per-feature overhead, and the coordinate arrays.
func estimateLayerMemory(layer *Layer) int64 {
	if layer == nil {
		return 0
	}
	size := int64(1024)
	for _, feature := range layer.Features() {
		size += 256
		size += int64(len(feature.Geometry.Coordinates)) * 24
		size += int64(len(feature.Attributes)) * 64
	}
	return size
}

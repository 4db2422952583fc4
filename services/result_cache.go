package services

import (
	"sync"
	"time"

	"github.com/fenilmodi00/flightme-backend/models"
	"github.com/sirupsen/logrus"
)

// resultCacheEntry is a cached analysis with its creation time
type resultCacheEntry struct {
	result    *models.AnalysisResult
	createdAt time.Time
}

// ResultCache maps request fingerprints to analysis results for a fixed freshness window.
// Values are copied in and out so callers cannot mutate cached results.
type ResultCache struct {
	entries    map[string]*resultCacheEntry
	mutex      sync.RWMutex
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewResultCache creates a cache with the given TTL and capacity
func NewResultCache(ttl time.Duration, maxEntries int) *ResultCache {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &ResultCache{
		entries:    make(map[string]*resultCacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// WithClock replaces the cache clock
func (c *ResultCache) WithClock(now func() time.Time) *ResultCache {
	c.now = now
	return c
}

// TTL returns the freshness window
func (c *ResultCache) TTL() time.Duration {
	return c.ttl
}

// Get returns the value stored under key if it is still fresh; stale entries are dropped
func (c *ResultCache) Get(key string) (*models.AnalysisResult, bool) {
	c.mutex.RLock()
	entry, exists := c.entries[key]
	c.mutex.RUnlock()
	if !exists {
		return nil, false
	}

	if !models.IsFresh(entry.createdAt, c.now(), c.ttl) {
		c.mutex.Lock()
		// the entry may have been replaced while unlocked
		if current, ok := c.entries[key]; ok && current == entry {
			delete(c.entries, key)
		}
		c.mutex.Unlock()
		return nil, false
	}

	return entry.result.Clone(), true
}

// Put stores value under key, overwriting any previous value
func (c *ResultCache) Put(key string, value *models.AnalysisResult) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}

	c.entries[key] = &resultCacheEntry{
		result:    value.Clone(),
		createdAt: c.now(),
	}
}

// evictOldest removes the entry created first
func (c *ResultCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.entries {
		if oldestKey == "" || entry.createdAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.createdAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// Sweep removes every expired entry and returns how many were dropped
func (c *ResultCache) Sweep() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if !models.IsFresh(entry.createdAt, now, c.ttl) {
			delete(c.entries, key)
			removed++
		}
	}

	if removed > 0 {
		logrus.WithFields(logrus.Fields{
			"component": "ResultCache",
			"removed":   removed,
			"remaining": len(c.entries),
		}).Info("Swept expired analysis results")
	}
	return removed
}

// Size returns the number of entries, fresh or not
func (c *ResultCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries)
}

// Clear removes all entries
func (c *ResultCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries = make(map[string]*resultCacheEntry)
}

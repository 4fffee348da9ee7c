// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package authz

import (
	"strconv"
	"sync"
	"time"
)

// decisionCache caches check results per policy generation. Keys include the
// snapshot version, so an entry written for a superseded generation can never
// be served for the current one.
type decisionCache struct {
	ttl      time.Duration
	mu       sync.RWMutex
	items    map[string]cacheItem
	stopChan chan struct{}
	stopOnce sync.Once
}

type cacheItem struct {
	allowed   bool
	expiresAt time.Time
}

func newDecisionCache(ttl time.Duration) *decisionCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	c := &decisionCache{
		ttl:      ttl,
		items:    make(map[string]cacheItem),
		stopChan: make(chan struct{}),
	}
	go c.cleanup()
	return c
}

func (c *decisionCache) key(version uint64, account, method, path string) string {
	return strconv.FormatUint(version, 10) + "\x00" + account + "\x00" + method + "\x00" + path
}

func (c *decisionCache) get(version uint64, account, method, path string) (allowed, ok bool) {
	c.mu.RLock()
	item, found := c.items[c.key(version, account, method, path)]
	c.mu.RUnlock()

	if !found || time.Now().After(item.expiresAt) {
		AuthzCacheMissesTotal.Inc()
		return false, false
	}
	AuthzCacheHitsTotal.Inc()
	return item.allowed, true
}

func (c *decisionCache) set(version uint64, account, method, path string, allowed bool) {
	c.mu.Lock()
	c.items[c.key(version, account, method, path)] = cacheItem{
		allowed:   allowed,
		expiresAt: time.Now().Add(c.ttl),
	}
	n := len(c.items)
	c.mu.Unlock()
	AuthzCacheSize.Set(float64(n))
}

// clear drops every entry. Called on each snapshot swap.
func (c *decisionCache) clear() {
	c.mu.Lock()
	c.items = make(map[string]cacheItem)
	c.mu.Unlock()
	AuthzCacheSize.Set(0)
}

func (c *decisionCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *decisionCache) cleanup() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.evictExpired(time.Now())
		}
	}
}

func (c *decisionCache) evictExpired(now time.Time) {
	c.mu.Lock()
	evicted := 0
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
			evicted++
		}
	}
	n := len(c.items)
	c.mu.Unlock()

	AuthzCacheEvictionsTotal.Add(float64(evicted))
	AuthzCacheSize.Set(float64(n))
}

// stop ends the cleanup goroutine. Safe to call more than once.
func (c *decisionCache) stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
}

// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	items     []ChildSummary
	expiresAt time.Time
}

// MemoryCache implements SubtreeCache in process memory. Suitable for
// single-process deployments and tests; the Redis backend is preferred
// when more than one instance serves the layout.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

// NewMemory creates an in-memory subtree cache. A non-positive ttl
// falls back to DefaultTTL.
func NewMemory(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}
}

func (c *MemoryCache) GetChildren(ctx context.Context, key string) ([]ChildSummary, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		MissesTotal.WithLabelValues("memory").Inc()
		return nil, false, nil
	}

	HitsTotal.WithLabelValues("memory").Inc()
	items := make([]ChildSummary, len(entry.items))
	copy(items, entry.items)
	return items, true, nil
}

func (c *MemoryCache) SetChildren(ctx context.Context, key string, items []ChildSummary) error {
	stored := make([]ChildSummary, len(items))
	copy(stored, items)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictExpired()
	c.entries[key] = memoryEntry{
		items:     stored,
		expiresAt: time.Now().Add(c.ttl),
	}
	return nil
}

func (c *MemoryCache) Invalidate(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memoryEntry)
	return nil
}

// evictExpired drops stale entries. Called under the write lock on every
// set, which keeps the map from accumulating dead keys without needing a
// background goroutine.
func (c *MemoryCache) evictExpired() {
	now := time.Now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

var _ SubtreeCache = (*MemoryCache)(nil)

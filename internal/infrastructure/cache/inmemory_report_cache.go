package cache

import (
	"context"
	"sync"
	"time"
)

type reportEntry struct {
	report    map[string]any
	expiresAt time.Time
}

// InMemoryReportCache stores serialized reports in a process-local map.
// It is suitable for single-instance deployments and testing; cached
// reports are not shared across instances.
type InMemoryReportCache struct {
	mu        sync.RWMutex
	entries   map[string]reportEntry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryReportCache creates an in-memory report cache and starts
// a background goroutine that evicts expired entries.
func NewInMemoryReportCache() *InMemoryReportCache {
	c := &InMemoryReportCache{
		entries:  make(map[string]reportEntry),
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop()

	return c
}

// Get returns the cached report for key, or a miss when absent or
// expired.
func (c *InMemoryReportCache) Get(_ context.Context, key string) (map[string]any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[key]
	if !exists || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.report, true
}

// Set stores the report under key for ttl.
func (c *InMemoryReportCache) Set(_ context.Context, key string, report map[string]any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = reportEntry{
		report:    report,
		expiresAt: time.Now().Add(ttl),
	}
}

// Invalidate drops every cached report.
func (c *InMemoryReportCache) Invalidate(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]reportEntry)
}

// Close stops the cleanup goroutine.
func (c *InMemoryReportCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
	})
	c.wg.Wait()
	return nil
}

func (c *InMemoryReportCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.evictExpired()
		case <-c.stopChan:
			return
		}
	}
}

func (c *InMemoryReportCache) evictExpired() {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

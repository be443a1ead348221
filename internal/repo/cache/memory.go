package cache

import (
	"context"
	"sync"
	"time"

	"github.com/nguyentranbao-ct/smart-cart/internal/models"
)

type entry struct {
	products  []models.Product
	expiresAt time.Time
}

// MemoryCache suits single-instance deployments and tests.
type MemoryCache struct {
	mu        sync.RWMutex
	ttl       time.Duration
	entries   map[string]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	c := &MemoryCache{
		ttl:      ttl,
		entries:  make(map[string]entry),
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop()

	return c
}

func (c *MemoryCache) Get(_ context.Context, fingerprint string) ([]models.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[fingerprint]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return cloneProducts(e.products), true
}

func (c *MemoryCache) Set(_ context.Context, fingerprint string, products []models.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[fingerprint] = entry{
		products:  cloneProducts(products),
		expiresAt: time.Now().Add(c.ttl),
	}
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (c *MemoryCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *MemoryCache) cleanupLoop() {
	defer c.wg.Done()

	interval := c.ttl
	if interval <= 0 || interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *MemoryCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

var _ CandidateCache = (*MemoryCache)(nil)

package feedback

import (
	"sync"
	"time"

	"zia/internal/models"
)

// ContextCache holds generated answers in memory until they are rated or expire.
// Unrated answers are never written to the database.
type ContextCache struct {
	cache map[string]*cacheEntry
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type cacheEntry struct {
	context   *models.RequestContext
	expiresAt time.Time
}

// NewContextCache starts a cache whose entries live for ttl
func NewContextCache(ttl time.Duration) *ContextCache {
	cc := &ContextCache{
		cache: make(map[string]*cacheEntry),
		ttl:   ttl,
		now:   time.Now,
		stop:  make(chan struct{}),
	}

	go cc.cleanupLoop(cleanupInterval(ttl))

	return cc
}

func cleanupInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 || ttl > 5*time.Minute {
		return 5 * time.Minute
	}
	return ttl
}

func (cc *ContextCache) Set(requestID string, ctx *models.RequestContext) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	cc.cache[requestID] = &cacheEntry{
		context:   ctx,
		expiresAt: cc.now().Add(cc.ttl),
	}
}

// Get returns the context if present and not expired
func (cc *ContextCache) Get(requestID string) (*models.RequestContext, bool) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	entry, exists := cc.cache[requestID]
	if !exists || cc.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.context, true
}

func (cc *ContextCache) Delete(requestID string) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	delete(cc.cache, requestID)
}

func (cc *ContextCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cc.cleanup()
		case <-cc.stop:
			return
		}
	}
}

func (cc *ContextCache) cleanup() int {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	removed := 0
	now := cc.now()
	for requestID, entry := range cc.cache {
		if now.After(entry.expiresAt) {
			delete(cc.cache, requestID)
			removed++
		}
	}
	return removed
}

func (cc *ContextCache) Size() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	return len(cc.cache)
}

// Close stops the cleanup goroutine; it is safe to call more than once
func (cc *ContextCache) Close() {
	cc.stopOnce.Do(func() { close(cc.stop) })
}

// Package datasource loads per-ticker statement documents from disk. A
// document holds the three raw statement sections (income, balance sheet,
// cash flow) and may be stored as JSON, Hjson or a saved Screener.in HTML
// page.
package datasource

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/pkg/models"
)

// Source defines what the dashboard needs from a statement provider.
type Source interface {
	// Name returns the human-readable name of this source.
	Name() string

	// Load returns the raw statement document for ticker.
	Load(ctx context.Context, ticker string) (*models.StatementDocument, error)

	// List returns the tickers this source can load.
	List(ctx context.Context) ([]models.TickerInfo, error)
}

// --- Sentinel errors ---

// ErrTickerNotFound is returned when no document exists for a ticker.
var ErrTickerNotFound = errors.New("ticker not found")

// ErrInvalidTicker is returned for symbols that cannot name a document.
var ErrInvalidTicker = errors.New("invalid ticker symbol")

// ErrDocumentFormat is returned when a document cannot be decoded or a
// section has the wrong shape.
var ErrDocumentFormat = errors.New("malformed statement document")

// --- Simple in-memory cache ---

// CacheEntry holds a cached value with expiration.
type CacheEntry struct {
	Value     any
	ExpiresAt time.Time
}

// Cache is a simple thread-safe in-memory cache with TTL. A zero TTL
// disables caching.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
	ttl     time.Duration
}

// NewCache creates a new cache with the given default TTL.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]CacheEntry),
		ttl:     ttl,
	}
}

// Get retrieves a value from the cache. Returns nil, false if not found or expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Value, true
}

// Set stores a value in the cache with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value in the cache with a custom TTL.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = CacheEntry{
		Value:     value,
		ExpiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
}

// Invalidate removes a key from the cache.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Flush removes all entries from the cache.
func (c *Cache) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]CacheEntry)
	c.mu.Unlock()
}

// Len returns the number of entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Cleanup removes expired entries. Can be called periodically.
func (c *Cache) Cleanup() {
	c.mu.Lock()
	now := time.Now()
	for k, v := range c.entries {
		if now.After(v.ExpiresAt) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

// Sweep calls Cleanup every interval until ctx is done. A non-positive
// interval returns at once.
func (c *Cache) Sweep(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			c.Cleanup()
		}
	}
}

package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/nexuslabs/nexus-core/internal/core/ports/driven"
)

// MockScrapeCache is an in-memory mock implementation of ScrapeCache for testing
type MockScrapeCache struct {
	mu      sync.Mutex
	entries map[string]cacheItem

	Hits   int
	Misses int
}

type cacheItem struct {
	content *driven.ScrapedContent
	expiry  time.Time
}

// NewMockScrapeCache creates a new MockScrapeCache
func NewMockScrapeCache() *MockScrapeCache {
	return &MockScrapeCache{
		entries: make(map[string]cacheItem),
	}
}

func (m *MockScrapeCache) Get(ctx context.Context, url string) (*driven.ScrapedContent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.entries[url]
	if !ok || time.Now().After(item.expiry) {
		m.Misses++
		return nil, nil
	}
	m.Hits++
	return item.content, nil
}

func (m *MockScrapeCache) Set(ctx context.Context, url string, result *driven.ScrapedContent, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[url] = cacheItem{content: result, expiry: time.Now().Add(ttl)}
	return nil
}

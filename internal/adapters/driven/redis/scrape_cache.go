package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nexuslabs/nexus-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ScrapeCache = (*ScrapeCache)(nil)

const scrapePrefix = "scrape:"

// ScrapeCache implements driven.ScrapeCache using Redis.
// Keys are hashed URLs so arbitrary URLs stay within key-length limits.
type ScrapeCache struct {
	client *redis.Client
}

// NewScrapeCache creates a new Redis-backed scrape cache
func NewScrapeCache(client *redis.Client) *ScrapeCache {
	return &ScrapeCache{client: client}
}

func scrapeKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return scrapePrefix + hex.EncodeToString(sum[:])
}

// Get retrieves a cached result for a URL, or nil if absent/expired
func (c *ScrapeCache) Get(ctx context.Context, url string) (*driven.ScrapedContent, error) {
	data, err := c.client.Get(ctx, scrapeKey(url)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached scrape: %w", err)
	}

	var content driven.ScrapedContent
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached scrape: %w", err)
	}

	return &content, nil
}

// Set stores a result for a URL with the given TTL
func (c *ScrapeCache) Set(ctx context.Context, url string, result *driven.ScrapedContent, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal scrape result: %w", err)
	}

	if err := c.client.Set(ctx, scrapeKey(url), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache scrape result: %w", err)
	}

	return nil
}

package driven

import (
	"context"
	"time"
)

// ScrapedContent is a cached web scraping result.
type ScrapedContent struct {
	Content   string    `json:"content"`
	Title     string    `json:"title,omitempty"`
	MimeType  string    `json:"mime_type"`
	FetchedAt time.Time `json:"fetched_at"`
}

// ScrapeCache caches scraped pages by URL (Redis).
// Cache misses return nil, nil; callers fetch and Set.
type ScrapeCache interface {
	// Get retrieves a cached result for a URL, or nil if absent/expired
	Get(ctx context.Context, url string) (*ScrapedContent, error)

	// Set stores a result for a URL with the given TTL
	Set(ctx context.Context, url string, result *ScrapedContent, ttl time.Duration) error
}

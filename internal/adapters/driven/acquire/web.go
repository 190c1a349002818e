package acquire

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
	"github.com/nexuslabs/nexus-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.Acquirer = (*WebAcquirer)(nil)

// WebConfig holds configuration for the web acquirer.
type WebConfig struct {
	// Timeout for the HTTP fetch
	Timeout time.Duration

	// MaxBodySize caps how many bytes are read from a page
	MaxBodySize int64

	// CacheTTL is how long scraped pages stay cached
	CacheTTL time.Duration

	// UserAgent sent with fetch requests
	UserAgent string
}

// DefaultWebConfig returns sensible defaults for the web acquirer.
func DefaultWebConfig() WebConfig {
	return WebConfig{
		Timeout:     30 * time.Second,
		MaxBodySize: 10 << 20, // 10 MB
		CacheTTL:    time.Hour,
		UserAgent:   "nexus-core/1.0",
	}
}

// WebAcquirer fetches page content for web projects from their source URL.
// Results are cached so repeated ingests of the same URL don't re-fetch.
type WebAcquirer struct {
	config     WebConfig
	httpClient *http.Client
	cache      driven.ScrapeCache
}

// NewWebAcquirer creates a web acquirer. The cache is optional; pass nil to
// fetch uncached.
func NewWebAcquirer(config WebConfig, cache driven.ScrapeCache) *WebAcquirer {
	return &WebAcquirer{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		cache: cache,
	}
}

// Kind returns the project kind this acquirer handles.
func (a *WebAcquirer) Kind() domain.ProjectKind {
	return domain.ProjectKindWeb
}

// Acquire fetches the project's source URL, consulting the cache first.
func (a *WebAcquirer) Acquire(ctx context.Context, project *domain.Project) (*driven.RawContent, error) {
	if project.SourceURL == "" {
		return nil, fmt.Errorf("%w: project has no source URL", domain.ErrInvalidInput)
	}

	if a.cache != nil {
		cached, err := a.cache.Get(ctx, project.SourceURL)
		if err == nil && cached != nil {
			return &driven.RawContent{
				Content:  cached.Content,
				Title:    cached.Title,
				MimeType: cached.MimeType,
			}, nil
		}
		// Cache errors are not fatal, fall through to fetch
	}

	content, err := a.fetch(ctx, project.SourceURL)
	if err != nil {
		return nil, err
	}

	if a.cache != nil {
		_ = a.cache.Set(ctx, project.SourceURL, &driven.ScrapedContent{
			Content:   content.Content,
			Title:     content.Title,
			MimeType:  content.MimeType,
			FetchedAt: time.Now(),
		}, a.config.CacheTTL)
	}

	return content, nil
}

func (a *WebAcquirer) fetch(ctx context.Context, url string) (*driven.RawContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", a.config.UserAgent)
	req.Header.Set("Accept", "text/html, text/plain, text/markdown")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s returned status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, a.config.MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	text := string(body)
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyDocument
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "text/html"
	}

	return &driven.RawContent{
		Content:  text,
		Title:    extractTitle(text, mimeType),
		MimeType: mimeType,
	}, nil
}

var titlePattern = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

// extractTitle pulls the page title out of HTML documents.
func extractTitle(content, mimeType string) string {
	if !strings.HasPrefix(mimeType, "text/html") {
		return ""
	}
	matches := titlePattern.FindStringSubmatch(content)
	if len(matches) < 2 {
		return ""
	}
	return strings.TrimSpace(matches[1])
}

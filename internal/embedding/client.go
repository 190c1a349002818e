package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/nexuslabs/nexus-core/internal/chunking"
	"github.com/nexuslabs/nexus-core/internal/core/ports/driven"
)

// Config holds the client's payload and pacing limits.
type Config struct {
	// MaxPayloadBytes is the largest UTF-8 payload sent upstream in one
	// request. Longer texts are split into overlapping windows.
	MaxPayloadBytes int

	// OverlapBytes is how much consecutive split windows overlap. Must be
	// smaller than MaxPayloadBytes.
	OverlapBytes int

	// GroupSize is how many texts EmbedBatch embeds concurrently.
	GroupSize int

	// GroupPause is the delay inserted between consecutive groups.
	GroupPause time.Duration

	// CacheSize bounds the number of memoized text embeddings.
	CacheSize int
}

// DefaultConfig returns the limits used against the hosted embedding APIs.
func DefaultConfig() Config {
	return Config{
		MaxPayloadBytes: 9000,
		OverlapBytes:    1000,
		GroupSize:       3,
		GroupPause:      time.Second,
		CacheSize:       4096,
	}
}

// Client fronts an EmbeddingService with memoization, oversized-payload
// splitting, and rate-limit pacing for batches. A Client is safe for
// concurrent use.
type Client struct {
	svc    driven.EmbeddingService
	cfg    Config
	cache  *vectorCache
	logger *slog.Logger
}

func NewClient(svc driven.EmbeddingService, cfg Config, logger *slog.Logger) *Client {
	if cfg.MaxPayloadBytes <= 0 {
		cfg.MaxPayloadBytes = DefaultConfig().MaxPayloadBytes
	}
	if cfg.OverlapBytes < 0 || cfg.OverlapBytes >= cfg.MaxPayloadBytes {
		cfg.OverlapBytes = DefaultConfig().OverlapBytes
	}
	if cfg.GroupSize <= 0 {
		cfg.GroupSize = DefaultConfig().GroupSize
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultConfig().CacheSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		svc:    svc,
		cfg:    cfg,
		cache:  newVectorCache(cfg.CacheSize),
		logger: logger,
	}
}

// Embed returns the embedding for text, serving repeats from the cache.
// Texts over the payload ceiling are split into overlapping windows, each
// window embedded upstream, and the element-wise mean returned.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.cache.Get(text); ok {
		return v, nil
	}

	windows := splitByBytes(text, c.cfg.MaxPayloadBytes, c.cfg.OverlapBytes)

	vectors, err := c.svc.Embed(ctx, windows)
	if err != nil {
		return nil, fmt.Errorf("embedding text: %w", err)
	}
	if len(vectors) != len(windows) {
		return nil, fmt.Errorf("embedding text: expected %d vectors, got %d", len(windows), len(vectors))
	}

	var vector []float32
	if len(vectors) == 1 {
		vector = vectors[0]
	} else {
		c.logger.Debug("averaged oversized payload", "windows", len(windows), "bytes", len(text))
		vector = chunking.MeanVector(vectors)
	}

	c.cache.Set(text, vector)
	return vector, nil
}

// EmbedQuery embeds a search query through the underlying service's query
// path, bypassing the document cache.
func (c *Client) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return c.svc.EmbedQuery(ctx, query)
}

// EmbedBatch embeds texts preserving input order. Unique uncached texts are
// partitioned into fixed-size groups; items within a group run concurrently
// while groups run strictly in sequence with a pause between them. The pause
// is deliberate backpressure against upstream rate limits.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))

	// Vectors are held locally for the duration of the batch. The cache is
	// only a bound on cross-call memoization: a batch larger than the cache
	// would evict its own early items before the pass finishes.
	vectors := make(map[string][]float32, len(texts))
	var mu sync.Mutex

	// Collect unique texts that still need an upstream round trip.
	var pending []string
	seen := make(map[string]struct{}, len(texts))
	for _, text := range texts {
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		if v, ok := c.cache.Get(text); ok {
			vectors[text] = v
			continue
		}
		pending = append(pending, text)
	}

	for start := 0; start < len(pending); start += c.cfg.GroupSize {
		if start > 0 && c.cfg.GroupPause > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.cfg.GroupPause):
			}
		}

		end := start + c.cfg.GroupSize
		if end > len(pending) {
			end = len(pending)
		}
		group := pending[start:end]

		var wg sync.WaitGroup
		errs := make([]error, len(group))
		for i, text := range group {
			wg.Add(1)
			go func(i int, text string) {
				defer wg.Done()
				v, err := c.Embed(ctx, text)
				if err != nil {
					errs[i] = err
					return
				}
				mu.Lock()
				vectors[text] = v
				mu.Unlock()
			}(i, text)
		}
		wg.Wait()

		for _, err := range errs {
			if err != nil {
				return nil, fmt.Errorf("embedding batch: %w", err)
			}
		}
	}

	for i, text := range texts {
		v, ok := vectors[text]
		if !ok {
			return nil, fmt.Errorf("embedding batch: no vector for item %d", i)
		}
		results[i] = v
	}
	return results, nil
}

// Dimensions reports the underlying service's embedding width.
func (c *Client) Dimensions() int {
	return c.svc.Dimensions()
}

// Model reports the underlying service's model name.
func (c *Client) Model() string {
	return c.svc.Model()
}

// CacheLen reports how many embeddings are currently memoized.
func (c *Client) CacheLen() int {
	return c.cache.Len()
}

// splitByBytes slices text into windows of at most maxBytes UTF-8 bytes with
// overlap bytes shared between neighbours, snapping window edges back to
// rune boundaries. Always emits at least one window and always advances.
func splitByBytes(text string, maxBytes, overlap int) []string {
	if len(text) <= maxBytes {
		return []string{text}
	}

	var windows []string
	start := 0
	for start < len(text) {
		end := start + maxBytes
		if end >= len(text) {
			windows = append(windows, text[start:])
			break
		}
		for end > start && !utf8.RuneStart(text[end]) {
			end--
		}
		if end <= start {
			end = start + maxBytes
		}

		windows = append(windows, text[start:end])

		next := end - overlap
		for next > start && !utf8.RuneStart(text[next]) {
			next--
		}
		// Forward-progress guard: never re-emit the same window.
		if next <= start {
			next = end
		}
		start = next
	}
	return windows
}

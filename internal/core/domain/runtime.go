package domain

import "sync"

// RuntimeConfig tracks which services are available at runtime.
// This is determined at startup and can be updated dynamically for AI services.
// Thread-safe for concurrent access.
type RuntimeConfig struct {
	mu sync.RWMutex

	// Static (set at startup, read-only)
	SessionBackend string // "redis" or "postgres"
	VectorBackend  string // "pinecone" or "chromem"

	// Dynamic capability flags (updated when AI services change)
	embeddingAvailable  bool
	generativeAvailable bool
}

// NewRuntimeConfig creates a new RuntimeConfig with initial values
func NewRuntimeConfig(sessionBackend, vectorBackend string) *RuntimeConfig {
	return &RuntimeConfig{
		SessionBackend: sessionBackend,
		VectorBackend:  vectorBackend,
	}
}

// EmbeddingAvailable returns whether the embedding service is available
func (c *RuntimeConfig) EmbeddingAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.embeddingAvailable
}

// GenerativeAvailable returns whether the generative service is available
func (c *RuntimeConfig) GenerativeAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generativeAvailable
}

// SetEmbeddingAvailable updates the embedding availability flag
func (c *RuntimeConfig) SetEmbeddingAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embeddingAvailable = available
}

// SetGenerativeAvailable updates the generative availability flag
func (c *RuntimeConfig) SetGenerativeAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generativeAvailable = available
}

// CanIngest returns true if the write path (chunking + indexing) can run
func (c *RuntimeConfig) CanIngest() bool {
	return c.EmbeddingAvailable()
}

// CanAnswer returns true if the full retrieval pipeline can run
func (c *RuntimeConfig) CanAnswer() bool {
	return c.EmbeddingAvailable() && c.GenerativeAvailable()
}

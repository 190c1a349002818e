package driven

import (
	"context"
)

// EmbeddingService turns text into vectors. Implementations wrap one
// provider model; the runtime registry swaps them without restarting.
type EmbeddingService interface {
	// Embed generates embeddings for multiple texts, in input order
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a search query. Providers may
	// use a query-optimized task type here
	EmbedQuery(ctx context.Context, query string) ([]float32, error)

	// Dimensions returns the vector width the model produces
	Dimensions() int

	// Model returns the provider model name
	Model() string

	// HealthCheck verifies the embedding service is available
	HealthCheck(ctx context.Context) error

	// Close releases any held resources
	Close() error
}

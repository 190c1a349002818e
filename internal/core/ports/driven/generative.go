package driven

import (
	"context"
)

// GenerativeService provides large language model text generation.
// The retrieval pipeline uses it for query refinement, re-ranking and answer
// synthesis; the chunk merger optionally uses it for merge decisions. Each
// call site owns its prompt shape and its recovery from malformed responses.
type GenerativeService interface {
	// Generate produces a completion for the given prompt
	Generate(ctx context.Context, prompt string) (string, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the generative service is available
	Ping(ctx context.Context) error

	// Close releases resources held by the generative service
	Close() error
}

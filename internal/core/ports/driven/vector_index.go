package driven

import (
	"context"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
)

// VectorIndex is a namespace-partitioned nearest-neighbour index.
// Record IDs are content hashes, so upserts are idempotent.
type VectorIndex interface {
	// Upsert inserts or replaces records in the given namespace
	Upsert(ctx context.Context, namespace string, records []domain.VectorRecord) error

	// Query returns the topK nearest passages in the namespace.
	// Scores are raw similarity values; callers normalise them.
	Query(ctx context.Context, namespace string, vector []float32, topK int) ([]domain.ScoredPassage, error)

	// DeleteNamespace removes all records in a namespace
	DeleteNamespace(ctx context.Context, namespace string) error

	// HealthCheck verifies the index is available
	HealthCheck(ctx context.Context) error
}

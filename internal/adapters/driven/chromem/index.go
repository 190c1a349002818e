package chromem

import (
	"context"
	"fmt"
	"sync"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
	"github.com/nexuslabs/nexus-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VectorIndex = (*Index)(nil)

// Index implements driven.VectorIndex on an embedded chromem-go database.
// It needs no external service, which makes it the default for local runs.
// One namespace maps to one chromem collection.
type Index struct {
	mu sync.Mutex
	db *chromemgo.DB
}

// NewIndex creates an in-memory vector index
func NewIndex() *Index {
	return &Index{db: chromemgo.NewDB()}
}

// NewPersistentIndex creates a vector index persisted under dir
func NewPersistentIndex(dir string) (*Index, error) {
	db, err := chromemgo.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}
	return &Index{db: db}, nil
}

// noEmbedding rejects documents without a precomputed embedding. All records
// arrive with vectors already attached, so chromem must never embed itself.
func noEmbedding(_ context.Context, _ string) ([]float32, error) {
	return nil, fmt.Errorf("document has no precomputed embedding")
}

// Upsert inserts or replaces records in the given namespace
func (x *Index) Upsert(ctx context.Context, namespace string, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	col, err := x.db.GetOrCreateCollection(namespace, nil, noEmbedding)
	if err != nil {
		return fmt.Errorf("failed to open collection %s: %w", namespace, err)
	}

	docs := make([]chromemgo.Document, 0, len(records))
	for _, r := range records {
		docs = append(docs, chromemgo.Document{
			ID:        r.ID,
			Metadata:  r.Metadata,
			Embedding: r.Values,
			Content:   r.Metadata["text"],
		})
	}

	if err := col.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("failed to add documents to %s: %w", namespace, err)
	}

	return nil
}

// Query returns the topK nearest passages in the namespace
func (x *Index) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]domain.ScoredPassage, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	col := x.db.GetCollection(namespace, noEmbedding)
	if col == nil {
		return nil, nil
	}

	// chromem rejects nResults above the collection size
	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	results, err := col.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", namespace, err)
	}

	passages := make([]domain.ScoredPassage, 0, len(results))
	for _, r := range results {
		passages = append(passages, domain.ScoredPassage{
			Text:  r.Content,
			Score: float64(r.Similarity),
		})
	}

	return passages, nil
}

// DeleteNamespace removes all records in a namespace
func (x *Index) DeleteNamespace(ctx context.Context, namespace string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if err := x.db.DeleteCollection(namespace); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", namespace, err)
	}
	return nil
}

// HealthCheck verifies the index is available
func (x *Index) HealthCheck(ctx context.Context) error {
	// Embedded store, always reachable
	return nil
}

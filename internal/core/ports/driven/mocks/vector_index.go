package mocks

import (
	"context"
	"sync"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
)

// MockVectorIndex is an in-memory mock implementation of VectorIndex for
// testing. Query returns canned matches when set, otherwise scores stored
// records by a crude dot product against the query vector.
type MockVectorIndex struct {
	mu      sync.RWMutex
	records map[string]map[string]domain.VectorRecord // namespace -> id -> record

	QueryMatches []domain.ScoredPassage
	UpsertErr    error
	QueryErr     error
}

// NewMockVectorIndex creates a new MockVectorIndex
func NewMockVectorIndex() *MockVectorIndex {
	return &MockVectorIndex{
		records: make(map[string]map[string]domain.VectorRecord),
	}
}

func (m *MockVectorIndex) Upsert(ctx context.Context, namespace string, records []domain.VectorRecord) error {
	if m.UpsertErr != nil {
		return m.UpsertErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	ns, ok := m.records[namespace]
	if !ok {
		ns = make(map[string]domain.VectorRecord)
		m.records[namespace] = ns
	}
	for _, r := range records {
		ns[r.ID] = r
	}
	return nil
}

func (m *MockVectorIndex) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]domain.ScoredPassage, error) {
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	if m.QueryMatches != nil {
		return m.QueryMatches, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []domain.ScoredPassage
	for _, r := range m.records[namespace] {
		var score float64
		for i := 0; i < len(vector) && i < len(r.Values); i++ {
			score += float64(vector[i]) * float64(r.Values[i])
		}
		matches = append(matches, domain.ScoredPassage{
			Text:  r.Metadata["text"],
			Score: score,
		})
		if len(matches) == topK {
			break
		}
	}
	return matches, nil
}

func (m *MockVectorIndex) DeleteNamespace(ctx context.Context, namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, namespace)
	return nil
}

func (m *MockVectorIndex) HealthCheck(ctx context.Context) error {
	return nil
}

// RecordCount reports how many records a namespace holds.
func (m *MockVectorIndex) RecordCount(namespace string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records[namespace])
}

// Records returns a copy of the stored records for a namespace.
func (m *MockVectorIndex) Records(namespace string) []domain.VectorRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.VectorRecord
	for _, r := range m.records[namespace] {
		out = append(out, r)
	}
	return out
}

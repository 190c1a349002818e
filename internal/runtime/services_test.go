package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
	"github.com/nexuslabs/nexus-core/internal/core/ports/driven"
	"github.com/nexuslabs/nexus-core/internal/core/ports/driven/mocks"
	"github.com/nexuslabs/nexus-core/internal/embedding"
	"github.com/nexuslabs/nexus-core/internal/retrieval"
)

func newTestServices(index driven.VectorIndex) *Services {
	if index == nil {
		index = mocks.NewMockVectorIndex()
	}
	// No group pause so batch embedding does not slow tests down
	embedCfg := embedding.Config{
		MaxPayloadBytes: 9000,
		OverlapBytes:    1000,
		GroupSize:       3,
		CacheSize:       128,
	}
	return NewServices(
		domain.NewRuntimeConfig("redis", "chromem"),
		index,
		embedCfg,
		domain.DefaultChunkingOptions(),
		retrieval.DefaultConfig(),
		nil,
	)
}

func TestServices_UnavailableWithoutEmbedding(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(nil)

	if _, err := s.ProcessText(ctx, "Some text."); !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Errorf("ProcessText: expected ErrServiceUnavailable, got %v", err)
	}
	if _, err := s.Retrieve(ctx, "ns", "query"); !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Errorf("Retrieve: expected ErrServiceUnavailable, got %v", err)
	}
}

func TestServices_SetEmbeddingServiceUpdatesFlags(t *testing.T) {
	s := newTestServices(nil)

	if s.Config().EmbeddingAvailable() {
		t.Error("Embedding should start unavailable")
	}

	s.SetEmbeddingService(mocks.NewMockEmbeddingService())
	if !s.Config().EmbeddingAvailable() {
		t.Error("Embedding should be available after set")
	}
	if s.EmbeddingClient() == nil {
		t.Error("Expected a derived embedding client")
	}

	s.SetEmbeddingService(nil)
	if s.Config().EmbeddingAvailable() {
		t.Error("Embedding should be unavailable after clearing")
	}
	if s.EmbeddingClient() != nil {
		t.Error("Clearing the service should drop the client")
	}
}

func TestServices_SetGenerativeServiceUpdatesFlags(t *testing.T) {
	s := newTestServices(nil)

	s.SetGenerativeService(mocks.NewMockGenerativeService())
	if !s.Config().GenerativeAvailable() {
		t.Error("Generative should be available after set")
	}

	s.SetGenerativeService(nil)
	if s.Config().GenerativeAvailable() {
		t.Error("Generative should be unavailable after clearing")
	}
}

func TestServices_ValidateAndSetEmbedding(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(nil)

	if err := s.ValidateAndSetEmbedding(ctx, mocks.NewMockEmbeddingService()); err != nil {
		t.Fatalf("ValidateAndSetEmbedding failed: %v", err)
	}
	if !s.Config().EmbeddingAvailable() {
		t.Error("Embedding should be available")
	}

	// nil clears the slot without error
	if err := s.ValidateAndSetEmbedding(ctx, nil); err != nil {
		t.Fatalf("Clearing failed: %v", err)
	}
	if s.Config().EmbeddingAvailable() {
		t.Error("Embedding should be cleared")
	}
}

func TestServices_ProcessText(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(nil)
	s.SetEmbeddingService(mocks.NewMockEmbeddingService())

	result, err := s.ProcessText(ctx, "The sky is blue. Water is wet. Go is a compiled language. It has goroutines.")
	if err != nil {
		t.Fatalf("ProcessText failed: %v", err)
	}

	if len(result.Chunks) == 0 {
		t.Fatal("Expected at least one chunk")
	}
	if len(result.ChunkEmbeddings) != len(result.Chunks) {
		t.Errorf("Expected %d embeddings, got %d", len(result.Chunks), len(result.ChunkEmbeddings))
	}
	if len(result.AggregatedEmbedding) == 0 {
		t.Error("Expected an aggregated embedding")
	}
}

func TestServices_RetrieveDegradesWithoutGenerative(t *testing.T) {
	ctx := context.Background()
	index := mocks.NewMockVectorIndex()
	index.QueryMatches = []domain.ScoredPassage{
		{Text: "Go is a compiled language.", Score: 0.95},
		{Text: "Water is wet.", Score: 0.4},
	}

	s := newTestServices(index)
	s.SetEmbeddingService(mocks.NewMockEmbeddingService())

	result, err := s.Retrieve(ctx, "ns", "what is Go?")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}

	// LLM stages fall back: the query passes through unrefined and no
	// answer is synthesized, but vector search still yields passages
	if result.RefinedQuery != "what is Go?" {
		t.Errorf("Expected pass-through query, got %q", result.RefinedQuery)
	}
	if result.Answer != "" {
		t.Errorf("Expected no synthesized answer, got %q", result.Answer)
	}
	if len(result.Passages) == 0 {
		t.Error("Expected passages from vector search")
	}
}

func TestServices_RetrieveWithGenerative(t *testing.T) {
	ctx := context.Background()
	index := mocks.NewMockVectorIndex()
	index.QueryMatches = []domain.ScoredPassage{
		{Text: "Go is a compiled language.", Score: 0.95},
	}

	s := newTestServices(index)
	s.SetEmbeddingService(mocks.NewMockEmbeddingService())

	generative := mocks.NewMockGenerativeService()
	generative.Response = "Go is a compiled language with goroutines."
	s.SetGenerativeService(generative)

	result, err := s.Retrieve(ctx, "ns", "what is Go?")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if result.Answer == "" {
		t.Error("Expected a synthesized answer")
	}
}

func TestServices_Close(t *testing.T) {
	s := newTestServices(nil)
	s.SetEmbeddingService(mocks.NewMockEmbeddingService())
	s.SetGenerativeService(mocks.NewMockGenerativeService())

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if s.Config().EmbeddingAvailable() || s.Config().GenerativeAvailable() {
		t.Error("Close should clear both availability flags")
	}
	if s.EmbeddingClient() != nil {
		t.Error("Close should drop the embedding client")
	}
}

package runtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nexuslabs/nexus-core/internal/chunking"
	"github.com/nexuslabs/nexus-core/internal/core/domain"
	"github.com/nexuslabs/nexus-core/internal/core/ports/driven"
	"github.com/nexuslabs/nexus-core/internal/embedding"
	"github.com/nexuslabs/nexus-core/internal/retrieval"
)

// Services holds references to dynamically configurable AI services.
// The embedding and generative services can be swapped at runtime via the
// settings API; the chunking and retrieval pipelines built on them always
// see the current pair. Thread-safe for concurrent access.
type Services struct {
	mu sync.RWMutex

	// Config tracks capability flags
	config *domain.RuntimeConfig

	// Static collaborators
	vectorIndex  driven.VectorIndex
	embedCfg     embedding.Config
	chunkOpts    domain.ChunkingOptions
	retrievalCfg retrieval.Config
	logger       *slog.Logger

	// Dynamic services (can be nil, updated at runtime)
	embeddingService  driven.EmbeddingService
	generativeService driven.GenerativeService

	// Derived client fronting embeddingService with cache and pacing;
	// rebuilt whenever the service is swapped.
	embeddingClient *embedding.Client
}

// NewServices creates a new Services registry
func NewServices(
	config *domain.RuntimeConfig,
	vectorIndex driven.VectorIndex,
	embedCfg embedding.Config,
	chunkOpts domain.ChunkingOptions,
	retrievalCfg retrieval.Config,
	logger *slog.Logger,
) *Services {
	if logger == nil {
		logger = slog.Default()
	}
	return &Services{
		config:       config,
		vectorIndex:  vectorIndex,
		embedCfg:     embedCfg,
		chunkOpts:    chunkOpts,
		retrievalCfg: retrievalCfg,
		logger:       logger,
	}
}

// Config returns the runtime configuration
func (s *Services) Config() *domain.RuntimeConfig {
	return s.config
}

// EmbeddingClient returns the current cached embedding client (may be nil)
func (s *Services) EmbeddingClient() *embedding.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.embeddingClient
}

// GenerativeService returns the current generative service (may be nil)
func (s *Services) GenerativeService() driven.GenerativeService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generativeService
}

// SetEmbeddingService updates the embedding service and rebuilds the cached
// client around it. Closes the old service if present. The fresh client
// starts with an empty cache, so vectors from the previous model never leak
// into new embeddings.
func (s *Services) SetEmbeddingService(svc driven.EmbeddingService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil {
		_ = s.embeddingService.Close()
	}

	s.embeddingService = svc
	if svc != nil {
		s.embeddingClient = embedding.NewClient(svc, s.embedCfg, s.logger)
	} else {
		s.embeddingClient = nil
	}
	s.config.SetEmbeddingAvailable(svc != nil)
}

// SetGenerativeService updates the generative service.
// Closes the old service if present. Updates config flags.
func (s *Services) SetGenerativeService(svc driven.GenerativeService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generativeService != nil {
		_ = s.generativeService.Close()
	}

	s.generativeService = svc
	s.config.SetGenerativeAvailable(svc != nil)
}

// ValidateAndSetEmbedding validates connectivity before setting the
// embedding service
func (s *Services) ValidateAndSetEmbedding(ctx context.Context, svc driven.EmbeddingService) error {
	if svc == nil {
		s.SetEmbeddingService(nil)
		return nil
	}

	if err := svc.HealthCheck(ctx); err != nil {
		_ = svc.Close()
		return err
	}

	s.SetEmbeddingService(svc)
	return nil
}

// ValidateAndSetGenerative validates connectivity before setting the
// generative service
func (s *Services) ValidateAndSetGenerative(ctx context.Context, svc driven.GenerativeService) error {
	if svc == nil {
		s.SetGenerativeService(nil)
		return nil
	}

	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return err
	}

	s.SetGenerativeService(svc)
	return nil
}

// Close shuts down all services
func (s *Services) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil {
		_ = s.embeddingService.Close()
		s.embeddingService = nil
		s.embeddingClient = nil
	}
	if s.generativeService != nil {
		_ = s.generativeService.Close()
		s.generativeService = nil
	}

	s.config.SetEmbeddingAvailable(false)
	s.config.SetGenerativeAvailable(false)

	return nil
}

// ProcessText chunks a document with whatever AI services are currently
// configured. Fails with ErrServiceUnavailable when no embedding service is
// set; a missing generative service just disables LLM-arbitrated merging.
func (s *Services) ProcessText(ctx context.Context, text string) (*domain.ChunkingResult, error) {
	s.mu.RLock()
	client := s.embeddingClient
	generative := s.generativeService
	s.mu.RUnlock()

	if client == nil {
		return nil, domain.ErrServiceUnavailable
	}

	var generate chunking.GenerateFunc
	if generative != nil {
		generate = generative.Generate
	}

	return chunking.NewPipeline(client, generate, s.chunkOpts, s.logger).ProcessText(ctx, text)
}

// Retrieve answers a query against a namespace with the current AI
// services. With no generative service the LLM stages degrade: refinement
// and re-ranking fall back, synthesis yields an empty answer.
func (s *Services) Retrieve(ctx context.Context, namespace, query string) (*retrieval.Result, error) {
	s.mu.RLock()
	client := s.embeddingClient
	generative := s.generativeService
	s.mu.RUnlock()

	if client == nil {
		return nil, domain.ErrServiceUnavailable
	}
	if generative == nil {
		generative = unavailableGenerator{}
	}

	return retrieval.NewPipeline(client, s.vectorIndex, generative, s.retrievalCfg, s.logger).Retrieve(ctx, namespace, query)
}

// unavailableGenerator stands in when no generative service is configured;
// every call fails so each pipeline stage takes its fallback path.
type unavailableGenerator struct{}

func (unavailableGenerator) Generate(context.Context, string) (string, error) {
	return "", domain.ErrServiceUnavailable
}

func (unavailableGenerator) Model() string              { return "unavailable" }
func (unavailableGenerator) Ping(context.Context) error { return domain.ErrServiceUnavailable }
func (unavailableGenerator) Close() error               { return nil }

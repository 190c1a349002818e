package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
	"github.com/nexuslabs/nexus-core/internal/core/ports/driven"
	"github.com/nexuslabs/nexus-core/internal/core/ports/driving"
	"github.com/nexuslabs/nexus-core/internal/runtime"
)

// Ensure settingsService implements SettingsService
var _ driving.SettingsService = (*settingsService)(nil)

// settingsService implements the SettingsService interface
type settingsService struct {
	settingsStore driven.SettingsStore
	aiFactory     driven.AIServiceFactory
	services      *runtime.Services
	logger        *slog.Logger
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(
	settingsStore driven.SettingsStore,
	aiFactory driven.AIServiceFactory,
	services *runtime.Services,
	logger *slog.Logger,
) driving.SettingsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &settingsService{
		settingsStore: settingsStore,
		aiFactory:     aiFactory,
		services:      services,
		logger:        logger,
	}
}

// GetAISettings retrieves the current AI configuration
func (s *settingsService) GetAISettings(ctx context.Context) (*domain.AISettings, error) {
	return s.settingsStore.GetAISettings(ctx)
}

// UpdateAISettings updates AI configuration and hot-reloads services
func (s *settingsService) UpdateAISettings(ctx context.Context, updaterID string, req driving.UpdateAISettingsRequest) (*driving.AISettingsStatus, error) {
	// Get current settings or start fresh
	settings, err := s.settingsStore.GetAISettings(ctx)
	if err != nil {
		settings = &domain.AISettings{}
	}

	// Update embedding settings if provided
	if req.Embedding != nil {
		settings.Embedding = domain.EmbeddingSettings{
			Provider: req.Embedding.Provider,
			Model:    req.Embedding.Model,
			APIKey:   req.Embedding.APIKey,
			BaseURL:  req.Embedding.BaseURL,
		}
	}

	// Update generative settings if provided
	if req.Generative != nil {
		settings.Generative = domain.GenerativeSettings{
			Provider: req.Generative.Provider,
			Model:    req.Generative.Model,
			APIKey:   req.Generative.APIKey,
			BaseURL:  req.Generative.BaseURL,
		}
	}

	settings.UpdatedAt = time.Now()
	settings.UpdatedBy = updaterID

	if err := s.settingsStore.SaveAISettings(ctx, settings); err != nil {
		return nil, err
	}

	// Hot-reload the affected services. A service that fails validation
	// leaves its slot empty rather than keeping a stale one.
	if req.Embedding != nil {
		if err := s.reloadEmbedding(ctx, &settings.Embedding); err != nil {
			s.logger.Warn("embedding service reload failed", "provider", settings.Embedding.Provider, "error", err)
		}
	}
	if req.Generative != nil {
		if err := s.reloadGenerative(ctx, &settings.Generative); err != nil {
			s.logger.Warn("generative service reload failed", "provider", settings.Generative.Provider, "error", err)
		}
	}

	return s.status(), nil
}

func (s *settingsService) reloadEmbedding(ctx context.Context, cfg *domain.EmbeddingSettings) error {
	if !cfg.IsConfigured() {
		s.services.SetEmbeddingService(nil)
		return nil
	}

	svc, err := s.aiFactory.CreateEmbeddingService(cfg)
	if err != nil {
		s.services.SetEmbeddingService(nil)
		return err
	}
	if err := s.services.ValidateAndSetEmbedding(ctx, svc); err != nil {
		s.services.SetEmbeddingService(nil)
		return err
	}
	return nil
}

func (s *settingsService) reloadGenerative(ctx context.Context, cfg *domain.GenerativeSettings) error {
	if !cfg.IsConfigured() {
		s.services.SetGenerativeService(nil)
		return nil
	}

	svc, err := s.aiFactory.CreateGenerativeService(cfg)
	if err != nil {
		s.services.SetGenerativeService(nil)
		return err
	}
	if err := s.services.ValidateAndSetGenerative(ctx, svc); err != nil {
		s.services.SetGenerativeService(nil)
		return err
	}
	return nil
}

func (s *settingsService) status() *driving.AISettingsStatus {
	status := &driving.AISettingsStatus{
		EmbeddingConfigured:  s.services.Config().EmbeddingAvailable(),
		GenerativeConfigured: s.services.Config().GenerativeAvailable(),
	}
	if client := s.services.EmbeddingClient(); client != nil {
		status.EmbeddingModel = client.Model()
	}
	if gen := s.services.GenerativeService(); gen != nil {
		status.GenerativeModel = gen.Model()
	}
	return status
}

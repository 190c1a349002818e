package driven

import (
	"github.com/nexuslabs/nexus-core/internal/core/domain"
)

// AIServiceFactory creates AI services from settings.
// Returning nil, nil means the settings are not configured.
type AIServiceFactory interface {
	// CreateEmbeddingService creates an embedding service from settings
	CreateEmbeddingService(settings *domain.EmbeddingSettings) (EmbeddingService, error)

	// CreateGenerativeService creates a generative service from settings
	CreateGenerativeService(settings *domain.GenerativeSettings) (GenerativeService, error)
}

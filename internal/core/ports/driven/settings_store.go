package driven

import (
	"context"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
)

// SettingsStore handles AI settings persistence (PostgreSQL)
type SettingsStore interface {
	// GetAISettings retrieves the AI configuration
	GetAISettings(ctx context.Context) (*domain.AISettings, error)

	// SaveAISettings stores the AI configuration
	SaveAISettings(ctx context.Context, settings *domain.AISettings) error
}

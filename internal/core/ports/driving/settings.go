package driving

import (
	"context"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
)

// AIServiceSettings carries provider configuration for one AI service
type AIServiceSettings struct {
	Provider domain.AIProvider `json:"provider"`
	Model    string            `json:"model"`
	APIKey   string            `json:"api_key"`
	BaseURL  string            `json:"base_url,omitempty"`
}

// UpdateAISettingsRequest updates AI configuration; nil fields are unchanged
type UpdateAISettingsRequest struct {
	Embedding  *AIServiceSettings `json:"embedding,omitempty"`
	Generative *AIServiceSettings `json:"generative,omitempty"`
}

// AISettingsStatus reports which AI services are live after an update
type AISettingsStatus struct {
	EmbeddingConfigured  bool   `json:"embedding_configured"`
	GenerativeConfigured bool   `json:"generative_configured"`
	EmbeddingModel       string `json:"embedding_model,omitempty"`
	GenerativeModel      string `json:"generative_model,omitempty"`
}

// SettingsService manages runtime AI configuration
type SettingsService interface {
	// GetAISettings retrieves the current AI configuration
	GetAISettings(ctx context.Context) (*domain.AISettings, error)

	// UpdateAISettings updates AI configuration and hot-reloads services
	UpdateAISettings(ctx context.Context, updaterID string, req UpdateAISettingsRequest) (*AISettingsStatus, error)
}

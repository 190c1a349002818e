package driven

import (
	"context"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
)

// ChatStore handles chat and message persistence (PostgreSQL)
type ChatStore interface {
	// FindOrCreateChat returns the chat for a project, creating it if absent
	FindOrCreateChat(ctx context.Context, projectID string) (*domain.Chat, error)

	// CreateMessage appends a message to a chat
	CreateMessage(ctx context.Context, chatID string, role domain.MessageRole, content string) (*domain.Message, error)

	// ListMessages retrieves messages for a chat in chronological order
	ListMessages(ctx context.Context, chatID string, limit int) ([]*domain.Message, error)

	// DeleteByProject removes the chat and messages for a project
	DeleteByProject(ctx context.Context, projectID string) error
}

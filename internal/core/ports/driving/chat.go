package driving

import (
	"context"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
)

// ChatService answers questions against a project's indexed content
type ChatService interface {
	// Ask persists the question, runs the retrieval pipeline and persists
	// the answer. Retrieval failures surface as a generic no-answer message,
	// never as an error to the end user.
	Ask(ctx context.Context, userID, projectID, question string) (*domain.Message, error)

	// History retrieves the chat messages for a project in order
	History(ctx context.Context, userID, projectID string, limit int) ([]*domain.Message, error)
}

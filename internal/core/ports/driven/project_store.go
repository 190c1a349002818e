package driven

import (
	"context"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
)

// ProjectStore handles project persistence (PostgreSQL)
type ProjectStore interface {
	// Save creates or updates a project
	Save(ctx context.Context, project *domain.Project) error

	// Get retrieves a project by ID
	Get(ctx context.Context, id string) (*domain.Project, error)

	// ListByUser retrieves all projects for a user, newest first
	ListByUser(ctx context.Context, userID string) ([]*domain.Project, error)

	// UpdateStatus updates the ingestion status and error message
	UpdateStatus(ctx context.Context, id string, status domain.ProjectStatus, errMsg string) error

	// UpdateContent stores the extracted text for a project
	UpdateContent(ctx context.Context, id string, content string) error

	// Delete deletes a project
	Delete(ctx context.Context, id string) error
}

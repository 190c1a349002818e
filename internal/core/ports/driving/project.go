package driving

import (
	"context"
	"io"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
)

// CreateWebProjectRequest creates a project from a URL to scrape
type CreateWebProjectRequest struct {
	Name      string `json:"name"`
	SourceURL string `json:"source_url"`
}

// CreatePDFProjectRequest creates a project from an uploaded PDF
type CreatePDFProjectRequest struct {
	Name string
	File io.ReaderAt
	Size int64
}

// ProjectService manages user projects and kicks off ingestion
type ProjectService interface {
	// CreateWebProject records a web project and enqueues its ingestion
	CreateWebProject(ctx context.Context, userID string, req CreateWebProjectRequest) (*domain.Project, error)

	// CreatePDFProject extracts the PDF text, records the project and
	// enqueues its ingestion
	CreatePDFProject(ctx context.Context, userID string, req CreatePDFProjectRequest) (*domain.Project, error)

	// Get retrieves a project the user owns
	Get(ctx context.Context, userID, projectID string) (*domain.Project, error)

	// List retrieves all projects for a user, newest first
	List(ctx context.Context, userID string) ([]*domain.Project, error)

	// Delete removes a project, its chat and its vector namespace
	Delete(ctx context.Context, userID, projectID string) error
}
